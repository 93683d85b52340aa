package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/colonyops/lightbox/internal/core/image"
	"github.com/colonyops/lightbox/pkg/iojson"
	"github.com/urfave/cli/v3"
)

type UploadCmd struct {
	flags *Flags

	// flags
	jsonOutput bool
}

// NewUploadCmd creates a new upload command
func NewUploadCmd(flags *Flags) *UploadCmd {
	return &UploadCmd{flags: flags}
}

// Register adds the upload command to the application
func (cmd *UploadCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "upload",
		Usage:     "Upload image files",
		UsageText: "lightbox upload <path or glob>...",
		Description: `Uploads every file matched by the arguments. Globs support ** for
recursive matches, for example 'lightbox upload "photos/**/*.jpg"'.`,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "json",
				Usage:       "output uploaded records as JSON lines",
				Destination: &cmd.jsonOutput,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *UploadCmd) run(ctx context.Context, c *cli.Command) error {
	paths, err := expandGlobs(c.Args().Slice())
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		return fmt.Errorf("no files matched")
	}

	files := make([]image.Upload, 0, len(paths))
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			return fmt.Errorf("read %s: %w", p, err)
		}
		files = append(files, image.Upload{Name: filepath.Base(p), Data: data})
	}

	app, _, err := cmd.flags.galleryApp(ctx, stderr(c), nil)
	if err != nil {
		return err
	}
	if err := app.Store.Initialize(ctx, image.ModePersonal); err != nil {
		return err
	}

	records, err := app.Store.Upload(ctx, files)
	if err != nil {
		return err
	}

	if cmd.jsonOutput {
		out := stdout(c)
		for _, r := range records {
			if err := iojson.WriteLine(out, r); err != nil {
				return fmt.Errorf("encode image: %w", err)
			}
		}
		return nil
	}

	p := stderr(c)
	for _, r := range records {
		p.Printf("%s  %s", r.ID, r.Info.Title)
	}
	p.Successf("Images uploaded! (%d)", len(records))
	return nil
}

// expandGlobs resolves each argument as a doublestar pattern. Arguments
// without glob syntax are kept as literal paths. Directories are skipped and
// duplicates removed.
func expandGlobs(args []string) ([]string, error) {
	var out []string
	for _, arg := range args {
		matches, err := doublestar.FilepathGlob(arg)
		if err != nil {
			return nil, fmt.Errorf("bad pattern %q: %w", arg, err)
		}
		if len(matches) == 0 && !hasMeta(arg) {
			matches = []string{arg}
		}

		for _, m := range matches {
			info, err := os.Stat(m)
			if err != nil {
				return nil, fmt.Errorf("stat %s: %w", m, err)
			}
			if info.IsDir() || slices.Contains(out, m) {
				continue
			}
			out = append(out, m)
		}
	}
	return out, nil
}

func hasMeta(s string) bool {
	for _, r := range s {
		switch r {
		case '*', '?', '[', '{':
			return true
		}
	}
	return false
}
