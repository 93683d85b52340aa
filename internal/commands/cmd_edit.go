package commands

import (
	"context"
	"fmt"

	"github.com/colonyops/lightbox/internal/core/image"
	"github.com/colonyops/lightbox/pkg/iojson"
	"github.com/urfave/cli/v3"
)

type EditCmd struct {
	flags *Flags

	// flags
	addTags     []string
	removeTags  []string
	title       string
	description string
	like        bool
	patchFile   string
	jsonOutput  bool
}

// NewEditCmd creates a new edit command
func NewEditCmd(flags *Flags) *EditCmd {
	return &EditCmd{flags: flags}
}

// Register adds the edit command to the application
func (cmd *EditCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:  "edit",
		Usage: "Edit image metadata",
		UsageText: `lightbox edit <id> [--add-tag TAG]... [--remove-tag TAG]... [--title T] [--description D] [--like]
lightbox edit -f patches.json`,
		Description: `Edits one image through flags, or applies a JSON array of partial updates
read from a file ('-' for stdin):

  [{"_id": "...", "imageInfo": {"tags": ["sea"], "title": "Beach"}}]`,
		Flags: []cli.Flag{
			&cli.StringSliceFlag{
				Name:        "add-tag",
				Aliases:     []string{"t"},
				Usage:       "tag to add (repeatable, comma separated values allowed)",
				Destination: &cmd.addTags,
			},
			&cli.StringSliceFlag{
				Name:        "remove-tag",
				Usage:       "tag to remove (repeatable)",
				Destination: &cmd.removeTags,
			},
			&cli.StringFlag{
				Name:        "title",
				Usage:       "new title",
				Destination: &cmd.title,
			},
			&cli.StringFlag{
				Name:        "description",
				Usage:       "new description",
				Destination: &cmd.description,
			},
			&cli.BoolFlag{
				Name:        "like",
				Usage:       "toggle your like",
				Destination: &cmd.like,
			},
			&cli.StringFlag{
				Name:        "file",
				Aliases:     []string{"f"},
				Usage:       "JSON file of partial updates, - for stdin",
				Destination: &cmd.patchFile,
			},
			&cli.BoolFlag{
				Name:        "json",
				Usage:       "output updated records as JSON lines",
				Destination: &cmd.jsonOutput,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *EditCmd) run(ctx context.Context, c *cli.Command) error {
	if cmd.patchFile != "" {
		return cmd.runPatches(ctx, c)
	}

	id := c.Args().First()
	if id == "" {
		return fmt.Errorf("image id is required (or pass --file)")
	}

	app, _, err := cmd.flags.galleryApp(ctx, stderr(c), nil)
	if err != nil {
		return err
	}

	nav := app.Navigator
	if err := nav.Open(ctx, id); err != nil {
		return err
	}
	defer nav.Close()

	for _, raw := range cmd.addTags {
		if err := nav.AddTags(ctx, raw); err != nil {
			return err
		}
	}
	for _, tag := range cmd.removeTags {
		if err := nav.RemoveTag(ctx, tag); err != nil {
			return err
		}
	}

	var patch image.InfoPatch
	if c.IsSet("title") {
		patch.Title = image.Ptr(cmd.title)
	}
	if c.IsSet("description") {
		patch.Description = image.Ptr(cmd.description)
	}
	if err := nav.EditCurrent(ctx, patch); err != nil {
		return err
	}

	if cmd.like {
		if err := nav.ToggleLike(ctx); err != nil {
			return err
		}
	}

	rec, ok := nav.Current()
	if !ok {
		return fmt.Errorf("image %s not shown", id)
	}
	return cmd.print(c, []image.Record{rec})
}

func (cmd *EditCmd) runPatches(ctx context.Context, c *cli.Command) error {
	reader := iojson.FileReader[[]image.PartialUpdate]{}
	if cmd.patchFile != "-" {
		reader.SetFile(cmd.patchFile)
	}
	updates, err := reader.Read()
	if err != nil {
		return fmt.Errorf("read patches: %w", err)
	}
	if len(updates) == 0 {
		stderr(c).Infof("nothing to update")
		return nil
	}

	app, _, err := cmd.flags.galleryApp(ctx, stderr(c), nil)
	if err != nil {
		return err
	}

	records, err := app.Store.EditRecords(ctx, updates)
	if err != nil {
		return err
	}
	return cmd.print(c, records)
}

func (cmd *EditCmd) print(c *cli.Command, records []image.Record) error {
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
		p.Successf("Updated %s", r.ID)
	}
	return nil
}
