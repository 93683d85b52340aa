package commands

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/colonyops/lightbox/internal/core/image"
	"github.com/colonyops/lightbox/pkg/iojson"
	"github.com/urfave/cli/v3"
)

type LsCmd struct {
	flags *Flags

	// flags
	mode       string
	page       int
	pageSize   int
	filter     string
	jsonOutput bool
}

// NewLsCmd creates a new ls command
func NewLsCmd(flags *Flags) *LsCmd {
	return &LsCmd{flags: flags}
}

// Register adds the ls command to the application
func (cmd *LsCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "ls",
		Usage:     "List one page of images",
		UsageText: "lightbox ls [--mode personal|shared|public] [--page n] [--filter text] [--json]",
		Description: `Displays one page of the gallery as a table.

Pages are numbered from 1. A page past the end shows the last page.
Use --json for one JSON object per image.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "mode",
				Aliases:     []string{"m"},
				Usage:       "gallery mode (personal, shared, public); defaults to gallery.default_mode",
				Destination: &cmd.mode,
			},
			&cli.IntFlag{
				Name:        "page",
				Aliases:     []string{"p"},
				Usage:       "page number, starting at 1",
				Value:       1,
				Destination: &cmd.page,
			},
			&cli.IntFlag{
				Name:        "page-size",
				Usage:       "images per page; defaults to gallery.page_size",
				Destination: &cmd.pageSize,
			},
			&cli.StringFlag{
				Name:        "filter",
				Aliases:     []string{"f"},
				Usage:       "only show images whose title or tags match",
				Destination: &cmd.filter,
			},
			&cli.BoolFlag{
				Name:        "json",
				Usage:       "output as JSON lines",
				Destination: &cmd.jsonOutput,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *LsCmd) run(ctx context.Context, c *cli.Command) error {
	mode, err := cmd.flags.parseMode(cmd.mode)
	if err != nil {
		return err
	}

	app, _, err := cmd.flags.galleryApp(ctx, stderr(c), nil)
	if err != nil {
		return err
	}
	store := app.Store

	if err := store.Initialize(ctx, mode); err != nil {
		return err
	}
	if cmd.pageSize > 0 {
		if err := store.SetPageSize(ctx, cmd.pageSize); err != nil {
			return err
		}
	}
	if cmd.filter != "" {
		if err := store.SetFilter(ctx, cmd.filter); err != nil {
			return err
		}
	}
	if cmd.page > 1 {
		if err := store.SetPage(ctx, cmd.page-1); err != nil {
			return err
		}
	}

	st := store.Snapshot()
	out := stdout(c)

	if cmd.jsonOutput {
		for _, r := range st.Images {
			if err := iojson.WriteLine(out, r); err != nil {
				return fmt.Errorf("encode image: %w", err)
			}
		}
		return nil
	}

	if len(st.Images) == 0 {
		stderr(c).Infof("No images found")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tTITLE\tTAGS\tLIKES\tVISIBILITY")
	for _, r := range st.Images {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\n", r.ID, r.Info.Title, strings.Join(r.Info.Tags, ","), len(r.Info.Likes), visibility(r))
	}
	_ = w.Flush()

	pg := st.Pagination
	stderr(c).Infof("page %d of %d (%d images)", pg.Page+1, max(pg.TotalPages(), 1), pg.Total)
	return nil
}

func visibility(r image.Record) string {
	var parts []string
	if r.Info.IsPublic {
		parts = append(parts, "public")
	}
	if r.Info.SharedByLink {
		parts = append(parts, "link")
	}
	if n := len(r.Info.OpenedTo); n > 0 {
		parts = append(parts, fmt.Sprintf("%d users", n))
	}
	if len(parts) == 0 {
		return "private"
	}
	return strings.Join(parts, ",")
}
