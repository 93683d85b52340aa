package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/colonyops/lightbox/internal/core/image"
	"github.com/colonyops/lightbox/internal/core/styles"
	"github.com/colonyops/lightbox/pkg/iojson"
	"github.com/urfave/cli/v3"
)

type ShowCmd struct {
	flags *Flags

	// flags
	jsonOutput bool
	raw        bool
	width      int
}

// NewShowCmd creates a new show command
func NewShowCmd(flags *Flags) *ShowCmd {
	return &ShowCmd{flags: flags}
}

// Register adds the show command to the application
func (cmd *ShowCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "show",
		Usage:     "Show one image's metadata",
		UsageText: "lightbox show <id> [--json | --raw]",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "json",
				Usage:       "output as JSON",
				Destination: &cmd.jsonOutput,
			},
			&cli.BoolFlag{
				Name:        "raw",
				Usage:       "print markdown without rendering",
				Destination: &cmd.raw,
			},
			&cli.IntFlag{
				Name:        "width",
				Usage:       "wrap width for rendered output",
				Value:       80,
				Destination: &cmd.width,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *ShowCmd) run(ctx context.Context, c *cli.Command) error {
	id := c.Args().First()
	if id == "" {
		return fmt.Errorf("image id is required")
	}

	app, _, err := cmd.flags.galleryApp(ctx, stderr(c), nil)
	if err != nil {
		return err
	}

	rec, err := app.Store.FetchByID(ctx, id)
	if err != nil {
		return err
	}

	out := stdout(c)
	if cmd.jsonOutput {
		return iojson.WriteWith(out, stderr(c).w, rec)
	}

	md := recordMarkdown(rec)
	if cmd.raw {
		_, err := fmt.Fprint(out, md)
		return err
	}

	r, err := glamour.NewTermRenderer(
		glamour.WithStyles(styles.GlamourStyle()),
		glamour.WithWordWrap(cmd.width),
	)
	if err != nil {
		return fmt.Errorf("create renderer: %w", err)
	}
	rendered, err := r.Render(md)
	if err != nil {
		return fmt.Errorf("render: %w", err)
	}
	_, err = fmt.Fprint(out, rendered)
	return err
}

// recordMarkdown formats an image's metadata as a markdown document.
func recordMarkdown(r image.Record) string {
	var b strings.Builder

	title := r.Info.Title
	if title == "" {
		title = r.ID
	}
	fmt.Fprintf(&b, "# %s\n\n", title)

	yesNo := func(v bool) string {
		if v {
			return "yes"
		}
		return "no"
	}

	fmt.Fprintf(&b, "- **ID:** `%s`\n", r.ID)
	if r.Info.BelongsTo != "" {
		fmt.Fprintf(&b, "- **Owner:** %s\n", r.Info.BelongsTo)
	}
	fmt.Fprintf(&b, "- **Public:** %s\n", yesNo(r.Info.IsPublic))
	fmt.Fprintf(&b, "- **Shared by link:** %s\n", yesNo(r.Info.SharedByLink))
	if len(r.Info.OpenedTo) > 0 {
		fmt.Fprintf(&b, "- **Shared with:** %s\n", strings.Join(r.Info.OpenedTo, ", "))
	}
	if len(r.Info.Tags) > 0 {
		fmt.Fprintf(&b, "- **Tags:** %s\n", strings.Join(r.Info.Tags, ", "))
	}
	fmt.Fprintf(&b, "- **Likes:** %d\n", len(r.Info.Likes))
	if r.URL != "" {
		fmt.Fprintf(&b, "- **URL:** %s\n", r.URL)
	}

	if d := strings.TrimSpace(r.Info.Description); d != "" {
		fmt.Fprintf(&b, "\n%s\n", d)
	}

	return b.String()
}
