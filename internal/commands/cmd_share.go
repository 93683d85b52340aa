package commands

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/colonyops/lightbox/internal/core/styles"
	"github.com/colonyops/lightbox/internal/gallery"
	"github.com/urfave/cli/v3"
)

type ShareCmd struct {
	flags *Flags

	// flags
	public  bool
	private bool
	link    bool
	noLink  bool
	qr      bool
	add     []string
	remove  []string
	yes     bool
}

// NewShareCmd creates a new share command
func NewShareCmd(flags *Flags) *ShareCmd {
	return &ShareCmd{flags: flags}
}

// Register adds the share command to the application
func (cmd *ShareCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "share",
		Usage:     "Change who can see an image",
		UsageText: "lightbox share <id> [--public | --private] [--link | --no-link] [--add USER]... [--remove USER]... [--qr]",
		Description: `Updates the visibility of one image you own. Users added or removed
are the only ones whose shared lists change. Without flags, the current
sharing state is printed. With --qr, a link-shared image's address is
also drawn as a QR code.`,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "public",
				Usage:       "list the image in the public gallery",
				Destination: &cmd.public,
			},
			&cli.BoolFlag{
				Name:        "private",
				Usage:       "remove the image from the public gallery",
				Destination: &cmd.private,
			},
			&cli.BoolFlag{
				Name:        "link",
				Usage:       "allow anyone with the link to view the image",
				Destination: &cmd.link,
			},
			&cli.BoolFlag{
				Name:        "no-link",
				Usage:       "disable the share link",
				Destination: &cmd.noLink,
			},
			&cli.BoolFlag{
				Name:        "qr",
				Usage:       "draw the share link as a QR code",
				Destination: &cmd.qr,
			},
			&cli.StringSliceFlag{
				Name:        "add",
				Aliases:     []string{"a"},
				Usage:       "user to share with (repeatable)",
				Destination: &cmd.add,
			},
			&cli.StringSliceFlag{
				Name:        "remove",
				Aliases:     []string{"r"},
				Usage:       "user to stop sharing with (repeatable)",
				Destination: &cmd.remove,
			},
			&cli.BoolFlag{
				Name:        "yes",
				Aliases:     []string{"y"},
				Usage:       "skip confirmation",
				Destination: &cmd.yes,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *ShareCmd) run(ctx context.Context, c *cli.Command) error {
	id := c.Args().First()
	if id == "" {
		return fmt.Errorf("image id is required")
	}
	if cmd.public && cmd.private {
		return fmt.Errorf("--public and --private are mutually exclusive")
	}
	if cmd.link && cmd.noLink {
		return fmt.Errorf("--link and --no-link are mutually exclusive")
	}

	app, _, err := cmd.flags.galleryApp(ctx, stderr(c), nil)
	if err != nil {
		return err
	}

	rec, err := app.Store.FetchByID(ctx, id)
	if err != nil {
		return err
	}

	draft := gallery.NewShareDraft(rec)
	changed := false

	switch {
	case cmd.public:
		draft.IsPublic, changed = true, true
	case cmd.private:
		draft.IsPublic, changed = false, true
	}
	switch {
	case cmd.link:
		draft.SharedByLink, changed = true, true
	case cmd.noLink:
		draft.SharedByLink, changed = false, true
	}
	for _, name := range cmd.add {
		if err := app.Share.AddUser(ctx, draft, name); err != nil {
			return err
		}
		changed = true
	}
	for _, name := range cmd.remove {
		draft.Remove(strings.TrimSpace(name))
		changed = true
	}

	p := stderr(c)
	if !changed {
		return cmd.describe(c, app, draft)
	}

	if !cmd.yes {
		confirmed := true
		err := huh.NewConfirm().
			Title("Apply sharing changes?").
			Description(summarize(draft)).
			Affirmative("Apply").
			Negative("Cancel").
			Value(&confirmed).
			WithTheme(styles.FormTheme()).
			Run()
		if err != nil {
			if errors.Is(err, huh.ErrUserAborted) {
				return nil
			}
			return err
		}
		if !confirmed {
			p.Infof("Sharing unchanged")
			return nil
		}
	}

	if err := app.Share.SetSharing(ctx, id, draft.Sharing()); err != nil {
		return err
	}

	p.Successf("Sharing updated")
	return cmd.describe(c, app, draft)
}

func (cmd *ShareCmd) describe(c *cli.Command, app *gallery.App, d *gallery.ShareDraft) error {
	out := newPrinter(stdout(c))
	out.Printf("%s", summarize(d))
	if !d.SharedByLink {
		if cmd.qr {
			stderr(c).Warnf("Link sharing is off, no QR code to show")
		}
		return nil
	}

	out.Printf("link: %s", app.Share.ShareLink(d.ImageID))
	if cmd.qr {
		code, err := app.Share.ShareLinkQR(d.ImageID)
		if err != nil {
			return err
		}
		out.Printf("%s", code)
	}
	return nil
}

func summarize(d *gallery.ShareDraft) string {
	visibility := "private"
	if d.IsPublic {
		visibility = "public"
	}
	users := "nobody"
	if names := d.Names(); len(names) > 0 {
		users = strings.Join(names, ", ")
	}
	return fmt.Sprintf("%s, shared with %s", visibility, users)
}
