package commands

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/charmbracelet/huh"
	"github.com/colonyops/lightbox/internal/core/image"
	"github.com/colonyops/lightbox/internal/core/styles"
	"github.com/colonyops/lightbox/internal/gallery"
	"github.com/urfave/cli/v3"
)

type DeleteCmd struct {
	flags *Flags

	// flags
	yes bool
}

// NewDeleteCmd creates a new delete command
func NewDeleteCmd(flags *Flags) *DeleteCmd {
	return &DeleteCmd{flags: flags}
}

// Register adds the delete command to the application
func (cmd *DeleteCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "delete",
		Aliases:   []string{"rm"},
		Usage:     "Delete images you own",
		UsageText: "lightbox delete <id>... [--yes]",
		Flags: []cli.Flag{
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

func (cmd *DeleteCmd) run(ctx context.Context, c *cli.Command) error {
	ids := c.Args().Slice()
	if len(ids) == 0 {
		return fmt.Errorf("at least one image id is required")
	}

	app, _, err := cmd.flags.galleryApp(ctx, stderr(c), nil)
	if err != nil {
		return err
	}
	if err := app.Store.Initialize(ctx, image.ModePersonal); err != nil {
		return err
	}

	if err := selectOwned(ctx, app, ids); err != nil {
		return err
	}

	if !cmd.yes {
		confirmed := false
		err := huh.NewConfirm().
			Title(fmt.Sprintf("Delete %d image(s)?", len(ids))).
			Description("This cannot be undone.").
			Affirmative("Delete").
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
			stderr(c).Infof("Nothing deleted")
			return nil
		}
	}

	if err := app.Store.DeleteSelected(ctx); err != nil {
		return err
	}

	stderr(c).Successf("Images deleted! (%d)", len(ids))
	return nil
}

// selectOwned selects each id, loading the page of the personal gallery
// that holds it first. Ids the user does not own are rejected.
func selectOwned(ctx context.Context, app *gallery.App, ids []string) error {
	owned := app.Directory.IDs(image.ModePersonal)
	for _, id := range ids {
		idx := slices.Index(owned, id)
		if idx < 0 {
			return fmt.Errorf("image %s: %w", id, image.ErrNotFound)
		}
		if app.Store.Selection().Has(id) {
			continue
		}

		if !app.Store.Contains(id) {
			size := int(app.Store.Snapshot().Pagination.PageSize)
			if err := app.Store.SetPage(ctx, idx/size); err != nil {
				return err
			}
		}
		if !app.Store.ToggleSelect(id) {
			return fmt.Errorf("image %s: %w", id, image.ErrNotFound)
		}
	}
	return nil
}
