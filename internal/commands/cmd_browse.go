package commands

import (
	"context"
	"fmt"

	"github.com/colonyops/lightbox/internal/core/eventbus"
	"github.com/colonyops/lightbox/internal/tui"
	"github.com/colonyops/lightbox/pkg/logutils"
	"github.com/urfave/cli/v3"
)

type BrowseCmd struct {
	flags *Flags

	// flags
	mode string
}

// NewBrowseCmd creates a new browse command
func NewBrowseCmd(flags *Flags) *BrowseCmd {
	return &BrowseCmd{flags: flags}
}

// Register adds the browse command to the application
func (cmd *BrowseCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "browse",
		Aliases:   []string{"ui"},
		Usage:     "Browse the gallery in a terminal UI",
		UsageText: "lightbox browse [--mode personal|shared|public]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "mode",
				Aliases:     []string{"m"},
				Usage:       "gallery to open (personal, shared, public)",
				Destination: &cmd.mode,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *BrowseCmd) run(ctx context.Context, c *cli.Command) error {
	mode, err := cmd.flags.parseMode(cmd.mode)
	if err != nil {
		return err
	}

	// The alternate screen owns the terminal, so logs must not go to stderr.
	log := cmd.flags.Log
	if cmd.flags.LogFile == "" {
		fileLog, closer, err := logutils.New(cmd.flags.LogLevel, DefaultLogFile())
		if err != nil {
			return fmt.Errorf("setup browse log: %w", err)
		}
		defer closer()
		log = fileLog
	}
	flags := *cmd.flags
	flags.Log = log

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	bus := eventbus.New(256)
	eventbus.RegisterDebugLogger(bus, log.With().Str("component", "eventbus").Logger())
	eventbus.NewNotificationRouter(bus).Register()
	go bus.Start(ctx)

	// Sign in before the alternate screen takes over so prompts stay usable.
	app, _, err := flags.galleryApp(ctx, eventbus.NewNotifier(bus), bus)
	if err != nil {
		return err
	}

	return tui.Run(ctx, app, bus, tui.Options{Mode: mode}, log)
}
