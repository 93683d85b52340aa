package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/colonyops/lightbox/internal/commands"
	"github.com/colonyops/lightbox/internal/core/config"
	"github.com/colonyops/lightbox/internal/core/styles"
	"github.com/colonyops/lightbox/internal/gallery"
	"github.com/colonyops/lightbox/pkg/logutils"
)

var (
	// Build information. Populated at build-time via -ldflags flag.
	// When installed via `go install module@version`, build() falls back
	// to runtime/debug.BuildInfo instead.
	version = "dev"
	commit  = "HEAD"
	date    = "now"
)

func build() string {
	v, c, d := version, commit, date

	if v == "dev" {
		if info, ok := debug.ReadBuildInfo(); ok {
			if mv := info.Main.Version; mv != "" && mv != "(devel)" {
				v = mv
			}
			for _, s := range info.Settings {
				switch s.Key {
				case "vcs.revision":
					c = s.Value
				case "vcs.time":
					d = s.Value
				}
			}
		}
	}

	short := c
	if len(c) > 7 {
		short = c[:7]
	}

	return fmt.Sprintf("%s (%s) %s", v, short, d)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Values from .env feed the LIGHTBOX_* flag sources below.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "load .env: %v\n", err)
	}

	var logCloser func()

	flags := &commands.Flags{}

	app := &cli.Command{
		Name:      "lightbox",
		Usage:     "Browse, tag, and share a photo gallery",
		UsageText: "lightbox [global options] command [command options]",
		Description: `lightbox is a client for a photo gallery backend. It lists, uploads, edits,
deletes, and shares images, and 'lightbox browse' opens a terminal browser
with a modal viewer.

'lightbox serve' runs a reference backend for local use.`,
		Version: build(),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "log-level",
				Usage:       "log level (debug, info, warn, error, fatal, panic)",
				Sources:     cli.EnvVars("LIGHTBOX_LOG_LEVEL"),
				Value:       "warn",
				Destination: &flags.LogLevel,
			},
			&cli.StringFlag{
				Name:        "log-file",
				Usage:       "path to log file (defaults to stderr, or the state dir for browse)",
				Sources:     cli.EnvVars("LIGHTBOX_LOG_FILE"),
				Destination: &flags.LogFile,
			},
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "path to config file",
				Sources:     cli.EnvVars("LIGHTBOX_CONFIG"),
				Value:       commands.DefaultConfigPath(),
				Destination: &flags.ConfigPath,
			},
			&cli.StringFlag{
				Name:        "api-url",
				Usage:       "gallery API base URL (overrides api.base_url)",
				Sources:     cli.EnvVars("LIGHTBOX_API_URL"),
				Destination: &flags.APIURL,
			},
			&cli.StringFlag{
				Name:        "token",
				Usage:       "session token from 'lightbox login'",
				Sources:     cli.EnvVars("LIGHTBOX_TOKEN"),
				Destination: &flags.Token,
			},
			&cli.StringFlag{
				Name:        "user",
				Aliases:     []string{"u"},
				Usage:       "user name",
				Sources:     cli.EnvVars("LIGHTBOX_USER"),
				Destination: &flags.User,
			},
			&cli.StringFlag{
				Name:        "password",
				Usage:       "password",
				Sources:     cli.EnvVars("LIGHTBOX_PASSWORD"),
				Destination: &flags.Password,
			},
		},
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			logger, closer, err := logutils.New(flags.LogLevel, flags.LogFile)
			if err != nil {
				return ctx, fmt.Errorf("setup logger: %w", err)
			}
			log.Logger = logger
			logCloser = closer
			flags.Log = logger

			cfg, err := config.Load(flags.ConfigPath)
			if err != nil {
				return ctx, fmt.Errorf("load config: %w", err)
			}
			flags.Config = cfg

			// Apply configured theme (validation ensures name is valid)
			palette, _ := styles.GetPalette(cfg.TUI.Theme)
			styles.SetTheme(palette)

			return ctx, nil
		},
		After: func(ctx context.Context, c *cli.Command) error {
			if logCloser != nil {
				logCloser()
			}
			return nil
		},
	}

	app = commands.NewLoginCmd(flags).Register(app)
	app = commands.NewLsCmd(flags).Register(app)
	app = commands.NewShowCmd(flags).Register(app)
	app = commands.NewUploadCmd(flags).Register(app)
	app = commands.NewEditCmd(flags).Register(app)
	app = commands.NewDeleteCmd(flags).Register(app)
	app = commands.NewShareCmd(flags).Register(app)
	app = commands.NewBrowseCmd(flags).Register(app)
	app = commands.NewServeCmd(flags).Register(app)
	app = commands.NewConfigValidateCmd(flags).Register(app)

	exitCode := 0
	if err := app.Run(ctx, os.Args); err != nil {
		exitCode = 1

		// Gallery failures were already reported by the notifier.
		var failure *gallery.Failure
		if !errors.As(err, &failure) {
			var exitErr cli.ExitCoder
			if errors.As(err, &exitErr) {
				exitCode = exitErr.ExitCode()
			}
			if msg := err.Error(); msg != "" {
				fmt.Fprintln(os.Stderr, styles.ErrorStyle.Render("✘ "+msg))
			}
		}
	}

	stop()
	os.Exit(exitCode)
}
