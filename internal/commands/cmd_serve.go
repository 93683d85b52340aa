package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/colonyops/lightbox/internal/core/config"
	"github.com/colonyops/lightbox/internal/devserver"
	"github.com/urfave/cli/v3"
)

type ServeCmd struct {
	flags *Flags

	// flags
	addr  string
	seeds []string
}

// NewServeCmd creates a new serve command
func NewServeCmd(flags *Flags) *ServeCmd {
	return &ServeCmd{flags: flags}
}

// Register adds the serve command to the application
func (cmd *ServeCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "serve",
		Usage:     "Run the reference gallery backend",
		UsageText: "lightbox serve [--addr :8080] [--seed name:password]...",
		Description: `Starts an in-process gallery API server. Metadata is kept in memory; image
bytes are stored in memory or in an S3 compatible bucket depending on
devserver.storage in the config file.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "addr",
				Usage:       "listen address (overrides devserver.addr)",
				Destination: &cmd.addr,
			},
			&cli.StringSliceFlag{
				Name:        "seed",
				Usage:       "register an account at startup, as name:password (repeatable)",
				Destination: &cmd.seeds,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *ServeCmd) run(ctx context.Context, c *cli.Command) error {
	cfg := cmd.flags.config().DevServer

	blobs, err := newBlobStore(ctx, cfg)
	if err != nil {
		return err
	}

	catalog := devserver.NewCatalog()
	for _, seed := range cmd.seeds {
		name, password, ok := strings.Cut(seed, ":")
		if !ok {
			return fmt.Errorf("invalid --seed %q, want name:password", seed)
		}
		if _, err := catalog.Register(name, name+"@localhost", password); err != nil {
			return fmt.Errorf("seed %s: %w", name, err)
		}
	}

	addr := cfg.Addr
	if cmd.addr != "" {
		addr = cmd.addr
	}

	srv := devserver.New(devserver.Options{
		Addr:           addr,
		PublicURL:      cfg.PublicURL,
		AllowedOrigins: cfg.AllowedOrigins,
		ThumbnailWidth: cfg.ThumbnailWidth,
	}, catalog, blobs, cmd.flags.Log)

	stderr(c).Infof("serving %s on %s (storage: %s)", devserver.BasePath, addr, cfg.Storage)
	return srv.ListenAndServe(ctx)
}

func newBlobStore(ctx context.Context, cfg config.DevServerConfig) (devserver.BlobStore, error) {
	switch cfg.Storage {
	case config.StorageS3:
		blobs, err := devserver.NewS3Blobs(ctx, devserver.S3Options{
			Endpoint:        cfg.S3.Endpoint,
			Region:          cfg.S3.Region,
			Bucket:          cfg.S3.Bucket,
			AccessKeyID:     cfg.S3.AccessKeyID,
			SecretAccessKey: cfg.S3.SecretAccessKey,
		})
		if err != nil {
			return nil, fmt.Errorf("open s3 storage: %w", err)
		}
		return blobs, nil
	default:
		return devserver.NewMemoryBlobs(), nil
	}
}
