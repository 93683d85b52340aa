package commands

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/huh"
	"github.com/colonyops/lightbox/internal/api"
	"github.com/colonyops/lightbox/internal/core/eventbus"
	"github.com/colonyops/lightbox/internal/core/image"
	"github.com/colonyops/lightbox/internal/core/notify"
	"github.com/colonyops/lightbox/internal/core/styles"
	"github.com/colonyops/lightbox/internal/core/validate"
	"github.com/colonyops/lightbox/internal/gallery"
	"golang.org/x/term"
)

// ErrNoCredentials is returned when no token or credentials are available
// and stdin is not a terminal to prompt on.
var ErrNoCredentials = errors.New("no credentials: pass --token, or --user and --password")

// client returns an anonymous API client.
func (f *Flags) client() *api.Client {
	return api.New(f.baseURL(), f.config().API.Timeout, f.Log)
}

// connect returns a client bound to the signed in user. A token wins over
// credentials. Missing credentials are prompted for when stdin is a
// terminal.
func (f *Flags) connect(ctx context.Context) (*api.Client, api.Account, error) {
	anon := f.client()

	if f.Token != "" {
		c := anon.WithSession(api.Session{Token: f.Token})
		acc, err := c.CurrentAccount(ctx)
		if err != nil {
			return nil, api.Account{}, fmt.Errorf("resume session: %w", err)
		}
		return c.WithSession(acc.Session()), acc, nil
	}

	user, password := f.User, f.Password
	if user == "" || password == "" {
		if !term.IsTerminal(int(os.Stdin.Fd())) {
			return nil, api.Account{}, ErrNoCredentials
		}
		if err := promptCredentials(&user, &password); err != nil {
			return nil, api.Account{}, err
		}
	}

	acc, err := anon.Login(ctx, api.Credentials{UserName: user, Password: password})
	if err != nil {
		return nil, api.Account{}, err
	}
	return anon.WithSession(acc.Session()), acc, nil
}

func promptCredentials(user, password *string) error {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("User name").
				Validate(validate.UserName).
				Value(user),
			huh.NewInput().
				Title("Password").
				EchoMode(huh.EchoModePassword).
				Value(password),
		),
	).WithTheme(styles.FormTheme()).Run()
}

// galleryApp signs in and builds the gallery services for the user. bus may
// be nil.
func (f *Flags) galleryApp(ctx context.Context, notifier notify.Notifier, bus *eventbus.EventBus) (*gallery.App, api.Account, error) {
	client, acc, err := f.connect(ctx)
	if err != nil {
		return nil, api.Account{}, err
	}

	cfg := f.config()
	app := gallery.NewApp(client, gallery.Account{
		UserName: acc.UserName,
		Owned:    acc.UserOwnedImages,
		OpenedTo: acc.UserOpenedToImages,
	}, notifier, bus, gallery.Options{
		PageSize:       cfg.Gallery.PageSize,
		SwipeThreshold: cfg.Navigation.SwipeThreshold,
		ShareBaseURL:   client.BaseURL(),
	}, f.Log)

	return app, acc, nil
}

// parseMode resolves a --mode flag value, falling back to the configured
// default.
func (f *Flags) parseMode(raw string) (image.Mode, error) {
	if raw == "" {
		return f.config().Mode(), nil
	}
	return image.ParseMode(raw)
}
