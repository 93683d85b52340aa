package commands

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/huh"
	"github.com/colonyops/lightbox/internal/api"
	"github.com/colonyops/lightbox/internal/core/styles"
	"github.com/colonyops/lightbox/internal/core/validate"
	"github.com/colonyops/lightbox/pkg/iojson"
	"github.com/urfave/cli/v3"
	"golang.org/x/term"
)

type LoginCmd struct {
	flags *Flags

	// flags
	jsonOutput bool
	email      string
}

// NewLoginCmd creates the login and register commands.
func NewLoginCmd(flags *Flags) *LoginCmd {
	return &LoginCmd{flags: flags}
}

// Register adds the login and register commands to the application.
func (cmd *LoginCmd) Register(app *cli.Command) *cli.Command {
	jsonFlag := func() cli.Flag {
		return &cli.BoolFlag{
			Name:        "json",
			Usage:       "print the account as JSON",
			Destination: &cmd.jsonOutput,
		}
	}

	app.Commands = append(app.Commands,
		&cli.Command{
			Name:      "login",
			Usage:     "Sign in and print a session token",
			UsageText: "lightbox login [--user name --password pw] [--json]",
			Description: `Signs in with --user and --password (prompting for missing values when
stdin is a terminal) and prints the session token.

Export the token as LIGHTBOX_TOKEN, or put it in a .env file, so later
commands skip the password.`,
			Flags:  []cli.Flag{jsonFlag()},
			Action: cmd.runLogin,
		},
		&cli.Command{
			Name:      "register",
			Usage:     "Create an account",
			UsageText: "lightbox register --user name --password pw [--email addr]",
			Flags: []cli.Flag{
				jsonFlag(),
				&cli.StringFlag{
					Name:        "email",
					Usage:       "account email",
					Destination: &cmd.email,
				},
			},
			Action: cmd.runRegister,
		},
	)

	return app
}

func (cmd *LoginCmd) runLogin(ctx context.Context, c *cli.Command) error {
	_, acc, err := cmd.flags.connect(ctx)
	if err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return nil
		}
		return fmt.Errorf("login: %w", err)
	}
	return cmd.print(c, acc, "Signed in")
}

func (cmd *LoginCmd) runRegister(ctx context.Context, c *cli.Command) error {
	user, password := cmd.flags.User, cmd.flags.Password
	if user == "" || password == "" {
		if !term.IsTerminal(int(os.Stdin.Fd())) {
			return ErrNoCredentials
		}
		if err := cmd.registerForm(&user, &password); err != nil {
			if errors.Is(err, huh.ErrUserAborted) {
				return nil
			}
			return fmt.Errorf("form: %w", err)
		}
	}

	if err := validate.UserName(user); err != nil {
		return err
	}

	acc, err := cmd.flags.client().Register(ctx, api.Registration{
		UserName:  user,
		UserEmail: cmd.email,
		Password:  password,
	})
	if err != nil {
		return err
	}
	return cmd.print(c, acc, "Account created")
}

func (cmd *LoginCmd) registerForm(user, password *string) error {
	var confirm string
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("User name").
				Validate(validate.UserName).
				Value(user),
			huh.NewInput().
				Title("Email").
				Value(&cmd.email),
			huh.NewInput().
				Title("Password").
				EchoMode(huh.EchoModePassword).
				Validate(func(s string) error {
					if s == "" {
						return fmt.Errorf("password is required")
					}
					return nil
				}).
				Value(password),
			huh.NewInput().
				Title("Confirm password").
				EchoMode(huh.EchoModePassword).
				Validate(func(s string) error {
					if s != *password {
						return fmt.Errorf("passwords do not match")
					}
					return nil
				}).
				Value(&confirm),
		),
	).WithTheme(styles.FormTheme()).Run()
}

func (cmd *LoginCmd) print(c *cli.Command, acc api.Account, verb string) error {
	out := stdout(c)
	if cmd.jsonOutput {
		return iojson.WriteWith(out, stderr(c).w, acc)
	}

	p := stderr(c)
	p.Successf("%s as %s (%d owned, %d shared with you)", verb, acc.UserName, len(acc.UserOwnedImages), len(acc.UserOpenedToImages))
	_, _ = fmt.Fprintf(out, "export LIGHTBOX_TOKEN=%s\n", acc.UserToken)
	return nil
}
