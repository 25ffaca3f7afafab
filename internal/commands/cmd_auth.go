package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"
	"golang.org/x/term"

	"github.com/colonyops/taskcal/internal/core/auth"
	"github.com/colonyops/taskcal/internal/core/styles"
	"github.com/colonyops/taskcal/pkg/iojson"
)

type AuthCmd struct {
	flags *Flags

	email    string
	password string
	json     bool
}

// NewAuthCmd creates the login, logout and whoami commands.
func NewAuthCmd(flags *Flags) *AuthCmd {
	return &AuthCmd{flags: flags}
}

// Register adds the sign-in commands to the application.
func (cmd *AuthCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands,
		&cli.Command{
			Name:      "login",
			Usage:     "Sign in",
			UsageText: "taskcal login [--email <email> --password <password>]",
			Description: `Signs in with an email and a password of at least 4 characters.
Credentials are only checked for shape and the password is never stored.

Without flags an interactive form is shown.

Examples:
  taskcal login
  TASKCAL_PASSWORD=hunter2 taskcal login --email me@example.com`,
			Flags: []cli.Flag{
				&cli.StringFlag{Name: "email", Aliases: []string{"e"}, Usage: "account email", Sources: cli.EnvVars("TASKCAL_EMAIL"), Destination: &cmd.email},
				&cli.StringFlag{Name: "password", Usage: "account password", Sources: cli.EnvVars("TASKCAL_PASSWORD"), Destination: &cmd.password},
			},
			Action: cmd.runLogin,
		},
		&cli.Command{
			Name:   "logout",
			Usage:  "Sign out",
			Action: cmd.runLogout,
		},
		&cli.Command{
			Name:  "whoami",
			Usage: "Show the signed-in user",
			Flags: []cli.Flag{
				&cli.BoolFlag{Name: "json", Usage: "print as JSON", Destination: &cmd.json},
			},
			Action: cmd.runWhoami,
		},
	)

	return app
}

func (cmd *AuthCmd) runLogin(ctx context.Context, c *cli.Command) error {
	if cmd.email == "" && cmd.password == "" {
		if !term.IsTerminal(int(os.Stdin.Fd())) {
			return fmt.Errorf("no credentials provided (stdin is not a terminal); use --email and --password")
		}
		if err := cmd.promptCredentials(ctx); err != nil {
			return err
		}
	}

	u, err := cmd.flags.Auth.Login(ctx, cmd.email, cmd.password)
	if err != nil {
		return fmt.Errorf("login: %w", err)
	}

	log.Info().Ctx(ctx).Str("email", u.Email).Msg("signed in")
	_, _ = fmt.Fprintf(c.Root().Writer, "signed in as %s\n", u.Name)
	return nil
}

func (cmd *AuthCmd) promptCredentials(ctx context.Context) error {
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Email").
				Value(&cmd.email).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return errors.New("email is required")
					}
					return nil
				}),
			huh.NewInput().
				Title("Password").
				EchoMode(huh.EchoModePassword).
				Value(&cmd.password).
				Validate(func(s string) error {
					if len(s) < auth.MinPasswordLen {
						return fmt.Errorf("at least %d characters", auth.MinPasswordLen)
					}
					return nil
				}),
		),
	).WithTheme(styles.FormTheme())

	if err := form.RunWithContext(ctx); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return cli.Exit("login cancelled", 1)
		}
		return fmt.Errorf("login form: %w", err)
	}
	return nil
}

func (cmd *AuthCmd) runLogout(ctx context.Context, c *cli.Command) error {
	if err := cmd.flags.Auth.Logout(ctx); err != nil {
		return fmt.Errorf("logout: %w", err)
	}

	_, _ = fmt.Fprintln(c.Root().Writer, "signed out")
	return nil
}

func (cmd *AuthCmd) runWhoami(ctx context.Context, c *cli.Command) error {
	u, err := cmd.flags.Auth.Current(ctx)
	if err != nil {
		if errors.Is(err, auth.ErrNotLoggedIn) {
			_, _ = fmt.Fprintln(c.Root().Writer, "not signed in")
			return cli.Exit("", 1)
		}
		return err
	}

	if cmd.json {
		return iojson.WriteLine(c.Root().Writer, u)
	}

	_, _ = fmt.Fprintf(c.Root().Writer, "%s <%s>\n", u.Name, u.Email)
	return nil
}
