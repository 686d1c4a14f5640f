package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/clario/internal/api"
	"github.com/clario/internal/auth"
	"github.com/clario/internal/profile"
)

// LoginCommand returns the login command with one subcommand per
// credential-acquisition path. All paths end in the same place: a bearer
// token handed to the session.
func LoginCommand() *cli.Command {
	return &cli.Command{
		Name:  "login",
		Usage: "Sign in to Clario",
		Subcommands: []*cli.Command{
			{
				Name:   "google",
				Usage:  "Sign in with Google (opens a browser)",
				Action: runGoogleLogin,
			},
			{
				Name:  "otp",
				Usage: "Sign in with an emailed one-time code",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "email",
						Aliases:  []string{"e"},
						Usage:    "Email address to send the code to",
						Required: true,
					},
				},
				Action: runOTPLogin,
			},
			{
				Name:  "password",
				Usage: "Sign in with email and password",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "email", Aliases: []string{"e"}, Required: true},
					&cli.StringFlag{Name: "password", Aliases: []string{"p"}, Required: true},
				},
				Action: runPasswordLogin,
			},
		},
	}
}

// RegisterCommand returns the account registration command.
func RegisterCommand() *cli.Command {
	return &cli.Command{
		Name:  "register",
		Usage: "Create a Clario account with email and password",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "email", Aliases: []string{"e"}, Required: true},
			&cli.StringFlag{Name: "password", Aliases: []string{"p"}, Required: true},
			&cli.StringFlag{Name: "confirm", Usage: "Password confirmation", Required: true},
			&cli.StringFlag{Name: "name", Usage: "Full name"},
		},
		Action: runRegister,
	}
}

// LogoutCommand returns the logout command.
func LogoutCommand() *cli.Command {
	return &cli.Command{
		Name:  "logout",
		Usage: "Sign out and discard the stored credential",
		Action: func(c *cli.Context) error {
			app, err := buildApp(c)
			if err != nil {
				return err
			}
			if err := app.Session.Logout(); err != nil {
				return fmt.Errorf("failed to clear credential: %w", err)
			}
			fmt.Println("Signed out.")
			return nil
		},
	}
}

// WhoamiCommand returns the whoami command.
func WhoamiCommand() *cli.Command {
	return &cli.Command{
		Name:  "whoami",
		Usage: "Show the current session",
		Action: func(c *cli.Context) error {
			app, err := buildApp(c)
			if err != nil {
				return err
			}

			user := app.Session.CurrentUser()
			if user == nil {
				fmt.Println("Not logged in.")
				return nil
			}

			fmt.Printf("Email:   %s\n", user.Email)
			if user.FullName != "" {
				fmt.Printf("Name:    %s\n", user.FullName)
			} else if cached := app.Store.DisplayName(); cached != "" {
				fmt.Printf("Name:    %s (cached)\n", cached)
			}
			if user.ProfileComplete() {
				fmt.Println("Profile: complete")
			} else {
				fmt.Println("Profile: onboarding pending")
			}
			if expiry := auth.TokenExpiry(app.Session.Token()); !expiry.IsZero() {
				fmt.Printf("Token expires: %s\n", expiry.Format("2006-01-02 15:04:05"))
			}
			return nil
		},
	}
}

func runGoogleLogin(c *cli.Context) error {
	app, err := buildApp(c)
	if err != nil {
		return err
	}

	redirectURI := app.Config.RedirectURI()
	authReq, err := app.Flow.StartGoogleLogin(c.Context, redirectURI)
	if err != nil {
		return fmt.Errorf("%s", api.UserMessage(err))
	}

	fmt.Println("Open this URL in your browser to sign in:")
	fmt.Println()
	fmt.Printf("  %s\n", authReq.URL)
	fmt.Println()
	fmt.Println("Waiting for the browser to return...")

	handler := auth.NewCallbackHandler(app.API, app.Session, app.Router.RouteFunc())
	server := auth.NewCallbackServer(handler, redirectURI)

	result, err := server.Run(c.Context)
	if err != nil {
		return err
	}
	if result.Err != nil {
		return fmt.Errorf("authentication failed: %s", api.UserMessage(result.Err))
	}

	return finishLogin(app, profile.Destination(result.Destination))
}

func runOTPLogin(c *cli.Context) error {
	app, err := buildApp(c)
	if err != nil {
		return err
	}

	email := c.String("email")
	if err := app.Flow.RequestCode(c.Context, email); err != nil {
		return fmt.Errorf("%s", api.UserMessage(err))
	}
	fmt.Printf("Verification code sent to %s.\n", email)

	fmt.Print("Enter the 6-digit code: ")
	reader := bufio.NewReader(os.Stdin)
	code, err := reader.ReadString('\n')
	if err != nil {
		return fmt.Errorf("failed to read code: %w", err)
	}
	code = strings.TrimSpace(code)

	if err := app.Flow.SubmitCode(c.Context, email, code); err != nil {
		return fmt.Errorf("%s", api.UserMessage(err))
	}

	return finishLogin(app, app.Router.Destination(c.Context))
}

func runPasswordLogin(c *cli.Context) error {
	app, err := buildApp(c)
	if err != nil {
		return err
	}

	if err := app.Flow.LoginWithPassword(c.Context, c.String("email"), c.String("password")); err != nil {
		return fmt.Errorf("%s", api.UserMessage(err))
	}

	return finishLogin(app, app.Router.Destination(c.Context))
}

func runRegister(c *cli.Context) error {
	app, err := buildApp(c)
	if err != nil {
		return err
	}

	err = app.Flow.Register(c.Context, c.String("email"), c.String("password"), c.String("confirm"), c.String("name"))
	if err != nil {
		return fmt.Errorf("%s", api.UserMessage(err))
	}

	return finishLogin(app, app.Router.Destination(c.Context))
}

// finishLogin reports the session outcome and where the user would land.
func finishLogin(app *App, dest profile.Destination) error {
	user := app.Session.CurrentUser()
	if user != nil && user.FullName != "" {
		fmt.Printf("Signed in as %s.\n", user.FullName)
	} else if user != nil {
		fmt.Printf("Signed in as %s.\n", user.Email)
	} else {
		fmt.Println("Signed in.")
	}

	if dest == profile.DestOnboarding {
		fmt.Println("Your profile is incomplete. Run 'clario profile set' to finish onboarding.")
	} else {
		fmt.Println("Run 'clario chat' to start a conversation.")
	}
	return nil
}
