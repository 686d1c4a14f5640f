package cmd

import (
	"fmt"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/clario/internal/api"
	"github.com/clario/internal/profile"
)

// ProfileCommand returns the onboarding profile command.
func ProfileCommand() *cli.Command {
	return &cli.Command{
		Name:  "profile",
		Usage: "Manage your onboarding profile",
		Subcommands: []*cli.Command{
			{
				Name:      "set",
				Usage:     "Submit profile answers as key=value pairs",
				ArgsUsage: "KEY=VALUE [KEY=VALUE...]",
				Action:    runProfileSet,
			},
			{
				Name:   "status",
				Usage:  "Show whether onboarding is complete",
				Action: runProfileStatus,
			},
		},
	}
}

func runProfileSet(c *cli.Context) error {
	if c.NArg() < 1 {
		return fmt.Errorf("missing profile answers, expected KEY=VALUE pairs")
	}

	app, err := buildApp(c)
	if err != nil {
		return err
	}
	if err := app.requireAuth(); err != nil {
		return err
	}

	data := make(map[string]interface{}, c.NArg())
	for _, arg := range c.Args().Slice() {
		parts := strings.SplitN(arg, "=", 2)
		if len(parts) != 2 || parts[0] == "" {
			return fmt.Errorf("invalid profile answer %q, expected KEY=VALUE", arg)
		}
		data[parts[0]] = parts[1]
	}

	if err := profile.Submit(c.Context, app.API, app.Session, data); err != nil {
		return fmt.Errorf("%s", api.UserMessage(err))
	}

	fmt.Println("Profile updated.")
	return nil
}

func runProfileStatus(c *cli.Context) error {
	app, err := buildApp(c)
	if err != nil {
		return err
	}
	if err := app.requireAuth(); err != nil {
		return err
	}

	switch app.Router.Destination(c.Context) {
	case profile.DestDashboard:
		fmt.Println("Onboarding complete.")
	default:
		fmt.Println("Onboarding pending. Run 'clario profile set' to finish it.")
	}
	return nil
}
