package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"github.com/clario/cmd"
)

const (
	version = "0.1.0"
)

func main() {
	// Optional .env for local development; absence is fine.
	_ = godotenv.Load()

	app := &cli.App{
		Name:    "clario",
		Usage:   "Chat companion client for the Clario backend",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Load configuration from `FILE`",
			},
		},
		Commands: []*cli.Command{
			cmd.LoginCommand(),
			cmd.RegisterCommand(),
			cmd.LogoutCommand(),
			cmd.WhoamiCommand(),
			cmd.ChatCommand(),
			cmd.ConversationsCommand(),
			cmd.ProfileCommand(),
			cmd.ConfigCommand(),
		},
	}

	err := app.Run(os.Args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}
