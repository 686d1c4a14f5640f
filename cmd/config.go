package cmd

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/clario/internal/config"
)

// ConfigCommand returns the config command
func ConfigCommand() *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "Manage configuration",
		Subcommands: []*cli.Command{
			{
				Name:  "init",
				Usage: "Create a sample configuration file",
				Action: func(c *cli.Context) error {
					path := c.String("config")
					if path == "" {
						path = "clario.toml"
					}
					if err := config.InitConfig(path); err != nil {
						return err
					}
					fmt.Printf("Created configuration file at %s\n", path)
					return nil
				},
			},
			{
				Name:  "validate",
				Usage: "Validate the configuration and show resolved endpoints",
				Action: func(c *cli.Context) error {
					cfg, err := config.LoadConfig(c.String("config"))
					if err != nil {
						return fmt.Errorf("failed to load config: %w", err)
					}
					if err := config.Validate(cfg); err != nil {
						return fmt.Errorf("invalid configuration: %w", err)
					}

					fmt.Println("Configuration is valid.")
					fmt.Printf("Environment:  %s\n", cfg.General.Environment)
					fmt.Printf("Backend:      %s\n", cfg.BackendOrigin())
					fmt.Printf("Redirect URI: %s\n", cfg.RedirectURI())
					return nil
				},
			},
			{
				Name:  "check-env",
				Usage: "Check environment variable overrides",
				Action: func(c *cli.Context) error {
					PrintConfigCheck(CheckEnvOverrides())
					return nil
				},
			},
		},
	}
}
