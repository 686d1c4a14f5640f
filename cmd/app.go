package cmd

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/clario/internal/api"
	"github.com/clario/internal/auth"
	"github.com/clario/internal/chat"
	"github.com/clario/internal/config"
	"github.com/clario/internal/logging"
	"github.com/clario/internal/profile"
)

// App carries the wired-up client stack shared by every command. It is built
// once per invocation at command entry, never ambiently.
type App struct {
	Config  *config.Config
	Store   *auth.TokenStore
	Session *auth.Session
	API     *api.Client
	Flow    *auth.Flow
	Router  *profile.Router
	Chat    *chat.Client
}

// buildApp loads configuration, wires the session against the token store,
// and resumes any persisted credential.
func buildApp(c *cli.Context) (*App, error) {
	cfg, err := config.LoadConfig(c.String("config"))
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if err := config.Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	logging.Setup(cfg.General.LogLevel)

	storeDir := cfg.Storage.Dir
	if storeDir == "" {
		storeDir = auth.DefaultStoreDir()
	}

	store := auth.NewTokenStore(storeDir)
	session := auth.NewSession(store)
	client := api.NewClient(cfg.BackendOrigin(), session.Token)
	session.SetClient(client)
	session.Resume(c.Context)

	return &App{
		Config:  cfg,
		Store:   store,
		Session: session,
		API:     client,
		Flow:    auth.NewFlow(client, session),
		Router:  profile.NewRouter(client),
		Chat:    chat.NewClient(client, session),
	}, nil
}

// requireAuth fails the command early when no authenticated session exists.
func (a *App) requireAuth() error {
	if !a.Session.Authenticated() {
		return fmt.Errorf("not logged in. Run 'clario login' first")
	}
	return nil
}
