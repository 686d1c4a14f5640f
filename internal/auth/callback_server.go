package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// CallbackResult is delivered once the browser returns from the identity
// provider and the exchange completes.
type CallbackResult struct {
	Destination string
	Err         error
}

// CallbackServer hosts the OAuth redirect-back route on a local loopback
// address so a browser-driven login can complete a CLI session.
type CallbackServer struct {
	handler     *CallbackHandler
	redirectURI string
}

// NewCallbackServer creates a server for the configured redirect URI, e.g.
// "http://localhost:3000/google-callback".
func NewCallbackServer(handler *CallbackHandler, redirectURI string) *CallbackServer {
	return &CallbackServer{handler: handler, redirectURI: redirectURI}
}

// Run serves the redirect-back route until one callback has been processed
// or the context is cancelled, and returns the exchange outcome.
func (s *CallbackServer) Run(ctx context.Context) (*CallbackResult, error) {
	parsed, err := url.Parse(s.redirectURI)
	if err != nil {
		return nil, fmt.Errorf("invalid redirect URI %q: %w", s.redirectURI, err)
	}

	path := parsed.Path
	if path == "" {
		path = "/"
	}

	results := make(chan CallbackResult, 1)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.GET(path, func(c echo.Context) error {
		code := c.QueryParam("code")
		state := c.QueryParam("state")

		dest, handleErr := s.handler.Handle(c.Request().Context(), code, state)
		if errors.Is(handleErr, ErrExchangeAlreadyStarted) {
			// Duplicate redirect (back-navigation or a browser re-request);
			// the first exchange owns the result.
			return c.HTML(http.StatusOK, "<html><body><p>Sign-in already in progress. You can close this tab.</p></body></html>")
		}

		select {
		case results <- CallbackResult{Destination: dest, Err: handleErr}:
		default:
		}

		if handleErr != nil {
			return c.HTML(http.StatusOK, "<html><body><p>Sign-in failed. Return to the terminal for details.</p></body></html>")
		}
		return c.HTML(http.StatusOK, "<html><body><p>Signed in. You can close this tab and return to the terminal.</p></body></html>")
	})

	serverErr := make(chan error, 1)
	go func() {
		if err := e.Start(parsed.Host); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := e.Shutdown(shutdownCtx); err != nil {
			log.Debug().Err(err).Msg("callback server shutdown failed")
		}
	}()

	select {
	case result := <-results:
		return &result, nil
	case err := <-serverErr:
		return nil, fmt.Errorf("callback server failed: %w", err)
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
