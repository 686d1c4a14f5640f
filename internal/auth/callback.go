package auth

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/clario/internal/api"
)

// ErrExchangeAlreadyStarted means the callback handler was invoked again
// after an exchange had begun. Authorization codes are single-use, so the
// duplicate invocation is dropped without touching the network.
var ErrExchangeAlreadyStarted = errors.New("authorization code exchange already started")

// latch states for the one-shot exchange guard.
const (
	latchIdle = iota
	latchInFlight
	latchDone
)

// RouteFunc picks the post-login destination. Wired to the
// profile-completeness router.
type RouteFunc func(ctx context.Context) string

// CallbackHandler performs the authorization-code exchange exactly once per
// instance. The latch is checked-and-set synchronously before the exchange
// starts, so re-entrant invocations can never race past it.
type CallbackHandler struct {
	client  *api.Client
	session *Session
	route   RouteFunc

	mu    sync.Mutex
	latch int
}

// NewCallbackHandler creates a one-shot handler. route may be nil when the
// caller does its own routing.
func NewCallbackHandler(client *api.Client, session *Session, route RouteFunc) *CallbackHandler {
	return &CallbackHandler{client: client, session: session, route: route}
}

// Handle exchanges the authorization code for a token, logs the session in,
// and returns the post-login destination. A missing code fails with
// ErrMissingAuthorizationCode; a second invocation fails with
// ErrExchangeAlreadyStarted. Failed exchanges are not retried.
func (h *CallbackHandler) Handle(ctx context.Context, code, state string) (string, error) {
	h.mu.Lock()
	if h.latch != latchIdle {
		h.mu.Unlock()
		return "", ErrExchangeAlreadyStarted
	}
	h.latch = latchInFlight
	h.mu.Unlock()

	defer func() {
		h.mu.Lock()
		h.latch = latchDone
		h.mu.Unlock()
	}()

	if code == "" {
		return "", api.ErrMissingAuthorizationCode
	}

	log.Debug().Str("state", state).Msg("exchanging authorization code")

	var resp tokenResponse
	if err := h.client.Post(ctx, "/auth/google", map[string]string{"code": code}, &resp); err != nil {
		log.Debug().Err(err).Msg("authorization code exchange failed")
		return "", err
	}

	if err := h.session.Login(ctx, resp.AccessToken); err != nil {
		return "", err
	}

	if h.route == nil {
		return "", nil
	}
	return h.route(ctx), nil
}
