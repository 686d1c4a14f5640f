package auth

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/clario/internal/api"
)

// State is the credential state of the session.
type State string

const (
	// StateUnauthenticated means no token is current.
	StateUnauthenticated State = "unauthenticated"
	// StateResolving means a token is present but the owning user has not
	// been fetched yet.
	StateResolving State = "resolving"
	// StateAuthenticated means the token resolved to a user. This is the only
	// state from which protected operations may proceed.
	StateAuthenticated State = "authenticated"
)

// User is the identity a token resolves to via GET /auth/me.
type User struct {
	ID          string                 `json:"id"`
	Email       string                 `json:"email"`
	FullName    string                 `json:"full_name"`
	UserProfile map[string]interface{} `json:"user_profile"`
}

// ProfileComplete reports whether the user has filled in the onboarding
// questionnaire.
func (u *User) ProfileComplete() bool {
	return u != nil && len(u.UserProfile) > 0
}

// Session owns the in-memory identity derived from the token store. All auth
// flows converge on Login; everything that needs the current user or token
// reads it from here.
type Session struct {
	store  *TokenStore
	client *api.Client

	mu    sync.Mutex
	state State
	token string
	user  *User
}

// NewSession creates a session backed by the given store. The API client is
// constructed by the caller with Session.Token as its token source.
func NewSession(store *TokenStore) *Session {
	return &Session{
		store: store,
		state: StateUnauthenticated,
	}
}

// SetClient injects the API client used for whoami resolution. Split from
// NewSession because the client's token source is the session itself.
func (s *Session) SetClient(client *api.Client) {
	s.client = client
}

// Resume runs the start transition: a stored token moves the session to
// Resolving and triggers whoami; no token means Unauthenticated.
func (s *Session) Resume(ctx context.Context) {
	token, ok := s.store.Read()
	if !ok {
		s.mu.Lock()
		s.state = StateUnauthenticated
		s.mu.Unlock()
		return
	}

	s.mu.Lock()
	s.state = StateResolving
	s.token = token
	s.mu.Unlock()

	s.resolve(ctx, token)
}

// Login persists the token and resolves it to a user. A login while a prior
// resolution is in flight supersedes it: the stale result is discarded when
// it arrives.
func (s *Session) Login(ctx context.Context, token string) error {
	if err := s.store.Save(token); err != nil {
		return err
	}

	s.mu.Lock()
	s.state = StateResolving
	s.token = token
	s.user = nil
	s.mu.Unlock()

	s.resolve(ctx, token)
	return nil
}

// Logout clears the stored token and the in-memory user. Logging out while
// already unauthenticated leaves the state unchanged.
func (s *Session) Logout() error {
	if err := s.store.Clear(); err != nil {
		return err
	}

	s.mu.Lock()
	s.state = StateUnauthenticated
	s.token = ""
	s.user = nil
	s.mu.Unlock()
	return nil
}

// resolve fetches the identity for the given token. The result is applied
// only if that token is still current (last-write-wins). Any failure demotes
// the session to Unauthenticated silently; the caller sees the degraded
// state, never an error.
func (s *Session) resolve(ctx context.Context, token string) {
	var user User
	err := s.client.Get(ctx, "/auth/me", &user)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.token != token {
		log.Debug().Msg("discarding whoami result for superseded token")
		return
	}

	if err != nil {
		log.Debug().Err(err).Msg("whoami resolution failed, clearing token")
		if clearErr := s.store.Clear(); clearErr != nil {
			log.Debug().Err(clearErr).Msg("failed to clear rejected token")
		}
		s.state = StateUnauthenticated
		s.token = ""
		s.user = nil
		return
	}

	s.state = StateAuthenticated
	s.user = &user
	s.store.CacheDisplayName(user.FullName)
}

// State returns the current credential state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Token returns the current bearer token, or empty when none is current.
// This is the token source for the API client.
func (s *Session) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

// CurrentUser returns the resolved user, or nil outside StateAuthenticated.
func (s *Session) CurrentUser() *User {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateAuthenticated {
		return nil
	}
	return s.user
}

// Authenticated reports whether protected operations may proceed.
func (s *Session) Authenticated() bool {
	return s.State() == StateAuthenticated
}
