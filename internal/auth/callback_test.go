package auth

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/clario/internal/api"
)

func newTestCallback(t *testing.T, backend http.Handler, route RouteFunc) (*CallbackHandler, *Session) {
	t.Helper()

	server := httptest.NewServer(backend)
	t.Cleanup(server.Close)

	store := NewTokenStore(t.TempDir())
	session := NewSession(store)
	client := api.NewClient(server.URL, session.Token)
	session.SetClient(client)
	return NewCallbackHandler(client, session, route), session
}

func exchangeBackend(t *testing.T, exchanges *int32) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/auth/google":
			atomic.AddInt32(exchanges, 1)
			w.Header().Set("Content-Type", "application/json")
			io.WriteString(w, `{"access_token": "goog-tok"}`)
		case "/api/auth/me":
			w.Header().Set("Content-Type", "application/json")
			io.WriteString(w, `{"id": "u1", "email": "a@b.com", "user_profile": {"name": "A"}}`)
		default:
			t.Fatalf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
	})
}

func TestCallbackExchangesOnce(t *testing.T) {
	var exchanges int32
	handler, session := newTestCallback(t, exchangeBackend(t, &exchanges), func(ctx context.Context) string {
		return "dashboard"
	})

	dest, err := handler.Handle(context.Background(), "code-1", "state-1")
	require.NoError(t, err)
	require.Equal(t, "dashboard", dest)
	require.Equal(t, StateAuthenticated, session.State())
	require.Equal(t, "goog-tok", session.Token())
	require.Equal(t, int32(1), atomic.LoadInt32(&exchanges))

	// A repeated redirect with the same code must not hit the network again.
	_, err = handler.Handle(context.Background(), "code-1", "state-1")
	require.ErrorIs(t, err, ErrExchangeAlreadyStarted)
	require.Equal(t, int32(1), atomic.LoadInt32(&exchanges))
}

func TestCallbackConcurrentInvocations(t *testing.T) {
	var exchanges int32
	handler, _ := newTestCallback(t, exchangeBackend(t, &exchanges), nil)

	var wg sync.WaitGroup
	var successes, duplicates int32
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := handler.Handle(context.Background(), "code-1", "state-1")
			switch {
			case err == nil:
				atomic.AddInt32(&successes, 1)
			case err == ErrExchangeAlreadyStarted:
				atomic.AddInt32(&duplicates, 1)
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	require.Equal(t, int32(1), atomic.LoadInt32(&exchanges), "exactly one exchange must reach the backend")
	require.Equal(t, int32(1), successes)
	require.Equal(t, int32(1), duplicates)
}

func TestCallbackMissingCode(t *testing.T) {
	var exchanges int32
	handler, session := newTestCallback(t, exchangeBackend(t, &exchanges), nil)

	_, err := handler.Handle(context.Background(), "", "state-1")
	require.ErrorIs(t, err, api.ErrMissingAuthorizationCode)
	require.Zero(t, atomic.LoadInt32(&exchanges))
	require.Equal(t, StateUnauthenticated, session.State())
}

func TestCallbackExchangeFailureNotRetried(t *testing.T) {
	var exchanges int32
	backend := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&exchanges, 1)
		w.WriteHeader(http.StatusBadRequest)
		io.WriteString(w, `{"detail": "authorization code already redeemed"}`)
	})

	handler, session := newTestCallback(t, backend, nil)

	_, err := handler.Handle(context.Background(), "used-code", "")
	var backendErr *api.BackendError
	require.ErrorAs(t, err, &backendErr)
	require.Equal(t, "authorization code already redeemed", backendErr.Detail)
	require.Equal(t, int32(1), atomic.LoadInt32(&exchanges))
	require.Equal(t, StateUnauthenticated, session.State())
}
