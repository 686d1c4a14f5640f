package auth

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/clario/internal/api"
)

func newTestFlow(t *testing.T, backend http.Handler) (*Flow, *Session) {
	t.Helper()

	server := httptest.NewServer(backend)
	t.Cleanup(server.Close)

	store := NewTokenStore(t.TempDir())
	session := NewSession(store)
	client := api.NewClient(server.URL, session.Token)
	session.SetClient(client)
	return NewFlow(client, session), session
}

func TestRequestCodeRejectsBlankEmail(t *testing.T) {
	var hits int32
	flow, _ := newTestFlow(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
	}))

	for _, email := range []string{"", "   ", "\t\n"} {
		err := flow.RequestCode(context.Background(), email)
		var validationErr *api.ValidationError
		require.ErrorAs(t, err, &validationErr)
	}
	require.Zero(t, atomic.LoadInt32(&hits), "validation failures must not reach the network")
}

func TestSubmitCodeGatesOnSixDigits(t *testing.T) {
	var hits int32
	flow, _ := newTestFlow(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
	}))

	for _, code := range []string{"", "12345", "1234567", "12345a", "abcdef", "12 456"} {
		err := flow.SubmitCode(context.Background(), "a@b.com", code)
		var validationErr *api.ValidationError
		require.ErrorAs(t, err, &validationErr, "code %q should fail validation", code)
	}
	require.Zero(t, atomic.LoadInt32(&hits), "malformed codes must not reach the network")
}

func TestOTPLoginFlow(t *testing.T) {
	backend := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method + " " + r.URL.Path {
		case "POST /api/auth/send-otp":
			var body map[string]string
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			require.Equal(t, "a@b.com", body["email"])
			w.WriteHeader(http.StatusOK)
			io.WriteString(w, `{}`)
		case "POST /api/auth/verify-otp":
			var body map[string]string
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			require.Equal(t, "a@b.com", body["email"])
			require.Equal(t, "123456", body["code"])
			w.Header().Set("Content-Type", "application/json")
			io.WriteString(w, `{"access_token": "tok1"}`)
		case "GET /api/auth/me":
			w.Header().Set("Content-Type", "application/json")
			io.WriteString(w, `{"id": "u1", "email": "a@b.com", "user_profile": {}}`)
		default:
			t.Fatalf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
	})

	flow, session := newTestFlow(t, backend)

	require.NoError(t, flow.RequestCode(context.Background(), "a@b.com"))
	require.NoError(t, flow.SubmitCode(context.Background(), "a@b.com", "123456"))

	require.Equal(t, StateAuthenticated, session.State())
	require.Equal(t, "tok1", session.Token())
}

func TestSubmitCodeBackendRejection(t *testing.T) {
	flow, session := newTestFlow(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		io.WriteString(w, `{"detail": "Invalid or expired verification code"}`)
	}))

	err := flow.SubmitCode(context.Background(), "a@b.com", "000000")

	var backendErr *api.BackendError
	require.ErrorAs(t, err, &backendErr)
	require.Equal(t, "Invalid or expired verification code", backendErr.Detail)

	// A rejected code leaves the session untouched.
	require.Equal(t, StateUnauthenticated, session.State())
}

func TestStartGoogleLoginFlatShape(t *testing.T) {
	flow, _ := newTestFlow(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/auth/google/url", r.URL.Path)
		require.Equal(t, "http://localhost:3000/google-callback", r.URL.Query().Get("redirect_uri"))
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"url": "https://accounts.google.com/o/oauth2/auth?state=s1", "state": "s1"}`)
	}))

	req, err := flow.StartGoogleLogin(context.Background(), "http://localhost:3000/google-callback")
	require.NoError(t, err)
	require.Equal(t, "https://accounts.google.com/o/oauth2/auth?state=s1", req.URL)
	require.Equal(t, "s1", req.State)
}

func TestStartGoogleLoginNestedShape(t *testing.T) {
	flow, _ := newTestFlow(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"url": {"url": "https://accounts.google.com/o/oauth2/auth?state=s2", "state": "s2", "nonce": "n1"}}`)
	}))

	req, err := flow.StartGoogleLogin(context.Background(), "http://localhost:3000/google-callback")
	require.NoError(t, err)
	require.Equal(t, "https://accounts.google.com/o/oauth2/auth?state=s2", req.URL)
	require.Equal(t, "s2", req.State)
	require.Equal(t, "n1", req.Nonce)
}

func TestStartGoogleLoginRejectsEmptyURL(t *testing.T) {
	flow, _ := newTestFlow(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"url": "", "state": "s3"}`)
	}))

	_, err := flow.StartGoogleLogin(context.Background(), "http://localhost:3000/google-callback")
	require.Error(t, err)
}

func TestRegisterPasswordMismatchIsClientSide(t *testing.T) {
	var hits int32
	flow, _ := newTestFlow(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
	}))

	err := flow.Register(context.Background(), "a@b.com", "pw1", "pw2", "Test User")
	var validationErr *api.ValidationError
	require.ErrorAs(t, err, &validationErr)
	require.Zero(t, atomic.LoadInt32(&hits))
}

func TestLoginWithPassword(t *testing.T) {
	backend := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/auth/login":
			w.Header().Set("Content-Type", "application/json")
			io.WriteString(w, `{"access_token": "pw-tok"}`)
		case "/api/auth/me":
			w.Header().Set("Content-Type", "application/json")
			io.WriteString(w, `{"id": "u1", "email": "a@b.com", "user_profile": {}}`)
		default:
			t.Fatalf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
	})

	flow, session := newTestFlow(t, backend)

	require.NoError(t, flow.LoginWithPassword(context.Background(), "a@b.com", "hunter2"))
	require.Equal(t, "pw-tok", session.Token())
	require.Equal(t, StateAuthenticated, session.State())
}
