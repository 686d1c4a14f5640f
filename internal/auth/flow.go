package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/clario/internal/api"
)

// otpLength is fixed by the backend's emailed verification codes.
const otpLength = 6

// Flow orchestrates the credential-acquisition paths (Google OAuth, email+OTP,
// email+password) and funnels every resulting token into Session.Login.
type Flow struct {
	client  *api.Client
	session *Session
}

// NewFlow creates a flow controller bound to the shared client and session.
func NewFlow(client *api.Client, session *Session) *Flow {
	return &Flow{client: client, session: session}
}

// tokenResponse is the backend's shape for every token-producing exchange.
type tokenResponse struct {
	AccessToken string `json:"access_token"`
}

// RequestCode asks the backend to email a one-time code. No token is
// produced; the caller follows up with SubmitCode.
func (f *Flow) RequestCode(ctx context.Context, email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return api.NewValidationError("Please enter a valid email address")
	}

	body := map[string]string{"email": email}
	if err := f.client.Post(ctx, "/auth/send-otp", body, nil); err != nil {
		log.Debug().Err(err).Str("email", email).Msg("send-otp request failed")
		return err
	}
	return nil
}

// SubmitCode exchanges an emailed code for a token and logs the session in.
// The code must be exactly six digits; anything else fails client-side
// before any network call.
func (f *Flow) SubmitCode(ctx context.Context, email, code string) error {
	if !validOTP(code) {
		return api.NewValidationError("Please enter a 6-digit code")
	}

	body := map[string]string{"email": strings.TrimSpace(email), "code": code}
	var resp tokenResponse
	if err := f.client.Post(ctx, "/auth/verify-otp", body, &resp); err != nil {
		log.Debug().Err(err).Msg("verify-otp request failed")
		return err
	}

	return f.session.Login(ctx, resp.AccessToken)
}

func validOTP(code string) bool {
	if len(code) != otpLength {
		return false
	}
	for _, r := range code {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// AuthorizationRequest is the canonical shape of the Google authorization
// redirect: a provider URL to send the browser to plus the anti-replay state.
type AuthorizationRequest struct {
	URL   string
	State string
	Nonce string
}

// authURLResponse accepts both shapes the backend has shipped for
// GET /auth/google/url: {"url": "...", "state": "..."} and the nested
// {"url": {"url": "...", "state": "...", "nonce": "..."}}. Which revision is
// authoritative is unconfirmed, so both stay supported.
type authURLResponse struct {
	URL   json.RawMessage `json:"url"`
	State string          `json:"state"`
}

func (r *authURLResponse) normalize() (*AuthorizationRequest, error) {
	var flat string
	if err := json.Unmarshal(r.URL, &flat); err == nil {
		if flat == "" {
			return nil, fmt.Errorf("no authorization URL returned from backend")
		}
		return &AuthorizationRequest{URL: flat, State: r.State}, nil
	}

	var nested struct {
		URL   string `json:"url"`
		State string `json:"state"`
		Nonce string `json:"nonce"`
	}
	if err := json.Unmarshal(r.URL, &nested); err != nil || nested.URL == "" {
		return nil, fmt.Errorf("invalid response structure from backend")
	}
	return &AuthorizationRequest{URL: nested.URL, State: nested.State, Nonce: nested.Nonce}, nil
}

// StartGoogleLogin fetches the provider authorization URL for the given
// redirect URI. No token is produced here; completion happens out-of-band
// through the callback handler once the browser returns.
func (f *Flow) StartGoogleLogin(ctx context.Context, redirectURI string) (*AuthorizationRequest, error) {
	path := "/auth/google/url?redirect_uri=" + url.QueryEscape(redirectURI)
	var resp authURLResponse
	if err := f.client.Get(ctx, path, &resp); err != nil {
		log.Debug().Err(err).Msg("google auth URL request failed")
		return nil, err
	}

	req, err := resp.normalize()
	if err != nil {
		return nil, err
	}

	log.Debug().Str("state", req.State).Msg("received google authorization URL")
	return req, nil
}

// LoginWithPassword is the legacy email+password exchange, kept as an
// alternate path alongside OTP.
func (f *Flow) LoginWithPassword(ctx context.Context, email, password string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return api.NewValidationError("Please enter a valid email address")
	}
	if password == "" {
		return api.NewValidationError("Please enter your password")
	}

	body := map[string]string{"email": email, "password": password}
	var resp tokenResponse
	if err := f.client.Post(ctx, "/auth/login", body, &resp); err != nil {
		log.Debug().Err(err).Msg("password login request failed")
		return err
	}

	return f.session.Login(ctx, resp.AccessToken)
}

// Register creates an account with email+password. A password confirmation
// mismatch fails client-side before any network call.
func (f *Flow) Register(ctx context.Context, email, password, confirm, fullName string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return api.NewValidationError("Please enter a valid email address")
	}
	if password == "" {
		return api.NewValidationError("Please enter a password")
	}
	if password != confirm {
		return api.NewValidationError("Passwords do not match")
	}

	body := map[string]string{
		"email":     email,
		"password":  password,
		"full_name": fullName,
	}
	var resp tokenResponse
	if err := f.client.Post(ctx, "/auth/register", body, &resp); err != nil {
		log.Debug().Err(err).Msg("register request failed")
		return err
	}

	return f.session.Login(ctx, resp.AccessToken)
}
