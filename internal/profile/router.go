// Package profile decides where a freshly authenticated user lands and
// submits the onboarding questionnaire's answers.
package profile

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/clario/internal/api"
	"github.com/clario/internal/auth"
)

// Destination is the post-login landing choice.
type Destination string

const (
	// DestOnboarding sends the user to the welcome questionnaire.
	DestOnboarding Destination = "onboarding"
	// DestDashboard sends the user straight to the chat dashboard.
	DestDashboard Destination = "dashboard"
)

// Router picks the destination after every successful authentication. The
// decision is re-fetched rather than read from the session so a profile
// completed in another client is picked up.
type Router struct {
	client *api.Client
}

// NewRouter creates a router on the shared API client.
func NewRouter(client *api.Client) *Router {
	return &Router{client: client}
}

// Destination routes to the dashboard when the user's profile map is
// non-empty, and to onboarding otherwise. A failed fetch also routes to
// onboarding: the user is never blocked on a transient error.
func (r *Router) Destination(ctx context.Context) Destination {
	var user auth.User
	if err := r.client.Get(ctx, "/auth/me", &user); err != nil {
		log.Debug().Err(err).Msg("profile fetch failed, failing open to onboarding")
		return DestOnboarding
	}

	if user.ProfileComplete() {
		return DestDashboard
	}
	return DestOnboarding
}

// RouteFunc adapts the router for the OAuth callback handler.
func (r *Router) RouteFunc() auth.RouteFunc {
	return func(ctx context.Context) string {
		return string(r.Destination(ctx))
	}
}
