package profile

import (
	"context"

	"github.com/clario/internal/api"
	"github.com/clario/internal/auth"
)

// Submit uploads the onboarding questionnaire answers. The payload is nested
// under profile_data, matching the backend's update contract.
func Submit(ctx context.Context, client *api.Client, session *auth.Session, data map[string]interface{}) error {
	if !session.Authenticated() {
		return api.ErrUnauthorized
	}
	if len(data) == 0 {
		return api.NewValidationError("Profile data cannot be empty")
	}

	body := map[string]interface{}{"profile_data": data}
	return client.Post(ctx, "/user/profile", body, nil)
}
