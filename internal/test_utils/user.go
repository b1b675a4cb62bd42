package test_utils

import (
	"context"

	"github.com/duetplan/duetplan/pkg/user"
)

// TestUser returns a context carrying a fixed test user, matching what the
// X-User-Id middleware produces in production.
func TestUser(ctx context.Context) context.Context {
	return user.WithUser(ctx, user.User{
		Uid:         "test-user",
		Username:    "test_user",
		DisplayName: "Test User",
		Timezone:    "Europe/Warsaw",
	})
}
