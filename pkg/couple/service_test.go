package couple

import (
	"context"
	"testing"
	"time"

	"github.com/duetplan/duetplan/internal/utils"
	"github.com/duetplan/duetplan/pkg/store"
	"github.com/duetplan/duetplan/pkg/user"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupCoupleTest(t *testing.T) (*ServiceImpl, context.Context, context.Context) {
	t.Helper()
	s := store.NewStore(store.NewBackendStub())
	users := user.NewUserService(s)
	clock := &utils.MockClock{FixedNow: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}
	service := NewService(s, users, clock)

	alice, err := users.CreateUser(context.Background(), user.User{Username: "alice", DisplayName: "Alice"})
	require.NoError(t, err)
	bob, err := users.CreateUser(context.Background(), user.User{Username: "bob", DisplayName: "Bob"})
	require.NoError(t, err)

	aliceCtx := user.WithUser(context.Background(), alice)
	_, err = users.SetPartner(aliceCtx, bob.Uid)
	require.NoError(t, err)

	// Re-resolve both so the contexts carry the paired records.
	alice, err = users.GetUserByUid(context.Background(), alice.Uid)
	require.NoError(t, err)
	bob, err = users.GetUserByUid(context.Background(), bob.Uid)
	require.NoError(t, err)

	return service, user.WithUser(context.Background(), alice), user.WithUser(context.Background(), bob)
}

func TestCouple_BothPartnersSeeTheSameBoard(t *testing.T) {
	service, aliceCtx, bobCtx := setupCoupleTest(t)

	_, err := service.Post(aliceCtx, "movie night on friday?")
	require.NoError(t, err)
	_, err = service.Post(bobCtx, "yes! I'll book tickets")
	require.NoError(t, err)

	got, err := service.Messages(aliceCtx, 10)
	require.NoError(t, err)
	require.Len(t, got, 2)
	// Newest first.
	assert.Equal(t, "yes! I'll book tickets", got[0].Text)
	assert.Equal(t, "movie night on friday?", got[1].Text)

	gotBob, err := service.Messages(bobCtx, 10)
	require.NoError(t, err)
	assert.Equal(t, got, gotBob)
}

func TestCouple_MessagesRespectsLimit(t *testing.T) {
	service, aliceCtx, _ := setupCoupleTest(t)

	for _, text := range []string{"one", "two", "three"} {
		_, err := service.Post(aliceCtx, text)
		require.NoError(t, err)
	}

	got, err := service.Messages(aliceCtx, 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "three", got[0].Text)
	assert.Equal(t, "two", got[1].Text)
}

func TestCouple_UnpairedUserCannotPost(t *testing.T) {
	s := store.NewStore(store.NewBackendStub())
	users := user.NewUserService(s)
	service := NewService(s, users, &utils.MockClock{})

	solo, err := users.CreateUser(context.Background(), user.User{Username: "solo"})
	require.NoError(t, err)

	_, err = service.Post(user.WithUser(context.Background(), solo), "hello?")
	assert.ErrorIs(t, err, ErrNotPaired)
}

func TestCouple_EmptyMessageRejected(t *testing.T) {
	service, aliceCtx, _ := setupCoupleTest(t)

	_, err := service.Post(aliceCtx, "   ")
	assert.ErrorIs(t, err, ErrEmptyMessage)
}
