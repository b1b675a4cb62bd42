package user

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/duetplan/duetplan/pkg/store"
)

func setupService(t *testing.T) *UserServiceImpl {
	t.Helper()
	return NewUserService(store.NewStore(store.NewBackendStub()))
}

func createUser(t *testing.T, service *UserServiceImpl, username string) User {
	t.Helper()
	u, err := service.CreateUser(context.Background(), User{Username: username, DisplayName: username})
	require.NoError(t, err)
	return u
}

func TestCreateUserAssignsUid(t *testing.T) {
	service := setupService(t)

	created := createUser(t, service, "alice")

	assert.NotEmpty(t, created.Uid)
	assert.Equal(t, "alice", created.Username)
	assert.Empty(t, created.PartnerUid)

	found, err := service.GetUserByUid(context.Background(), created.Uid)
	require.NoError(t, err)
	assert.Equal(t, created, found)
}

func TestCreateUserRejectsTakenUsername(t *testing.T) {
	service := setupService(t)
	createUser(t, service, "alice")

	_, err := service.CreateUser(context.Background(), User{Username: "alice"})

	assert.ErrorIs(t, err, ErrUsernameTaken)
}

func TestGetCurrentUserRequiresContextUser(t *testing.T) {
	service := setupService(t)

	_, err := service.GetCurrentUser(context.Background())

	assert.ErrorIs(t, err, ErrNoUser)
}

func TestGetCurrentUser(t *testing.T) {
	service := setupService(t)
	alice := createUser(t, service, "alice")

	current, err := service.GetCurrentUser(WithUser(context.Background(), alice))

	require.NoError(t, err)
	assert.Equal(t, alice, current)
}

func TestGetCurrentUserReResolvesStaleContextUser(t *testing.T) {
	service := setupService(t)
	alice := createUser(t, service, "alice")
	bob := createUser(t, service, "bob")

	// The context still carries the unpaired copy of alice.
	staleCtx := WithUser(context.Background(), alice)
	_, err := service.SetPartner(staleCtx, bob.Uid)
	require.NoError(t, err)

	current, err := service.GetCurrentUser(staleCtx)
	require.NoError(t, err)
	assert.Equal(t, bob.Uid, current.PartnerUid)
}

func TestSetPartnerPairsBothUsers(t *testing.T) {
	service := setupService(t)
	alice := createUser(t, service, "alice")
	bob := createUser(t, service, "bob")

	updated, err := service.SetPartner(WithUser(context.Background(), alice), bob.Uid)

	require.NoError(t, err)
	assert.Equal(t, bob.Uid, updated.PartnerUid)

	pairedBob, err := service.GetUserByUid(context.Background(), bob.Uid)
	require.NoError(t, err)
	assert.Equal(t, alice.Uid, pairedBob.PartnerUid)
}

func TestSetPartnerIsIdempotentForSamePair(t *testing.T) {
	service := setupService(t)
	alice := createUser(t, service, "alice")
	bob := createUser(t, service, "bob")

	_, err := service.SetPartner(WithUser(context.Background(), alice), bob.Uid)
	require.NoError(t, err)

	updated, err := service.SetPartner(WithUser(context.Background(), alice), bob.Uid)
	require.NoError(t, err)
	assert.Equal(t, bob.Uid, updated.PartnerUid)
}

func TestSetPartnerRejectsAlreadyPaired(t *testing.T) {
	service := setupService(t)
	alice := createUser(t, service, "alice")
	bob := createUser(t, service, "bob")
	carol := createUser(t, service, "carol")

	_, err := service.SetPartner(WithUser(context.Background(), alice), bob.Uid)
	require.NoError(t, err)

	_, err = service.SetPartner(WithUser(context.Background(), carol), bob.Uid)
	assert.ErrorIs(t, err, ErrAlreadyPaired)
}

func TestSetPartnerUnknownUid(t *testing.T) {
	service := setupService(t)
	alice := createUser(t, service, "alice")

	_, err := service.SetPartner(WithUser(context.Background(), alice), "nope")

	assert.ErrorIs(t, err, ErrUserNotFound)
}
