package user

import (
	"context"
	"errors"
	"fmt"

	"github.com/duetplan/duetplan/pkg/store"
	"github.com/google/uuid"
)

const registryKey = "users"

var ErrUserNotFound = errors.New("user not found")
var ErrUsernameTaken = errors.New("username is already taken")
var ErrAlreadyPaired = errors.New("user is already paired")

type Service interface {
	CreateUser(ctx context.Context, u User) (User, error)
	GetCurrentUser(ctx context.Context) (User, error)
	GetUserByUid(ctx context.Context, uid string) (User, error)
	GetAllUsers(ctx context.Context) ([]User, error)
	// SetPartner symmetrically pairs the current user with the given user,
	// opening a shared couple space for both.
	SetPartner(ctx context.Context, partnerUid string) (User, error)
}

type UserServiceImpl struct {
	users store.Collection[[]User]
}

func NewUserService(s *store.Store) *UserServiceImpl {
	return &UserServiceImpl{
		users: store.NewCollection(s, registryKey, []User{}),
	}
}

func (s *UserServiceImpl) CreateUser(ctx context.Context, u User) (User, error) {
	u.Uid = uuid.NewString()
	u.PartnerUid = ""

	var conflict error
	_, err := s.users.Update(ctx, func(users []User) []User {
		for _, existing := range users {
			if existing.Username == u.Username {
				conflict = ErrUsernameTaken
				return users
			}
		}
		return append(users, u)
	})
	if err != nil {
		return User{}, fmt.Errorf("failed to store user: %w", err)
	}
	if conflict != nil {
		return User{}, conflict
	}
	return u, nil
}

// GetCurrentUser re-resolves the context user against the registry, so the
// caller sees the stored record rather than the possibly stale request copy.
func (s *UserServiceImpl) GetCurrentUser(ctx context.Context) (User, error) {
	u, err := CurrentUser(ctx)
	if err != nil {
		return User{}, fmt.Errorf("failed to get current user: %w", err)
	}
	return s.GetUserByUid(ctx, u.Uid)
}

func (s *UserServiceImpl) GetUserByUid(ctx context.Context, uid string) (User, error) {
	users, err := s.users.Get(ctx)
	if err != nil {
		return User{}, fmt.Errorf("failed to read users: %w", err)
	}
	for _, u := range users {
		if u.Uid == uid {
			return u, nil
		}
	}
	return User{}, ErrUserNotFound
}

func (s *UserServiceImpl) GetAllUsers(ctx context.Context) ([]User, error) {
	return s.users.Get(ctx)
}

func (s *UserServiceImpl) SetPartner(ctx context.Context, partnerUid string) (User, error) {
	uid, err := CurrentUid(ctx)
	if err != nil {
		return User{}, fmt.Errorf("failed to get current user: %w", err)
	}

	var result User
	var pairErr error
	_, err = s.users.Update(ctx, func(users []User) []User {
		var me, partner *User
		for i := range users {
			switch users[i].Uid {
			case uid:
				me = &users[i]
			case partnerUid:
				partner = &users[i]
			}
		}
		if me == nil || partner == nil {
			pairErr = ErrUserNotFound
			return users
		}
		if (me.PartnerUid != "" && me.PartnerUid != partnerUid) ||
			(partner.PartnerUid != "" && partner.PartnerUid != uid) {
			pairErr = ErrAlreadyPaired
			return users
		}
		me.PartnerUid = partnerUid
		partner.PartnerUid = uid
		result = *me
		return users
	})
	if err != nil {
		return User{}, fmt.Errorf("failed to pair users: %w", err)
	}
	if pairErr != nil {
		return User{}, pairErr
	}
	return result, nil
}
