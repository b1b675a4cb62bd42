package couple

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/duetplan/duetplan/internal/utils"
	"github.com/duetplan/duetplan/pkg/store"
	"github.com/duetplan/duetplan/pkg/user"
	"github.com/google/uuid"
)

var ErrNotPaired = errors.New("user has no partner")
var ErrEmptyMessage = errors.New("message text is empty")

type Service interface {
	Post(ctx context.Context, text string) (Message, error)
	// Messages returns the newest messages first, at most limit of them.
	Messages(ctx context.Context, limit int) ([]Message, error)
}

type ServiceImpl struct {
	store *store.Store
	users user.Service
	clock utils.Clock
}

func NewService(s *store.Store, users user.Service, clock utils.Clock) *ServiceImpl {
	return &ServiceImpl{store: s, users: users, clock: clock}
}

// coupleKey is the shared storage key for a pair: the two uids in
// lexicographic order, so both partners resolve the same slot.
func coupleKey(uidA, uidB string) string {
	if uidA > uidB {
		uidA, uidB = uidB, uidA
	}
	return store.Key("couple", uidA+":"+uidB)
}

func (s *ServiceImpl) collection(ctx context.Context) (store.Collection[[]Message], string, error) {
	u, err := s.users.GetCurrentUser(ctx)
	if err != nil {
		return store.Collection[[]Message]{}, "", fmt.Errorf("failed to get current user: %w", err)
	}
	if u.PartnerUid == "" {
		return store.Collection[[]Message]{}, "", ErrNotPaired
	}
	return store.NewCollection(s.store, coupleKey(u.Uid, u.PartnerUid), []Message{}), u.Uid, nil
}

func (s *ServiceImpl) Post(ctx context.Context, text string) (Message, error) {
	if strings.TrimSpace(text) == "" {
		return Message{}, ErrEmptyMessage
	}

	messages, authorUid, err := s.collection(ctx)
	if err != nil {
		return Message{}, err
	}

	msg := Message{
		ID:        uuid.NewString(),
		AuthorUid: authorUid,
		Text:      text,
		CreatedAt: s.clock.Now(),
	}
	if _, err := messages.Update(ctx, func(all []Message) []Message {
		return append(all, msg)
	}); err != nil {
		return Message{}, fmt.Errorf("failed to store message: %w", err)
	}
	return msg, nil
}

func (s *ServiceImpl) Messages(ctx context.Context, limit int) ([]Message, error) {
	messages, _, err := s.collection(ctx)
	if err != nil {
		return nil, err
	}

	all, err := messages.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read messages: %w", err)
	}

	// Stored oldest-first; serve newest-first.
	result := make([]Message, 0, len(all))
	for i := len(all) - 1; i >= 0; i-- {
		result = append(result, all[i])
		if limit > 0 && len(result) == limit {
			break
		}
	}
	return result, nil
}
