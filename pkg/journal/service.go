package journal

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/duetplan/duetplan/internal/utils"
	"github.com/duetplan/duetplan/pkg/store"
	"github.com/duetplan/duetplan/pkg/user"
	"github.com/google/uuid"
)

var ErrEntryNotFound = errors.New("journal entry not found")
var ErrEntryInvalid = errors.New("journal entry is invalid")

type Service interface {
	Add(ctx context.Context, e Entry) (Entry, error)
	Update(ctx context.Context, e Entry) (Entry, error)
	Delete(ctx context.Context, id string) error
	// ListRange returns entries whose day falls in [from, to], newest first.
	ListRange(ctx context.Context, from, to time.Time) ([]Entry, error)
}

type ServiceImpl struct {
	store *store.Store
	clock utils.Clock
}

func NewService(s *store.Store, clock utils.Clock) *ServiceImpl {
	return &ServiceImpl{store: s, clock: clock}
}

func collectionFor(s *store.Store, userUid string) store.Collection[[]Entry] {
	return store.NewCollection(s, store.Key("journal", userUid), []Entry{})
}

func validate(e Entry) error {
	if e.Title == "" {
		return fmt.Errorf("%w: title is required", ErrEntryInvalid)
	}
	if e.Date.IsZero() {
		return fmt.Errorf("%w: date is required", ErrEntryInvalid)
	}
	return nil
}

func (s *ServiceImpl) Add(ctx context.Context, e Entry) (Entry, error) {
	userUid, err := user.CurrentUid(ctx)
	if err != nil {
		return Entry{}, fmt.Errorf("failed to get current user: %w", err)
	}
	if err := validate(e); err != nil {
		return Entry{}, err
	}

	e.ID = uuid.NewString()
	e.Date = utils.DayOf(e.Date)
	e.CreatedAt = s.clock.Now()

	if _, err := collectionFor(s.store, userUid).Update(ctx, func(entries []Entry) []Entry {
		return append(entries, e)
	}); err != nil {
		return Entry{}, fmt.Errorf("failed to store journal entry: %w", err)
	}
	return e, nil
}

func (s *ServiceImpl) Update(ctx context.Context, e Entry) (Entry, error) {
	userUid, err := user.CurrentUid(ctx)
	if err != nil {
		return Entry{}, fmt.Errorf("failed to get current user: %w", err)
	}
	if err := validate(e); err != nil {
		return Entry{}, err
	}

	var opErr error
	var updated Entry
	if _, err := collectionFor(s.store, userUid).Update(ctx, func(entries []Entry) []Entry {
		for i := range entries {
			if entries[i].ID == e.ID {
				e.Date = utils.DayOf(e.Date)
				e.CreatedAt = entries[i].CreatedAt
				entries[i] = e
				updated = e
				return entries
			}
		}
		opErr = ErrEntryNotFound
		return entries
	}); err != nil {
		return Entry{}, fmt.Errorf("failed to update journal entry: %w", err)
	}
	if opErr != nil {
		return Entry{}, opErr
	}
	return updated, nil
}

func (s *ServiceImpl) Delete(ctx context.Context, id string) error {
	userUid, err := user.CurrentUid(ctx)
	if err != nil {
		return fmt.Errorf("failed to get current user: %w", err)
	}

	var opErr error
	if _, err := collectionFor(s.store, userUid).Update(ctx, func(entries []Entry) []Entry {
		for i := range entries {
			if entries[i].ID == id {
				return append(entries[:i], entries[i+1:]...)
			}
		}
		opErr = ErrEntryNotFound
		return entries
	}); err != nil {
		return fmt.Errorf("failed to delete journal entry: %w", err)
	}
	return opErr
}

func (s *ServiceImpl) ListRange(ctx context.Context, from, to time.Time) ([]Entry, error) {
	userUid, err := user.CurrentUid(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get current user: %w", err)
	}

	all, err := collectionFor(s.store, userUid).Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read journal entries: %w", err)
	}

	from = utils.DayOf(from)
	to = utils.DayOf(to)
	result := make([]Entry, 0, len(all))
	for _, e := range all {
		if !e.Date.Before(from) && !e.Date.After(to) {
			result = append(result, e)
		}
	}
	sort.SliceStable(result, func(i, j int) bool {
		if !result[i].Date.Equal(result[j].Date) {
			return result[i].Date.After(result[j].Date)
		}
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}
