package event

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/duetplan/duetplan/internal/event_bus"
	"github.com/duetplan/duetplan/internal/utils"
	"github.com/duetplan/duetplan/pkg/store"
	"github.com/duetplan/duetplan/pkg/user"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

var ErrEventNotFound = errors.New("event not found")

// ErrRoutineOwned is returned when a routine-generated event is edited or
// deleted through the direct event path. Such events only change through
// their owning routine.
var ErrRoutineOwned = errors.New("event is managed by a routine")

var ErrEventInvalid = errors.New("event data is invalid")

type EventService interface {
	Create(ctx context.Context, e Event) (Event, error)
	Update(ctx context.Context, e Event) (Event, error)
	Delete(ctx context.Context, id string) error
	ToggleCompleted(ctx context.Context, id string) (Event, error)
	// List returns events whose day falls in [from, to] inclusive, chronological.
	List(ctx context.Context, from, to time.Time) ([]Event, error)
	ListDay(ctx context.Context, date time.Time) ([]Event, error)
	All(ctx context.Context) ([]Event, error)
}

type EventServiceImpl struct {
	store *store.Store
	bus   *event_bus.EventBus
}

func NewEventService(s *store.Store, bus *event_bus.EventBus) *EventServiceImpl {
	return &EventServiceImpl{store: s, bus: bus}
}

// CollectionFor returns the per-user event collection. Routine reconciliation
// uses the same collection so prune+insert lands in one critical section.
func CollectionFor(s *store.Store, userUid string) store.Collection[[]Event] {
	return store.NewCollection(s, store.Key("events", userUid), []Event{})
}

func validate(e Event) error {
	if e.Title == "" {
		return fmt.Errorf("%w: title is required", ErrEventInvalid)
	}
	if e.Date.IsZero() {
		return fmt.Errorf("%w: date is required", ErrEventInvalid)
	}
	// Time is optional; an event without one is all-day.
	if e.Time != "" {
		if _, err := time.Parse("15:04", e.Time); err != nil {
			return fmt.Errorf("%w: time must be HH:MM", ErrEventInvalid)
		}
	}
	return nil
}

func (s *EventServiceImpl) Create(ctx context.Context, e Event) (Event, error) {
	userUid, err := user.CurrentUid(ctx)
	if err != nil {
		return Event{}, fmt.Errorf("failed to get current user: %w", err)
	}
	if err := validate(e); err != nil {
		return Event{}, err
	}

	e.ID = uuid.NewString()
	e.Date = utils.DayOf(e.Date)
	e.Origin = OriginUser
	e.RoutineID = ""
	e.Completed = false

	_, err = CollectionFor(s.store, userUid).Update(ctx, func(events []Event) []Event {
		return append(events, e)
	})
	if err != nil {
		return Event{}, fmt.Errorf("failed to store event: %w", err)
	}

	if err := s.bus.Publish(event_bus.NewEvent(ctx, event_bus.EventCreated, event_bus.PlannerEventCreated{
		ID:       e.ID,
		Title:    e.Title,
		Date:     e.Date,
		Time:     e.Time,
		Category: string(e.Category),
	})); err != nil {
		log.Warnf("failed to publish event creation: %v", err)
	}

	return e, nil
}

func (s *EventServiceImpl) Update(ctx context.Context, e Event) (Event, error) {
	userUid, err := user.CurrentUid(ctx)
	if err != nil {
		return Event{}, fmt.Errorf("failed to get current user: %w", err)
	}
	if err := validate(e); err != nil {
		return Event{}, err
	}

	var opErr error
	var updated Event
	_, err = CollectionFor(s.store, userUid).Update(ctx, func(events []Event) []Event {
		for i := range events {
			if events[i].ID != e.ID {
				continue
			}
			if events[i].RoutineOwned() {
				opErr = ErrRoutineOwned
				return events
			}
			// Completion and provenance are not editable through this path.
			e.Completed = events[i].Completed
			e.Origin = events[i].Origin
			e.RoutineID = events[i].RoutineID
			e.Date = utils.DayOf(e.Date)
			events[i] = e
			updated = e
			return events
		}
		opErr = ErrEventNotFound
		return events
	})
	if err != nil {
		return Event{}, fmt.Errorf("failed to update event: %w", err)
	}
	if opErr != nil {
		return Event{}, opErr
	}
	return updated, nil
}

func (s *EventServiceImpl) Delete(ctx context.Context, id string) error {
	userUid, err := user.CurrentUid(ctx)
	if err != nil {
		return fmt.Errorf("failed to get current user: %w", err)
	}

	var opErr error
	_, err = CollectionFor(s.store, userUid).Update(ctx, func(events []Event) []Event {
		for i := range events {
			if events[i].ID != id {
				continue
			}
			if events[i].RoutineOwned() {
				opErr = ErrRoutineOwned
				return events
			}
			return append(events[:i], events[i+1:]...)
		}
		opErr = ErrEventNotFound
		return events
	})
	if err != nil {
		return fmt.Errorf("failed to delete event: %w", err)
	}
	return opErr
}

// ToggleCompleted flips completion for any event, routine-generated or not.
func (s *EventServiceImpl) ToggleCompleted(ctx context.Context, id string) (Event, error) {
	userUid, err := user.CurrentUid(ctx)
	if err != nil {
		return Event{}, fmt.Errorf("failed to get current user: %w", err)
	}

	var opErr error
	var toggled Event
	_, err = CollectionFor(s.store, userUid).Update(ctx, func(events []Event) []Event {
		for i := range events {
			if events[i].ID == id {
				events[i].Completed = !events[i].Completed
				toggled = events[i]
				return events
			}
		}
		opErr = ErrEventNotFound
		return events
	})
	if err != nil {
		return Event{}, fmt.Errorf("failed to toggle event: %w", err)
	}
	if opErr != nil {
		return Event{}, opErr
	}
	return toggled, nil
}

func (s *EventServiceImpl) List(ctx context.Context, from, to time.Time) ([]Event, error) {
	all, err := s.All(ctx)
	if err != nil {
		return nil, err
	}

	from = utils.DayOf(from)
	to = utils.DayOf(to)
	result := make([]Event, 0, len(all))
	for _, e := range all {
		if !e.Date.Before(from) && !e.Date.After(to) {
			result = append(result, e)
		}
	}
	sortChronologically(result)
	return result, nil
}

func (s *EventServiceImpl) ListDay(ctx context.Context, date time.Time) ([]Event, error) {
	return s.List(ctx, date, date)
}

func (s *EventServiceImpl) All(ctx context.Context) ([]Event, error) {
	userUid, err := user.CurrentUid(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get current user: %w", err)
	}
	return CollectionFor(s.store, userUid).Get(ctx)
}

func sortChronologically(events []Event) {
	sort.SliceStable(events, func(i, j int) bool {
		if !events[i].Date.Equal(events[j].Date) {
			return events[i].Date.Before(events[j].Date)
		}
		return events[i].Time < events[j].Time
	})
}
