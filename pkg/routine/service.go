package routine

import (
	"context"
	"fmt"

	"github.com/duetplan/duetplan/internal/event_bus"
	"github.com/duetplan/duetplan/internal/utils"
	"github.com/duetplan/duetplan/pkg/event"
	"github.com/duetplan/duetplan/pkg/store"
	"github.com/duetplan/duetplan/pkg/user"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

type Service interface {
	Create(ctx context.Context, r Routine) (Routine, error)
	// Update replaces the routine and regenerates its future occurrences.
	// Instances dated before today are never touched, even when the edit
	// moved startDate into the past.
	Update(ctx context.Context, r Routine) (Routine, error)
	// Delete removes the routine and its future occurrences; past occurrences
	// remain as history with a dangling routine reference.
	Delete(ctx context.Context, id string) error
	Get(ctx context.Context, id string) (Routine, error)
	List(ctx context.Context) ([]Routine, error)
}

type ServiceImpl struct {
	store *store.Store
	clock utils.Clock
	bus   *event_bus.EventBus
}

func NewService(s *store.Store, clock utils.Clock, bus *event_bus.EventBus) *ServiceImpl {
	return &ServiceImpl{store: s, clock: clock, bus: bus}
}

func routineCollection(s *store.Store, userUid string) store.Collection[[]Routine] {
	return store.NewCollection(s, store.Key("routines", userUid), []Routine{})
}

func (s *ServiceImpl) Create(ctx context.Context, r Routine) (Routine, error) {
	userUid, err := user.CurrentUid(ctx)
	if err != nil {
		return Routine{}, fmt.Errorf("failed to get current user: %w", err)
	}
	if err := r.Validate(); err != nil {
		return Routine{}, err
	}

	r.ID = uuid.NewString()
	r.StartDate = utils.DayOf(r.StartDate)
	r.EndDate = utils.DayOf(r.EndDate)

	if _, err := routineCollection(s.store, userUid).Update(ctx, func(routines []Routine) []Routine {
		return append(routines, r)
	}); err != nil {
		return Routine{}, fmt.Errorf("failed to store routine: %w", err)
	}

	// A new routine has no history to protect: expand from its start date.
	instances := Expand(r, r.StartDate)
	if _, err := event.CollectionFor(s.store, userUid).Update(ctx, func(events []event.Event) []event.Event {
		return append(events, instances...)
	}); err != nil {
		return Routine{}, fmt.Errorf("failed to store routine instances: %w", err)
	}

	s.publish(ctx, event_bus.RoutineCreated, event_bus.RoutineEventsRegenerated{
		RoutineID: r.ID,
		Generated: len(instances),
	})
	log.Debugf("routine %s created, %d occurrences generated", r.ID, len(instances))

	return r, nil
}

func (s *ServiceImpl) Update(ctx context.Context, r Routine) (Routine, error) {
	userUid, err := user.CurrentUid(ctx)
	if err != nil {
		return Routine{}, fmt.Errorf("failed to get current user: %w", err)
	}
	if err := r.Validate(); err != nil {
		return Routine{}, err
	}
	r.StartDate = utils.DayOf(r.StartDate)
	r.EndDate = utils.DayOf(r.EndDate)

	var opErr error
	if _, err := routineCollection(s.store, userUid).Update(ctx, func(routines []Routine) []Routine {
		for i := range routines {
			if routines[i].ID == r.ID {
				routines[i] = r
				return routines
			}
		}
		opErr = ErrRoutineNotFound
		return routines
	}); err != nil {
		return Routine{}, fmt.Errorf("failed to update routine: %w", err)
	}
	if opErr != nil {
		return Routine{}, opErr
	}

	// Prune and regenerate in one critical section on the events key, so no
	// reader observes the collection with neither old nor new instances.
	today := utils.DayOf(s.clock.Now())
	var pruned, generated int
	if _, err := event.CollectionFor(s.store, userUid).Update(ctx, func(events []event.Event) []event.Event {
		kept := PruneFuture(r.ID, today, events)
		pruned = len(events) - len(kept)
		instances := Expand(r, today)
		generated = len(instances)
		return append(kept, instances...)
	}); err != nil {
		return Routine{}, fmt.Errorf("failed to regenerate routine instances: %w", err)
	}

	s.publish(ctx, event_bus.RoutineUpdated, event_bus.RoutineEventsRegenerated{
		RoutineID: r.ID,
		Pruned:    pruned,
		Generated: generated,
	})
	log.Debugf("routine %s updated: %d pruned, %d generated", r.ID, pruned, generated)

	return r, nil
}

func (s *ServiceImpl) Delete(ctx context.Context, id string) error {
	userUid, err := user.CurrentUid(ctx)
	if err != nil {
		return fmt.Errorf("failed to get current user: %w", err)
	}

	var opErr error
	if _, err := routineCollection(s.store, userUid).Update(ctx, func(routines []Routine) []Routine {
		for i := range routines {
			if routines[i].ID == id {
				return append(routines[:i], routines[i+1:]...)
			}
		}
		opErr = ErrRoutineNotFound
		return routines
	}); err != nil {
		return fmt.Errorf("failed to delete routine: %w", err)
	}
	if opErr != nil {
		return opErr
	}

	today := utils.DayOf(s.clock.Now())
	var pruned int
	if _, err := event.CollectionFor(s.store, userUid).Update(ctx, func(events []event.Event) []event.Event {
		kept := PruneFuture(id, today, events)
		pruned = len(events) - len(kept)
		return kept
	}); err != nil {
		return fmt.Errorf("failed to prune routine instances: %w", err)
	}

	s.publish(ctx, event_bus.RoutineDeleted, event_bus.RoutineEventsRegenerated{
		RoutineID: id,
		Pruned:    pruned,
	})
	log.Debugf("routine %s deleted, %d future occurrences pruned", id, pruned)

	return nil
}

func (s *ServiceImpl) Get(ctx context.Context, id string) (Routine, error) {
	routines, err := s.List(ctx)
	if err != nil {
		return Routine{}, err
	}
	for _, r := range routines {
		if r.ID == id {
			return r, nil
		}
	}
	return Routine{}, ErrRoutineNotFound
}

func (s *ServiceImpl) List(ctx context.Context) ([]Routine, error) {
	userUid, err := user.CurrentUid(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get current user: %w", err)
	}
	return routineCollection(s.store, userUid).Get(ctx)
}

func (s *ServiceImpl) publish(ctx context.Context, eventType event_bus.EventType, payload event_bus.RoutineEventsRegenerated) {
	if err := s.bus.Publish(event_bus.NewEvent(ctx, eventType, payload)); err != nil {
		log.Warnf("failed to publish %s: %v", eventType, err)
	}
}
