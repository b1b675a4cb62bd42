package routine

import (
	"context"
	"testing"
	"time"

	"github.com/duetplan/duetplan/internal/event_bus"
	"github.com/duetplan/duetplan/internal/utils"
	"github.com/duetplan/duetplan/pkg/event"
	"github.com/duetplan/duetplan/pkg/store"
	"github.com/duetplan/duetplan/pkg/user"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupServiceTest(t *testing.T, now time.Time) (*ServiceImpl, *store.Store, context.Context) {
	t.Helper()
	s := store.NewStore(store.NewBackendStub())
	clock := &utils.MockClock{FixedNow: now}
	service := NewService(s, clock, event_bus.NewEventBus())
	ctx := user.WithUser(context.Background(), user.User{Uid: "u1", Username: "alice"})
	return service, s, ctx
}

func eventsOf(t *testing.T, s *store.Store, ctx context.Context) []event.Event {
	t.Helper()
	events, err := event.CollectionFor(s, "u1").Get(ctx)
	require.NoError(t, err)
	return events
}

func TestService_CreateExpandsFromStartDateNotToday(t *testing.T) {
	// Today is mid-January; the routine starts on the 1st. A brand-new
	// routine has no history to protect, so the 1st still gets an instance.
	service, s, ctx := setupServiceTest(t, day(2024, 1, 15))

	created, err := service.Create(ctx, weeklyRoutine())
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)

	events := eventsOf(t, s, ctx)
	require.NotEmpty(t, events)
	assert.Equal(t, day(2024, 1, 1), events[0].Date)
	assert.Len(t, events, 14)
}

func TestService_UpdatePreservesHistoryAndRegeneratesFuture(t *testing.T) {
	service, s, ctx := setupServiceTest(t, day(2024, 1, 15))

	created, err := service.Create(ctx, weeklyRoutine())
	require.NoError(t, err)

	before := eventsOf(t, s, ctx)
	var pastBefore []event.Event
	for _, e := range before {
		if e.Date.Before(day(2024, 1, 15)) {
			pastBefore = append(pastBefore, e)
		}
	}
	require.NotEmpty(t, pastBefore)

	created.Time = "19:30"
	_, err = service.Update(ctx, created)
	require.NoError(t, err)

	after := eventsOf(t, s, ctx)
	var pastAfter, futureAfter []event.Event
	for _, e := range after {
		if e.Date.Before(day(2024, 1, 15)) {
			pastAfter = append(pastAfter, e)
		} else {
			futureAfter = append(futureAfter, e)
		}
	}

	// Past instances are byte-for-byte untouched, old time and ids included.
	assert.Equal(t, pastBefore, pastAfter)

	// Future instances carry the new time and fresh ids.
	require.NotEmpty(t, futureAfter)
	beforeIds := make(map[string]bool, len(before))
	for _, e := range before {
		beforeIds[e.ID] = true
	}
	for _, e := range futureAfter {
		assert.Equal(t, "19:30", e.Time)
		assert.False(t, beforeIds[e.ID], "future instance %s should have a fresh id", e.ID)
	}

	// Same occurrence days as before the edit; only the 15th and later.
	assert.Equal(t, day(2024, 1, 15), futureAfter[0].Date)
	assert.Len(t, after, len(before))
}

func TestService_UpdateWithPastStartDateDoesNotRewriteHistory(t *testing.T) {
	service, s, ctx := setupServiceTest(t, day(2024, 1, 15))

	r := weeklyRoutine()
	r.StartDate = day(2024, 1, 10)
	created, err := service.Create(ctx, r)
	require.NoError(t, err)

	// Move startDate further into the past; generation must still begin today.
	created.StartDate = day(2023, 12, 1)
	_, err = service.Update(ctx, created)
	require.NoError(t, err)

	for _, e := range eventsOf(t, s, ctx) {
		assert.False(t, e.Date.Before(day(2024, 1, 10)),
			"no instance may appear before the original generation window")
	}
}

func TestService_DeletePrunesFutureKeepsPast(t *testing.T) {
	service, s, ctx := setupServiceTest(t, day(2024, 1, 15))

	created, err := service.Create(ctx, weeklyRoutine())
	require.NoError(t, err)

	// An unrelated user event must survive the cascade.
	_, err = event.CollectionFor(s, "u1").Update(ctx, func(events []event.Event) []event.Event {
		return append(events, event.Event{ID: "manual", Title: "Dinner", Date: day(2024, 1, 20), Time: "20:00", Origin: event.OriginUser})
	})
	require.NoError(t, err)

	require.NoError(t, service.Delete(ctx, created.ID))

	routines, err := service.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, routines)

	events := eventsOf(t, s, ctx)
	var sawManual bool
	for _, e := range events {
		if e.ID == "manual" {
			sawManual = true
			continue
		}
		// Remaining generated instances are history with a dangling RoutineID.
		assert.Equal(t, created.ID, e.RoutineID)
		assert.True(t, e.Date.Before(day(2024, 1, 15)))
	}
	assert.True(t, sawManual)
}

func TestService_DeleteUnknownRoutine(t *testing.T) {
	service, _, ctx := setupServiceTest(t, day(2024, 1, 15))

	err := service.Delete(ctx, "missing")
	assert.ErrorIs(t, err, ErrRoutineNotFound)
}

func TestService_UpdateUnknownRoutine(t *testing.T) {
	service, _, ctx := setupServiceTest(t, day(2024, 1, 15))

	r := weeklyRoutine()
	r.ID = "missing"
	_, err := service.Update(ctx, r)
	assert.ErrorIs(t, err, ErrRoutineNotFound)
}

func TestService_CreateRejectsInvalidRoutine(t *testing.T) {
	service, _, ctx := setupServiceTest(t, day(2024, 1, 15))

	testCases := []struct {
		name   string
		mutate func(*Routine)
	}{
		{name: "no title", mutate: func(r *Routine) { r.Title = "" }},
		{name: "bad time", mutate: func(r *Routine) { r.Time = "7am" }},
		{name: "weekly without weekdays", mutate: func(r *Routine) { r.DaysOfWeek = nil }},
		{name: "start after end", mutate: func(r *Routine) { r.StartDate = day(2024, 2, 1) }},
		{name: "monthly day out of range", mutate: func(r *Routine) {
			r.Frequency = FrequencyMonthly
			r.DaysOfWeek = nil
			r.DayOfMonth = 32
		}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			r := weeklyRoutine()
			tc.mutate(&r)
			_, err := service.Create(ctx, r)
			assert.ErrorIs(t, err, ErrRoutineInvalid)
		})
	}
}

func TestService_GeneratedInstancesAreCompletable(t *testing.T) {
	service, s, ctx := setupServiceTest(t, day(2024, 1, 1))

	_, err := service.Create(ctx, weeklyRoutine())
	require.NoError(t, err)

	events := eventsOf(t, s, ctx)
	require.NotEmpty(t, events)

	eventService := event.NewEventService(s, event_bus.NewEventBus())
	toggled, err := eventService.ToggleCompleted(ctx, events[0].ID)
	require.NoError(t, err)
	assert.True(t, toggled.Completed)
}
