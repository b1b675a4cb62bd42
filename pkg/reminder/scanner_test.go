package reminder

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/duetplan/duetplan/internal/event_bus"
	"github.com/duetplan/duetplan/internal/utils"
	"github.com/duetplan/duetplan/pkg/event"
	"github.com/duetplan/duetplan/pkg/store"
	"github.com/duetplan/duetplan/pkg/user"
)

type userServiceStub struct {
	users []user.User
}

func (s *userServiceStub) CreateUser(_ context.Context, u user.User) (user.User, error) {
	return u, nil
}
func (s *userServiceStub) GetCurrentUser(_ context.Context) (user.User, error) {
	return user.User{}, nil
}
func (s *userServiceStub) GetUserByUid(_ context.Context, _ string) (user.User, error) {
	return user.User{}, nil
}
func (s *userServiceStub) GetAllUsers(_ context.Context) ([]user.User, error) {
	return s.users, nil
}
func (s *userServiceStub) SetPartner(_ context.Context, _ string) (user.User, error) {
	return user.User{}, nil
}

type recordingNotifier struct {
	mu    sync.Mutex
	fired []string
}

func (n *recordingNotifier) Notify(_ string, e event.Event) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.fired = append(n.fired, e.ID)
}

func (n *recordingNotifier) all() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.fired...)
}

func setupScanner(t *testing.T, now time.Time, events []event.Event) (*Scanner, *recordingNotifier) {
	t.Helper()
	s := store.NewStore(store.NewBackendStub())
	require.NoError(t, event.CollectionFor(s, "alice").Set(context.Background(), events))

	notifier := &recordingNotifier{}
	users := &userServiceStub{users: []user.User{{Uid: "alice", Username: "alice"}}}
	scanner := NewScanner(s, users, &utils.MockClock{FixedNow: now}, notifier, 10)
	return scanner, notifier
}

func TestScanNotifiesDueEvent(t *testing.T) {
	now := time.Date(2024, time.March, 4, 9, 55, 0, 0, time.UTC)
	scanner, notifier := setupScanner(t, now, []event.Event{
		{ID: "due", Title: "Standup", Date: utils.DayOf(now), Time: "10:00", Reminder: true},
	})

	scanner.Scan(context.Background())

	assert.Equal(t, []string{"due"}, notifier.all())
}

func TestScanSkipsOutsideWindowCompletedAndUnflagged(t *testing.T) {
	now := time.Date(2024, time.March, 4, 9, 55, 0, 0, time.UTC)
	today := utils.DayOf(now)
	scanner, notifier := setupScanner(t, now, []event.Event{
		{ID: "too-far", Title: "Lunch", Date: today, Time: "12:00", Reminder: true},
		{ID: "past", Title: "Breakfast", Date: today, Time: "08:00", Reminder: true},
		{ID: "done", Title: "Standup", Date: today, Time: "10:00", Reminder: true, Completed: true},
		{ID: "quiet", Title: "Review", Date: today, Time: "10:00"},
		{ID: "tomorrow", Title: "Standup", Date: today.AddDate(0, 0, 1), Time: "10:00", Reminder: true},
		{ID: "all-day", Title: "Anniversary", Date: today, Reminder: true},
	})

	scanner.Scan(context.Background())

	assert.Empty(t, notifier.all())
}

func TestScanDeduplicatesAcrossSweeps(t *testing.T) {
	now := time.Date(2024, time.March, 4, 9, 55, 0, 0, time.UTC)
	scanner, notifier := setupScanner(t, now, []event.Event{
		{ID: "due", Title: "Standup", Date: utils.DayOf(now), Time: "10:00", Reminder: true},
	})

	scanner.Scan(context.Background())
	scanner.Scan(context.Background())

	assert.Equal(t, []string{"due"}, notifier.all())
}

func TestScanUsesUserTimezone(t *testing.T) {
	// 23:55 UTC on March 4th is already 08:55 on March 5th in Tokyo.
	now := time.Date(2024, time.March, 4, 23, 55, 0, 0, time.UTC)
	s := store.NewStore(store.NewBackendStub())
	events := []event.Event{
		{ID: "tokyo-morning", Title: "Standup", Date: utils.DayOf(time.Date(2024, time.March, 5, 0, 0, 0, 0, time.UTC)), Time: "09:00", Reminder: true},
	}
	require.NoError(t, event.CollectionFor(s, "alice").Set(context.Background(), events))

	notifier := &recordingNotifier{}
	users := &userServiceStub{users: []user.User{{Uid: "alice", Username: "alice", Timezone: "Asia/Tokyo"}}}
	scanner := NewScanner(s, users, &utils.MockClock{FixedNow: now}, notifier, 10)

	scanner.Scan(context.Background())

	assert.Equal(t, []string{"tokyo-morning"}, notifier.all())
}

func TestScanSkipsTomorrowForUTCUser(t *testing.T) {
	now := time.Date(2024, time.March, 4, 23, 55, 0, 0, time.UTC)
	scanner, notifier := setupScanner(t, now, []event.Event{
		{ID: "tomorrow", Title: "Standup", Date: utils.DayOf(now).AddDate(0, 0, 1), Time: "09:00", Reminder: true},
	})

	scanner.Scan(context.Background())

	assert.Empty(t, notifier.all())
}

func TestScanEvictsExpiredDedupeEntries(t *testing.T) {
	now := time.Date(2024, time.March, 4, 9, 55, 0, 0, time.UTC)
	scanner, notifier := setupScanner(t, now, []event.Event{
		{ID: "due", Title: "Standup", Date: utils.DayOf(now), Time: "10:00", Reminder: true},
	})

	scanner.Scan(context.Background())
	require.Equal(t, []string{"due"}, notifier.all())

	// Once the window has passed, the dedupe entry is dropped and no stale
	// key lingers for the next day's sweep.
	scanner.clock.(*utils.MockClock).SetNow(now.Add(20 * time.Minute))
	scanner.Scan(context.Background())

	assert.Equal(t, []string{"due"}, notifier.all())
	scanner.mu.Lock()
	assert.Empty(t, scanner.sent)
	scanner.mu.Unlock()
}

func TestListenSweepsOnPlannerMutations(t *testing.T) {
	now := time.Date(2024, time.March, 4, 9, 55, 0, 0, time.UTC)
	scanner, notifier := setupScanner(t, now, []event.Event{
		{ID: "due", Title: "Standup", Date: utils.DayOf(now), Time: "10:00", Reminder: true},
	})

	bus := event_bus.NewEventBus()
	scanner.Listen(bus)

	err := bus.Publish(event_bus.NewEvent(context.Background(), event_bus.EventCreated, event_bus.PlannerEventCreated{
		ID: "due", Title: "Standup",
	}))

	require.NoError(t, err)
	assert.Equal(t, []string{"due"}, notifier.all())
}

func TestListenSweepsOnRoutineRegeneration(t *testing.T) {
	now := time.Date(2024, time.March, 4, 9, 55, 0, 0, time.UTC)
	scanner, notifier := setupScanner(t, now, []event.Event{
		{ID: "generated", Title: "Gym", Date: utils.DayOf(now), Time: "10:00", Reminder: true},
	})

	bus := event_bus.NewEventBus()
	scanner.Listen(bus)

	err := bus.Publish(event_bus.NewEvent(context.Background(), event_bus.RoutineUpdated, event_bus.RoutineEventsRegenerated{
		RoutineID: "r1", Generated: 1,
	}))

	require.NoError(t, err)
	assert.Equal(t, []string{"generated"}, notifier.all())
}

func TestScanDoesNotMutateEvents(t *testing.T) {
	now := time.Date(2024, time.March, 4, 9, 55, 0, 0, time.UTC)
	events := []event.Event{
		{ID: "due", Title: "Standup", Date: utils.DayOf(now), Time: "10:00", Reminder: true},
	}
	scanner, _ := setupScanner(t, now, events)

	scanner.Scan(context.Background())

	stored, err := event.CollectionFor(scanner.store, "alice").Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, events, stored)
}
