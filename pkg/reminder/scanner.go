package reminder

import (
	"context"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"

	"github.com/duetplan/duetplan/internal/event_bus"
	"github.com/duetplan/duetplan/internal/utils"
	"github.com/duetplan/duetplan/pkg/event"
	"github.com/duetplan/duetplan/pkg/store"
	"github.com/duetplan/duetplan/pkg/user"
)

// Scanner periodically sweeps every user's agenda for the current day and
// fires a notification for each timed event that has its reminder flag set,
// is not completed, and starts within the configured window. Calendar days
// and wall times are evaluated in the user's own timezone. The scanner never
// writes to the store; delivered reminders are deduplicated in memory until
// their window has passed, so a restart may re-notify.
type Scanner struct {
	store    *store.Store
	users    user.Service
	clock    utils.Clock
	notifier Notifier
	window   time.Duration

	cron *cron.Cron

	mu   sync.Mutex
	sent map[string]time.Time // event id -> dedupe expiry
}

func NewScanner(s *store.Store, users user.Service, clock utils.Clock, notifier Notifier, windowMinutes int) *Scanner {
	return &Scanner{
		store:    s,
		users:    users,
		clock:    clock,
		notifier: notifier,
		window:   time.Duration(windowMinutes) * time.Minute,
		sent:     map[string]time.Time{},
	}
}

// Start schedules recurring scans. The schedule uses cron syntax, including
// the @every form.
func (s *Scanner) Start(schedule string) error {
	s.cron = cron.New()
	_, err := s.cron.AddFunc(schedule, func() {
		s.Scan(context.Background())
	})
	if err != nil {
		return err
	}
	s.cron.Start()
	return nil
}

func (s *Scanner) Stop() {
	if s.cron != nil {
		s.cron.Stop()
	}
}

// Listen subscribes the scanner to planner mutations, so an event created or
// regenerated inside the reminder window is considered immediately instead of
// waiting for the next scheduled sweep.
func (s *Scanner) Listen(bus *event_bus.EventBus) {
	event_bus.SubscribeTyped[event_bus.PlannerEventCreated](bus, event_bus.EventCreated,
		func(e event_bus.EventT[event_bus.PlannerEventCreated]) error {
			s.Scan(e.Context())
			return nil
		})
	onRegenerated := func(e event_bus.EventT[event_bus.RoutineEventsRegenerated]) error {
		s.Scan(e.Context())
		return nil
	}
	event_bus.SubscribeTyped[event_bus.RoutineEventsRegenerated](bus, event_bus.RoutineCreated, onRegenerated)
	event_bus.SubscribeTyped[event_bus.RoutineEventsRegenerated](bus, event_bus.RoutineUpdated, onRegenerated)
}

// Scan runs a single sweep over all users.
func (s *Scanner) Scan(ctx context.Context) {
	users, err := s.users.GetAllUsers(ctx)
	if err != nil {
		log.Errorf("Reminder scan failed to list users: %v", err)
		return
	}

	now := s.clock.Now()
	s.evict(now)

	for _, u := range users {
		events, err := event.CollectionFor(s.store, u.Uid).Get(ctx)
		if err != nil {
			log.Errorf("Reminder scan failed to read events for user %s: %v", u.Uid, err)
			continue
		}
		loc := locationOf(u)
		for _, e := range events {
			if s.due(e, now, loc) {
				s.notifier.Notify(u.Uid, e)
			}
		}
	}
}

func locationOf(u user.User) *time.Location {
	if u.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(u.Timezone)
	if err != nil {
		log.Warnf("Unknown timezone %q for user %s, falling back to UTC", u.Timezone, u.Uid)
		return time.UTC
	}
	return loc
}

func (s *Scanner) due(e event.Event, now time.Time, loc *time.Location) bool {
	if !e.Reminder || e.Completed {
		return false
	}
	wall, err := time.Parse("15:04", e.Time)
	if err != nil {
		return false
	}

	// Event dates are stored at UTC midnight; match them against the
	// calendar day the user is currently living.
	y, m, d := now.In(loc).Date()
	ey, em, ed := e.Date.Date()
	if ey != y || em != m || ed != d {
		return false
	}

	start := time.Date(y, m, d, wall.Hour(), wall.Minute(), 0, 0, loc)
	if start.Before(now) || start.After(now.Add(s.window)) {
		return false
	}
	return s.markSent(e.ID, start.Add(s.window))
}

func (s *Scanner) markSent(eventID string, expiry time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, seen := s.sent[eventID]; seen {
		return false
	}
	s.sent[eventID] = expiry
	return true
}

// evict drops dedupe entries whose window has passed, keeping the map bounded
// in a long-running process.
func (s *Scanner) evict(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, expiry := range s.sent {
		if expiry.Before(now) {
			delete(s.sent, id)
		}
	}
}
