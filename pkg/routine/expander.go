package routine

import (
	"time"

	"github.com/duetplan/duetplan/internal/utils"
	"github.com/duetplan/duetplan/pkg/event"
	"github.com/google/uuid"
)

// Expand materializes the routine's recurrence rule into concrete event
// instances from max(r.StartDate, from) through r.EndDate inclusive, in
// chronological order.
//
// The walk steps UTC midnights, so a day is always exactly one calendar day
// and DST transitions can neither skip nor duplicate an occurrence. Each call
// mints fresh event ids: two calls with the same arguments describe the same
// occurrences but are never identical by identity, so callers must not keep
// both results.
//
// Invalid input (empty weekday set, start after end) yields an empty slice
// rather than an error; the Validate boundary is responsible for rejecting it.
func Expand(r Routine, from time.Time) []event.Event {
	start := utils.DayOf(r.StartDate)
	end := utils.DayOf(r.EndDate)
	from = utils.DayOf(from)
	if from.After(start) {
		start = from
	}

	var instances []event.Event
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		if !r.occursOn(d) {
			continue
		}
		instances = append(instances, event.Event{
			ID:          uuid.NewString(),
			Title:       r.Title,
			Date:        d,
			Time:        r.Time,
			Description: r.Description,
			Category:    r.Category,
			Color:       r.Color,
			Reminder:    r.Reminder,
			Completed:   false,
			Origin:      event.OriginRoutine,
			RoutineID:   r.ID,
		})
	}
	return instances
}

func (r Routine) occursOn(day time.Time) bool {
	switch r.Frequency {
	case FrequencyWeekly:
		for _, wd := range r.DaysOfWeek {
			if day.Weekday() == wd {
				return true
			}
		}
		return false
	case FrequencyMonthly:
		// Literal comparison: a 31st-of-month routine is silent in months
		// that have no 31st.
		return day.Day() == r.DayOfMonth
	default:
		return false
	}
}

// PruneFuture removes the routine's instances dated today or later and keeps
// everything else: its past instances stay as history, unrelated events are
// untouched. Order is preserved.
func PruneFuture(routineID string, today time.Time, events []event.Event) []event.Event {
	today = utils.DayOf(today)
	kept := make([]event.Event, 0, len(events))
	for _, e := range events {
		if e.RoutineID == routineID && e.RoutineOwned() && !utils.DayOf(e.Date).Before(today) {
			continue
		}
		kept = append(kept, e)
	}
	return kept
}
