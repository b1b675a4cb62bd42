package routine

import (
	"errors"
	"fmt"
	"time"

	"github.com/duetplan/duetplan/pkg/event"
)

type Frequency string

const (
	FrequencyWeekly  Frequency = "weekly"
	FrequencyMonthly Frequency = "monthly"
)

// Routine is a recurrence template from which concrete dated events are
// generated.
type Routine struct {
	ID          string         `json:"id"`
	Title       string         `json:"title"`
	Time        string         `json:"time"`
	Description string         `json:"description,omitempty"`
	Category    event.Category `json:"category"`
	Color       string         `json:"color,omitempty"`
	Frequency   Frequency      `json:"frequency"`
	// DaysOfWeek holds the weekdays (Sunday=0) a weekly routine occurs on.
	DaysOfWeek []time.Weekday `json:"daysOfWeek,omitempty"`
	// DayOfMonth is the literal day a monthly routine occurs on. Months
	// without that day produce no occurrence; there is no rollover to the
	// last day of short months.
	DayOfMonth int `json:"dayOfMonth,omitempty"`
	// StartDate and EndDate bound generation, inclusive, at UTC midnight.
	StartDate time.Time `json:"startDate"`
	EndDate   time.Time `json:"endDate"`
	Reminder  bool      `json:"reminder"`
}

var ErrRoutineInvalid = errors.New("routine data is invalid")
var ErrRoutineNotFound = errors.New("routine not found")

// Validate rejects routines the forms should never submit. The expander
// itself degrades to an empty result on bad input; this is the hard boundary.
func (r Routine) Validate() error {
	if r.Title == "" {
		return fmt.Errorf("%w: title is required", ErrRoutineInvalid)
	}
	if _, err := time.Parse("15:04", r.Time); err != nil {
		return fmt.Errorf("%w: time must be HH:MM", ErrRoutineInvalid)
	}
	if r.StartDate.IsZero() || r.EndDate.IsZero() {
		return fmt.Errorf("%w: startDate and endDate are required", ErrRoutineInvalid)
	}
	if r.EndDate.Before(r.StartDate) {
		return fmt.Errorf("%w: startDate must not be after endDate", ErrRoutineInvalid)
	}
	switch r.Frequency {
	case FrequencyWeekly:
		if len(r.DaysOfWeek) == 0 {
			return fmt.Errorf("%w: weekly routine needs at least one weekday", ErrRoutineInvalid)
		}
		for _, d := range r.DaysOfWeek {
			if d < time.Sunday || d > time.Saturday {
				return fmt.Errorf("%w: weekday out of range: %d", ErrRoutineInvalid, d)
			}
		}
	case FrequencyMonthly:
		if r.DayOfMonth < 1 || r.DayOfMonth > 31 {
			return fmt.Errorf("%w: dayOfMonth must be between 1 and 31", ErrRoutineInvalid)
		}
	default:
		return fmt.Errorf("%w: unknown frequency %q", ErrRoutineInvalid, r.Frequency)
	}
	return nil
}
