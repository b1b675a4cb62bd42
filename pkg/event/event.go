package event

import "time"

type Category string

const (
	CategoryPersonal Category = "personal"
	CategoryCouple   Category = "couple"
	CategoryWork     Category = "work"
	CategoryOther    Category = "other"
)

// Origin tags how an event came to exist. User-authored events are editable
// through the normal event path; routine-generated ones may only change
// through their owning routine.
type Origin string

const (
	OriginUser    Origin = "user"
	OriginRoutine Origin = "routine"
)

type Event struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	// Date is the calendar day of the occurrence, held at UTC midnight.
	Date time.Time `json:"date"`
	// Time is the wall-clock time of day, "HH:MM".
	Time        string   `json:"time"`
	Description string   `json:"description,omitempty"`
	Category    Category `json:"category"`
	Color       string   `json:"color,omitempty"`
	Reminder    bool     `json:"reminder"`
	Completed   bool     `json:"completed"`
	Origin      Origin   `json:"origin"`
	// RoutineID is set iff Origin == OriginRoutine. It may dangle after the
	// owning routine is deleted; such events are kept as history.
	RoutineID string `json:"routineId,omitempty"`
}

func (e Event) RoutineOwned() bool {
	return e.Origin == OriginRoutine
}
