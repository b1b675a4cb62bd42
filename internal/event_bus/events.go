package event_bus

import "time"

const (
	EventCreated   EventType = "event.created"
	RoutineCreated EventType = "routine.created"
	RoutineUpdated EventType = "routine.updated"
	RoutineDeleted EventType = "routine.deleted"
)

type PlannerEventCreated struct {
	ID       string
	Title    string
	Date     time.Time
	Time     string
	Category string
}

// RoutineEventsRegenerated describes the outcome of a routine reconciliation:
// how many future occurrences were pruned and how many were generated anew.
type RoutineEventsRegenerated struct {
	RoutineID string
	Pruned    int
	Generated int
}
