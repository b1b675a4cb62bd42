package export

import (
	"context"
	"fmt"
	"time"

	ical "github.com/arran4/golang-ical"

	"github.com/duetplan/duetplan/pkg/event"
)

// EventReader is the slice of the event service the exporter needs.
type EventReader interface {
	All(ctx context.Context) ([]event.Event, error)
}

type Exporter struct {
	events EventReader
}

func NewExporter(events EventReader) *Exporter {
	return &Exporter{events: events}
}

// Render serializes the user's whole event collection as a VCALENDAR.
// Timed events become one-hour VEVENTs at their wall time in UTC; events
// without a time are exported as all-day.
func (e *Exporter) Render(ctx context.Context) (string, error) {
	events, err := e.events.All(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to read events: %w", err)
	}

	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId("-//duetplan//planner//EN")

	for _, ev := range events {
		vevent := cal.AddEvent(ev.ID)
		vevent.SetSummary(ev.Title)
		if ev.Description != "" {
			vevent.SetDescription(ev.Description)
		}

		start, ok := startOf(ev)
		if !ok {
			vevent.SetAllDayStartAt(ev.Date)
			vevent.SetAllDayEndAt(ev.Date.AddDate(0, 0, 1))
		} else {
			vevent.SetStartAt(start)
			vevent.SetEndAt(start.Add(time.Hour))
		}
	}

	return cal.Serialize(), nil
}

func startOf(e event.Event) (time.Time, bool) {
	parsed, err := time.Parse("15:04", e.Time)
	if err != nil {
		return time.Time{}, false
	}
	return time.Date(
		e.Date.Year(), e.Date.Month(), e.Date.Day(),
		parsed.Hour(), parsed.Minute(), 0, 0, time.UTC,
	), true
}
