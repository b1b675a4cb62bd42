package journal

import "time"

// Entry is one journal record, attached to a calendar day.
type Entry struct {
	ID        string    `json:"id"`
	Date      time.Time `json:"date"`
	Title     string    `json:"title"`
	Body      string    `json:"body,omitempty"`
	Mood      string    `json:"mood,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}
