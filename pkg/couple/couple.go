package couple

import "time"

// Message is one entry on the shared couple-space board. Both partners read
// and append the same storage slot.
type Message struct {
	ID        string    `json:"id"`
	AuthorUid string    `json:"authorUid"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"createdAt"`
}
