package stats

import (
	"time"

	"github.com/duetplan/duetplan/pkg/event"
)

type CategoryStats struct {
	Category  event.Category
	Total     int
	Completed int
}

// StatsSummary is one week of completion counts, split by category.
type StatsSummary struct {
	StartDate      time.Time
	EndDate        time.Time
	Categories     []CategoryStats
	TotalEvents    int
	TotalCompleted int
}
