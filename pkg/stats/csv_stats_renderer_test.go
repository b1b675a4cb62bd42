package stats

import (
	"testing"
	"time"

	"github.com/duetplan/duetplan/pkg/event"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderStats(t *testing.T) {
	summary := StatsSummary{
		StartDate: time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC),
		Categories: []CategoryStats{
			{Category: event.CategoryPersonal, Total: 3, Completed: 2},
			{Category: event.CategoryCouple, Total: 1, Completed: 1},
			{Category: event.CategoryWork, Total: 2, Completed: 0},
			{Category: event.CategoryOther, Total: 0, Completed: 0},
		},
		TotalEvents:    6,
		TotalCompleted: 3,
	}

	got, err := NewCsvStatsRenderer().RenderStats(summary)
	require.NoError(t, err)

	want := "Category,Planned,Completed\n" +
		"personal,3,2\n" +
		"couple,1,1\n" +
		"work,2,0\n" +
		"other,0,0\n" +
		"SUM,6,3\n"
	assert.Equal(t, want, got)
}
