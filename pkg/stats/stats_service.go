package stats

import (
	"context"
	"fmt"
	"time"

	"github.com/duetplan/duetplan/internal/utils"
	"github.com/duetplan/duetplan/pkg/event"
)

// categoryOrder fixes the row order in summaries and CSV output.
var categoryOrder = []event.Category{
	event.CategoryPersonal,
	event.CategoryCouple,
	event.CategoryWork,
	event.CategoryOther,
}

type Service interface {
	WeeklyStats(ctx context.Context, weekStart time.Time) (StatsSummary, error)
}

type StatsServiceImpl struct {
	events event.EventService
}

func NewStatsService(events event.EventService) *StatsServiceImpl {
	return &StatsServiceImpl{events: events}
}

func (s *StatsServiceImpl) WeeklyStats(ctx context.Context, weekStart time.Time) (StatsSummary, error) {
	start := utils.DayOf(weekStart)
	end := start.AddDate(0, 0, 6)

	events, err := s.events.List(ctx, start, end)
	if err != nil {
		return StatsSummary{}, fmt.Errorf("failed to list events: %w", err)
	}

	byCategory := make(map[event.Category]*CategoryStats, len(categoryOrder))
	for _, c := range categoryOrder {
		byCategory[c] = &CategoryStats{Category: c}
	}

	summary := StatsSummary{StartDate: start, EndDate: end}
	for _, e := range events {
		cs, ok := byCategory[e.Category]
		if !ok {
			// Events with an unknown category are counted under "other".
			cs = byCategory[event.CategoryOther]
		}
		cs.Total++
		summary.TotalEvents++
		if e.Completed {
			cs.Completed++
			summary.TotalCompleted++
		}
	}

	for _, c := range categoryOrder {
		summary.Categories = append(summary.Categories, *byCategory[c])
	}
	return summary, nil
}
