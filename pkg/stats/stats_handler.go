package stats

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/duetplan/duetplan/internal/rest"
	"github.com/duetplan/duetplan/internal/utils"
)

type StatsHandler struct {
	service  Service
	renderer *CsvStatsRendererImpl
}

type StatsSummaryDTO struct {
	StartDate      string             `json:"startDate"`
	EndDate        string             `json:"endDate"`
	Categories     []CategoryStatsDTO `json:"categories"`
	TotalEvents    int                `json:"totalEvents"`
	TotalCompleted int                `json:"totalCompleted"`
}

type CategoryStatsDTO struct {
	Category  string `json:"category"`
	Total     int    `json:"total"`
	Completed int    `json:"completed"`
}

func NewStatsHandler(service Service, renderer *CsvStatsRendererImpl) *StatsHandler {
	return &StatsHandler{service: service, renderer: renderer}
}

func (h *StatsHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	date, err := utils.ParseDay(r.URL.Query().Get("date"))
	if err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		encodeErr := json.NewEncoder(w).Encode(rest.ErrorResponse{
			Error:   "Invalid date format",
			Details: "'date' must be in YYYY-MM-DD format",
		})
		if encodeErr != nil {
			http.Error(w, encodeErr.Error(), http.StatusInternalServerError)
		}
		return
	}

	summary, err := h.service.WeeklyStats(r.Context(), date)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	if strings.Contains(r.Header.Get("Accept"), "text/csv") {
		csvBody, err := h.renderer.RenderStats(summary)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", "attachment; filename=stats_"+summary.StartDate.Format("2006-01-02")+".csv")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(csvBody))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(summaryToDTO(summary)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

func summaryToDTO(s StatsSummary) StatsSummaryDTO {
	categories := make([]CategoryStatsDTO, 0, len(s.Categories))
	for _, c := range s.Categories {
		categories = append(categories, CategoryStatsDTO{
			Category:  string(c.Category),
			Total:     c.Total,
			Completed: c.Completed,
		})
	}
	return StatsSummaryDTO{
		StartDate:      utils.FormatDay(s.StartDate),
		EndDate:        utils.FormatDay(s.EndDate),
		Categories:     categories,
		TotalEvents:    s.TotalEvents,
		TotalCompleted: s.TotalCompleted,
	}
}
