package routine

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/duetplan/duetplan/internal/rest"
	"github.com/duetplan/duetplan/internal/utils"
	"github.com/duetplan/duetplan/pkg/event"
	"github.com/gorilla/mux"
)

type Handler struct {
	service Service
}

type RoutineDTO struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Time        string `json:"time"`
	Description string `json:"description,omitempty"`
	Category    string `json:"category"`
	Color       string `json:"color,omitempty"`
	Frequency   string `json:"frequency"`
	DaysOfWeek  []int  `json:"daysOfWeek,omitempty"`
	DayOfMonth  int    `json:"dayOfMonth,omitempty"`
	StartDate   string `json:"startDate"`
	EndDate     string `json:"endDate"`
	Reminder    bool   `json:"reminder"`
}

func NewHandler(service Service) *Handler {
	return &Handler{service}
}

func (h *Handler) ListRoutines(w http.ResponseWriter, r *http.Request) {
	routines, err := h.service.List(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	dtos := make([]RoutineDTO, 0, len(routines))
	for _, rt := range routines {
		dtos = append(dtos, routineToDTO(rt))
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(dtos); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

func (h *Handler) CreateRoutine(w http.ResponseWriter, r *http.Request) {
	rt, ok := h.decode(w, r, "")
	if !ok {
		return
	}

	created, err := h.service.Create(r.Context(), rt)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(routineToDTO(created)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

func (h *Handler) UpdateRoutine(w http.ResponseWriter, r *http.Request) {
	rt, ok := h.decode(w, r, mux.Vars(r)["routineId"])
	if !ok {
		return
	}

	updated, err := h.service.Update(r.Context(), rt)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(routineToDTO(updated)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

func (h *Handler) DeleteRoutine(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	id := mux.Vars(r)["routineId"]
	if err := h.service.Delete(r.Context(), id); err != nil {
		h.writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, id string) (Routine, bool) {
	var dto RoutineDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return Routine{}, false
	}
	if id != "" {
		dto.ID = id
	}

	rt, err := dtoToRoutine(dto)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		encodeErr := json.NewEncoder(w).Encode(rest.ErrorResponse{
			Error:   "Invalid date format",
			Details: "'startDate' and 'endDate' must be in YYYY-MM-DD format",
		})
		if encodeErr != nil {
			http.Error(w, encodeErr.Error(), http.StatusInternalServerError)
		}
		return Routine{}, false
	}
	return rt, true
}

func (h *Handler) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrRoutineInvalid):
		w.WriteHeader(http.StatusBadRequest)
		encodeErr := json.NewEncoder(w).Encode(rest.ErrorResponse{Error: err.Error()})
		if encodeErr != nil {
			http.Error(w, encodeErr.Error(), http.StatusInternalServerError)
		}
	case errors.Is(err, ErrRoutineNotFound):
		w.WriteHeader(http.StatusNotFound)
		encodeErr := json.NewEncoder(w).Encode(rest.ErrorResponse{Error: "Routine not found"})
		if encodeErr != nil {
			http.Error(w, encodeErr.Error(), http.StatusInternalServerError)
		}
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func routineToDTO(r Routine) RoutineDTO {
	days := make([]int, 0, len(r.DaysOfWeek))
	for _, d := range r.DaysOfWeek {
		days = append(days, int(d))
	}
	return RoutineDTO{
		ID:          r.ID,
		Title:       r.Title,
		Time:        r.Time,
		Description: r.Description,
		Category:    string(r.Category),
		Color:       r.Color,
		Frequency:   string(r.Frequency),
		DaysOfWeek:  days,
		DayOfMonth:  r.DayOfMonth,
		StartDate:   utils.FormatDay(r.StartDate),
		EndDate:     utils.FormatDay(r.EndDate),
		Reminder:    r.Reminder,
	}
}

func dtoToRoutine(dto RoutineDTO) (Routine, error) {
	var start, end time.Time
	var err error
	if dto.StartDate != "" {
		if start, err = utils.ParseDay(dto.StartDate); err != nil {
			return Routine{}, err
		}
	}
	if dto.EndDate != "" {
		if end, err = utils.ParseDay(dto.EndDate); err != nil {
			return Routine{}, err
		}
	}
	days := make([]time.Weekday, 0, len(dto.DaysOfWeek))
	for _, d := range dto.DaysOfWeek {
		days = append(days, time.Weekday(d))
	}
	return Routine{
		ID:          dto.ID,
		Title:       dto.Title,
		Time:        dto.Time,
		Description: dto.Description,
		Category:    event.Category(dto.Category),
		Color:       dto.Color,
		Frequency:   Frequency(dto.Frequency),
		DaysOfWeek:  days,
		DayOfMonth:  dto.DayOfMonth,
		StartDate:   start,
		EndDate:     end,
		Reminder:    dto.Reminder,
	}, nil
}
