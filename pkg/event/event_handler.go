package event

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/duetplan/duetplan/internal/rest"
	"github.com/duetplan/duetplan/internal/utils"
	"github.com/gorilla/mux"
)

type EventHandler struct {
	service EventService
}

type EventDTO struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Date        string `json:"date"`
	Time        string `json:"time"`
	Description string `json:"description,omitempty"`
	Category    string `json:"category"`
	Color       string `json:"color,omitempty"`
	Reminder    bool   `json:"reminder"`
	Completed   bool   `json:"completed"`
	Origin      string `json:"origin"`
	RoutineID   string `json:"routineId,omitempty"`
}

func NewEventHandler(service EventService) *EventHandler {
	return &EventHandler{service}
}

func (h *EventHandler) GetEvents(w http.ResponseWriter, r *http.Request) {
	fromString := r.URL.Query().Get("from")
	toString := r.URL.Query().Get("to")
	from, err := utils.ParseDay(fromString)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		encodeErr := json.NewEncoder(w).Encode(rest.ErrorResponse{
			Error:   "Invalid from (date) format",
			Details: "'from' must be in YYYY-MM-DD format",
		})
		if encodeErr != nil {
			http.Error(w, encodeErr.Error(), http.StatusInternalServerError)
		}
		return
	}
	to, err := utils.ParseDay(toString)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		encodeErr := json.NewEncoder(w).Encode(rest.ErrorResponse{
			Error:   "Invalid to (date) format",
			Details: "'to' must be in YYYY-MM-DD format",
		})
		if encodeErr != nil {
			http.Error(w, encodeErr.Error(), http.StatusInternalServerError)
		}
		return
	}

	events, err := h.service.List(r.Context(), from, to)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	dtos := make([]EventDTO, 0, len(events))
	for _, e := range events {
		dtos = append(dtos, eventToDTO(e))
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(dtos); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

func (h *EventHandler) GetDayEvents(w http.ResponseWriter, r *http.Request) {
	date, err := utils.ParseDay(r.URL.Query().Get("date"))
	if err != nil {
		writeInvalidDate(w)
		return
	}

	events, err := h.service.ListDay(r.Context(), date)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	dtos := make([]EventDTO, 0, len(events))
	for _, e := range events {
		dtos = append(dtos, eventToDTO(e))
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(dtos); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

func (h *EventHandler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var dto EventDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	e, err := dtoToEvent(dto)
	if err != nil {
		writeInvalidDate(w)
		return
	}

	created, err := h.service.Create(r.Context(), e)
	if err != nil {
		if errors.Is(err, ErrEventInvalid) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(eventToDTO(created)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

func (h *EventHandler) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	var dto EventDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	dto.ID = mux.Vars(r)["eventId"]

	e, err := dtoToEvent(dto)
	if err != nil {
		writeInvalidDate(w)
		return
	}

	updated, err := h.service.Update(r.Context(), e)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(eventToDTO(updated)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

func (h *EventHandler) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	id := mux.Vars(r)["eventId"]
	if err := h.service.Delete(r.Context(), id); err != nil {
		h.writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *EventHandler) ToggleCompleted(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	id := mux.Vars(r)["eventId"]
	toggled, err := h.service.ToggleCompleted(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(eventToDTO(toggled)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

func (h *EventHandler) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrEventNotFound):
		writeError(w, http.StatusNotFound, "Event not found")
	case errors.Is(err, ErrRoutineOwned):
		writeError(w, http.StatusConflict, "Event is managed by a routine; edit the routine instead")
	case errors.Is(err, ErrEventInvalid):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.WriteHeader(status)
	if encodeErr := json.NewEncoder(w).Encode(rest.ErrorResponse{Error: message}); encodeErr != nil {
		http.Error(w, encodeErr.Error(), http.StatusInternalServerError)
	}
}

func writeInvalidDate(w http.ResponseWriter) {
	w.WriteHeader(http.StatusBadRequest)
	encodeErr := json.NewEncoder(w).Encode(rest.ErrorResponse{
		Error:   "Invalid date format",
		Details: "'date' must be in YYYY-MM-DD format",
	})
	if encodeErr != nil {
		http.Error(w, encodeErr.Error(), http.StatusInternalServerError)
	}
}

func eventToDTO(e Event) EventDTO {
	return EventDTO{
		ID:          e.ID,
		Title:       e.Title,
		Date:        utils.FormatDay(e.Date),
		Time:        e.Time,
		Description: e.Description,
		Category:    string(e.Category),
		Color:       e.Color,
		Reminder:    e.Reminder,
		Completed:   e.Completed,
		Origin:      string(e.Origin),
		RoutineID:   e.RoutineID,
	}
}

func dtoToEvent(dto EventDTO) (Event, error) {
	var date time.Time
	if dto.Date != "" {
		parsed, err := utils.ParseDay(dto.Date)
		if err != nil {
			return Event{}, err
		}
		date = parsed
	}
	return Event{
		ID:          dto.ID,
		Title:       dto.Title,
		Date:        date,
		Time:        dto.Time,
		Description: dto.Description,
		Category:    Category(dto.Category),
		Color:       dto.Color,
		Reminder:    dto.Reminder,
	}, nil
}
