package journal

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/duetplan/duetplan/internal/rest"
	"github.com/duetplan/duetplan/internal/utils"
	"github.com/gorilla/mux"
)

type Handler struct {
	service Service
}

type EntryDTO struct {
	ID        string    `json:"id"`
	Date      string    `json:"date"`
	Title     string    `json:"title"`
	Body      string    `json:"body,omitempty"`
	Mood      string    `json:"mood,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

func NewHandler(service Service) *Handler {
	return &Handler{service}
}

func (h *Handler) ListEntries(w http.ResponseWriter, r *http.Request) {
	from, err := utils.ParseDay(r.URL.Query().Get("from"))
	if err != nil {
		writeDateError(w, "from")
		return
	}
	to, err := utils.ParseDay(r.URL.Query().Get("to"))
	if err != nil {
		writeDateError(w, "to")
		return
	}

	entries, err := h.service.ListRange(r.Context(), from, to)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	dtos := make([]EntryDTO, 0, len(entries))
	for _, e := range entries {
		dtos = append(dtos, entryToDTO(e))
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(dtos); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

func (h *Handler) AddEntry(w http.ResponseWriter, r *http.Request) {
	e, ok := h.decode(w, r, "")
	if !ok {
		return
	}

	added, err := h.service.Add(r.Context(), e)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(entryToDTO(added)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

func (h *Handler) UpdateEntry(w http.ResponseWriter, r *http.Request) {
	e, ok := h.decode(w, r, mux.Vars(r)["entryId"])
	if !ok {
		return
	}

	updated, err := h.service.Update(r.Context(), e)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(entryToDTO(updated)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

func (h *Handler) DeleteEntry(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if err := h.service.Delete(r.Context(), mux.Vars(r)["entryId"]); err != nil {
		h.writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, id string) (Entry, bool) {
	var dto EntryDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return Entry{}, false
	}
	if id != "" {
		dto.ID = id
	}

	var date time.Time
	if dto.Date != "" {
		parsed, err := utils.ParseDay(dto.Date)
		if err != nil {
			writeDateError(w, "date")
			return Entry{}, false
		}
		date = parsed
	}

	return Entry{
		ID:    dto.ID,
		Date:  date,
		Title: dto.Title,
		Body:  dto.Body,
		Mood:  dto.Mood,
	}, true
}

func (h *Handler) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrEntryInvalid):
		w.WriteHeader(http.StatusBadRequest)
		encodeErr := json.NewEncoder(w).Encode(rest.ErrorResponse{Error: err.Error()})
		if encodeErr != nil {
			http.Error(w, encodeErr.Error(), http.StatusInternalServerError)
		}
	case errors.Is(err, ErrEntryNotFound):
		w.WriteHeader(http.StatusNotFound)
		encodeErr := json.NewEncoder(w).Encode(rest.ErrorResponse{Error: "Journal entry not found"})
		if encodeErr != nil {
			http.Error(w, encodeErr.Error(), http.StatusInternalServerError)
		}
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func writeDateError(w http.ResponseWriter, field string) {
	w.WriteHeader(http.StatusBadRequest)
	encodeErr := json.NewEncoder(w).Encode(rest.ErrorResponse{
		Error:   "Invalid date format",
		Details: "'" + field + "' must be in YYYY-MM-DD format",
	})
	if encodeErr != nil {
		http.Error(w, encodeErr.Error(), http.StatusInternalServerError)
	}
}

func entryToDTO(e Entry) EntryDTO {
	return EntryDTO{
		ID:        e.ID,
		Date:      utils.FormatDay(e.Date),
		Title:     e.Title,
		Body:      e.Body,
		Mood:      e.Mood,
		CreatedAt: e.CreatedAt,
	}
}
