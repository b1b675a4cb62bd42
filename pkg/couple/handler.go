package couple

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/duetplan/duetplan/internal/rest"
)

type Handler struct {
	service Service
}

type MessageDTO struct {
	ID        string    `json:"id"`
	AuthorUid string    `json:"authorUid"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"createdAt"`
}

type PostMessageDTO struct {
	Text string `json:"text"`
}

func NewHandler(service Service) *Handler {
	return &Handler{service}
}

func (h *Handler) PostMessage(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	var dto PostMessageDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	msg, err := h.service.Post(r.Context(), dto.Text)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(messageToDTO(msg)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

func (h *Handler) GetMessages(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	limit := 50
	if limitString := r.URL.Query().Get("limit"); limitString != "" {
		parsed, err := strconv.Atoi(limitString)
		if err != nil || parsed < 1 {
			w.WriteHeader(http.StatusBadRequest)
			encodeErr := json.NewEncoder(w).Encode(rest.ErrorResponse{
				Error: "Invalid limit",
			})
			if encodeErr != nil {
				http.Error(w, encodeErr.Error(), http.StatusInternalServerError)
			}
			return
		}
		limit = parsed
	}

	messages, err := h.service.Messages(r.Context(), limit)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	dtos := make([]MessageDTO, 0, len(messages))
	for _, m := range messages {
		dtos = append(dtos, messageToDTO(m))
	}

	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(dtos); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

func (h *Handler) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotPaired):
		w.WriteHeader(http.StatusConflict)
		encodeErr := json.NewEncoder(w).Encode(rest.ErrorResponse{
			Error: "No partner linked yet",
		})
		if encodeErr != nil {
			http.Error(w, encodeErr.Error(), http.StatusInternalServerError)
		}
	case errors.Is(err, ErrEmptyMessage):
		w.WriteHeader(http.StatusBadRequest)
		encodeErr := json.NewEncoder(w).Encode(rest.ErrorResponse{
			Error: "Message text is required",
		})
		if encodeErr != nil {
			http.Error(w, encodeErr.Error(), http.StatusInternalServerError)
		}
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func messageToDTO(m Message) MessageDTO {
	return MessageDTO{
		ID:        m.ID,
		AuthorUid: m.AuthorUid,
		Text:      m.Text,
		CreatedAt: m.CreatedAt,
	}
}
