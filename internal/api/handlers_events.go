package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hackgods/ward-scheduling/internal/audit"
)

type EventResponse struct {
	ID        int64           `json:"id"`
	Type      string          `json:"type"`
	Subject   string          `json:"subject"`
	Payload   json.RawMessage `json:"payload"`
	CreatedAt time.Time       `json:"created_at"`
}

// listEventsHandler returns the audit trail of one subject: a room number,
// an appointment id or a plate.
func listEventsHandler(events audit.Reader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if events == nil {
			writeError(w, http.StatusNotFound, "events_unavailable", "the configured event sink cannot be queried")
			return
		}

		limit := 50
		if raw := r.URL.Query().Get("limit"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil || n <= 0 || n > 500 {
				writeError(w, http.StatusBadRequest, "invalid_limit", "limit must be between 1 and 500")
				return
			}
			limit = n
		}

		list, err := events.Recent(r.Context(), chi.URLParam(r, "subject"), limit)
		if err != nil {
			handleDomainError(w, err)
			return
		}

		resp := make([]EventResponse, 0, len(list))
		for _, ev := range list {
			resp = append(resp, EventResponse{
				ID:        ev.ID,
				Type:      ev.Type,
				Subject:   ev.Subject,
				Payload:   json.RawMessage(ev.Payload),
				CreatedAt: ev.CreatedAt,
			})
		}
		writeJSON(w, http.StatusOK, resp)
	}
}
