package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"
)

type EventResponse struct {
	ID        int64           `json:"id" example:"123"`
	UserID    int64           `json:"user_id" example:"1"`
	EventType string          `json:"event_type" example:"faq.created"`
	EventTime time.Time       `json:"event_time"`
	Payload   json.RawMessage `json:"payload" swaggertype:"object"`
}

// @Summary      Get new events
// @Description  Retrieves changes made by any operator since a given event ID. Used by the dashboard to know when to reload a list.
// @Tags         events
// @Produce      json
// @Security     BearerAuth
// @Param        since  query     int  false  "The ID of the last event received. Omit or use 0 to get all events."
// @Success      200    {object}  Envelope{data=[]EventResponse}
// @Failure      400    {object}  Envelope "Bad Request"
// @Failure      401    {object}  Envelope "Unauthorized"
// @Failure      500    {object}  Envelope "Internal Server Error"
// @Router       /events [get]
func (s *Server) GetEventsHandler(w http.ResponseWriter, r *http.Request) {
	sinceStr := r.URL.Query().Get("since")
	if sinceStr == "" {
		sinceStr = "0"
	}

	sinceID, err := strconv.ParseInt(sinceStr, 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid 'since' parameter, must be a number")
		return
	}

	events, err := s.store.GetEventsSince(r.Context(), sinceID)
	if err != nil {
		s.writeStoreError(w, r, err, "event")
		return
	}

	writeJSON(w, http.StatusOK, events)
}
