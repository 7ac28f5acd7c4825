package api

import (
	"net/http"

	"github.com/andriandrian/lifeline-admin/internal/websocket"
)

// ServeWsHandler upgrades an authenticated operator to the change feed. The
// access token comes from the token query parameter or the session cookie.
func (s *Server) ServeWsHandler(w http.ResponseWriter, r *http.Request) {
	tokenString := r.URL.Query().Get("token")
	if tokenString == "" {
		tokenString = bearerToken(r)
	}
	if tokenString == "" {
		writeError(w, http.StatusUnauthorized, "Authorization required")
		return
	}

	claims, err := s.auth.Verify(tokenString)
	if err != nil {
		s.log.WithError(err).Debug("websocket connection attempt with invalid token")
		writeError(w, http.StatusUnauthorized, "Invalid token")
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.WithError(err).Warn("websocket upgrade failed")
		return
	}

	client := websocket.NewClient(s.wsHub, conn, claims.UserID)
	if !s.wsHub.Add(client) {
		s.log.Debug("websocket hub stopped, closing connection")
		_ = conn.Close()
		return
	}

	go client.ReadPump()
	go client.WritePump()
}
