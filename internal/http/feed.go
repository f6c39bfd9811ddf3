package httpapi

import (
	"net/http"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// SampleSocket streams newly added samples to any logged-in viewer. Browsers
// cannot set headers on websocket requests, so the token comes as a query
// parameter.
func (s *Server) SampleSocket(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		WriteError(w, http.StatusUnauthorized, "Authentication failed")
		return
	}
	if _, _, ok := resolveSession(s.Tokens, s.Sessions, token); !ok {
		WriteError(w, http.StatusUnauthorized, "Authentication failed")
		return
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	s.Feed.Add(conn)
	defer func() {
		s.Feed.Remove(conn)
		_ = conn.Close()
	}()
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
}
