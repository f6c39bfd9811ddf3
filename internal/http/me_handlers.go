package httpapi

import (
	"net/http"
)

type AccessLogResponse struct {
	Items []AccessLogDTO `json:"items"`
}

func (s *Server) Me(w http.ResponseWriter, r *http.Request) {
	user := CurrentSession(r).User()
	if user == nil {
		WriteError(w, http.StatusUnauthorized, "Authentication required")
		return
	}
	WriteJSON(w, http.StatusOK, map[string]UserDTO{"user": toUserDTO(*user)})
}

func (s *Server) AccessLogs(w http.ResponseWriter, r *http.Request) {
	user := CurrentSession(r).User()
	if user == nil {
		WriteError(w, http.StatusUnauthorized, "Authentication required")
		return
	}
	entries, err := s.Audit.ListForUser(r.Context(), user.ID)
	if err != nil {
		s.WriteServiceError(w, r, err)
		return
	}
	items := make([]AccessLogDTO, 0, len(entries))
	for _, entry := range entries {
		items = append(items, AccessLogDTO{ID: entry.ID, AccessTime: entry.AccessTime, Activity: entry.Activity})
	}
	WriteJSON(w, http.StatusOK, AccessLogResponse{Items: items})
}
