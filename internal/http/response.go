package httpapi

import (
	"encoding/json"
	"net/http"

	"biodb-backend-go/internal/services"
)

type ErrorResponse struct {
	Message string `json:"message"`
}

func WriteJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func WriteError(w http.ResponseWriter, status int, message string) {
	WriteJSON(w, status, ErrorResponse{Message: message})
}

// WriteServiceError converts a gate or repository error into its HTTP response.
func (s *Server) WriteServiceError(w http.ResponseWriter, r *http.Request, err error) {
	serr := services.ToServiceError(err)
	if serr.Status >= http.StatusInternalServerError {
		s.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "error", err)
	}
	WriteError(w, serr.Status, serr.Message)
}
