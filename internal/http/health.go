package httpapi

import (
	"net/http"

	"biodb-backend-go/internal/services"
)

func (s *Server) Health(w http.ResponseWriter, r *http.Request) {
	report := services.CaptureHealth(r.Context(), s.DB, s.Config.StoragePath)
	status := http.StatusOK
	if report.Storage != "ok" {
		status = http.StatusServiceUnavailable
	}
	WriteJSON(w, status, report)
}
