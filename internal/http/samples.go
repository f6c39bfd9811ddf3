package httpapi

import (
	"encoding/json"
	"net/http"

	"biodb-backend-go/internal/services"
)

type AddSampleRequest struct {
	SampleName     string `json:"sampleName"`
	Species        string `json:"species"`
	CollectionDate string `json:"collectionDate"`
	CollectedBy    string `json:"collectedBy"`
	Description    string `json:"description"`
}

type SampleListResponse struct {
	Items []SampleDTO `json:"items"`
	Total int         `json:"total"`
}

func (s *Server) ListSamples(w http.ResponseWriter, r *http.Request) {
	items, err := s.Gate.ListSamples(r.Context(), CurrentSession(r))
	if err != nil {
		s.WriteServiceError(w, r, err)
		return
	}
	dtos := make([]SampleDTO, 0, len(items))
	for _, item := range items {
		dtos = append(dtos, toSampleDTO(item))
	}
	WriteJSON(w, http.StatusOK, SampleListResponse{Items: dtos, Total: len(dtos)})
}

func (s *Server) AddSample(w http.ResponseWriter, r *http.Request) {
	var req AddSampleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid payload")
		return
	}
	stored, err := s.Gate.AddSample(r.Context(), CurrentSession(r), services.SampleInput{
		SampleName:     req.SampleName,
		Species:        req.Species,
		CollectionDate: req.CollectionDate,
		CollectedBy:    req.CollectedBy,
		Description:    req.Description,
	})
	if err != nil {
		s.WriteServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusCreated, map[string]SampleDTO{"sample": toSampleDTO(stored)})
}
