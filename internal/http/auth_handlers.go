package httpapi

import (
	"encoding/json"
	"net/http"
	"time"

	"biodb-backend-go/internal/services"
)

type RegisterRequest struct {
	Name      string `json:"name"`
	RegNumber string `json:"regNumber"`
	Password  string `json:"password"`
	Role      string `json:"role"`
}

type LoginRequest struct {
	RegNumber string `json:"regNumber"`
	Password  string `json:"password"`
}

type TokenResponse struct {
	AccessToken string  `json:"accessToken"`
	ExpiresAt   int64   `json:"expiresAt"`
	User        UserDTO `json:"user"`
}

func (s *Server) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid payload")
		return
	}
	user, err := s.Gate.Register(r.Context(), CurrentSession(r), services.RegisterInput{
		Name:      req.Name,
		RegNumber: req.RegNumber,
		Password:  req.Password,
		Role:      req.Role,
	})
	if err != nil {
		s.WriteServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusCreated, map[string]UserDTO{"user": toUserDTO(user)})
}

func (s *Server) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid payload")
		return
	}
	sess := CurrentSession(r)
	user, err := s.Gate.Login(r.Context(), sess, req.RegNumber, req.Password)
	if err != nil {
		s.WriteServiceError(w, r, err)
		return
	}
	sessionID := s.Sessions.Put(sess, time.Now().Add(s.Tokens.TTL))
	token, exp, err := s.Tokens.CreateSessionToken(sessionID, user.ID, user.Role)
	if err != nil {
		s.Sessions.Delete(sessionID)
		WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	s.Logger.InfoContext(r.Context(), "user logged in", "userId", user.ID, "role", user.Role)
	WriteJSON(w, http.StatusOK, TokenResponse{
		AccessToken: token,
		ExpiresAt:   exp,
		User:        toUserDTO(user),
	})
}

func (s *Server) Logout(w http.ResponseWriter, r *http.Request) {
	if err := s.Gate.Logout(r.Context(), CurrentSession(r)); err != nil {
		s.WriteServiceError(w, r, err)
		return
	}
	s.Sessions.Delete(CurrentSessionID(r))
	WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	s.WriteServiceError(w, r, s.Gate.ForgotPassword())
}
