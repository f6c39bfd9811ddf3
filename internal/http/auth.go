package httpapi

import (
	"context"
	"net/http"
	"strings"

	"biodb-backend-go/internal/services"
)

type contextKey string

const (
	ctxSession   contextKey = "session"
	ctxSessionID contextKey = "sessionID"
)

// WithSession attaches the caller's SessionContext to the request. Requests
// without a bearer token get a fresh anonymous session; a token that does not
// resolve to a live session is rejected.
func WithSession(tokens services.TokenService, sessions *services.SessionStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			auth := r.Header.Get("Authorization")
			if auth == "" {
				ctx := context.WithValue(r.Context(), ctxSession, services.NewSessionContext())
				next.ServeHTTP(w, r.WithContext(ctx))
				return
			}
			if !strings.HasPrefix(auth, "Bearer ") {
				WriteError(w, http.StatusUnauthorized, "Authentication failed")
				return
			}
			sess, sessionID, ok := resolveSession(tokens, sessions, strings.TrimSpace(strings.TrimPrefix(auth, "Bearer ")))
			if !ok {
				WriteError(w, http.StatusUnauthorized, "Authentication failed")
				return
			}
			ctx := context.WithValue(r.Context(), ctxSession, sess)
			ctx = context.WithValue(ctx, ctxSessionID, sessionID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func resolveSession(tokens services.TokenService, sessions *services.SessionStore, tokenStr string) (*services.SessionContext, string, bool) {
	claims, err := tokens.ParseSessionToken(tokenStr)
	if err != nil {
		return nil, "", false
	}
	sess, ok := sessions.Get(claims.SessionID)
	if !ok || !sess.IsAuthenticated() {
		return nil, "", false
	}
	return sess, claims.SessionID, true
}

// CurrentSession never returns nil inside WithSession.
func CurrentSession(r *http.Request) *services.SessionContext {
	if value, ok := r.Context().Value(ctxSession).(*services.SessionContext); ok {
		return value
	}
	return services.NewSessionContext()
}

func CurrentSessionID(r *http.Request) string {
	if value, ok := r.Context().Value(ctxSessionID).(string); ok {
		return value
	}
	return ""
}

func RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !CurrentSession(r).IsAuthenticated() {
			WriteError(w, http.StatusUnauthorized, "Authentication required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func RequireRole(role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess := CurrentSession(r)
			if !sess.IsAuthenticated() {
				WriteError(w, http.StatusUnauthorized, "Authentication required")
				return
			}
			if sess.Role() != role {
				WriteError(w, http.StatusForbidden, "Not allowed")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
