package httpapi

import (
	"log/slog"
	"net/http"
	"time"

	"biodb-backend-go/internal/config"
	"biodb-backend-go/internal/models"
	"biodb-backend-go/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Server struct {
	DB       *sqlx.DB
	Config   config.Config
	Tokens   services.TokenService
	Sessions *services.SessionStore
	Gate     *services.Gate
	Audit    *services.AuditLog
	Feed     *services.SampleFeed
	Logger   *slog.Logger
}

func NewServer(conn *sqlx.DB, cfg config.Config, feed *services.SampleFeed, logger *slog.Logger) (*Server, error) {
	hasher, err := services.NewPasswordHasher(cfg.PasswordHasher)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	if feed == nil {
		feed = services.NewSampleFeed()
	}
	tokens := services.TokenService{
		Secret: []byte(cfg.JWTSecret),
		Issuer: cfg.JWTIssuer,
		TTL:    time.Duration(cfg.SessionTTLSeconds) * time.Second,
	}
	audit := services.NewAuditLog(conn)
	gate := &services.Gate{
		Credentials: services.NewCredentialService(conn, hasher),
		Samples:     services.NewSampleRepository(conn, feed),
		Audit:       audit,
		AuditLogout: cfg.AuditLogout,
		Logger:      logger,
	}
	return &Server{
		DB:       conn,
		Config:   cfg,
		Tokens:   tokens,
		Sessions: services.NewSessionStore(),
		Gate:     gate,
		Audit:    audit,
		Feed:     feed,
		Logger:   logger,
	}, nil
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(RequestLogger(s.Logger))
	r.Use(Metrics)
	if len(s.Config.CorsOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   s.Config.CorsOrigins,
			AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
			AllowCredentials: false,
			MaxAge:           300,
		}))
	}

	r.Route("/api", func(api chi.Router) {
		api.Get("/health", s.Health)

		api.Group(func(sessioned chi.Router) {
			sessioned.Use(WithSession(s.Tokens, s.Sessions))

			sessioned.Post("/auth/register", s.Register)
			sessioned.Post("/auth/login", s.Login)
			sessioned.Post("/auth/logout", s.Logout)
			sessioned.Post("/auth/forgot-password", s.ForgotPassword)

			sessioned.Route("/samples", func(samples chi.Router) {
				samples.Get("/", s.ListSamples)
				samples.With(RequireRole(models.RoleResearchPartner)).Post("/", s.AddSample)
			})

			sessioned.Route("/me", func(me chi.Router) {
				me.Use(RequireSession)
				me.Get("/", s.Me)
				me.Get("/access-logs", s.AccessLogs)
			})
		})
	})

	r.Handle("/metrics", promhttp.Handler())
	r.Get("/ws/samples", s.SampleSocket)
	return r
}
