package services

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"biodb-backend-go/internal/models"
)

type Authenticator interface {
	Register(ctx context.Context, name, regNumber, password, role string) (models.User, error)
	Authenticate(ctx context.Context, regNumber, password string) (*models.User, error)
}

type SampleStore interface {
	Add(ctx context.Context, sample models.NewSample) (models.BiologicalSample, error)
	ListAll(ctx context.Context) ([]models.BiologicalSample, error)
}

type ActivityRecorder interface {
	Record(ctx context.Context, userID int64, activity string) error
}

type RegisterInput struct {
	Name      string
	RegNumber string
	Password  string
	Role      string
}

type SampleInput struct {
	SampleName     string
	Species        string
	CollectionDate string
	CollectedBy    string
	Description    string
}

// Gate moves a session between anonymous and authenticated and decides
// which commands the session's role may run.
type Gate struct {
	Credentials Authenticator
	Samples     SampleStore
	Audit       ActivityRecorder
	AuditLogout bool
	Logger      *slog.Logger
}

func (g *Gate) logger() *slog.Logger {
	if g.Logger != nil {
		return g.Logger
	}
	return slog.Default()
}

func (g *Gate) Register(ctx context.Context, sess *SessionContext, in RegisterInput) (models.User, error) {
	if sess.IsAuthenticated() {
		return models.User{}, ErrAlreadyAuthenticated
	}
	if blank(in.Name) || blank(in.RegNumber) || blank(in.Password) {
		return models.User{}, ValidationError("please fill in all fields")
	}
	if !models.ValidRole(in.Role) {
		return models.User{}, ValidationError("role must be one of: " + strings.Join(models.Roles, ", "))
	}
	user, err := g.Credentials.Register(ctx, in.Name, in.RegNumber, in.Password, in.Role)
	if err != nil {
		return models.User{}, err
	}
	g.logger().InfoContext(ctx, "user registered", "userId", user.ID, "role", user.Role)
	return user, nil
}

func (g *Gate) Login(ctx context.Context, sess *SessionContext, regNumber, password string) (models.User, error) {
	if sess.IsAuthenticated() {
		return models.User{}, ErrAlreadyAuthenticated
	}
	user, err := g.Credentials.Authenticate(ctx, regNumber, password)
	if err != nil {
		return models.User{}, err
	}
	if user == nil {
		return models.User{}, ErrInvalidCredentials
	}
	sess.signIn(*user)
	g.record(ctx, user.ID, ActivityLogin)
	return *user, nil
}

func (g *Gate) Logout(ctx context.Context, sess *SessionContext) error {
	user := sess.User()
	if !sess.IsAuthenticated() || user == nil {
		return ErrNotAuthenticated
	}
	sess.signOut()
	if g.AuditLogout {
		g.record(ctx, user.ID, ActivityLogout)
	}
	return nil
}

func (g *Gate) AddSample(ctx context.Context, sess *SessionContext, in SampleInput) (models.BiologicalSample, error) {
	if err := requireRole(sess, models.RoleResearchPartner); err != nil {
		return models.BiologicalSample{}, err
	}
	if blank(in.SampleName) || blank(in.Species) {
		return models.BiologicalSample{}, ValidationError("please fill in all mandatory fields")
	}
	if in.CollectionDate != "" {
		if _, err := time.Parse(models.DateLayout, in.CollectionDate); err != nil {
			return models.BiologicalSample{}, ValidationError("collection date must be YYYY-MM-DD")
		}
	}
	return g.Samples.Add(ctx, models.NewSample{
		SampleName:     in.SampleName,
		Species:        in.Species,
		CollectionDate: optional(in.CollectionDate),
		CollectedBy:    optional(in.CollectedBy),
		Description:    optional(in.Description),
	})
}

func (g *Gate) ListSamples(ctx context.Context, sess *SessionContext) ([]models.BiologicalSample, error) {
	if !sess.IsAuthenticated() {
		return nil, ErrNotAuthenticated
	}
	return g.Samples.ListAll(ctx)
}

// ForgotPassword is a placeholder until password reset exists.
func (g *Gate) ForgotPassword() error {
	return ErrNotAvailable
}

// record writes an audit row; a failed write is logged and never fails the caller.
func (g *Gate) record(ctx context.Context, userID int64, activity string) {
	if g.Audit == nil {
		return
	}
	if err := g.Audit.Record(ctx, userID, activity); err != nil {
		g.logger().WarnContext(ctx, "access log write failed", "userId", userID, "activity", activity, "error", err)
	}
}

func requireRole(sess *SessionContext, role string) error {
	if !sess.IsAuthenticated() {
		return ErrNotAuthenticated
	}
	if sess.Role() != role {
		return ErrForbidden
	}
	return nil
}

func blank(value string) bool {
	return strings.TrimSpace(value) == ""
}

func optional(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}
