package services

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"biodb-backend-go/internal/db"
	"biodb-backend-go/internal/models"

	"github.com/jmoiron/sqlx"
)

// CredentialService registers accounts and checks login attempts.
type CredentialService struct {
	DB     *sqlx.DB
	Hasher PasswordHasher
	Now    func() time.Time
}

func NewCredentialService(conn *sqlx.DB, hasher PasswordHasher) *CredentialService {
	if hasher == nil {
		hasher = SHA256Hasher{}
	}
	return &CredentialService{DB: conn, Hasher: hasher, Now: time.Now}
}

type userRow struct {
	ID           int64  `db:"user_id"`
	Name         string `db:"name"`
	RegNumber    string `db:"reg_number"`
	PasswordHash string `db:"password_hash"`
	Role         string `db:"role"`
	CreatedAt    string `db:"created_at"`
}

func (r userRow) toModel() models.User {
	created, _ := db.ParseTimestamp(r.CreatedAt)
	return models.User{
		ID:           r.ID,
		Name:         r.Name,
		RegNumber:    r.RegNumber,
		PasswordHash: r.PasswordHash,
		Role:         r.Role,
		CreatedAt:    created,
	}
}

// Register stores a new user. A taken reg_number yields ErrDuplicateRegistrationNumber
// and leaves the table untouched.
func (s *CredentialService) Register(ctx context.Context, name, regNumber, password, role string) (models.User, error) {
	hash, err := s.Hasher.Hash(password)
	if err != nil {
		return models.User{}, WrapError(err, "hash password")
	}
	createdAt := db.FormatTimestamp(s.Now())
	var id int64
	err = s.DB.GetContext(ctx, &id, s.DB.Rebind(`
INSERT INTO users (name, reg_number, password_hash, role, created_at)
VALUES (?, ?, ?, ?, ?)
RETURNING user_id`), name, regNumber, hash, role, createdAt)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return models.User{}, ErrDuplicateRegistrationNumber
		}
		return models.User{}, WrapError(err, "insert user")
	}
	return userRow{
		ID:           id,
		Name:         name,
		RegNumber:    regNumber,
		PasswordHash: hash,
		Role:         role,
		CreatedAt:    createdAt,
	}.toModel(), nil
}

// Authenticate returns the user whose reg_number and password both match, or nil.
func (s *CredentialService) Authenticate(ctx context.Context, regNumber, password string) (*models.User, error) {
	row := userRow{}
	err := s.DB.GetContext(ctx, &row, s.DB.Rebind(`
SELECT user_id, name, reg_number, password_hash, role, created_at
FROM users
WHERE reg_number = ?`), regNumber)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, WrapError(err, "select user")
	}
	if !s.Hasher.Verify(password, row.PasswordHash) {
		return nil, nil
	}
	user := row.toModel()
	return &user, nil
}

// CountByRegNumber returns how many users hold regNumber; at most one by schema.
func (s *CredentialService) CountByRegNumber(ctx context.Context, regNumber string) (int, error) {
	var count int
	err := s.DB.GetContext(ctx, &count, s.DB.Rebind(`SELECT COUNT(*) FROM users WHERE reg_number = ?`), regNumber)
	return count, err
}
