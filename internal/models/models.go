package models

import "time"

const (
	RoleResearchPartner = "Research Partner"
	RoleGeneralUser     = "General User"
)

// Roles lists the roles a user may register with.
var Roles = []string{RoleResearchPartner, RoleGeneralUser}

func ValidRole(role string) bool {
	for _, r := range Roles {
		if r == role {
			return true
		}
	}
	return false
}

// TimestampLayout is the text format of created_at and access_time columns.
const TimestampLayout = "2006-01-02 15:04:05"

// DateLayout is the text format of collection_date.
const DateLayout = "2006-01-02"

type User struct {
	ID           int64     `db:"user_id"`
	Name         string    `db:"name"`
	RegNumber    string    `db:"reg_number"`
	PasswordHash string    `db:"password_hash"`
	Role         string    `db:"role"`
	CreatedAt    time.Time `db:"-"`
}

// CanAddSamples reports whether the role grants write access to samples.
func (u User) CanAddSamples() bool {
	return u.Role == RoleResearchPartner
}

type BiologicalSample struct {
	RecordID       int64   `db:"record_id"`
	SampleName     string  `db:"sample_name"`
	Species        string  `db:"species"`
	CollectionDate *string `db:"collection_date"`
	CollectedBy    *string `db:"collected_by"`
	Description    *string `db:"description"`
}

// NewSample carries the fields of a sample that has not been stored yet.
type NewSample struct {
	SampleName     string
	Species        string
	CollectionDate *string
	CollectedBy    *string
	Description    *string
}

type AccessLogEntry struct {
	ID         int64     `db:"log_id"`
	UserID     *int64    `db:"user_id"`
	AccessTime time.Time `db:"-"`
	Activity   string    `db:"activity"`
}
