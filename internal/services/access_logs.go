package services

import (
	"context"
	"time"

	"biodb-backend-go/internal/db"
	"biodb-backend-go/internal/models"

	"github.com/jmoiron/sqlx"
)

const (
	ActivityLogin  = "Login"
	ActivityLogout = "Logout"
)

// AuditLog appends access_logs rows. user_id is not checked against users.
type AuditLog struct {
	DB  *sqlx.DB
	Now func() time.Time
}

func NewAuditLog(conn *sqlx.DB) *AuditLog {
	return &AuditLog{DB: conn, Now: time.Now}
}

func (a *AuditLog) Record(ctx context.Context, userID int64, activity string) error {
	_, err := a.DB.ExecContext(ctx, a.DB.Rebind(`
INSERT INTO access_logs (user_id, access_time, activity)
VALUES (?, ?, ?)`), userID, db.FormatTimestamp(a.Now()), activity)
	return WrapError(err, "insert access log")
}

func (a *AuditLog) ListForUser(ctx context.Context, userID int64) ([]models.AccessLogEntry, error) {
	rows := []struct {
		ID         int64  `db:"log_id"`
		UserID     *int64 `db:"user_id"`
		AccessTime string `db:"access_time"`
		Activity   string `db:"activity"`
	}{}
	if err := a.DB.SelectContext(ctx, &rows, a.DB.Rebind(`
SELECT log_id, user_id, access_time, activity
FROM access_logs
WHERE user_id = ?
ORDER BY log_id`), userID); err != nil {
		return nil, WrapError(err, "select access logs")
	}
	items := make([]models.AccessLogEntry, 0, len(rows))
	for _, row := range rows {
		accessed, _ := db.ParseTimestamp(row.AccessTime)
		items = append(items, models.AccessLogEntry{
			ID:         row.ID,
			UserID:     row.UserID,
			AccessTime: accessed,
			Activity:   row.Activity,
		})
	}
	return items, nil
}
