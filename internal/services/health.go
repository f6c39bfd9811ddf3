package services

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/process"
)

type HealthReport struct {
	Status         string    `json:"status"`
	CheckedAt      time.Time `json:"checkedAt"`
	Storage        string    `json:"storage"`
	DiskTotalBytes int64     `json:"diskTotalBytes"`
	DiskFreeBytes  int64     `json:"diskFreeBytes"`
	ProcessRSS     int64     `json:"processRssBytes"`
}

// CaptureHealth pings the store and reports disk space around diskPath.
// Host statistics are best effort; only a failed ping marks the report down.
func CaptureHealth(ctx context.Context, conn *sqlx.DB, diskPath string) HealthReport {
	report := HealthReport{Status: "ok", Storage: "ok", CheckedAt: time.Now().UTC()}
	if err := conn.PingContext(ctx); err != nil {
		report.Status = "degraded"
		report.Storage = "unavailable"
	}

	dir := filepath.Dir(diskPath)
	if dir == "" {
		dir = "."
	}
	diskStat, err := disk.UsageWithContext(ctx, dir)
	if err != nil {
		diskStat, _ = disk.UsageWithContext(ctx, "/")
	}
	if diskStat != nil {
		report.DiskTotalBytes = int64(diskStat.Total)
		report.DiskFreeBytes = int64(diskStat.Free)
	}

	if proc, err := process.NewProcessWithContext(ctx, int32(os.Getpid())); err == nil {
		if info, err := proc.MemoryInfoWithContext(ctx); err == nil && info != nil {
			report.ProcessRSS = int64(info.RSS)
		}
	}
	return report
}
