package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"

	"biodb-backend-go/internal/config"
	"biodb-backend-go/internal/db"
	httpapi "biodb-backend-go/internal/http"
	"biodb-backend-go/internal/migrations"
	"biodb-backend-go/internal/services"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	logger, cleanupLogs, err := setupLogger(cfg)
	if err != nil {
		logger.Warn("log file setup failed", "error", err)
	} else {
		defer cleanupLogs()
	}
	slog.SetDefault(logger)

	database, err := db.Open(cfg.DatabaseDriver, cfg.DSN())
	if err != nil {
		logger.Error("db", "error", err)
		os.Exit(1)
	}
	defer database.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := migrations.Apply(ctx, database, cfg.DatabaseDriver); err != nil {
		logger.Error("migrations", "error", err)
		os.Exit(1)
	}

	feed := services.NewSampleFeed()
	go feed.Run(ctx)

	server, err := httpapi.NewServer(database, cfg, feed, logger)
	if err != nil {
		logger.Error("server setup", "error", err)
		os.Exit(1)
	}

	go server.Sessions.Run(ctx, time.Minute)

	addr := ":" + cfg.Port
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           server.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("listening", "addr", addr, "driver", cfg.DatabaseDriver, "hasher", cfg.PasswordHasher)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server", "error", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGTERM, syscall.SIGINT)
	<-stop
	cancel()
	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()
	_ = httpServer.Shutdown(ctxShutdown)
	logger.Info("shutdown complete")
}

// setupLogger writes to stdout and to a daily log file under cfg.LogDir,
// rotating at midnight and keeping cfg.LogRetentionDays files. On error the
// returned logger still writes to stdout.
func setupLogger(cfg config.Config) (*slog.Logger, func(), error) {
	level := parseLevel(cfg.LogLevel)
	stdout := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	if err := os.MkdirAll(cfg.LogDir, 0o755); err != nil {
		return stdout, nil, err
	}

	currentDate := time.Now().Format("2006-01-02")
	file, err := openLogFile(cfg.LogDir, currentDate)
	if err != nil {
		return stdout, nil, err
	}
	out := &rotatingWriter{file: file}
	cleanupOldLogs(cfg.LogDir, cfg.LogRetentionDays)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				date := time.Now().Format("2006-01-02")
				if date == currentDate {
					continue
				}
				newFile, err := openLogFile(cfg.LogDir, date)
				if err != nil {
					continue
				}
				out.swap(newFile)
				currentDate = date
				cleanupOldLogs(cfg.LogDir, cfg.LogRetentionDays)
			case <-ctx.Done():
				return
			}
		}
	}()

	handler := slog.NewTextHandler(io.MultiWriter(os.Stdout, out), &slog.HandlerOptions{Level: level})
	return slog.New(handler), func() {
		cancel()
		out.close()
	}, nil
}

type rotatingWriter struct {
	mu   sync.Mutex
	file *os.File
}

func (w *rotatingWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.file.Write(p)
}

func (w *rotatingWriter) swap(next *os.File) {
	w.mu.Lock()
	previous := w.file
	w.file = next
	w.mu.Unlock()
	_ = previous.Close()
}

func (w *rotatingWriter) close() {
	w.mu.Lock()
	defer w.mu.Unlock()
	_ = w.file.Close()
}

func parseLevel(raw string) slog.Level {
	switch raw {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func openLogFile(logDir, date string) (*os.File, error) {
	filename := filepath.Join(logDir, fmt.Sprintf("app-%s.log", date))
	return os.OpenFile(filename, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
}

func cleanupOldLogs(logDir string, retentionDays int) {
	entries, err := os.ReadDir(logDir)
	if err != nil {
		return
	}
	cutoff := time.Now().AddDate(0, 0, -(retentionDays - 1))
	for _, entry := range entries {
		name := entry.Name()
		if !entry.Type().IsRegular() {
			continue
		}
		if !strings.HasPrefix(name, "app-") || !strings.HasSuffix(name, ".log") {
			continue
		}
		datePart := strings.TrimSuffix(strings.TrimPrefix(name, "app-"), ".log")
		logDate, err := time.Parse("2006-01-02", datePart)
		if err != nil {
			continue
		}
		if logDate.Before(cutoff) {
			_ = os.Remove(filepath.Join(logDir, name))
		}
	}
}
