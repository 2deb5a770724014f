// Package storage provides the durable store for targets, sessions and collected comments.
package storage

import (
	"context"
	"fmt"
	"time"

	"xhs-monitor/internal/config"
	"xhs-monitor/internal/models"
)

// Store defines the interface for database operations.
// Both SQLite and PostgreSQL implementations satisfy this interface.
type Store interface {
	Close() error

	// DatabaseType returns the name of the database backend ("SQLite" or "PostgreSQL").
	DatabaseType() string
	Ping(ctx context.Context) error

	// Target operations
	GetMonitorTargets(ctx context.Context, userID string) ([]models.Target, error)
	AddMonitorTarget(ctx context.Context, userID, noteURL string) (models.Target, error)
	GetLastCommentCount(ctx context.Context, targetID int64) (int, error)
	SetLastCommentCount(ctx context.Context, targetID int64, count int) error

	// Comment operations
	CommentExists(ctx context.Context, commentID string) (bool, error)
	InsertComments(ctx context.Context, records []models.FlatRecord) (int, error)
	// SaveComments checks and inserts every record in one transaction. Records whose comment
	// ID is already stored are skipped. Any failure rolls the whole batch back.
	SaveComments(ctx context.Context, records []models.FlatRecord) (models.SaveResult, error)

	// Session operations
	ListLiveSessions(ctx context.Context) ([]models.Session, error)
	ListSessions(ctx context.Context) ([]models.Session, error)
	MarkSessionDead(ctx context.Context, sessionID int64) error
	MarkSessionUsed(ctx context.Context, sessionID int64, at time.Time) error
	AddSession(ctx context.Context, value string, alive bool) (models.Session, error)
	CountLiveSessions(ctx context.Context) (int, error)
}

// Open returns the backend selected by cfg.DBDriver.
func Open(cfg *config.Config) (Store, error) {
	switch cfg.DBDriver {
	case config.DriverPostgres:
		return NewPostgres(cfg.DatabaseURL)
	case config.DriverSQLite, "":
		return NewSQLite(cfg.DBPath)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.DBDriver)
	}
}
