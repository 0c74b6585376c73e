package repository

import (
	"context"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/UnknownOlympus/pinpoint/internal/models"
)

// Database is the subset of the pgx pool used by the repository.
// Narrowing it to an interface allows mocking in tests.
type Database interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

// Repository stores evaluation runs in Postgres. The history store is
// optional: the pipeline runs fully without a configured database.
type Repository struct {
	db  Database
	log *slog.Logger
}

type Interface interface {
	SaveRun(ctx context.Context, run models.Run) (int, error)
	RecentRuns(ctx context.Context, limit int) ([]models.Run, error)
}

// NewRepository creates a new instance of Repository with the provided Database.
// It returns a pointer to the newly created Repository.
func NewRepository(db Database, log *slog.Logger) *Repository {
	return &Repository{db: db, log: log}
}
