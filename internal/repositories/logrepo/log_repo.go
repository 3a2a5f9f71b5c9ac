package logrepo

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/sqlc-dev/pqtype"

	"github.com/fundbridge/donate/internal/infrastructure/database"
	"github.com/fundbridge/donate/internal/repositories/logrepo/gen"
	"github.com/fundbridge/donate/pkg/logger"
)

// LogRepository persists log lines written through logger.Sink.
type LogRepository struct {
	store *gen.Queries
}

var _ logger.EntryStore = (*LogRepository)(nil)

func New(db *database.DBManager) *LogRepository {
	return NewWithDB(db.Db)
}

func NewWithDB(db *sql.DB) *LogRepository {
	return &LogRepository{store: gen.New(db)}
}

func (r *LogRepository) SaveLog(ctx context.Context, entry logger.Entry) error {
	err := r.store.InsertLog(ctx, gen.InsertLogParams{
		Level:     entry.Level,
		Message:   entry.Message,
		Meta:      pqtype.NullRawMessage{RawMessage: entry.Meta, Valid: len(entry.Meta) > 0},
		Timestamp: entry.Timestamp,
	})
	if err != nil {
		return fmt.Errorf("failed to save log: %w", err)
	}
	return nil
}
