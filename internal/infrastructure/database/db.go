package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/lib/pq"

	"github.com/fundbridge/donate/pkg/config"
	"github.com/fundbridge/donate/pkg/db"
)

type DBManager struct {
	Db *sql.DB
}

func New(cfg *config.DatabaseConfig) (*DBManager, error) {
	DBDSN := db.GetDBDSN(cfg)
	Db, err := sql.Open(db.DriverName(cfg), DBDSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if cfg.MaxOpenConns > 0 {
		Db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		Db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		Db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := Db.PingContext(ctx); err != nil {
		Db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DBManager{
		Db: Db,
	}, nil
}

// Ping reports whether the database is reachable.
func (dm *DBManager) Ping(ctx context.Context) error {
	return dm.Db.PingContext(ctx)
}

func (dm *DBManager) ShutDown() {
	if dm.Db != nil {
		dm.Db.Close()
	}
}
