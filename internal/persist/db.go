// Package persist implements the WorldDatabase facade (§4.6) over a
// Postgres character store: one pgx pool shared by every zone
// connection's load/commit path, with the store's schema migrations
// embedded in the binary.
package persist

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/kvatch/worldserver/internal/config"
)

// pingTimeout bounds the connectivity probe run before the pool is handed
// to callers: a store that can't answer within this window is reported
// down at boot rather than at the first player's login.
const pingTimeout = 5 * time.Second

// DB is the character store handle: a pgx pool plus the logger the repo
// layer shares. The world server holds exactly one.
type DB struct {
	Pool *pgxpool.Pool
	log  *zap.Logger
}

// NewDB opens, sizes, and verifies the character store pool described by
// cfg.
func NewDB(ctx context.Context, cfg config.DatabaseConfig, log *zap.Logger) (*DB, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse database dsn: %w", err)
	}
	poolCfg.MaxConns = int32(cfg.MaxOpenConns)
	poolCfg.MinConns = int32(cfg.MaxIdleConns)
	poolCfg.MaxConnLifetime = cfg.ConnMaxLifetime

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("open character store: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping character store: %w", err)
	}

	log.Info("character store connected",
		zap.Int32("max_conns", poolCfg.MaxConns),
		zap.Int32("min_conns", poolCfg.MinConns),
		zap.Duration("conn_lifetime", poolCfg.MaxConnLifetime),
	)
	return &DB{Pool: pool, log: log}, nil
}

// Close drains the pool. Called after the acceptor has stopped, so no
// in-flight logout commit loses its connection.
func (db *DB) Close() {
	db.Pool.Close()
	db.log.Info("character store closed")
}
