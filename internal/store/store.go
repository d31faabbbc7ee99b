// Package store opens the ledger store selected by configuration.
//
// The drivers live in subpackages: postgres (pgx), sqlite (modernc.org/sqlite)
// and memory.
package store

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/JonMunkholm/ledger/internal/config"
	"github.com/JonMunkholm/ledger/internal/core"
	"github.com/JonMunkholm/ledger/internal/store/memory"
	"github.com/JonMunkholm/ledger/internal/store/postgres"
	"github.com/JonMunkholm/ledger/internal/store/sqlite"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Open connects to the store cfg.Driver names. The returned function
// releases the connection.
func Open(ctx context.Context, cfg config.DatabaseConfig) (core.Store, func(), error) {
	switch strings.ToLower(cfg.Driver) {
	case "postgres", "":
		pool, err := openPool(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}
		return postgres.New(pool), pool.Close, nil

	case "sqlite":
		s, err := sqlite.Open(ctx, cfg.URL)
		if err != nil {
			return nil, nil, err
		}
		slog.Info("connected to database", "driver", "sqlite", "path", cfg.URL)
		return s, func() { s.Close() }, nil

	case "memory":
		slog.Warn("using in-memory store, data is lost on exit")
		return memory.New(), func() {}, nil
	}
	return nil, nil, fmt.Errorf("unknown database driver %q", cfg.Driver)
}

func openPool(ctx context.Context, cfg config.DatabaseConfig) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}

	poolConfig.MaxConns = int32(cfg.MaxConns)
	poolConfig.MinConns = int32(cfg.MinConns)
	poolConfig.MaxConnLifetime = cfg.MaxConnLifetime
	poolConfig.MaxConnIdleTime = cfg.MaxConnIdleTime

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if u, err := url.Parse(cfg.URL); err == nil {
		slog.Info("connected to database", "driver", "postgres", "name", strings.TrimPrefix(u.Path, "/"))
	} else {
		slog.Info("connected to database", "driver", "postgres")
	}
	return pool, nil
}
