// Package db manages the pgx PostgreSQL connection pool.
//
// Design decisions:
//   - Uses pgxpool for connection pooling; no pool tuning beyond pgx defaults.
//   - Every Fetch/Execute runs in its own transaction (a "session"):
//     commit on success, rollback and return the driver error otherwise.
//   - SSH tunnel integration is handled transparently: if SSH is enabled,
//     we first establish the tunnel, then connect pgx to the local endpoint.
package db

import (
	"context"
	"fmt"

	"github.com/DachengChen/erdchat/applog"
	"github.com/DachengChen/erdchat/config"
	"github.com/DachengChen/erdchat/ssh"
	pgx "github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// sessionSource hands out transactions; *pgxpool.Pool satisfies it.
type sessionSource interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// DB wraps a pgx connection pool and optional SSH tunnel.
type DB struct {
	Pool   *pgxpool.Pool
	Tunnel *ssh.Tunnel

	sessions sessionSource
	log      *zap.Logger
}

var _ Querier = (*DB)(nil)

// Connect establishes a PostgreSQL connection, optionally through an SSH tunnel.
func Connect(ctx context.Context, cfg config.Config, log *zap.Logger) (*DB, error) {
	log = applog.OrNop(log)
	d := &DB{log: log}

	if cfg.SSH.Enabled {
		tunnel, err := ssh.NewTunnel(cfg.SSH, cfg.Host, cfg.Port, log.Named("ssh"))
		if err != nil {
			return nil, fmt.Errorf("ssh tunnel: %w", err)
		}
		localAddr, err := tunnel.Start(ctx)
		if err != nil {
			return nil, fmt.Errorf("ssh tunnel start: %w", err)
		}
		d.Tunnel = tunnel

		cfg.Host = localAddr.Host
		cfg.Port = localAddr.Port
	}

	pool, err := pgxpool.New(ctx, cfg.DSN())
	if err != nil {
		d.Close()
		return nil, fmt.Errorf("pgx connect: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		d.Close()
		return nil, fmt.Errorf("pgx ping: %w", err)
	}

	d.Pool = pool
	d.sessions = pool
	log.Info("connected",
		zap.String("host", cfg.Host),
		zap.Int("port", cfg.Port),
		zap.String("database", cfg.Database))
	return d, nil
}

// Close shuts down the pool and SSH tunnel.
func (d *DB) Close() {
	if d.Pool != nil {
		d.Pool.Close()
	}
	if d.Tunnel != nil {
		d.Tunnel.Stop()
	}
	d.log.Info("database connection closed")
}
