package postgres

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // PostgreSQL driver

	"studiodesk/internal/adapters/config"
	"studiodesk/pkg/errors"
)

// Client holds the sqlx pool. Only connected when session memory is kept in PostgreSQL.
type Client struct {
	db *sqlx.DB
}

// NewClient connects and sizes the pool from cfg.MaxConns
func NewClient(ctx context.Context, cfg config.PostgresConfig) (*Client, error) {
	db, err := sqlx.ConnectContext(ctx, "postgres", cfg.DSN())
	if err != nil {
		return nil, errors.Wrapf(err, "connect postgres %s:%d/%s", cfg.Host, cfg.Port, cfg.Database)
	}

	conns := max(cfg.MaxConns, 2)
	db.SetMaxOpenConns(conns)
	db.SetMaxIdleConns(conns / 2)
	db.SetConnMaxLifetime(time.Hour)
	db.SetConnMaxIdleTime(10 * time.Minute)

	return &Client{db: db}, nil
}

func (c *Client) DB() *sqlx.DB {
	return c.db
}

func (c *Client) Close() error {
	return c.db.Close()
}

// Health pings the pool; registered as an optional readiness check
func (c *Client) Health(ctx context.Context) error {
	return c.db.PingContext(ctx)
}
