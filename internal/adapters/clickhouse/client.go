package clickhouse

import (
	"context"
	"fmt"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"

	"studiodesk/internal/adapters/config"
	"studiodesk/pkg/errors"
)

// Client holds the ClickHouse connection used for usage analytics
type Client struct {
	conn driver.Conn
}

// NewClient opens a ClickHouse connection and pings it.
// Usage rows arrive in batches, so a small pool is enough.
func NewClient(ctx context.Context, cfg config.ClickHouseConfig) (*Client, error) {
	conn, err := clickhouse.Open(&clickhouse.Options{
		Addr: []string{fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)},
		Auth: clickhouse.Auth{
			Database: cfg.Database,
			Username: cfg.User,
			Password: cfg.Password,
		},
		Compression:  &clickhouse.Compression{Method: clickhouse.CompressionLZ4},
		DialTimeout:  5 * time.Second,
		MaxOpenConns: 4,
		MaxIdleConns: 2,
	})
	if err != nil {
		return nil, errors.Wrap(err, "open clickhouse")
	}

	if err := conn.Ping(ctx); err != nil {
		_ = conn.Close()
		return nil, errors.Wrapf(err, "ping clickhouse at %s:%d", cfg.Host, cfg.Port)
	}

	return &Client{conn: conn}, nil
}

func (c *Client) Conn() driver.Conn {
	return c.conn
}

func (c *Client) Close() error {
	return c.conn.Close()
}

// Health pings the server; registered as an optional readiness check
func (c *Client) Health(ctx context.Context) error {
	return c.conn.Ping(ctx)
}
