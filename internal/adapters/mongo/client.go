package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"studiodesk/internal/adapters/config"
)

// Collection names of the studio database
const (
	CollectionClients    = "clients"
	CollectionCourses    = "courses"
	CollectionClasses    = "classes"
	CollectionOrders     = "orders"
	CollectionPayments   = "payments"
	CollectionAttendance = "attendance"

	// CollectionMemory lives in the memory database, not the studio one
	CollectionMemory = "memory_sessions"
)

// Client wraps the process-wide mongo.Client.
// The driver pools connections, so one Client is shared by every repository.
type Client struct {
	client   *mongo.Client
	db       *mongo.Database
	memoryDB *mongo.Database
}

// NewClient connects to MongoDB and verifies the primary is reachable
func NewClient(ctx context.Context, cfg config.MongoConfig) (*Client, error) {
	opts := options.Client().
		ApplyURI(cfg.URL).
		SetMaxPoolSize(cfg.MaxPoolSize).
		SetServerSelectionTimeout(cfg.Timeout).
		SetConnectTimeout(cfg.Timeout)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	return &Client{
		client:   client,
		db:       client.Database(cfg.Database),
		memoryDB: client.Database(cfg.MemoryDatabase),
	}, nil
}

// Database returns the studio database holding the six business collections
func (c *Client) Database() *mongo.Database {
	return c.db
}

// MemoryDatabase returns the database holding session memory
func (c *Client) MemoryDatabase() *mongo.Database {
	return c.memoryDB
}

// Collection is a shortcut for Database().Collection(name)
func (c *Client) Collection(name string) *mongo.Collection {
	return c.db.Collection(name)
}

// Health checks MongoDB connectivity
func (c *Client) Health(ctx context.Context) error {
	return c.client.Ping(ctx, readpref.Primary())
}

// Close disconnects the client
func (c *Client) Close(ctx context.Context) error {
	return c.client.Disconnect(ctx)
}
