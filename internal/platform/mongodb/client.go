package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"todolists/internal/platform/config"
)

// Client wraps the MongoDB driver client with the configured database and
// health checking. One Client is shared by the whole process.
type Client struct {
	*mongo.Client
	database string
}

// New connects to MongoDB and pings it once, so a server that is not
// answering fails startup instead of the first request.
func New(ctx context.Context, cfg config.MongoConfig) (*Client, error) {
	opts := options.Client().
		ApplyURI(cfg.URL).
		SetMaxPoolSize(cfg.MaxPoolSize).
		SetConnectTimeout(cfg.ConnectTimeout).
		SetServerSelectionTimeout(cfg.ConnectTimeout)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("connect to mongodb: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongodb ping failed: %w", err)
	}

	return &Client{Client: client, database: cfg.Database}, nil
}

// Collection returns a handle on a collection of the configured database.
func (c *Client) Collection(name string) *mongo.Collection {
	return c.Database(c.database).Collection(name)
}

// Health pings the primary.
func (c *Client) Health(ctx context.Context) error {
	return c.Ping(ctx, readpref.Primary())
}

// Close disconnects and releases the connection pool.
func (c *Client) Close(ctx context.Context) error {
	return c.Disconnect(ctx)
}
