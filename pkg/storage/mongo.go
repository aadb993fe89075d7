package storage

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// MongoOptions describes a Mongo connection
type MongoOptions struct {
	URI            string
	Database       string
	ConnectTimeout time.Duration
}

// ConnectMongo opens a client, pings the primary and returns the named database
func ConnectMongo(ctx context.Context, opts MongoOptions) (*mongo.Client, *mongo.Database, error) {
	if opts.URI == "" {
		return nil, nil, fmt.Errorf("mongo uri is required")
	}
	if opts.Database == "" {
		return nil, nil, fmt.Errorf("mongo database is required")
	}
	timeout := opts.ConnectTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(opts.URI).SetConnectTimeout(timeout))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to mongo: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, nil, fmt.Errorf("failed to ping mongo: %w", err)
	}
	return client, client.Database(opts.Database), nil
}
