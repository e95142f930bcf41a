package database

import (
	"context"
	"fmt"
	"log/slog"

	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"
)

const (
	usersCollection = "users"
	filesCollection = "files"
)

// DB wraps a mongo client and the named application database, and
// provides health checks and collection handles.
type DB struct {
	client *mongo.Client
	db     *mongo.Database
}

// New connects to the document store and verifies the connection.
func New(ctx context.Context, uri, dbName string) (*DB, error) {
	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to create mongo client: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping document store: %w", err)
	}

	slog.Info("connected to document store", "database", dbName)
	return &DB{client: client, db: client.Database(dbName)}, nil
}

// Users returns the users collection handle.
func (d *DB) Users() *mongo.Collection {
	return d.db.Collection(usersCollection)
}

// Files returns the files collection handle.
func (d *DB) Files() *mongo.Collection {
	return d.db.Collection(filesCollection)
}

// HealthCheck verifies the document store connection is alive.
func (d *DB) HealthCheck(ctx context.Context) error {
	return d.client.Ping(ctx, readpref.Primary())
}

// Close shuts down the client and its connection pool.
func (d *DB) Close(ctx context.Context) error {
	return d.client.Disconnect(ctx)
}
