// Package mongostore implements the repository interfaces on MongoDB, keeping
// each user's lists and social graph embedded in the user document.
package mongostore

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	usersCollection   = "users"
	reviewsCollection = "reviews"
)

// Store holds the MongoDB client and the application database.
type Store struct {
	client *mongo.Client
	db     *mongo.Database
}

// Connect dials uri, verifies the connection and returns a Store bound to dbName.
func Connect(ctx context.Context, uri, dbName string) (*Store, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	return &Store{client: client, db: client.Database(dbName)}, nil
}

// Collection returns a handle to the named collection.
func (s *Store) Collection(name string) *mongo.Collection {
	return s.db.Collection(name)
}

// Ping reports whether the server is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, nil)
}

// Close disconnects the client.
func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// EnsureIndexes creates the indexes the repositories rely on. Creating an
// existing index is a no-op.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	userIdx := []mongo.IndexModel{
		{Keys: bson.D{{Key: "username", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
	}
	if _, err := s.Collection(usersCollection).Indexes().CreateMany(ctx, userIdx); err != nil {
		return fmt.Errorf("failed to create user indexes: %w", err)
	}

	reviewIdx := []mongo.IndexModel{
		{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "movieId", Value: 1}}},
		{Keys: bson.D{{Key: "movieId", Value: 1}, {Key: "createdAt", Value: -1}}},
	}
	if _, err := s.Collection(reviewsCollection).Indexes().CreateMany(ctx, reviewIdx); err != nil {
		return fmt.Errorf("failed to create review indexes: %w", err)
	}
	return nil
}

// Drop removes every collection the repositories use.
func (s *Store) Drop(ctx context.Context) error {
	for _, name := range []string{usersCollection, reviewsCollection} {
		if err := s.Collection(name).Drop(ctx); err != nil {
			return fmt.Errorf("failed to drop %s: %w", name, err)
		}
	}
	return nil
}
