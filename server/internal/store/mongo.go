package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sort"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Mongo is a Store backed by a MongoDB database. The underlying client is
// pooled and safe for concurrent use by every handler.
type Mongo struct {
	db *mongo.Database
}

// Connect dials uri, verifies the deployment answers a ping and returns a
// Mongo store for database dbName. ctx bounds both steps.
func Connect(ctx context.Context, uri, dbName string) (*Mongo, error) {
	if uri == "" {
		return nil, fmt.Errorf("store: connect: empty connection string")
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("store: connect: %w: %w", ErrUnavailable, err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("store: ping: %w: %w", ErrUnavailable, err)
	}

	slog.Info("store: connected to mongodb", "database", dbName)
	return NewMongo(client.Database(dbName)), nil
}

// NewMongo wraps an already connected database handle.
func NewMongo(db *mongo.Database) *Mongo {
	return &Mongo{db: db}
}

// Create inserts doc. The driver assigns an ObjectID when doc has no _id.
func (m *Mongo) Create(ctx context.Context, collection string, doc any) (string, error) {
	res, err := m.db.Collection(collection).InsertOne(ctx, doc)
	if err != nil {
		return "", classify("insert", collection, err)
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		return oid.Hex(), nil
	}
	return fmt.Sprint(res.InsertedID), nil
}

// Query runs a find with filter and drains the cursor.
func (m *Mongo) Query(ctx context.Context, collection string, filter bson.M) ([]bson.Raw, error) {
	if filter == nil {
		filter = bson.M{}
	}
	cur, err := m.db.Collection(collection).Find(ctx, filter)
	if err != nil {
		return nil, classify("find", collection, err)
	}
	defer cur.Close(ctx)

	out := make([]bson.Raw, 0)
	for cur.Next(ctx) {
		// cur.Current is reused by the next batch; keep a copy.
		out = append(out, slices.Clone(cur.Current))
	}
	if err := cur.Err(); err != nil {
		return nil, classify("find", collection, err)
	}
	return out, nil
}

// Collections lists collection names, sorted.
func (m *Mongo) Collections(ctx context.Context) ([]string, error) {
	names, err := m.db.ListCollectionNames(ctx, bson.D{})
	if err != nil {
		return nil, classify("list collections", m.db.Name(), err)
	}
	sort.Strings(names)
	return names, nil
}

// Ping checks the primary is reachable.
func (m *Mongo) Ping(ctx context.Context) error {
	if err := m.db.Client().Ping(ctx, readpref.Primary()); err != nil {
		return classify("ping", m.db.Name(), err)
	}
	return nil
}

// Name returns the database name.
func (m *Mongo) Name() string { return m.db.Name() }

// Close disconnects the client.
func (m *Mongo) Close(ctx context.Context) error {
	return m.db.Client().Disconnect(ctx)
}

// classify wraps a driver error, marking connectivity failures with
// ErrUnavailable.
func classify(op, target string, err error) error {
	if mongo.IsNetworkError(err) || mongo.IsTimeout(err) ||
		errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, mongo.ErrClientDisconnected) {
		return fmt.Errorf("store: %s %s: %w: %w", op, target, ErrUnavailable, err)
	}
	return fmt.Errorf("store: %s %s: %w", op, target, err)
}

var _ Store = (*Mongo)(nil)
