package store

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
)

// ErrUnavailable is wrapped by every error caused by the store being
// unreachable (connection refused, timeouts, closed client).
var ErrUnavailable = errors.New("store unavailable")

// Store is a document store grouped into named collections.
//
// Documents are passed in as any BSON-encodable value and come back as raw
// BSON; use Decode to turn a result set into typed records.
type Store interface {
	// Create persists doc in collection and returns its assigned identifier
	// as text. A doc without an _id field gets a new ObjectID.
	Create(ctx context.Context, collection string, doc any) (string, error)

	// Query returns every document in collection whose fields exactly equal
	// the filter values. A nil or empty filter matches all documents.
	// Result order is unspecified.
	Query(ctx context.Context, collection string, filter bson.M) ([]bson.Raw, error)

	// Collections lists the collection names in the database.
	Collections(ctx context.Context) ([]string, error)

	// Ping checks that the store is reachable.
	Ping(ctx context.Context) error

	// Name is the database name.
	Name() string
}

// Decode unmarshals each raw document into a T.
func Decode[T any](docs []bson.Raw) ([]T, error) {
	out := make([]T, 0, len(docs))
	for i, d := range docs {
		var v T
		if err := bson.Unmarshal(d, &v); err != nil {
			return nil, fmt.Errorf("store: decode document %d: %w", i, err)
		}
		out = append(out, v)
	}
	return out, nil
}

// QueryAs runs Query and decodes the result set into T.
func QueryAs[T any](ctx context.Context, s Store, collection string, filter bson.M) ([]T, error) {
	docs, err := s.Query(ctx, collection, filter)
	if err != nil {
		return nil, err
	}
	return Decode[T](docs)
}
