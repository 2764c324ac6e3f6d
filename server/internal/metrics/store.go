package metrics

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/coffeetrack/coffeetrack/server/internal/store"
)

// instrumented decorates a store.Store with operation metrics.
type instrumented struct {
	store.Store
	m *Metrics
}

// Instrument returns st wrapped so that every Create, Query, Collections and
// Ping call is counted and timed.
func Instrument(st store.Store, m *Metrics) store.Store {
	return &instrumented{Store: st, m: m}
}

func (s *instrumented) Create(ctx context.Context, collection string, doc any) (string, error) {
	start := time.Now()
	id, err := s.Store.Create(ctx, collection, doc)
	s.m.ObserveStoreOp("create", collection, err, time.Since(start))
	return id, err
}

func (s *instrumented) Query(ctx context.Context, collection string, filter bson.M) ([]bson.Raw, error) {
	start := time.Now()
	docs, err := s.Store.Query(ctx, collection, filter)
	s.m.ObserveStoreOp("query", collection, err, time.Since(start))
	return docs, err
}

func (s *instrumented) Collections(ctx context.Context) ([]string, error) {
	start := time.Now()
	names, err := s.Store.Collections(ctx)
	s.m.ObserveStoreOp("collections", "", err, time.Since(start))
	return names, err
}

func (s *instrumented) Ping(ctx context.Context) error {
	start := time.Now()
	err := s.Store.Ping(ctx)
	s.m.ObserveStoreOp("ping", "", err, time.Since(start))
	return err
}
