package store

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Memory is a thread-safe in-memory document store. Documents are held as
// BSON so that decoding behaves as it does against MongoDB. Each collection
// keeps insertion order.
type Memory struct {
	mu    sync.RWMutex
	name  string
	data  map[string][]bson.Raw
	ids   map[string]map[string]struct{} // collection -> _id set
	newID func() primitive.ObjectID      // injectable for deterministic tests
}

// NewMemory creates an empty Memory store reporting the given database name.
func NewMemory(name string) *Memory {
	return &Memory{
		name:  name,
		data:  make(map[string][]bson.Raw),
		ids:   make(map[string]map[string]struct{}),
		newID: primitive.NewObjectID,
	}
}

// Create stores doc, assigning a new ObjectID unless doc already has an _id.
func (m *Memory) Create(ctx context.Context, collection string, doc any) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("store: insert %s: %w: %w", collection, ErrUnavailable, err)
	}

	raw, id, err := m.withID(doc)
	if err != nil {
		return "", fmt.Errorf("store: insert %s: %w", collection, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	set, ok := m.ids[collection]
	if !ok {
		set = make(map[string]struct{})
		m.ids[collection] = set
	}
	if _, dup := set[id]; dup {
		return "", fmt.Errorf("store: insert %s: duplicate _id %s", collection, id)
	}
	set[id] = struct{}{}
	m.data[collection] = append(m.data[collection], raw)
	return id, nil
}

// withID encodes doc and makes sure it carries an _id as its first field.
func (m *Memory) withID(doc any) (bson.Raw, string, error) {
	encoded, err := bson.Marshal(doc)
	if err != nil {
		return nil, "", fmt.Errorf("encode document: %w", err)
	}
	raw := bson.Raw(encoded)

	if existing, err := raw.LookupErr("_id"); err == nil {
		if oid, ok := existing.ObjectIDOK(); ok {
			return raw, oid.Hex(), nil
		}
		return raw, existing.String(), nil
	}

	var fields bson.D
	if err := bson.Unmarshal(raw, &fields); err != nil {
		return nil, "", fmt.Errorf("decode document: %w", err)
	}
	oid := m.newID()
	withID, err := bson.Marshal(append(bson.D{{Key: "_id", Value: oid}}, fields...))
	if err != nil {
		return nil, "", fmt.Errorf("encode document: %w", err)
	}
	return withID, oid.Hex(), nil
}

// Query returns the documents of collection whose fields are BSON-equal to
// every filter value. Numeric values only match when their BSON types agree.
func (m *Memory) Query(ctx context.Context, collection string, filter bson.M) ([]bson.Raw, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("store: find %s: %w: %w", collection, ErrUnavailable, err)
	}

	want := make(map[string]bson.RawValue, len(filter))
	for k, v := range filter {
		t, b, err := bson.MarshalValue(v)
		if err != nil {
			return nil, fmt.Errorf("store: find %s: encode filter %q: %w", collection, k, err)
		}
		want[k] = bson.RawValue{Type: t, Value: b}
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]bson.Raw, 0, len(m.data[collection]))
	for _, doc := range m.data[collection] {
		if matches(doc, want) {
			out = append(out, doc)
		}
	}
	return out, nil
}

func matches(doc bson.Raw, want map[string]bson.RawValue) bool {
	for k, v := range want {
		got, err := doc.LookupErr(k)
		if err != nil || !got.Equal(v) {
			return false
		}
	}
	return true
}

// Collections returns the names of all collections holding documents, sorted.
func (m *Memory) Collections(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("store: list collections: %w: %w", ErrUnavailable, err)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	names := make([]string, 0, len(m.data))
	for name := range m.data {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// Ping always succeeds unless ctx is done.
func (m *Memory) Ping(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("store: ping: %w: %w", ErrUnavailable, err)
	}
	return nil
}

// Name returns the database name given to NewMemory.
func (m *Memory) Name() string { return m.name }

// Count returns the number of documents held in collection.
func (m *Memory) Count(collection string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.data[collection])
}

var _ Store = (*Memory)(nil)
