package store

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type sample struct {
	ID      primitive.ObjectID `bson:"_id,omitempty"`
	PlantID string             `bson:"plant_id"`
	Height  *float64           `bson:"height_cm"`
}

func f64(v float64) *float64 { return &v }

// sequentialIDs returns an ObjectID generator with predictable values.
func sequentialIDs() func() primitive.ObjectID {
	var n byte
	return func() primitive.ObjectID {
		n++
		var id primitive.ObjectID
		id[11] = n
		return id
	}
}

func TestCreateAndQuery(t *testing.T) {
	ctx := context.Background()
	st := NewMemory("test")

	id, err := st.Create(ctx, "growthlog", sample{PlantID: "p1", Height: f64(12)})
	require.NoError(t, err)
	assert.True(t, primitive.IsValidObjectID(id), "id %q is not an ObjectID", id)

	docs, err := st.Query(ctx, "growthlog", nil)
	require.NoError(t, err)
	require.Len(t, docs, 1)

	got, err := Decode[sample](docs)
	require.NoError(t, err)
	assert.Equal(t, id, got[0].ID.Hex())
	assert.Equal(t, "p1", got[0].PlantID)
	assert.Equal(t, 12.0, *got[0].Height)
}

func TestCreate_IDIsFirstField(t *testing.T) {
	st := NewMemory("test")
	_, err := st.Create(context.Background(), "plant", bson.M{"name": "a"})
	require.NoError(t, err)

	docs, _ := st.Query(context.Background(), "plant", nil)
	elems, err := docs[0].Elements()
	require.NoError(t, err)
	assert.Equal(t, "_id", elems[0].Key())
}

func TestCreate_KeepsExistingID(t *testing.T) {
	st := NewMemory("test")
	oid := primitive.NewObjectID()

	id, err := st.Create(context.Background(), "plant", sample{ID: oid})
	require.NoError(t, err)
	assert.Equal(t, oid.Hex(), id)

	_, err = st.Create(context.Background(), "plant", sample{ID: oid})
	assert.Error(t, err, "duplicate _id must be rejected")
	assert.Equal(t, 1, st.Count("plant"))
}

func TestCreate_UniqueIDs(t *testing.T) {
	st := NewMemory("test")
	st.newID = sequentialIDs()

	seen := map[string]bool{}
	for i := 0; i < 5; i++ {
		id, err := st.Create(context.Background(), "plant", bson.M{"n": i})
		require.NoError(t, err)
		assert.False(t, seen[id], "id %s assigned twice", id)
		seen[id] = true
	}
}

func TestQuery_ExactMatchFilter(t *testing.T) {
	ctx := context.Background()
	st := NewMemory("test")
	for _, p := range []string{"p1", "p2", "p1"} {
		_, err := st.Create(ctx, "sensorreading", sample{PlantID: p})
		require.NoError(t, err)
	}

	docs, err := st.Query(ctx, "sensorreading", bson.M{"plant_id": "p1"})
	require.NoError(t, err)
	assert.Len(t, docs, 2)

	docs, err = st.Query(ctx, "sensorreading", bson.M{"plant_id": "nope"})
	require.NoError(t, err)
	assert.Empty(t, docs)

	docs, err = st.Query(ctx, "sensorreading", bson.M{"missing_field": "p1"})
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestQuery_EmptyFilterMatchesAll(t *testing.T) {
	ctx := context.Background()
	st := NewMemory("test")
	for i := 0; i < 3; i++ {
		_, _ = st.Create(ctx, "plant", bson.M{"n": i})
	}
	docs, err := st.Query(ctx, "plant", bson.M{})
	require.NoError(t, err)
	assert.Len(t, docs, 3)
}

func TestQuery_UnknownCollection(t *testing.T) {
	docs, err := NewMemory("test").Query(context.Background(), "nothing", nil)
	require.NoError(t, err)
	assert.NotNil(t, docs)
	assert.Empty(t, docs)
}

func TestQueryAs(t *testing.T) {
	ctx := context.Background()
	st := NewMemory("test")
	_, _ = st.Create(ctx, "growthlog", sample{PlantID: "p1"})
	_, _ = st.Create(ctx, "growthlog", sample{PlantID: "p2"})

	got, err := QueryAs[sample](ctx, st, "growthlog", bson.M{"plant_id": "p2"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "p2", got[0].PlantID)
	assert.Nil(t, got[0].Height)
}

func TestDecode_TypeMismatch(t *testing.T) {
	raw, err := bson.Marshal(bson.M{"height_cm": "tall"})
	require.NoError(t, err)
	_, err = Decode[sample]([]bson.Raw{raw})
	assert.Error(t, err)
}

func TestCancelledContextIsUnavailable(t *testing.T) {
	st := NewMemory("test")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := st.Create(ctx, "plant", bson.M{})
	assert.ErrorIs(t, err, ErrUnavailable)
	_, err = st.Query(ctx, "plant", nil)
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.ErrorIs(t, st.Ping(ctx), ErrUnavailable)
	assert.Equal(t, 0, st.Count("plant"))
}

func TestCollections(t *testing.T) {
	ctx := context.Background()
	st := NewMemory("coffee")
	_, _ = st.Create(ctx, "sensorreading", bson.M{})
	_, _ = st.Create(ctx, "plant", bson.M{})

	names, err := st.Collections(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"plant", "sensorreading"}, names)
	assert.Equal(t, "coffee", st.Name())
	assert.NoError(t, st.Ping(ctx))
}

func TestConcurrentCreates(t *testing.T) {
	st := NewMemory("test")
	var wg sync.WaitGroup

	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := st.Create(context.Background(), "sensorreading", sample{PlantID: "p"})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, 100, st.Count("sensorreading"))
}

func TestConcurrentMixedOps(t *testing.T) {
	st := NewMemory("test")
	var wg sync.WaitGroup

	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, _ = st.Create(context.Background(), "growthlog", sample{PlantID: "a"})
		}()
		go func() {
			defer wg.Done()
			_, _ = st.Query(context.Background(), "growthlog", bson.M{"plant_id": "a"})
		}()
	}
	wg.Wait()
}
