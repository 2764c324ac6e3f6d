package stats

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/coffeetrack/coffeetrack/server/internal/model"
	"github.com/coffeetrack/coffeetrack/server/internal/store"
)

var base = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func at(minutes int) *model.Timestamp {
	return &model.Timestamp{Time: base.Add(time.Duration(minutes) * time.Minute)}
}

func TestClampLimit(t *testing.T) {
	tests := []struct{ in, want int }{
		{-5, 1}, {0, 1}, {1, 1}, {20, 20}, {200, 200}, {201, 200}, {10000, 200},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ClampLimit(tt.in), "ClampLimit(%d)", tt.in)
	}
}

func TestSelectLatest_OrderAndMissingTimestamps(t *testing.T) {
	readings := []model.SensorReading{
		{TemperatureC: ptr(1.0), RecordedAt: at(5)},
		{TemperatureC: ptr(2.0)},
		{TemperatureC: ptr(3.0), RecordedAt: at(30)},
		{TemperatureC: ptr(4.0), RecordedAt: at(10)},
		{TemperatureC: ptr(5.0), RecordedAt: &model.Timestamp{}},
	}

	got := SelectLatest(readings, 20)

	require.Len(t, got, 5)
	var temps []float64
	for _, r := range got {
		temps = append(temps, *r.TemperatureC)
	}
	// Missing timestamps go last, in input order.
	assert.Equal(t, []float64{3, 4, 1, 2, 5}, temps)

	// Input untouched.
	assert.Equal(t, 1.0, *readings[0].TemperatureC)
}

func TestSelectLatest_TiesKeepInputOrder(t *testing.T) {
	readings := []model.SensorReading{
		{TemperatureC: ptr(1.0), RecordedAt: at(0)},
		{TemperatureC: ptr(2.0), RecordedAt: at(0)},
		{TemperatureC: ptr(3.0), RecordedAt: at(0)},
	}
	got := SelectLatest(readings, 3)
	assert.Equal(t, 1.0, *got[0].TemperatureC)
	assert.Equal(t, 2.0, *got[1].TemperatureC)
	assert.Equal(t, 3.0, *got[2].TemperatureC)
}

func TestSelectLatest_LengthBound(t *testing.T) {
	readings := make([]model.SensorReading, 250)
	for i := range readings {
		readings[i].RecordedAt = at(i)
	}

	tests := []struct {
		limit int
		want  int
	}{
		{0, 1}, {-1, 1}, {1, 1}, {20, 20}, {199, 199}, {200, 200}, {500, 200},
	}
	for _, tt := range tests {
		got := SelectLatest(readings, tt.limit)
		assert.Len(t, got, tt.want, "limit=%d", tt.limit)
		for i := 1; i < len(got); i++ {
			assert.False(t, got[i].RecordedAt.After(got[i-1].RecordedAt.Time), "limit=%d: not descending at %d", tt.limit, i)
		}
	}

	assert.Len(t, SelectLatest(readings[:3], 20), 3)
	assert.Empty(t, SelectLatest(nil, 20))
}

// --- Service ---

func seed(t *testing.T, st store.Store, collection string, docs ...any) {
	t.Helper()
	for _, d := range docs {
		_, err := st.Create(context.Background(), collection, d)
		require.NoError(t, err)
	}
}

func TestService_PlantStats(t *testing.T) {
	st := store.NewMemory("test")
	const plant = "65f1c0ffee0000000000aaaa"
	const other = "65f1c0ffee0000000000bbbb"

	seed(t, st, model.GrowthLogCollection,
		model.GrowthLog{PlantID: plant, HeightCM: ptr(10.0), Stage: ptr(model.StageSeedling)},
		model.GrowthLog{PlantID: plant, HeightCM: ptr(30.0), Stage: ptr(model.StageSeedling)},
		model.GrowthLog{PlantID: other, HeightCM: ptr(99.0)},
	)
	seed(t, st, model.SensorReadingCollection,
		model.SensorReading{PlantID: plant, TemperatureC: ptr(21.0)},
		model.SensorReading{PlantID: other, TemperatureC: ptr(5.0)},
	)

	got, err := NewService(st).PlantStats(context.Background(), plant)
	require.NoError(t, err)

	assert.Equal(t, 2, got.LogsCount)
	assert.Equal(t, 1, got.ReadingsCount)
	assert.Equal(t, 30.0, *got.MaxHeightCM)
	assert.Equal(t, 20.0, *got.AvgHeightCM)
	assert.Equal(t, 21.0, *got.AvgTemperatureC)
	assert.Equal(t, map[string]int{"seedling": 2}, got.StagesCounts)
}

func TestService_PlantStatsNullDates(t *testing.T) {
	st := store.NewMemory("test")
	const plant = "65f1c0ffee0000000000aaaa"

	seed(t, st, model.GrowthLogCollection,
		bson.M{"plant_id": plant, "observed_at": nil, "height_cm": 12.0},
		bson.M{"plant_id": plant, "observed_at": "2024-04-01", "height_cm": 14.0},
	)
	seed(t, st, model.SensorReadingCollection,
		bson.M{"plant_id": plant, "recorded_at": nil, "temperature_c": 19.0},
	)

	svc := NewService(st)
	got, err := svc.PlantStats(context.Background(), plant)
	require.NoError(t, err)
	assert.Equal(t, 2, got.LogsCount)
	assert.Equal(t, 13.0, *got.AvgHeightCM)
	assert.Equal(t, 19.0, *got.AvgTemperatureC)

	latest, err := svc.LatestReadings(context.Background(), plant, 20)
	require.NoError(t, err)
	assert.Len(t, latest, 1)
}

func TestService_PlantStatsUnknownPlant(t *testing.T) {
	got, err := NewService(store.NewMemory("test")).PlantStats(context.Background(), "anything")
	require.NoError(t, err)
	assert.Zero(t, got.LogsCount)
	assert.Nil(t, got.AvgHeightCM)
	assert.Empty(t, got.StagesCounts)
}

func TestService_LatestReadings(t *testing.T) {
	st := store.NewMemory("test")
	const plant = "65f1c0ffee0000000000aaaa"
	for i := 0; i < 5; i++ {
		seed(t, st, model.SensorReadingCollection,
			model.SensorReading{PlantID: plant, RecordedAt: at(i), TemperatureC: ptr(float64(i))})
	}
	seed(t, st, model.SensorReadingCollection,
		model.SensorReading{PlantID: "65f1c0ffee0000000000bbbb", RecordedAt: at(100)})

	got, err := NewService(st).LatestReadings(context.Background(), plant, 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, 4.0, *got[0].TemperatureC)
	assert.Equal(t, 3.0, *got[1].TemperatureC)
	assert.False(t, got[0].ID.IsZero(), "stored id must be decoded")
}

type failingStore struct{ store.Store }

func (failingStore) Query(context.Context, string, bson.M) ([]bson.Raw, error) {
	return nil, store.ErrUnavailable
}

func TestService_StoreFailure(t *testing.T) {
	svc := NewService(failingStore{})

	_, err := svc.PlantStats(context.Background(), "p")
	assert.True(t, errors.Is(err, store.ErrUnavailable))

	_, err = svc.LatestReadings(context.Background(), "p", 20)
	assert.ErrorIs(t, err, store.ErrUnavailable)
}
