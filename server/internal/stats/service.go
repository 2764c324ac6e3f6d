package stats

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/coffeetrack/coffeetrack/server/internal/model"
	"github.com/coffeetrack/coffeetrack/server/internal/store"
)

// Service answers per-plant questions from a store.Store.
type Service struct {
	store store.Store
}

// NewService creates a Service reading from st.
func NewService(st store.Store) *Service {
	return &Service{store: st}
}

// PlantStats fetches every growth log and sensor reading referencing plantID
// and summarises them. An unknown plantID yields an empty summary.
func (s *Service) PlantStats(ctx context.Context, plantID string) (PlantStats, error) {
	filter := bson.M{"plant_id": plantID}

	logs, err := store.QueryAs[model.GrowthLog](ctx, s.store, model.GrowthLogCollection, filter)
	if err != nil {
		return PlantStats{}, fmt.Errorf("stats: growth logs for %s: %w", plantID, err)
	}
	readings, err := store.QueryAs[model.SensorReading](ctx, s.store, model.SensorReadingCollection, filter)
	if err != nil {
		return PlantStats{}, fmt.Errorf("stats: sensor readings for %s: %w", plantID, err)
	}
	return Summarize(logs, readings), nil
}

// LatestReadings returns the plant's most recent readings, newest first.
// limit is clamped to [MinLimit, MaxLimit].
func (s *Service) LatestReadings(ctx context.Context, plantID string, limit int) ([]model.SensorReading, error) {
	readings, err := store.QueryAs[model.SensorReading](ctx, s.store, model.SensorReadingCollection,
		bson.M{"plant_id": plantID})
	if err != nil {
		return nil, fmt.Errorf("stats: sensor readings for %s: %w", plantID, err)
	}
	return SelectLatest(readings, limit), nil
}
