package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Collection names, one per entity kind.
const (
	PlantCollection         = "plant"
	GrowthLogCollection     = "growthlog"
	SensorReadingCollection = "sensorreading"
)

// Plant is a coffee plant profile. Plants are immutable once created.
type Plant struct {
	ID       primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Name     string             `json:"name" bson:"name" validate:"required"`
	Variety  *string            `json:"variety" bson:"variety"`
	SowDate  *Date              `json:"sow_date" bson:"sow_date" validate:"required"`
	Location *string            `json:"location" bson:"location"`
	Notes    *string            `json:"notes" bson:"notes"`
}

// GrowthLog is a manual growth observation of one plant.
//
// PlantID is format-checked only; the referenced plant is never looked up.
type GrowthLog struct {
	ID          primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	PlantID     string             `json:"plant_id" bson:"plant_id" validate:"required,objectid"`
	ObservedAt  *Date              `json:"observed_at" bson:"observed_at" validate:"required"`
	HeightCM    *float64           `json:"height_cm" bson:"height_cm" validate:"omitempty,gte=0"`
	LeavesCount *int               `json:"leaves_count" bson:"leaves_count" validate:"omitempty,gte=0"`
	Stage       *string            `json:"stage" bson:"stage"`
	Notes       *string            `json:"notes" bson:"notes"`
}

// Growth stages as logged by growers. The set is informal and not enforced.
const (
	StageSeed        = "seed"
	StageGermination = "germination"
	StageSeedling    = "seedling"
	StageVegetative  = "vegetative"
	StageFlowering   = "flowering"
	StageCherry      = "cherry"
	StageHarvest     = "harvest"
)

// SensorReading is one environmental sample taken next to a plant.
type SensorReading struct {
	ID              primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	PlantID         string             `json:"plant_id" bson:"plant_id" validate:"required,objectid"`
	RecordedAt      *Timestamp         `json:"recorded_at" bson:"recorded_at"`
	TemperatureC    *float64           `json:"temperature_c" bson:"temperature_c"`
	HumidityPct     *float64           `json:"humidity_pct" bson:"humidity_pct" validate:"omitempty,gte=0,lte=100"`
	SoilMoisturePct *float64           `json:"soil_moisture_pct" bson:"soil_moisture_pct" validate:"omitempty,gte=0,lte=100"`
}

// Stamp sets RecordedAt to now when the reading carries no timestamp.
// BSON keeps millisecond precision, so now is truncated to match.
func (r *SensorReading) Stamp(now time.Time) {
	if r.RecordedAt != nil && !r.RecordedAt.IsZero() {
		return
	}
	r.RecordedAt = &Timestamp{now.UTC().Truncate(time.Millisecond)}
}
