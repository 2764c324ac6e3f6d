package api

import (
	"encoding/json"

	"github.com/coffeetrack/coffeetrack/server/internal/model"
)

// CreatedResponse is returned by every create endpoint.
type CreatedResponse struct {
	ID string `json:"id"`
}

// MessageResponse is the payload for GET /.
type MessageResponse struct {
	Message string `json:"message"`
}

// DiagnosticsResponse is the payload for GET /test.
type DiagnosticsResponse struct {
	Backend          string   `json:"backend"`
	Database         string   `json:"database"`
	DatabaseURL      string   `json:"database_url"`  // whether the URL env var is set
	DatabaseName     string   `json:"database_name"` // whether the name env var is set
	DatabaseInUse    string   `json:"database_in_use"`
	ConnectionStatus string   `json:"connection_status"`
	Collections      []string `json:"collections"`
	RequestsServed   *float64 `json:"requests_served,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Request bodies. The shadowing ID field swallows any client supplied "id"
// so identifiers are always assigned by the store.

type plantBody struct {
	model.Plant
	ID json.RawMessage `json:"id"`
}

type growthLogBody struct {
	model.GrowthLog
	ID json.RawMessage `json:"id"`
}

type sensorReadingBody struct {
	model.SensorReading
	ID json.RawMessage `json:"id"`
}
