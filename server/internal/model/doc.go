// Package model defines the three entity kinds persisted by the tracker
// (Plant, GrowthLog, SensorReading) and their boundary validation.
//
// Each entity is a fixed-field record; optional values are pointers so that
// "absent" and "zero" stay distinct. The store identifier is a
// primitive.ObjectID tagged bson:"_id" / json:"id", which renames _id to id
// on every response.
//
// Validate() enforces required fields and numeric ranges. A malformed
// plant_id is reported as ErrInvalidIdentifier; every other rule violation
// as *ValidationError.
package model
