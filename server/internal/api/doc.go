// Package api implements the HTTP/JSON interface of the coffee growth tracker.
//
// New(store, opts) returns an http.Handler (a gin engine) that serves:
//
//	POST /plants                   create a plant profile          -> {"id": ...}
//	GET  /plants                   all plants
//	POST /growth-logs              create a growth observation     -> {"id": ...}
//	GET  /growth-logs?plant_id=    all logs, optionally for one plant
//	POST /sensor-readings          ingest one sensor reading       -> {"id": ...}
//	GET  /sensor-readings/latest   newest readings of a plant (plant_id, limit)
//	GET  /stats/plant              summary of a plant (plant_id)
//	GET  /                         liveness message
//	GET  /test                     backend and database diagnostics
//	GET  /metrics                  Prometheus exposition, when Options.Metrics is set
//
// Every response is JSON. Failures use {"error": "..."}: 400 for invalid
// input (validation failures, malformed plant_id, missing or non-integer
// query parameters) and 500 for store failures, whose text is cut to 200
// characters.
//
// Requests pass through request-id, logging, metrics and CORS middleware.
// Allowed CORS origins can be replaced at runtime with SetAllowedOrigins.
package api
