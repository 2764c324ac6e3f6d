// Package metrics owns the Prometheus registry of the API server.
//
// Metrics records one counter and one latency histogram per handled request
// (labelled by method, route template and status) and per store operation
// (labelled by operation, collection and outcome). Instrument wraps a
// store.Store so every call is measured. Handler exposes the registry in the
// Prometheus text format; RequestsServed reads the request counter back for
// the diagnostics endpoint.
package metrics
