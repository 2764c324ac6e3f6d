// Package stats derives per-plant summaries from stored observations.
//
// aggregate.go provides the pure Summarize(logs, readings) reduction behind
// the plant stats endpoint: height extremes and mean, reading averages and a
// count per growth stage. latest.go provides SelectLatest, which orders
// readings newest first and caps the result at a clamped limit.
//
// Service wires both to a store.Store. Each call performs independent reads;
// nothing is cached between requests.
package stats
