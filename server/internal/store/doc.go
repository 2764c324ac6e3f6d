// Package store is the document store adapter: a small Store interface over
// named collections, with a MongoDB implementation for production and a
// thread-safe in-memory implementation for local runs and tests.
//
// Store.Create persists one document and returns its identifier as text;
// Store.Query returns the raw BSON documents matching an exact-match filter.
// Decode / QueryAs turn raw results into typed records. Connectivity
// failures wrap ErrUnavailable.
package store
