// Package shopstate provides the client-side commerce state of a storefront:
// a cart, a favorites list and UI preferences.
//
// Each container is an independent, concurrency-safe store mutated only through
// its own actions. Snapshots are persisted best-effort to a pluggable storage
// backend (SQLite, PostgreSQL, in-memory) with an optional cache (Redis,
// in-memory) and rehydrated once when a Session is loaded.
package shopstate
