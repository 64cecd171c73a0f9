// Package store defines the book archive port and its in-memory
// implementation. The PostgreSQL implementation lives in
// internal/platform/postgres.
package store
