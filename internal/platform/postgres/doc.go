// Package postgres provides the PostgreSQL implementation of store.BookStore
// on the pgx database/sql driver, together with the embedded goose
// migrations that create its schema.
package postgres
