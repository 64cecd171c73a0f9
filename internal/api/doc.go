// Package api handles incoming HTTP requests, routing, request validation,
// and response formatting. It adapts reading sessions and the book archive
// to a JSON API, plus a WebSocket stream of session snapshots.
package api
