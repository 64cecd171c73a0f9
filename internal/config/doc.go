// Package config handles configuration loading, parsing, and validation
// from various sources (environment variables, .env files, an optional
// picturebook.yaml). It provides type-safe access to the settings needed by
// the Gemini clients, the reading sessions and the book archive while keeping
// configuration details separate from business logic.
package config
