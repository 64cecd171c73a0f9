// Package session implements the reading-session state machine.
//
// A session moves through the phases input, processing, reading, game and
// error. All transitions are computed by Reduce, a pure function from a
// State and an Event to the next State plus the Effects to run (generate a
// story, illustrate a page, schedule the quiz advance, persist an image).
// Controller owns one session: it serializes events, executes effects
// asynchronously and feeds their completions back as events. Completions
// carry the request token they were issued with and are dropped when a newer
// request has superseded them.
//
// Manager keeps the live controllers of all readers and evicts idle ones.
package session
