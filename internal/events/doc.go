// Package events provides types and interfaces for an event-driven architecture.
//
// Reading sessions publish a SessionEvent after every state change; handlers
// such as the WebSocket stream hub and the metrics collector subscribe
// without the session package knowing about them.
//
// The primary components are:
// - SessionEvent: A session changed or closed, carrying its latest snapshot
// - EventHandler: Interface for components that can handle events
// - EventEmitter: Interface for components that can emit events
package events
