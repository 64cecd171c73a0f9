package session

import "errors"

var (
	// ErrInvalidTransition is returned when an event is not allowed in the
	// session's current phase. The state is left unchanged.
	ErrInvalidTransition = errors.New("invalid session transition")

	// ErrUnknownOption is returned when an answer is not one of the current
	// quiz item's options.
	ErrUnknownOption = errors.New("answer is not one of the options")

	// ErrSessionNotFound is returned when no live session has the given ID.
	ErrSessionNotFound = errors.New("session not found")

	// ErrSessionClosed is returned for events sent to a closed session.
	ErrSessionClosed = errors.New("session closed")

	// ErrArchiveUnavailable is returned by OpenBook when no book store is configured.
	ErrArchiveUnavailable = errors.New("book archive unavailable")
)
