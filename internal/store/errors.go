package store

import (
	"errors"
	"fmt"
)

// Sentinels shared by every BookStore implementation. Match them with
// errors.Is; implementations wrap them with detail.
var (
	ErrNotFound  = errors.New("entity not found")
	ErrDuplicate = errors.New("entity already exists")

	// ErrInvalidEntity marks data the archive refused to persist.
	ErrInvalidEntity = errors.New("invalid entity")

	ErrBookNotFound = fmt.Errorf("%w: book", ErrNotFound)
)
