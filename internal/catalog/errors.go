package catalog

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingCategory means a (difficulty, category) pair is absent or empty.
	ErrMissingCategory = errors.New("missing category")
	// ErrMalformed means the document could not be decoded or holds an invalid entry.
	ErrMalformed = errors.New("malformed catalog")
)

// Error is returned by Load and Parse. The catalog is unusable when it is set.
type Error struct {
	Difficulty Difficulty
	Category   Category
	Err        error
	Detail     string
}

func (e *Error) Error() string {
	if errors.Is(e.Err, ErrMissingCategory) {
		return fmt.Sprintf("catalog: %v: no exercises for %s/%s", e.Err, e.Difficulty, e.Category)
	}
	return fmt.Sprintf("catalog: %v: %s", e.Err, e.Detail)
}

func (e *Error) Unwrap() error { return e.Err }
