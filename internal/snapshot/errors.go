package snapshot

import "fmt"

// Error indicates a snapshot document is malformed or violates the element
// tree shape. It is fatal: no validation run is attempted.
type Error struct {
	Path    string // File path, if loaded from a file
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("snapshot error: %s: %s", e.Path, e.Message)
	}
	return fmt.Sprintf("snapshot error: %s", e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}
