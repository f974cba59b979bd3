package tui

import "errors"

var (
	// ErrAborted signals the user aborted input (e.g., Ctrl+C).
	ErrAborted = errors.New("tui: aborted")
	// ErrNilDeclaration is returned when Run is called without a session.
	ErrNilDeclaration = errors.New("tui: declaration is nil")
)
