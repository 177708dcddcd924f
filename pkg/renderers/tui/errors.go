package tui

import "errors"

// ErrAborted signals the operator cancelled the session (Ctrl+C).
var ErrAborted = errors.New("tui: aborted")
