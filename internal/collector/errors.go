package collector

import (
	"errors"
	"fmt"
)

// Session failure kinds. Match with errors.Is.
var (
	ErrInvalidSymbol    = errors.New("invalid symbol")
	ErrInvalidExchange  = errors.New("invalid exchange")
	ErrValidationFailed = errors.New("validation failed")
	ErrRetrieval        = errors.New("retrieval failure")
	ErrParse            = errors.New("parse failure")
)

// WindowError reports which fetch window aborted a session.
type WindowError struct {
	Index  int
	Window Window
	Err    error
}

func (e *WindowError) Error() string {
	return fmt.Sprintf("window %d (%s): %v", e.Index+1, e.Window, e.Err)
}

func (e *WindowError) Unwrap() error { return e.Err }
