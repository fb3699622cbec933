package snapshot

import (
	"fmt"
)

// ParseError describes malformed snapshot text. No partial model is ever
// returned alongside one.
type ParseError struct {
	File     string
	Pos      Position
	Expected string
	Found    string
	Msg      string
	Err      error // underlying model error, if any
}

func (e *ParseError) Error() string {
	msg := e.Msg
	if msg == "" {
		msg = fmt.Sprintf("expected %s, found %s", e.Expected, e.Found)
	}
	file := e.File
	if file == "" {
		file = "<snapshot>"
	}
	return fmt.Sprintf("%s:%d:%d: %s", file, e.Pos.Line, e.Pos.Column, msg)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
