package compiler

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrFieldNotFound     = errors.New("field not found")
	ErrUnresolvablePath  = errors.New("unresolvable path")
	ErrMultiJoin         = errors.New("multi-valued join not permitted")
	ErrInvalidLookup     = errors.New("invalid lookup")
	ErrInvalidOrdering   = errors.New("invalid ordering")
	ErrCompilationFailed = errors.New("query compilation failed")
)

// FieldError reports a path segment that names nothing on a model.
type FieldError struct {
	Name    string
	Model   string
	Choices []string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("cannot resolve keyword %q into field of %s. Choices are: %s",
		e.Name, e.Model, strings.Join(e.Choices, ", "))
}

func (e *FieldError) Unwrap() error { return ErrFieldNotFound }

// PathError reports a path that continues past a scalar or translated attribute.
type PathError struct {
	// Name is the first segment after the terminal attribute.
	Name     string
	Terminal string
}

func (e *PathError) Error() string {
	return fmt.Sprintf("join on field %q not permitted: %q is not a relation", e.Name, e.Terminal)
}

func (e *PathError) Unwrap() error { return ErrUnresolvablePath }

// MultiJoinError reports a multi-valued hop where only single-valued joins
// are allowed. Pos is the 1-based position of the segment in the path.
type MultiJoinError struct {
	Pos  int
	Name string
}

func (e *MultiJoinError) Error() string {
	return fmt.Sprintf("multi-valued join on %q not permitted (path position %d)", e.Name, e.Pos)
}

func (e *MultiJoinError) Unwrap() error { return ErrMultiJoin }
