// Package apperr defines the typed failures surfaced by the engine.
// Every public operation either succeeds or returns exactly one of these
// kinds; the engine never terminates the calling process itself.
package apperr

import (
	"errors"
	"fmt"
)

// Sentinel failures for operations that need an implicit default and
// found none configured.
var (
	ErrNoDefaultTopic = errors.New("no default topic configured")
	ErrNoDefaultPath  = errors.New("no default path configured")
)

// TopicExistsError reports an attempt to create a topic that is already present.
type TopicExistsError struct {
	Name string
}

func (e *TopicExistsError) Error() string {
	return fmt.Sprintf("topic %q already exists", e.Name)
}

// TopicNotFoundError reports a reference to an unknown topic.
type TopicNotFoundError struct {
	Name string
}

func (e *TopicNotFoundError) Error() string {
	return fmt.Sprintf("topic %q does not exist", e.Name)
}

// PathExistsError reports an attempt to create a path that is already present
// in its topic.
type PathExistsError struct {
	Topic string
	Name  string
}

func (e *PathExistsError) Error() string {
	return fmt.Sprintf("path %q already exists in topic %q", e.Name, e.Topic)
}

// PathNotFoundError reports a reference to an unknown path.
type PathNotFoundError struct {
	Topic string
	Name  string
}

func (e *PathNotFoundError) Error() string {
	return fmt.Sprintf("path %q does not exist in topic %q", e.Name, e.Topic)
}

// LocationUnresolvedError reports a syntactically valid location expression
// that resolved to no note.
type LocationUnresolvedError struct {
	Expression string
}

func (e *LocationUnresolvedError) Error() string {
	return fmt.Sprintf("location %q resolved to no note", e.Expression)
}

// InvalidLocationError reports an expression matching neither the relative
// nor the absolute location grammar.
type InvalidLocationError struct {
	Expression string
}

func (e *InvalidLocationError) Error() string {
	return fmt.Sprintf("invalid location expression %q", e.Expression)
}

// MetadataError reports a structurally malformed stored metadata record.
type MetadataError struct {
	Field  string
	Detail string
	Err    error // underlying parse failure, may be nil
}

func (e *MetadataError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("metadata field %q: %s: %v", e.Field, e.Detail, e.Err)
	}
	return fmt.Sprintf("metadata field %q: %s", e.Field, e.Detail)
}

func (e *MetadataError) Unwrap() error { return e.Err }

// IntegrityError reports on-disk state that does not match the expected
// repository shape, either while attaching or when a file an operation
// relied on turned out missing or unreadable.
type IntegrityError struct {
	Detail string
	Err    error
}

func (e *IntegrityError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("repository integrity: %s: %v", e.Detail, e.Err)
	}
	return "repository integrity: " + e.Detail
}

func (e *IntegrityError) Unwrap() error { return e.Err }

// IOError reports a failure of the underlying persistent medium.
type IOError struct {
	Op  string
	Err error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("i/o failure during %s: %v", e.Op, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }
