package domain

import (
	"errors"
	"fmt"
	"net/http"
)

// HTTPError defines errors that can be mapped to HTTP status codes.
type HTTPError interface {
	error
	StatusCode() int
}

// Sentinel errors - use with errors.Is()
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("already exists")
	ErrValidation   = errors.New("validation failed")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")

	// Graph errors
	ErrStructuralViolation   = errors.New("structural violation")
	ErrUnresolvableType      = errors.New("unresolvable type")
	ErrSnapshotInconsistency = errors.New("snapshot inconsistency")
	ErrInvariantViolation    = errors.New("invariant violation")
	ErrCopyOrder             = errors.New("copy created before its referenced endpoint")
)

// ConflictError represents a resource conflict with details about the existing resource
type ConflictError struct {
	Message      string // Human-readable error message
	ResourceType string // Type of resource (idea, link, synthesis)
	ResourceID   string // ID of the existing/conflicting resource
}

func (e *ConflictError) Error() string {
	return e.Message
}

func (e *ConflictError) StatusCode() int {
	return http.StatusConflict
}

// Is allows errors.Is() to match against ErrConflict
func (e *ConflictError) Is(target error) bool {
	return target == ErrConflict
}

// StructuralViolationError is returned when a link would break the graph shape:
// endpoints not both live, endpoints in different discussions, a self loop or a cycle.
// Nothing has been written when it is returned.
type StructuralViolationError struct {
	SourceID string
	TargetID string
	Reason   string
}

func (e *StructuralViolationError) Error() string {
	return fmt.Sprintf("link %s -> %s: %s", e.SourceID, e.TargetID, e.Reason)
}

func (e *StructuralViolationError) StatusCode() int {
	return http.StatusUnprocessableEntity
}

func (e *StructuralViolationError) Is(target error) bool {
	return target == ErrStructuralViolation
}

// UnresolvableTypeError means the discussion typology has no rule that can
// accept a (parent, link, child) triple, not even the universal defaults.
// This is a configuration error and must reach the caller.
type UnresolvableTypeError struct {
	ParentType string
	LinkType   string
	ChildType  string
}

func (e *UnresolvableTypeError) Error() string {
	return fmt.Sprintf("typology has no rule for %s -[%s]-> %s", e.ParentType, e.LinkType, e.ChildType)
}

func (e *UnresolvableTypeError) StatusCode() int {
	return http.StatusInternalServerError
}

func (e *UnresolvableTypeError) Is(target error) bool {
	return target == ErrUnresolvableType
}

// SnapshotInconsistencyError aborts a publish when a live link points at an
// idea that has no live row.
type SnapshotInconsistencyError struct {
	LinkID string
	IdeaID string
}

func (e *SnapshotInconsistencyError) Error() string {
	return fmt.Sprintf("link %s references idea %s which has no live row", e.LinkID, e.IdeaID)
}

func (e *SnapshotInconsistencyError) StatusCode() int {
	return http.StatusConflict
}

func (e *SnapshotInconsistencyError) Is(target error) bool {
	return target == ErrSnapshotInconsistency
}

// InvariantViolationError reports a broken core invariant, such as a
// discussion without exactly one live root idea. It is not recoverable.
type InvariantViolationError struct {
	DiscussionID string
	Message      string
}

func (e *InvariantViolationError) Error() string {
	return fmt.Sprintf("discussion %s: %s", e.DiscussionID, e.Message)
}

func (e *InvariantViolationError) StatusCode() int {
	return http.StatusInternalServerError
}

func (e *InvariantViolationError) Is(target error) bool {
	return target == ErrInvariantViolation
}
