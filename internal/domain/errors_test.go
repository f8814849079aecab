package domain

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGraphErrors(t *testing.T) {
	tests := []struct {
		name     string
		err      HTTPError
		sentinel error
		status   int
	}{
		{"conflict", &ConflictError{Message: "dup", ResourceType: "link"}, ErrConflict, http.StatusConflict},
		{"structural", &StructuralViolationError{SourceID: "a", TargetID: "b", Reason: "cycle"}, ErrStructuralViolation, http.StatusUnprocessableEntity},
		{"unresolvable", &UnresolvableTypeError{ParentType: "Q", LinkType: "L", ChildType: "C"}, ErrUnresolvableType, http.StatusInternalServerError},
		{"snapshot", &SnapshotInconsistencyError{LinkID: "l", IdeaID: "i"}, ErrSnapshotInconsistency, http.StatusConflict},
		{"invariant", &InvariantViolationError{DiscussionID: "d", Message: "two roots"}, ErrInvariantViolation, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wrapped := fmt.Errorf("outer: %w", tt.err)
			assert.ErrorIs(t, wrapped, tt.sentinel)
			assert.Equal(t, tt.status, tt.err.StatusCode())

			var httpErr HTTPError
			assert.True(t, errors.As(wrapped, &httpErr))
		})
	}

	assert.Equal(t, "link a -> b: cycle", (&StructuralViolationError{SourceID: "a", TargetID: "b", Reason: "cycle"}).Error())
}
