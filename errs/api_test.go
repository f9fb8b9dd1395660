package errs

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassCheckersMatchConstructors(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		checker func(error) bool
	}{
		{"not found", NewNotFoundError("task not found"), IsNotFound},
		{"bad request", NewBadRequestError("malformed"), IsBadRequest},
		{"unauthorized", NewUnauthorizedError("nope"), IsUnauthorized},
		{"conflict", NewConflictError("exists"), IsConflict},
		{"missing field", NewMissingRequiredFieldError("name"), IsBadRequest},
		{"invalid field", NewInvalidFieldError("page", "must be positive"), IsBadRequest},
		{"invalid status", NewInvalidStatusError("Paused"), IsBadRequest},
		{"alias taken", NewAliasTakenError("alpha"), IsBadRequest},
		{"subtasks incomplete", NewSubtasksIncompleteError(), IsBadRequest},
		{"invalid token", NewInvalidTokenError(), IsBadRequest},
		{"not comment author", NewNotCommentAuthorError(), IsUnauthorized},
		{"admin only", NewAdminOnlyError(), IsUnauthorized},
		{"bad credentials", NewBadCredentialsError(), IsUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, tt.checker(tt.err))
		})
	}
}

func TestClassCheckersThroughWrapping(t *testing.T) {
	wrapped := fmt.Errorf("handling request: %w", NewNotFoundError("comment not found"))
	assert.True(t, IsNotFound(wrapped))
	assert.False(t, IsBadRequest(wrapped))
}

func TestSentinelCheckers(t *testing.T) {
	assert.True(t, IsSubtasksIncomplete(NewSubtasksIncompleteError()))
	assert.True(t, IsAliasTaken(NewAliasTakenError("alpha")))
	assert.True(t, IsAdminOnly(NewAdminOnlyError()))
	assert.False(t, IsAliasTaken(NewSubtasksIncompleteError()))
}
