package errs

import (
	"errors"
	"fmt"
	"net/http"
)

// Domain rule violations. These are well-formed requests the hierarchy rules
// reject; they surface as 400s with a human-readable message and no mutation.
var (
	ErrSubtasksIncomplete = errors.New("uncompleted subtasks")
	ErrAliasTaken         = errors.New("alias already exists")
	ErrEmailTaken         = errors.New("email already exists")
	ErrInvalidStatus      = errors.New("invalid status")
	ErrInvalidToken       = errors.New("invalid token")
	ErrBadCredentials     = errors.New("bad credentials")
	ErrNotCommentAuthor   = errors.New("not the comment author")
	ErrAdminOnly          = errors.New("admin only")
)

// NewSubtasksIncompleteError rejects marking a task Done while direct children remain incomplete.
func NewSubtasksIncompleteError() *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusBadRequest,
		err:        ErrSubtasksIncomplete,
		Details:    "You cannot mark this task as Done, there are uncompleted tasks",
	}
}

func NewAliasTakenError(alias string) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusBadRequest,
		err:        ErrAliasTaken,
		Details:    fmt.Sprintf("Alias '%s' is already in use", alias),
		Field:      "alias",
	}
}

func NewEmailTakenError(email string) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusBadRequest,
		err:        ErrEmailTaken,
		Details:    fmt.Sprintf("Email '%s' is already in use", email),
		Field:      "email",
	}
}

func NewInvalidStatusError(status string) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusBadRequest,
		err:        ErrInvalidStatus,
		Details:    fmt.Sprintf("'%s' is not a valid status", status),
		Field:      "status",
	}
}

func NewInvalidTokenError() *ApiErr {
	return &ApiErr{StatusCode: http.StatusBadRequest, err: ErrInvalidToken}
}

func NewBadCredentialsError() *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusUnauthorized,
		err:        ErrBadCredentials,
		Details:    "Bad credentials. Please try again.",
	}
}

// NewNotCommentAuthorError rejects comment edits by anyone but the author or an admin.
func NewNotCommentAuthorError() *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusUnauthorized,
		err:        ErrNotCommentAuthor,
		Details:    "Only the comment author or an admin may modify this comment",
	}
}

func NewAdminOnlyError() *ApiErr {
	return &ApiErr{StatusCode: http.StatusUnauthorized, err: ErrAdminOnly}
}

func IsSubtasksIncomplete(err error) bool {
	return errors.Is(err, ErrSubtasksIncomplete)
}

func IsAliasTaken(err error) bool {
	return errors.Is(err, ErrAliasTaken)
}

func IsAdminOnly(err error) bool {
	return errors.Is(err, ErrAdminOnly)
}
