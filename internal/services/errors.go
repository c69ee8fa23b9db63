package services

import "errors"

// Error kinds. Every error a service returns on purpose wraps exactly one of
// these; anything else is a store failure.
var (
	ErrValidation  = errors.New("validation failed")
	ErrForbidden   = errors.New("access denied")
	ErrNotFound    = errors.New("not found")
	ErrConflict    = errors.New("conflict")
	ErrUnavailable = errors.New("service unavailable")
)

type serviceError struct {
	kind error
	msg  string
}

func (e *serviceError) Error() string { return e.msg }

func (e *serviceError) Unwrap() error { return e.kind }

func newError(kind error, msg string) error {
	return &serviceError{kind: kind, msg: msg}
}

var (
	ErrAdminOnly            = newError(ErrForbidden, "only admins can perform this action")
	ErrTaskNotFound         = newError(ErrNotFound, "task not found")
	ErrTaskAccessDenied     = newError(ErrForbidden, "you are not allowed to access this task")
	ErrInvalidStatus        = newError(ErrValidation, "invalid status update")
	ErrTaskCompleted        = newError(ErrValidation, "task is completed and can no longer be updated")
	ErrInvalidAssignee      = newError(ErrValidation, "assignee must be an existing employee")
	ErrNotificationNotFound = newError(ErrNotFound, "notification not found")
	ErrInvalidNotification  = newError(ErrValidation, "invalid notification")
	ErrUserNotFound         = newError(ErrNotFound, "user not found")
	ErrMemberNotFound       = newError(ErrNotFound, "member not found")
	ErrCannotRemoveYourself = newError(ErrValidation, "cannot remove yourself")
	ErrInvalidCredentials   = errors.New("invalid email or password")
	ErrInvalidToken         = errors.New("invalid or expired token")
	ErrEmailTaken           = newError(ErrConflict, "user already exists")
	ErrPasswordTooShort     = newError(ErrValidation, "password too short")
	ErrPasswordMismatch     = newError(ErrValidation, "passwords don't match")
	ErrInvalidRole          = newError(ErrValidation, "role must be admin or employee")
	ErrDepartmentExists     = newError(ErrConflict, "department already exists")
	ErrDepartmentNotFound   = newError(ErrValidation, "department does not exist")

	ErrAIServiceNotConfigured = newError(ErrUnavailable, "AI service is not configured")
	ErrAINoTasksGenerated     = newError(ErrValidation, "AI did not generate any tasks")
	ErrAINoValidTasks         = newError(ErrValidation, "no valid tasks could be created from AI output")
)

func missingField(name string) error {
	return newError(ErrValidation, name+" is required")
}
