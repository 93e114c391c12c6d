package service

import "errors"

// Business errors surfaced to callers. The HTTP layer maps these to status
// codes; the websocket dispatcher reports them on the originating
// connection. None of them terminate a connection.
var (
	ErrValidation           = errors.New("validation failed")
	ErrAccessDenied         = errors.New("access denied")
	ErrForbidden            = errors.New("forbidden")
	ErrRoomNotFound         = errors.New("room not found")
	ErrRoomArchived         = errors.New("room is archived")
	ErrMessageNotFound      = errors.New("message not found")
	ErrUserNotFound         = errors.New("user not found")
	ErrNotificationNotFound = errors.New("notification not found")
	ErrAuthenticationFailed = errors.New("authentication failed")
	ErrRegistrationFailed   = errors.New("registration failed: username or email already exists")
	ErrInternalServer       = errors.New("internal server error")
)
