package repository

import "errors"

// Sentinel errors returned by repository implementations. The service layer
// matches on these with errors.Is and never inspects driver errors directly.
var (
	ErrUserNotFound         = errors.New("user not found")
	ErrRoomNotFound         = errors.New("room not found")
	ErrMessageNotFound      = errors.New("message not found")
	ErrMembershipNotFound   = errors.New("membership not found")
	ErrNotificationNotFound = errors.New("notification not found")
	ErrPresenceNotFound     = errors.New("presence record not found")
	ErrDuplicateEntry       = errors.New("duplicate entry")
)
