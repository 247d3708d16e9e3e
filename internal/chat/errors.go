package chat

import "errors"

// Sentinel errors for the chat service's data layer.
var ErrUserNotFound = errors.New("user not found")
