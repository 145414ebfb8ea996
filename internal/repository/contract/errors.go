package contract

import "errors"

var (
	ErrDuplicateEmail = errors.New("email already registered")
	ErrSessionMissing = errors.New("chat session does not exist")
)
