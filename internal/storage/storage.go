package storage

import "errors"

var (
	ErrUserExists        = errors.New("user already exists")
	ErrUserNotFound      = errors.New("user not found")
	ErrResetTokenNotFound = errors.New("reset token not found")
	ErrRecordNotFound    = errors.New("record not found")
)
