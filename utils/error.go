package utils

import "errors"

var ErrorRecordNotFound = errors.New("record not found")

// Domain failures. Callers wrap them with detail via fmt.Errorf("%w: ...").
var (
	ErrInvalidRequest     = errors.New("invalid request")
	ErrInsufficientFunds  = errors.New("insufficient balance")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrNotFound           = ErrorRecordNotFound
	ErrUnauthorized       = errors.New("unauthorized")
	ErrUserExists         = errors.New("user already exists")
)
