package user

import "errors"

var (
	ErrNotFound      = errors.New("user not found")
	ErrEmailExists   = errors.New("user with this email already exists")
	ErrEmptyPassword = errors.New("password cannot be empty")
)
