package user

import "errors"

var (
	ErrUserNotFound            = errors.New("user not found")
	ErrInsufficientPermissions = errors.New("insufficient permissions")
	ErrEmployeeIDRequired      = errors.New("employee ID is required")
	ErrUserAlreadyExists       = errors.New("user with this email or employee ID already exists")
)
