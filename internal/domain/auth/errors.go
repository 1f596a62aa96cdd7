package auth

import "errors"

var (
	ErrInvalidToken            = errors.New("invalid or expired token")
	ErrCompanyIDRequired       = errors.New("company ID is required")
	ErrEmployeeIDRequired      = errors.New("token is not linked to an employee")
	ErrInsufficientPermissions = errors.New("insufficient permissions")
)
