package employee

import "errors"

var (
	ErrInvalidID         = errors.New("employee: invalid id")
	ErrMissingFields     = errors.New("employee: missing required fields")
	ErrInvalidForeignKey = errors.New("employee: unknown department or job")
	ErrAlreadyExists     = errors.New("employee: already exists")
	ErrEmployeeNotFound  = errors.New("employee: not found")
)
