package department

import "errors"

var (
	ErrInvalidID          = errors.New("department: invalid id")
	ErrInvalidName        = errors.New("department: invalid name")
	ErrAlreadyExists      = errors.New("department: already exists")
	ErrDepartmentNotFound = errors.New("department: not found")
)
