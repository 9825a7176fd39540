package job

import "errors"

var (
	ErrInvalidID     = errors.New("job: invalid id")
	ErrInvalidTitle  = errors.New("job: invalid title")
	ErrAlreadyExists = errors.New("job: already exists")
	ErrJobNotFound   = errors.New("job: not found")
)
