package errors

import "errors"

var (
	ErrInvalidCollection = errors.New("invalid collection")
	ErrInvalidInput      = errors.New("invalid input")
	ErrNotFound          = errors.New("not found")
	ErrUpstream          = errors.New("upstream provider failed")
)

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
