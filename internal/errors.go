package internal

import "errors"

var (
	ErrInvalidID            = errors.New("invalid unit id")
	ErrPersistenceWithoutID = errors.New("persistence requires a unit id")
	ErrInvalidCapacity      = errors.New("history capacity must be at least 1")
	ErrInvalidInitialValue  = errors.New("initial value has the wrong type")
	ErrInvalidPath          = errors.New("invalid selection path")
)
