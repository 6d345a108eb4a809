package domain

import "errors"

var (
	ErrNotFound          = errors.New("not found")
	ErrAlreadyExists     = errors.New("already exists")
	ErrInvalidInput      = errors.New("invalid input")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrGroupInUse        = errors.New("group is still used by medicines")
	ErrUnknownGroup      = errors.New("unknown medicine group")
)
