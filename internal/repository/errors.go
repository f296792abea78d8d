package repository

import "errors"

var (
	ErrNotFound          = errors.New("not found")
	ErrInvalid           = errors.New("invalid input")
	ErrUnknownCollection = errors.New("unknown collection")
)
