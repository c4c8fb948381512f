package entity

import "errors"

var (
	// ErrNotFound indicates the record doesn't exist.
	ErrNotFound = errors.New("record not found")
	// ErrInvalidInput indicates a payload failed field validation.
	ErrInvalidInput = errors.New("invalid record input")
)
