package core

import "errors"

var (
	ErrNotFound           = errors.New("not found")
	ErrInvalidRecord      = errors.New("invalid record")
	ErrEmptyClassName     = errors.New("empty class name")
	ErrClassNameTooLong   = errors.New("class name too long (max 100 characters)")
	ErrDescriptionTooLong = errors.New("description too long (max 1000 characters)")
	ErrAmountTooLarge     = errors.New("fee amount too large")
	ErrEmptyName          = errors.New("empty name")
	ErrInvalidBatchYear   = errors.New("invalid batch year")
	ErrEmptyImageURL      = errors.New("empty image url")
	ErrEmptyTitle         = errors.New("empty title")
)
