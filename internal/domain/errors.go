package domain

import "errors"

// Domain errors
var (
	ErrExpenseNotFound  = errors.New("expense not found")
	ErrInvalidAmount    = errors.New("amount must be a positive decimal")
	ErrEmptyDescription = errors.New("description is required")
	ErrEmptyCategory    = errors.New("category is required")
	ErrUnknownCategory  = errors.New("category is not configured")
	ErrInvalidDate      = errors.New("invalid date")
	ErrInvalidInput     = errors.New("invalid input")
)

// Validation constants
const (
	MaxDescriptionLength = 255
)
