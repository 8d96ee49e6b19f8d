package domain

import "errors"

// Sentinel errors used across layers.
var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")

	// Amount arithmetic.
	ErrAmountMismatch = errors.New("amounts of different kinds cannot be added")
	ErrAmountShape    = errors.New("servings amounts have different lengths")
	ErrUnknownTier    = errors.New("servings count is not a declared tier")
	ErrNoAmount       = errors.New("no amount specified")

	// Reduction.
	ErrUnitMismatch       = errors.New("conflicting units")
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrInvalidServings    = errors.New("invalid servings")
	ErrServingsUndeclared = errors.New("servings amount used without servings metadata")

	// Rendering.
	ErrPlaceholderMismatch = errors.New("instruction placeholders do not match metadata")
)
