package shared

import "errors"

var (
	// ErrUnauthorized indicates the caller lacks a required role.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrNotFound indicates the target paper does not exist.
	ErrNotFound = errors.New("not found")
)
