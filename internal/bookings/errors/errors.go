// Package errors holds the storage-level sentinels the booking repository
// returns; the service layer maps them onto the AppError taxonomy.
package errors

import "errors"

var (
	ErrNotFound = errors.New("booking not found")

	ErrInvalidID = errors.New("invalid booking ID format")
)
