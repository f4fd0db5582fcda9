package store

import "errors"

var (
	// ErrDuplicateCode is returned when an insert or update would reuse an
	// existing business code.
	ErrDuplicateCode = errors.New("codigo already exists")

	// ErrProtectedAccount is returned when a mutation would deactivate or
	// rename the administrator account.
	ErrProtectedAccount = errors.New("administrator account is protected")
)
