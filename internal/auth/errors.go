package auth

import "errors"

var (
	// ErrNotFound is returned by stores when a requested row does not exist.
	ErrNotFound = errors.New("not found")

	// ErrConflict is returned when a uniqueness constraint rejects a write.
	ErrConflict = errors.New("already exists")

	// ErrInvalidCredentials never says whether the username or the password was wrong.
	ErrInvalidCredentials = errors.New("invalid username or password")

	// ErrPersistence marks failures of the backing store. Handlers map it to a 5xx.
	ErrPersistence = errors.New("persistence failure")

	// ErrValidation marks caller-supplied arguments that cannot be accepted.
	ErrValidation = errors.New("validation failed")

	// ErrInternal covers hashing and randomness failures.
	ErrInternal = errors.New("internal failure")
)
