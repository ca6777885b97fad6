package service

import "errors"

// Domain error taxonomy. Handlers map these to HTTP status codes; anything
// outside this set is treated as an internal failure and never shown to the
// caller verbatim.
var (
	ErrInvalidInput = errors.New("invalid input")

	// ErrDuplicateUser covers both username and email collisions.
	ErrDuplicateUser = errors.New("username or email already taken")

	// ErrInvalidCredentials is deliberately generic: unknown user and wrong
	// password must be indistinguishable to the caller.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrInvalidToken is the uniform rejection for every verification
	// failure; it must not reveal whether the token was tampered or expired.
	ErrInvalidToken = errors.New("invalid token")

	ErrForbidden = errors.New("operation not permitted")
	ErrNotFound  = errors.New("not found")
)
