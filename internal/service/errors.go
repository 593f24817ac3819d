// Package service implements the identity core: validation, credential
// hashing, identifier resolution, uniqueness enforcement, token issuance
// and the registration/login workflows.  Handlers stay thin and translate
// the error types defined here into HTTP statuses.
package service

// ValidationError reports malformed or missing input.  The client's
// fault; handlers answer 400.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// ConflictError reports an email or username uniqueness violation,
// whether caught by the advisory pre-check or by the database index.
// Handlers answer 400.
type ConflictError struct {
	Field   string
	Message string
}

func (e *ConflictError) Error() string { return e.Message }

// AuthError reports a failed authentication attempt.  Handlers answer
// 401.  The messages intentionally distinguish unknown email, unknown
// username and wrong password.
type AuthError struct {
	Message string
}

func (e *AuthError) Error() string { return e.Message }

// NotFoundError reports a missing user or profile.  Handlers answer 404.
type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string { return e.Message }
