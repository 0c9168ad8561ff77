package user

import "errors"

var (
	// ErrUserNotFound indicates the user doesn't exist.
	ErrUserNotFound = errors.New("user not found")
	// ErrInvalidInput indicates invalid user input.
	ErrInvalidInput = errors.New("invalid user input")
	// ErrEmailTaken indicates the email is already registered in the tenant.
	ErrEmailTaken = errors.New("user already exists")
	// ErrInvalidCredentials indicates a failed login.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrUnauthenticated indicates a missing, expired or unknown session.
	ErrUnauthenticated = errors.New("not authenticated")
	// ErrForbidden indicates the caller's role does not allow the operation.
	ErrForbidden = errors.New("not authorized")
)
