package session

import "errors"

var (
	// ErrCSRFTokenMissing indicates no token was presented or none is bound to the session.
	ErrCSRFTokenMissing = errors.New("csrf token missing")
	// ErrCSRFTokenInvalid indicates the presented token does not match the session.
	ErrCSRFTokenInvalid = errors.New("csrf token invalid")
	// ErrInvalidRole indicates an attempt to authenticate without a valid role.
	ErrInvalidRole = errors.New("invalid session role")
)
