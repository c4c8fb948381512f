package auth

import "errors"

var (
	// ErrAuthenticationRequired indicates the request has no authenticated session.
	ErrAuthenticationRequired = errors.New("authentication required")
	// ErrAdminRequired indicates the session is authenticated but not as admin.
	ErrAdminRequired = errors.New("admin access required")
)
