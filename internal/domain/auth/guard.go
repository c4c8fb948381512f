package auth

// State is the part of a session the guards decide on.
type State struct {
	Authenticated bool
	Role          Role
}

// RequireAuthenticated admits any authenticated session.
func RequireAuthenticated(s State) error {
	if !s.Authenticated || !s.Role.Valid() {
		return ErrAuthenticationRequired
	}
	return nil
}

// RequireAdmin admits only authenticated admin sessions. Authentication is
// checked first so anonymous callers get ErrAuthenticationRequired.
func RequireAdmin(s State) error {
	if err := RequireAuthenticated(s); err != nil {
		return err
	}
	if s.Role != RoleAdmin {
		return ErrAdminRequired
	}
	return nil
}
