package auth

// Role is the privilege tier bound to an authenticated session.
type Role string

const (
	RoleNone   Role = ""
	RoleAdmin  Role = "admin"
	RoleViewer Role = "viewer"
)

// Valid reports whether r is a role a session can be authenticated with.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleViewer
}

// Permissions describes what the client UI may offer for a role.
type Permissions struct {
	CanEdit               bool `json:"can_edit"`
	CanDelete             bool `json:"can_delete"`
	CanExport             bool `json:"can_export"`
	CanManageIntegrations bool `json:"can_manage_integrations"`
	CanViewAnalytics      bool `json:"can_view_analytics"`
}

// PermissionsFor returns the permission set granted to role.
func PermissionsFor(role Role) Permissions {
	switch role {
	case RoleAdmin:
		return Permissions{
			CanEdit:               true,
			CanDelete:             true,
			CanExport:             true,
			CanManageIntegrations: true,
			CanViewAnalytics:      true,
		}
	case RoleViewer:
		return Permissions{
			CanExport:        true,
			CanViewAnalytics: true,
		}
	default:
		return Permissions{}
	}
}
