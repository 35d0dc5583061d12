package auth

import "github.com/servicenest/helpdesk/internal/domain"

// Capabilities is the authorization surface services consume. It is
// resolved once per request from the caller's role instead of re-deriving
// role checks inside every operation.
type Capabilities struct {
	CanEdit         bool
	CanMerge        bool
	CanViewInternal bool
}

// CapabilitiesForRole maps an account role onto capabilities.
func CapabilitiesForRole(role domain.UserRole) Capabilities {
	switch role {
	case domain.RoleAdmin:
		return Capabilities{CanEdit: true, CanMerge: true, CanViewInternal: true}
	case domain.RoleAgent:
		return Capabilities{CanEdit: true, CanMerge: true, CanViewInternal: true}
	default:
		return Capabilities{}
	}
}
