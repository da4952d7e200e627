package enums

import "fmt"

// MemberRole scopes what an organization member may do.
type MemberRole string

const (
	MemberRoleOwner   MemberRole = "OWNER"
	MemberRoleManager MemberRole = "MANAGER"
	MemberRoleEditor  MemberRole = "EDITOR"
	MemberRoleViewer  MemberRole = "VIEWER"
)

var validMemberRoles = []MemberRole{
	MemberRoleOwner,
	MemberRoleManager,
	MemberRoleEditor,
	MemberRoleViewer,
}

// String implements fmt.Stringer.
func (r MemberRole) String() string {
	return string(r)
}

// IsValid reports whether the value is a known MemberRole.
func (r MemberRole) IsValid() bool {
	for _, candidate := range validMemberRoles {
		if candidate == r {
			return true
		}
	}
	return false
}

// ParseMemberRole converts raw input into a MemberRole.
func ParseMemberRole(value string) (MemberRole, error) {
	for _, candidate := range validMemberRoles {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid member role %q", value)
}

// CanEditReleases reports whether the role may create or mutate releases.
func (r MemberRole) CanEditReleases() bool {
	switch r {
	case MemberRoleOwner, MemberRoleManager, MemberRoleEditor:
		return true
	default:
		return false
	}
}
