package enums

import "fmt"

// UserRole is the platform-level role stored on the user record. Admin
// capability is resolved from this flag, never from a hardcoded list.
type UserRole string

const (
	UserRoleArtist UserRole = "ARTIST"
	UserRoleLabel  UserRole = "LABEL"
	UserRoleTeam   UserRole = "TEAM"
	UserRoleAdmin  UserRole = "ADMIN"
)

var validUserRoles = []UserRole{
	UserRoleArtist,
	UserRoleLabel,
	UserRoleTeam,
	UserRoleAdmin,
}

// String implements fmt.Stringer.
func (r UserRole) String() string {
	return string(r)
}

// IsValid reports whether the value is a known UserRole.
func (r UserRole) IsValid() bool {
	for _, candidate := range validUserRoles {
		if candidate == r {
			return true
		}
	}
	return false
}

// ParseUserRole converts raw input into a UserRole.
func ParseUserRole(value string) (UserRole, error) {
	for _, candidate := range validUserRoles {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid user role %q", value)
}
