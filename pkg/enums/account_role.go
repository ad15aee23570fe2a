package enums

import (
	"fmt"
	"strings"
)

// AccountRole is the platform-wide permission level carried in access tokens.
type AccountRole string

const (
	AccountRoleUser  AccountRole = "user"
	AccountRoleAdmin AccountRole = "admin"
)

var validAccountRoles = []AccountRole{
	AccountRoleUser,
	AccountRoleAdmin,
}

// String implements fmt.Stringer.
func (r AccountRole) String() string {
	return string(r)
}

// IsValid reports whether the value is a known AccountRole.
func (r AccountRole) IsValid() bool {
	for _, candidate := range validAccountRoles {
		if candidate == r {
			return true
		}
	}
	return false
}

// IsAdmin reports whether the role grants administrative access.
func (r AccountRole) IsAdmin() bool {
	return r == AccountRoleAdmin
}

// ParseAccountRole converts raw input into an AccountRole, ignoring case.
func ParseAccountRole(value string) (AccountRole, error) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	for _, candidate := range validAccountRoles {
		if string(candidate) == normalized {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid account role %q", value)
}
