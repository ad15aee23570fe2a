package enums

import (
	"fmt"
	"strings"
)

// AccountStatus is the lifecycle state of an account. Only two states exist and
// any transition between them is allowed.
type AccountStatus string

const (
	AccountStatusActive   AccountStatus = "active"
	AccountStatusInactive AccountStatus = "inactive"
)

var validAccountStatuses = []AccountStatus{
	AccountStatusActive,
	AccountStatusInactive,
}

// String implements fmt.Stringer.
func (s AccountStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known AccountStatus.
func (s AccountStatus) IsValid() bool {
	for _, candidate := range validAccountStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// IsActive reports whether the status is Active.
func (s AccountStatus) IsActive() bool {
	return s == AccountStatusActive
}

// Label returns the capitalised form used in user-facing messages.
func (s AccountStatus) Label() string {
	switch s {
	case AccountStatusActive:
		return "Active"
	case AccountStatusInactive:
		return "Inactive"
	}
	return string(s)
}

// AccountStatusFromActive maps the boolean used on the wire to a status.
func AccountStatusFromActive(isActive bool) AccountStatus {
	if isActive {
		return AccountStatusActive
	}
	return AccountStatusInactive
}

// ParseAccountStatus converts raw input into an AccountStatus, ignoring case.
func ParseAccountStatus(value string) (AccountStatus, error) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	for _, candidate := range validAccountStatuses {
		if string(candidate) == normalized {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid account status %q", value)
}
