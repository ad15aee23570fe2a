package ownership

import (
	"github.com/angelmondragon/listingz-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/listingz-backend/pkg/errors"
	"github.com/google/uuid"
)

// Action classifies what the caller is trying to do with an owned resource.
type Action int

const (
	ActionRead Action = iota
	ActionUpdate
	ActionDelete
)

func (a Action) String() string {
	switch a {
	case ActionRead:
		return "read"
	case ActionUpdate:
		return "update"
	case ActionDelete:
		return "delete"
	}
	return "unknown"
}

// CanAccess reports whether callerID may act on a resource owned by ownerID.
// Only the owner qualifies; the role is accepted for call-site symmetry and
// grants no bypass, admins included.
func CanAccess(ownerID, callerID uuid.UUID, _ enums.AccountRole) bool {
	if ownerID == uuid.Nil || callerID == uuid.Nil {
		return false
	}
	return ownerID == callerID
}

// Require returns nil when the caller owns the resource. Denied reads map to
// Unauthorized and denied mutations to Forbidden.
func Require(action Action, ownerID, callerID uuid.UUID, role enums.AccountRole) error {
	if CanAccess(ownerID, callerID, role) {
		return nil
	}
	if action == ActionRead {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "you do not have access to this resource")
	}
	return pkgerrors.New(pkgerrors.CodeForbidden, "only the owner can "+action.String()+" this resource")
}
