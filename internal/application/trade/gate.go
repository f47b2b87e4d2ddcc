package trade

import (
	"context"

	"github.com/google/uuid"
)

// PermissionGate answers whether an actor holds a permission code. The check
// runs after the transition matrix lookup: an unreachable target is reported
// as an illegal transition even to callers lacking the permission.
type PermissionGate interface {
	HasPermission(ctx context.Context, tenantID, actorID uuid.UUID, code string) (bool, error)
}
