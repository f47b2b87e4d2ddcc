package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Identity carries the authenticated caller of a request. The upstream
// gateway authenticates and forwards tenant and actor as headers.
type Identity struct {
	TenantID uuid.UUID
	ActorID  uuid.UUID
}

const (
	headerTenantID = "X-Tenant-ID"
	headerActorID  = "X-Actor-ID"
)

// BindIdentity reads the caller identity from request headers
func BindIdentity(c *gin.Context) (Identity, bool) {
	tenantID, err := uuid.Parse(c.GetHeader(headerTenantID))
	if err != nil {
		BadRequest(c, "missing or malformed "+headerTenantID+" header")
		return Identity{}, false
	}
	actorID, err := uuid.Parse(c.GetHeader(headerActorID))
	if err != nil {
		BadRequest(c, "missing or malformed "+headerActorID+" header")
		return Identity{}, false
	}
	return Identity{TenantID: tenantID, ActorID: actorID}, true
}
