package auth

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// StaticPermissionGate answers permission checks from an in-memory grant
// table. It backs deployments where an upstream gateway already authenticated
// the actor and role sync pushes grants into the service.
type StaticPermissionGate struct {
	mu     sync.RWMutex
	grants map[grantKey]map[string]struct{}
	system map[uuid.UUID]map[string]struct{}
}

type grantKey struct {
	tenantID uuid.UUID
	actorID  uuid.UUID
}

// NewStaticPermissionGate creates an empty gate; actors hold no permissions
// until granted.
func NewStaticPermissionGate() *StaticPermissionGate {
	return &StaticPermissionGate{
		grants: make(map[grantKey]map[string]struct{}),
		system: make(map[uuid.UUID]map[string]struct{}),
	}
}

// GrantSystem gives an actor the permission codes in every tenant. Used for
// well-known service actors such as the batch transition runner.
func (g *StaticPermissionGate) GrantSystem(actorID uuid.UUID, codes ...string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	set, ok := g.system[actorID]
	if !ok {
		set = make(map[string]struct{}, len(codes))
		g.system[actorID] = set
	}
	for _, code := range codes {
		set[code] = struct{}{}
	}
}

// Grant gives an actor the permission codes within a tenant
func (g *StaticPermissionGate) Grant(tenantID, actorID uuid.UUID, codes ...string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	key := grantKey{tenantID: tenantID, actorID: actorID}
	set, ok := g.grants[key]
	if !ok {
		set = make(map[string]struct{}, len(codes))
		g.grants[key] = set
	}
	for _, code := range codes {
		set[code] = struct{}{}
	}
}

// Revoke removes permission codes from an actor within a tenant
func (g *StaticPermissionGate) Revoke(tenantID, actorID uuid.UUID, codes ...string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	key := grantKey{tenantID: tenantID, actorID: actorID}
	for _, code := range codes {
		delete(g.grants[key], code)
	}
}

// HasPermission reports whether the actor holds the permission code
func (g *StaticPermissionGate) HasPermission(_ context.Context, tenantID, actorID uuid.UUID, code string) (bool, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	if _, ok := g.system[actorID][code]; ok {
		return true, nil
	}
	_, ok := g.grants[grantKey{tenantID: tenantID, actorID: actorID}][code]
	return ok, nil
}

// AllowAllGate grants every permission. For development and tests only.
type AllowAllGate struct{}

// HasPermission always returns true
func (AllowAllGate) HasPermission(_ context.Context, _, _ uuid.UUID, _ string) (bool, error) {
	return true, nil
}
