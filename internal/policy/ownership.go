// Package policy holds the application's authorization rules.
package policy

import (
	"context"

	"github.com/diewo77/clientsync/gate"
)

// Ownable is implemented by models that belong to a single user.
type Ownable interface {
	GetUserID() string
}

// OwnershipPolicy allows an action when the subject owns the resource.
type OwnershipPolicy struct{}

// NewOwnershipPolicy creates a new ownership policy.
func NewOwnershipPolicy() *OwnershipPolicy {
	return &OwnershipPolicy{}
}

// Can checks if the user owns the resource.
// List and create checks carry no resource and are allowed; the caller's
// queries are already scoped to the user.
func (p *OwnershipPolicy) Can(_ context.Context, userID string, _ gate.Action, resource any) bool {
	if resource == nil {
		return true
	}
	ownable, ok := resource.(Ownable)
	if !ok {
		// Resources without an owner are never reachable through this policy.
		return false
	}
	return ownable.GetUserID() == userID
}

// NewGate returns a gate with the ownership policy registered for every
// user-owned resource type.
func NewGate() *gate.Gate[string] {
	g := gate.NewGate[string]()
	owner := NewOwnershipPolicy()
	g.Register(gate.ResourceClient, owner)
	g.Register(gate.ResourceTask, owner)
	g.Register(gate.ResourceProfile, owner)
	return g
}
