// Package gate is a small registry of per-resource authorization policies.
// A Gate maps a resource type ("client", "task", "profile") to the Policy
// deciding whether a subject may act on it. It knows nothing about models.
package gate

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// Gate is the central authorization checkpoint. U is the subject type; the
// zero value of U is treated as "no subject".
type Gate[U comparable] struct {
	mu       sync.RWMutex
	policies map[string]Policy[U]
}

// NewGate creates an empty Gate.
func NewGate[U comparable]() *Gate[U] {
	return &Gate[U]{policies: make(map[string]Policy[U])}
}

// Register adds or replaces the policy for resourceType.
func (g *Gate[U]) Register(resourceType string, p Policy[U]) {
	g.mu.Lock()
	g.policies[resourceType] = p
	g.mu.Unlock()
}

// ResourceTypes lists the registered resource types in sorted order.
func (g *Gate[U]) ResourceTypes() []string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make([]string, 0, len(g.policies))
	for k := range g.policies {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Authorize returns nil when user may perform action on resource.
// Denials wrap ErrUnauthorized; unknown resource types wrap ErrNoPolicyDefined.
func (g *Gate[U]) Authorize(ctx context.Context, user U, action Action, resourceType string, resource any) error {
	var zero U
	if user == zero {
		return fmt.Errorf("%w: no subject for %s %s", ErrUnauthorized, action, resourceType)
	}
	g.mu.RLock()
	p, ok := g.policies[resourceType]
	g.mu.RUnlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrNoPolicyDefined, resourceType)
	}
	if !p.Can(ctx, user, action, resource) {
		return fmt.Errorf("%w: %s %s", ErrUnauthorized, action, resourceType)
	}
	return nil
}

// Can reports whether Authorize would succeed.
func (g *Gate[U]) Can(ctx context.Context, user U, action Action, resourceType string, resource any) bool {
	return g.Authorize(ctx, user, action, resourceType, resource) == nil
}
