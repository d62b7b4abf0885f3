package gate_test

import (
	"context"
	"errors"
	"testing"

	"github.com/diewo77/clientsync/gate"
)

type staticPolicy struct {
	allow bool
}

func (p *staticPolicy) Can(_ context.Context, _ string, _ gate.Action, _ any) bool {
	return p.allow
}

func TestGate_Authorize_NoSubject(t *testing.T) {
	g := gate.NewGate[string]()
	g.Register(gate.ResourceClient, &staticPolicy{allow: true})

	err := g.Authorize(context.Background(), "", gate.ActionView, gate.ResourceClient, nil)
	if !errors.Is(err, gate.ErrUnauthorized) {
		t.Errorf("expected ErrUnauthorized, got %v", err)
	}
}

func TestGate_Authorize_NoPolicy(t *testing.T) {
	g := gate.NewGate[string]()

	err := g.Authorize(context.Background(), "user-1", gate.ActionView, "invoice", nil)
	if !errors.Is(err, gate.ErrNoPolicyDefined) {
		t.Errorf("expected ErrNoPolicyDefined, got %v", err)
	}
}

func TestGate_Authorize(t *testing.T) {
	g := gate.NewGate[string]()
	g.Register(gate.ResourceClient, &staticPolicy{allow: true})
	g.Register(gate.ResourceTask, &staticPolicy{allow: false})

	if err := g.Authorize(context.Background(), "user-1", gate.ActionUpdate, gate.ResourceClient, nil); err != nil {
		t.Errorf("expected nil error, got %v", err)
	}
	err := g.Authorize(context.Background(), "user-1", gate.ActionDelete, gate.ResourceTask, nil)
	if !errors.Is(err, gate.ErrUnauthorized) {
		t.Errorf("expected ErrUnauthorized, got %v", err)
	}
}

func TestGate_PolicyFunc(t *testing.T) {
	g := gate.NewGate[string]()
	g.Register(gate.ResourceProfile, gate.PolicyFunc[string](func(_ context.Context, user string, action gate.Action, _ any) bool {
		return user == "owner" || action == gate.ActionView
	}))

	if !g.Can(context.Background(), "owner", gate.ActionUpdate, gate.ResourceProfile, nil) {
		t.Error("owner should be able to update")
	}
	if g.Can(context.Background(), "guest", gate.ActionUpdate, gate.ResourceProfile, nil) {
		t.Error("guest should not be able to update")
	}
	if !g.Can(context.Background(), "guest", gate.ActionView, gate.ResourceProfile, nil) {
		t.Error("guest should be able to view")
	}
}

func TestGate_ResourceTypes(t *testing.T) {
	g := gate.NewGate[string]()
	g.Register(gate.ResourceTask, &staticPolicy{})
	g.Register(gate.ResourceClient, &staticPolicy{})

	got := g.ResourceTypes()
	if len(got) != 2 || got[0] != gate.ResourceClient || got[1] != gate.ResourceTask {
		t.Errorf("unexpected resource types %v", got)
	}
}
