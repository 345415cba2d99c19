// Package gate is the single entry checkpoint in front of the settlement
// coordinator: a capability check parameterized by principal, action and
// resource, plus the pure business-rule predicates (amount bounds, expiry,
// ownership, stock sufficiency) evaluated before any mutation.
package gate

import (
	"context"
	"errors"
)

// Action describes the kind of operation a principal wants to perform.
type Action string

const (
	ActionSettle   Action = "settle"
	ActionTopUp    Action = "topup"
	ActionTransfer Action = "transfer"
)

// Sentinel errors returned by Gate.Authorize.
var (
	ErrUnauthorized    = errors.New("unauthorized")
	ErrNoPolicyDefined = errors.New("no policy defined for resource")
)

// Policy defines the capability rules for one resource type.
type Policy interface {
	Can(ctx context.Context, principalID string, action Action, resource any) bool
}

// Gate is a central registry of policies keyed by resource type. Callers
// consult it instead of scattering role checks per call site.
type Gate struct {
	policies map[string]Policy
}

func New() *Gate {
	return &Gate{policies: make(map[string]Policy)}
}

// Register adds a policy for a resource type (e.g. "invoice"),
// overwriting any existing one.
func (g *Gate) Register(resourceType string, p Policy) {
	g.policies[resourceType] = p
}

// Authorize returns ErrUnauthorized for an empty principal or a denied
// action, and ErrNoPolicyDefined when the resource type is unknown.
func (g *Gate) Authorize(ctx context.Context, principalID string, action Action, resourceType string, resource any) error {
	if principalID == "" {
		return ErrUnauthorized
	}
	p, ok := g.policies[resourceType]
	if !ok {
		return ErrNoPolicyDefined
	}
	if !p.Can(ctx, principalID, action, resource) {
		return ErrUnauthorized
	}
	return nil
}

// Can is a convenience wrapper returning bool instead of error.
func (g *Gate) Can(ctx context.Context, principalID string, action Action, resourceType string, resource any) bool {
	return g.Authorize(ctx, principalID, action, resourceType, resource) == nil
}
