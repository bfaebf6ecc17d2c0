// Package access implements the tier gate: who is verified, who may reach
// which capabilities, and the owner-only user-management operations. The
// owner ID check is a placeholder authentication scheme, not a hardened
// security boundary.
package access

import (
	"context"
	"errors"
	"fmt"

	"github.com/Ariyan3323/my-ai-bot/store"
)

var ErrNotOwner = errors.New("access: owner privileges required")

type Gate struct {
	users   store.Store
	ownerID int64
}

func NewGate(users store.Store, ownerID int64) *Gate {
	return &Gate{users: users, ownerID: ownerID}
}

func (g *Gate) OwnerID() int64 { return g.ownerID }

func (g *Gate) IsOwner(id int64) bool { return id != 0 && id == g.ownerID }

// Level resolves the user's tier. The configured owner ID always maps to
// Owner regardless of stored data; everybody else defaults to Free.
func (g *Gate) Level(ctx context.Context, id int64) (store.Tier, error) {
	if g.IsOwner(id) {
		return store.TierOwner, nil
	}
	u, found, err := g.users.Get(ctx, id)
	if err != nil {
		return store.TierFree, fmt.Errorf("resolve level for %d: %w", id, err)
	}
	if !found || !u.Level.Valid() {
		return store.TierFree, nil
	}
	// Stored Owner rows for non-owner IDs are stale data, not a grant.
	if u.Level == store.TierOwner {
		return store.TierGold, nil
	}
	return u.Level, nil
}

func (g *Gate) IsVerified(ctx context.Context, id int64) (bool, error) {
	if g.IsOwner(id) {
		return true, nil
	}
	level, err := g.Level(ctx, id)
	if err != nil {
		return false, err
	}
	return level != store.TierFree, nil
}

// Promote sets the target's tier. Owner-only; a non-owner attempt is
// rejected with no side effect. The owner's own tier is immutable.
func (g *Gate) Promote(ctx context.Context, actorID, targetID int64, tier store.Tier) error {
	if !g.IsOwner(actorID) {
		return ErrNotOwner
	}
	if !tier.Valid() || tier == store.TierOwner {
		return fmt.Errorf("access: invalid target tier %q", tier)
	}
	if g.IsOwner(targetID) {
		return fmt.Errorf("access: the owner tier is fixed")
	}
	if _, err := g.users.Update(ctx, targetID, func(u *store.User) {
		store.SetLevel(u, tier)
	}); err != nil {
		return fmt.Errorf("promote %d: %w", targetID, err)
	}
	return nil
}

// ListUsers enumerates known users and their tiers. Owner-only; a non-owner
// attempt discloses nothing.
func (g *Gate) ListUsers(ctx context.Context, actorID int64) ([]store.User, error) {
	if !g.IsOwner(actorID) {
		return nil, ErrNotOwner
	}
	users, err := g.users.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}
