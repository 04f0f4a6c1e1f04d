package service

import (
	"context"

	"Tracker/internal/auth"
	"Tracker/internal/cache"
	"Tracker/internal/repo"
	"Tracker/internal/utils"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/sync/singleflight"
)

// Deps are the shared collaborators of every Tracker.
type Deps struct {
	Users      repo.UserRepo
	Activities repo.ActivityRepo
	// Cache may be nil; lists are then always read from Postgres.
	Cache      *cache.ActivityCache
	BcryptCost int
}

// Gateways builds one Tracker per request. It is safe for concurrent use.
type Gateways struct {
	deps Deps
	sf   singleflight.Group
	// dummyHash is compared against when a username is unknown so that
	// Authenticate costs the same either way.
	dummyHash []byte
}

// NewGateways returns a Gateways. A zero BcryptCost means bcrypt.DefaultCost.
func NewGateways(d Deps) (*Gateways, error) {
	if d.BcryptCost == 0 {
		d.BcryptCost = bcrypt.DefaultCost
	}
	h, err := bcrypt.GenerateFromPassword([]byte("activity-tracker"), d.BcryptCost)
	if err != nil {
		return nil, err
	}
	return &Gateways{deps: d, dummyHash: h}, nil
}

// For returns the gateway scoped to the account signed in on rs.
func (g *Gateways) For(rs *auth.RequestState) *Tracker {
	t := &Tracker{g: g}
	if rs != nil && rs.Session != nil {
		t.username = rs.Session.Username
	}
	return t
}

// Tracker is the persistence gateway of one request. Every read and write
// is scoped to username.
type Tracker struct {
	g        *Gateways
	username string
}

// IsUniqueConstraintViolation reports whether err from a write means a
// uniqueness conflict rather than a store failure.
func (t *Tracker) IsUniqueConstraintViolation(err error) bool {
	return utils.IsPGUniqueViolation(err)
}

func (t *Tracker) invalidate(ctx context.Context, username string) {
	if t.g.deps.Cache != nil {
		_ = t.g.deps.Cache.Invalidate(ctx, username)
	}
}
