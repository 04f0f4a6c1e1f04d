package service

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"golang.org/x/crypto/bcrypt"
)

// Authenticate checks username and password against the stored hash.
func (t *Tracker) Authenticate(ctx context.Context, username, password string) (bool, error) {
	u, err := t.g.deps.Users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			_ = bcrypt.CompareHashAndPassword(t.g.dummyHash, []byte(password))
			return false, nil
		}
		return false, storeErr("authenticate", err)
	}
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) == nil, nil
}

func (t *Tracker) CheckIfUsernameExists(ctx context.Context, username string) (bool, error) {
	ok, err := t.g.deps.Users.Exists(ctx, username)
	if err != nil {
		return false, storeErr("check username", err)
	}
	return ok, nil
}

// CreateAccount stores a new account with a freshly salted hash. A duplicate
// username comes back as a *StoreError that IsUniqueConstraintViolation accepts.
func (t *Tracker) CreateAccount(ctx context.Context, username, password string) (bool, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), t.g.deps.BcryptCost)
	if err != nil {
		return false, err
	}
	n, err := t.g.deps.Users.Create(ctx, username, string(hash))
	if err != nil {
		return false, storeErr("create account", err)
	}
	return n == 1, nil
}

// UpdateAccount renames the current account and replaces its password.
// On success the gateway is scoped to the new username.
func (t *Tracker) UpdateAccount(ctx context.Context, newUsername, newPassword string) (bool, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), t.g.deps.BcryptCost)
	if err != nil {
		return false, err
	}
	n, err := t.g.deps.Users.Update(ctx, t.username, newUsername, string(hash))
	if err != nil {
		return false, storeErr("update account", err)
	}
	if n == 0 {
		return false, nil
	}
	t.invalidate(ctx, t.username)
	t.username = newUsername
	return true, nil
}

// DeleteAccount removes the current account and, by cascade, its activities.
func (t *Tracker) DeleteAccount(ctx context.Context) (bool, error) {
	n, err := t.g.deps.Users.Delete(ctx, t.username)
	if err != nil {
		return false, storeErr("delete account", err)
	}
	t.invalidate(ctx, t.username)
	return n > 0, nil
}

// IsSameAccount reports whether username and password equal the current
// credentials. The password is verified against the stored hash; no
// plaintext is kept in the session.
func (t *Tracker) IsSameAccount(ctx context.Context, username, password string) (bool, error) {
	if username != t.username {
		return false, nil
	}
	return t.Authenticate(ctx, t.username, password)
}

// GetAccountInfo returns the values used to pre-fill the edit account form.
// The password is always empty.
func (t *Tracker) GetAccountInfo() (username, password string) {
	return t.username, ""
}
