package repo

import (
	"context"

	dom "Tracker/internal/domain"
)

// UserRepo provides account persistence.
type UserRepo interface {
	GetByUsername(ctx context.Context, username string) (dom.User, error)
	Exists(ctx context.Context, username string) (bool, error)
	Create(ctx context.Context, username, passwordHash string) (int64, error)
	Update(ctx context.Context, username, newUsername, passwordHash string) (int64, error)
	Delete(ctx context.Context, username string) (int64, error)
}

// PGUserRepo implements UserRepo with Postgres.
type PGUserRepo struct {
	db DB
}

// NewPGUserRepo returns a new PGUserRepo.
func NewPGUserRepo(db DB) *PGUserRepo {
	return &PGUserRepo{db: db}
}

// GetByUsername returns the account or pgx.ErrNoRows.
func (r *PGUserRepo) GetByUsername(ctx context.Context, username string) (dom.User, error) {
	var u dom.User
	err := r.db.QueryRow(ctx,
		`SELECT username, password FROM users WHERE username = $1`,
		username,
	).Scan(&u.Username, &u.PasswordHash)
	return u, err
}

func (r *PGUserRepo) Exists(ctx context.Context, username string) (bool, error) {
	var ok bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM users WHERE username = $1)`,
		username,
	).Scan(&ok)
	return ok, err
}

// Create inserts an account and returns the number of rows written.
func (r *PGUserRepo) Create(ctx context.Context, username, passwordHash string) (int64, error) {
	tag, err := r.db.Exec(ctx,
		`INSERT INTO users (username, password) VALUES ($1, $2)`,
		username, passwordHash,
	)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// Update renames the account and replaces its password hash.
// Activities follow the rename through ON UPDATE CASCADE.
func (r *PGUserRepo) Update(ctx context.Context, username, newUsername, passwordHash string) (int64, error) {
	tag, err := r.db.Exec(ctx,
		`UPDATE users SET username = $1, password = $2 WHERE username = $3`,
		newUsername, passwordHash, username,
	)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// Delete removes the account; its activities go with it (ON DELETE CASCADE).
func (r *PGUserRepo) Delete(ctx context.Context, username string) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM users WHERE username = $1`, username)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
