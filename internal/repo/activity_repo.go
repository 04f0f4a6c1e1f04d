package repo

import (
	"context"

	dom "Tracker/internal/domain"
	"Tracker/internal/listing"
)

// ActivityRepo provides activity persistence. Every method is scoped by the
// owning username.
type ActivityRepo interface {
	Create(ctx context.Context, username string, in dom.ActivityInput) (int64, error)
	GetByID(ctx context.Context, username string, id int64) (dom.Activity, error)
	Exists(ctx context.Context, username string, id int64) (bool, error)
	Update(ctx context.Context, username string, id int64, in dom.ActivityInput) (int64, error)
	Matches(ctx context.Context, username string, id int64, in dom.ActivityInput) (bool, error)
	Delete(ctx context.Context, username string, id int64) (int64, error)
	ListSorted(ctx context.Context, username string, sort listing.State) ([]dom.Activity, error)
	Count(ctx context.Context, username string) (int, error)
}

// ORDER BY cannot take bind parameters, so sortable columns map to fixed
// fragments. Text columns compare case-insensitively.
var orderColumns = map[listing.Column]string{
	listing.ColumnTitle:         "lower(title)",
	listing.ColumnCategory:      "lower(category)",
	listing.ColumnDateCompleted: "date_completed",
	listing.ColumnMinToComplete: "min_to_complete",
}

var orderDirections = map[bool]string{
	false: "ASC",
	true:  "DESC",
}

func orderBy(s listing.State) string {
	s = s.Normalize()
	return " ORDER BY " + orderColumns[s.Column] + " " + orderDirections[s.Descending] + ", id ASC"
}

const activityColumns = `id, title, category, date_completed, min_to_complete, username`

type PGActivityRepo struct {
	db DB
}

func NewPGActivityRepo(db DB) *PGActivityRepo {
	return &PGActivityRepo{db: db}
}

// Create inserts the activity. Date and minutes are sent as text and parsed by Postgres.
func (r *PGActivityRepo) Create(ctx context.Context, username string, in dom.ActivityInput) (int64, error) {
	query := `
		INSERT INTO activities (title, category, date_completed, min_to_complete, username)
		VALUES ($1, $2, $3, $4, $5)`
	tag, err := r.db.Exec(ctx, query, in.Title, in.Category, in.Date, in.MinToComplete, username)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *PGActivityRepo) GetByID(ctx context.Context, username string, id int64) (dom.Activity, error) {
	query := `SELECT ` + activityColumns + ` FROM activities WHERE id = $1 AND username = $2`
	var a dom.Activity
	err := r.db.QueryRow(ctx, query, id, username).Scan(
		&a.ID, &a.Title, &a.Category, &a.DateCompleted, &a.MinToComplete, &a.Username,
	)
	return a, err
}

func (r *PGActivityRepo) Exists(ctx context.Context, username string, id int64) (bool, error) {
	var ok bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM activities WHERE id = $1 AND username = $2)`,
		id, username,
	).Scan(&ok)
	return ok, err
}

// Update replaces the editable fields. Ownership is part of the WHERE clause,
// so a foreign or missing id affects zero rows.
func (r *PGActivityRepo) Update(ctx context.Context, username string, id int64, in dom.ActivityInput) (int64, error) {
	query := `
		UPDATE activities
		SET title = $1, category = $2, date_completed = $3, min_to_complete = $4
		WHERE id = $5 AND username = $6`
	tag, err := r.db.Exec(ctx, query, in.Title, in.Category, in.Date, in.MinToComplete, id, username)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// Matches reports whether the stored row already holds exactly these values.
func (r *PGActivityRepo) Matches(ctx context.Context, username string, id int64, in dom.ActivityInput) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM activities
			WHERE title = $1 AND category = $2 AND date_completed = $3
			  AND min_to_complete = $4 AND id = $5 AND username = $6
		)`
	var ok bool
	err := r.db.QueryRow(ctx, query, in.Title, in.Category, in.Date, in.MinToComplete, id, username).Scan(&ok)
	return ok, err
}

func (r *PGActivityRepo) Delete(ctx context.Context, username string, id int64) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM activities WHERE id = $1 AND username = $2`, id, username)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *PGActivityRepo) ListSorted(ctx context.Context, username string, sort listing.State) ([]dom.Activity, error) {
	query := `SELECT ` + activityColumns + ` FROM activities WHERE username = $1` + orderBy(sort)
	rows, err := r.db.Query(ctx, query, username)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []dom.Activity
	for rows.Next() {
		var a dom.Activity
		if err := rows.Scan(&a.ID, &a.Title, &a.Category, &a.DateCompleted, &a.MinToComplete, &a.Username); err != nil {
			return nil, err
		}
		list = append(list, a)
	}
	return list, rows.Err()
}

func (r *PGActivityRepo) Count(ctx context.Context, username string) (int, error) {
	var n int64
	err := r.db.QueryRow(ctx, `SELECT COUNT(id) FROM activities WHERE username = $1`, username).Scan(&n)
	return int(n), err
}
