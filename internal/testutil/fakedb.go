// Package testutil provides in-memory stand-ins for the Postgres repositories.
package testutil

import (
	"context"
	"errors"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	dom "Tracker/internal/domain"
	"Tracker/internal/listing"
	"Tracker/internal/repo"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// ErrBadInput is returned for a malformed date or minutes value.
var ErrBadInput = &pgconn.PgError{Code: "22007", Message: "invalid input syntax for type date"}

// FakeDB is an in-memory users + activities store that mimics the
// Postgres schema: unique usernames, cascading rename and delete, and
// date/integer parsing errors for malformed input.
type FakeDB struct {
	mu         sync.Mutex
	nextID     int64
	users      map[string]string
	activities map[int64]dom.Activity
	writes     int
	failWith   error
}

func NewFakeDB() *FakeDB {
	return &FakeDB{
		nextID:     1,
		users:      make(map[string]string),
		activities: make(map[int64]dom.Activity),
	}
}

type fakeUsers struct{ db *FakeDB }

type fakeActivities struct{ db *FakeDB }

// Users returns a repo.UserRepo backed by db.
func (db *FakeDB) Users() repo.UserRepo { return fakeUsers{db: db} }

// Activities returns a repo.ActivityRepo backed by db.
func (db *FakeDB) Activities() repo.ActivityRepo { return fakeActivities{db: db} }

// WriteCount returns the number of successful writes so far.
func (db *FakeDB) WriteCount() int {
	db.mu.Lock()
	defer db.mu.Unlock()
	return db.writes
}

// Fail makes subsequent reads return err; nil clears it.
func (db *FakeDB) Fail(err error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.failWith = err
}

func (f fakeUsers) GetByUsername(_ context.Context, username string) (dom.User, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	if f.db.failWith != nil {
		return dom.User{}, f.db.failWith
	}
	h, ok := f.db.users[username]
	if !ok {
		return dom.User{}, pgx.ErrNoRows
	}
	return dom.User{Username: username, PasswordHash: h}, nil
}

func (f fakeUsers) Exists(_ context.Context, username string) (bool, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	_, ok := f.db.users[username]
	return ok, nil
}

func (f fakeUsers) Create(_ context.Context, username, hash string) (int64, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	if _, ok := f.db.users[username]; ok {
		return 0, &pgconn.PgError{Code: "23505", Message: `duplicate key value violates unique constraint "users_pkey"`}
	}
	f.db.users[username] = hash
	f.db.writes++
	return 1, nil
}

func (f fakeUsers) Update(_ context.Context, username, newUsername, hash string) (int64, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	if _, ok := f.db.users[username]; !ok {
		return 0, nil
	}
	if _, taken := f.db.users[newUsername]; taken && newUsername != username {
		return 0, &pgconn.PgError{Code: "23505", Message: `duplicate key value violates unique constraint "users_pkey"`}
	}
	delete(f.db.users, username)
	f.db.users[newUsername] = hash
	for id, a := range f.db.activities {
		if a.Username == username {
			a.Username = newUsername
			f.db.activities[id] = a
		}
	}
	f.db.writes++
	return 1, nil
}

func (f fakeUsers) Delete(_ context.Context, username string) (int64, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	if _, ok := f.db.users[username]; !ok {
		return 0, nil
	}
	delete(f.db.users, username)
	for id, a := range f.db.activities {
		if a.Username == username {
			delete(f.db.activities, id)
		}
	}
	f.db.writes++
	return 1, nil
}

func parseInput(in dom.ActivityInput) (time.Time, int, error) {
	d, err := time.Parse("2006-01-02", in.Date)
	if err != nil {
		return time.Time{}, 0, ErrBadInput
	}
	m, err := strconv.Atoi(in.MinToComplete)
	if err != nil {
		return time.Time{}, 0, ErrBadInput
	}
	return d, m, nil
}

func (f fakeActivities) Create(_ context.Context, username string, in dom.ActivityInput) (int64, error) {
	d, m, err := parseInput(in)
	if err != nil {
		return 0, err
	}
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	id := f.db.nextID
	f.db.nextID++
	f.db.activities[id] = dom.Activity{ID: id, Title: in.Title, Category: in.Category, DateCompleted: d, MinToComplete: m, Username: username}
	f.db.writes++
	return 1, nil
}

func (f fakeActivities) GetByID(_ context.Context, username string, id int64) (dom.Activity, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	a, ok := f.db.activities[id]
	if !ok || a.Username != username {
		return dom.Activity{}, pgx.ErrNoRows
	}
	return a, nil
}

func (f fakeActivities) Exists(ctx context.Context, username string, id int64) (bool, error) {
	_, err := f.GetByID(ctx, username, id)
	return err == nil, nil
}

func (f fakeActivities) Update(_ context.Context, username string, id int64, in dom.ActivityInput) (int64, error) {
	d, m, err := parseInput(in)
	if err != nil {
		return 0, err
	}
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	a, ok := f.db.activities[id]
	if !ok || a.Username != username {
		return 0, nil
	}
	a.Title, a.Category, a.DateCompleted, a.MinToComplete = in.Title, in.Category, d, m
	f.db.activities[id] = a
	f.db.writes++
	return 1, nil
}

func (f fakeActivities) Matches(ctx context.Context, username string, id int64, in dom.ActivityInput) (bool, error) {
	a, err := f.GetByID(ctx, username, id)
	if err != nil {
		return false, nil
	}
	return dom.InputOf(a) == in, nil
}

func (f fakeActivities) Delete(_ context.Context, username string, id int64) (int64, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	a, ok := f.db.activities[id]
	if !ok || a.Username != username {
		return 0, nil
	}
	delete(f.db.activities, id)
	f.db.writes++
	return 1, nil
}

func (f fakeActivities) ListSorted(_ context.Context, username string, s listing.State) ([]dom.Activity, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	if f.db.failWith != nil {
		return nil, f.db.failWith
	}
	var out []dom.Activity
	for _, a := range f.db.activities {
		if a.Username == username {
			out = append(out, a)
		}
	}
	s = s.Normalize()
	less := func(a, b dom.Activity) int {
		switch s.Column {
		case listing.ColumnCategory:
			return strings.Compare(strings.ToLower(a.Category), strings.ToLower(b.Category))
		case listing.ColumnDateCompleted:
			return a.DateCompleted.Compare(b.DateCompleted)
		case listing.ColumnMinToComplete:
			return a.MinToComplete - b.MinToComplete
		}
		return strings.Compare(strings.ToLower(a.Title), strings.ToLower(b.Title))
	}
	sort.Slice(out, func(i, j int) bool {
		c := less(out[i], out[j])
		if s.Descending {
			c = -c
		}
		if c == 0 {
			return out[i].ID < out[j].ID
		}
		return c < 0
	})
	return out, nil
}

func (f fakeActivities) Count(ctx context.Context, username string) (int, error) {
	list, err := f.ListSorted(ctx, username, listing.State{})
	return len(list), err
}

// ErrConnRefused stands in for an unreachable database.
var ErrConnRefused = errors.New("dial tcp 127.0.0.1:5432: connect: connection refused")
