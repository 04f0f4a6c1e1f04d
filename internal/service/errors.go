package service

import "errors"

// ErrNotFound means the activity or account does not exist or is not owned
// by the signed-in account.
var ErrNotFound = errors.New("not found")

// StoreError wraps a failure reported by Postgres.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string { return e.Op + ": " + e.Err.Error() }

func (e *StoreError) Unwrap() error { return e.Err }

func storeErr(op string, err error) error {
	return &StoreError{Op: op, Err: err}
}
