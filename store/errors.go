package store

import "errors"

var (
	// ErrStateNotFound indicates the store has not been initialized.
	ErrStateNotFound = errors.New("store: state not initialized")

	// ErrEventNotFound indicates no event is stored under the label.
	ErrEventNotFound = errors.New("store: event not found")

	// ErrInvestmentNotFound indicates no ledger entry exists for the key.
	ErrInvestmentNotFound = errors.New("store: investment not found")

	// ErrNilParam indicates a required parameter is nil.
	ErrNilParam = errors.New("store: required parameter is nil")

	// ErrReadOnly indicates a write attempted inside View.
	ErrReadOnly = errors.New("store: write in read-only transaction")

	// ErrClosed indicates the store has been closed.
	ErrClosed = errors.New("store: closed")
)
