package service

import "errors"

var (
	ErrNotFound = errors.New("not found")

	// Precondition errors, surfaced to the caller without retry.
	ErrSyncAlreadyRunning = errors.New("An order sync is already running")
	ErrAlreadyResolved    = errors.New("already resolved")
	ErrCountMismatch      = errors.New("inventory count mismatch")
	ErrOrderNotFulfilled  = errors.New("order is not fulfilled")
	ErrInvalidSkipReason  = errors.New("invalid skip reason")
	ErrItemNotSellable    = errors.New("inventory item is not sellable")
)
