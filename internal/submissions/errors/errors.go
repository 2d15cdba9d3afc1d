package errors

import "errors"

var (
	ErrNotFound = errors.New("submission not found")

	ErrMissingKey = errors.New("submission has no idempotency key")

	ErrStoreUnavailable = errors.New("submission store unavailable")
)
