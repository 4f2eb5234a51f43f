package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates an entity already exists. The sync
	// engine converts this into the merge-update path; it is never
	// surfaced to callers as a failure.
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrConfigMissing indicates required configuration (token, channel
	// list) is absent. Fatal for the whole run, no partial retry.
	ErrConfigMissing = errors.New("missing configuration")

	// ErrRateLimited indicates the source API rate limit was exceeded.
	ErrRateLimited = errors.New("rate limited")

	// ErrSyncInProgress indicates a sync is already running.
	ErrSyncInProgress = errors.New("sync in progress")

	// ErrWebhookUnconfigured indicates the contact relay has no webhook
	// URL to deliver to.
	ErrWebhookUnconfigured = errors.New("webhook not configured")
)
