package repository

import "context"

// Keys persisted in client storage.
const (
	KeySessionToken  = "einvoice_session_token"
	KeySessionExpiry = "einvoice_session_expiry" // epoch milliseconds, decimal string
	KeyGitHubToken   = "einvoice_github_token"
)

// StorageRepository is a small key/value store scoped to one client, the
// equivalent of a browser profile's local storage. Writes to different keys
// are not transactional.
type StorageRepository interface {
	// Get returns the value for key. ok is false when the key is absent.
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	// Delete removes the keys. Missing keys are ignored.
	Delete(ctx context.Context, keys ...string) error
}

// StorageNamespaces hands out a StorageRepository per client namespace.
type StorageNamespaces interface {
	Namespace(ns string) StorageRepository
}
