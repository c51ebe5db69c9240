// Package memory provides in-process implementations of the repository interfaces.
// State is lost on restart, which suits single-instance deployments and tests.
package memory

import (
	"context"
	"sync"

	"einvoice-news/internal/repository"
)

// Store keeps every namespace in one map guarded by a mutex.
type Store struct {
	mu   sync.RWMutex
	data map[string]map[string]string
}

func NewStore() *Store {
	return &Store{data: make(map[string]map[string]string)}
}

// Namespace returns the view of the store scoped to ns.
func (s *Store) Namespace(ns string) repository.StorageRepository {
	return &namespaceRepo{store: s, ns: ns}
}

// Len returns the number of namespaces holding at least one key.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}

type namespaceRepo struct {
	store *Store
	ns    string
}

func (r *namespaceRepo) Get(_ context.Context, key string) (string, bool, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	v, ok := r.store.data[r.ns][key]
	return v, ok, nil
}

func (r *namespaceRepo) Set(_ context.Context, key, value string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	bucket, ok := r.store.data[r.ns]
	if !ok {
		bucket = make(map[string]string)
		r.store.data[r.ns] = bucket
	}
	bucket[key] = value
	return nil
}

func (r *namespaceRepo) Delete(_ context.Context, keys ...string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	bucket, ok := r.store.data[r.ns]
	if !ok {
		return nil
	}
	for _, k := range keys {
		delete(bucket, k)
	}
	if len(bucket) == 0 {
		delete(r.store.data, r.ns)
	}
	return nil
}
