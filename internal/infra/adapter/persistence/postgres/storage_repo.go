package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"einvoice-news/internal/observability/metrics"
	"einvoice-news/internal/repository"
)

// Querier is the subset of *sql.DB used by the storage repository. It is also
// satisfied by circuitbreaker.DBCircuitBreaker.
type Querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// StorageRepo persists one client namespace in the client_storage table.
type StorageRepo struct {
	db        Querier
	namespace string
}

func NewStorageRepo(db Querier, namespace string) repository.StorageRepository {
	return &StorageRepo{db: db, namespace: namespace}
}

func (repo *StorageRepo) Get(ctx context.Context, key string) (string, bool, error) {
	const query = `
SELECT value
FROM client_storage
WHERE namespace = $1 AND key = $2
LIMIT 1`
	start := time.Now()
	defer func() { metrics.RecordDBQuery("storage_get", time.Since(start)) }()

	rows, err := repo.db.QueryContext(ctx, query, repo.namespace, key)
	if err != nil {
		return "", false, fmt.Errorf("Get: %w", err)
	}
	defer func() { _ = rows.Close() }()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return "", false, fmt.Errorf("Get: %w", err)
		}
		return "", false, nil
	}
	var value string
	if err := rows.Scan(&value); err != nil {
		return "", false, fmt.Errorf("Get: %w", err)
	}
	return value, true, nil
}

func (repo *StorageRepo) Set(ctx context.Context, key, value string) error {
	const query = `
INSERT INTO client_storage (namespace, key, value, updated_at)
VALUES ($1, $2, $3, now())
ON CONFLICT (namespace, key)
DO UPDATE SET value = EXCLUDED.value, updated_at = now()`
	start := time.Now()
	defer func() { metrics.RecordDBQuery("storage_set", time.Since(start)) }()

	if _, err := repo.db.ExecContext(ctx, query, repo.namespace, key, value); err != nil {
		return fmt.Errorf("Set: %w", err)
	}
	return nil
}

func (repo *StorageRepo) Delete(ctx context.Context, keys ...string) error {
	const query = `DELETE FROM client_storage WHERE namespace = $1 AND key = $2`
	start := time.Now()
	defer func() { metrics.RecordDBQuery("storage_delete", time.Since(start)) }()

	for _, key := range keys {
		if _, err := repo.db.ExecContext(ctx, query, repo.namespace, key); err != nil {
			return fmt.Errorf("Delete %s: %w", key, err)
		}
	}
	return nil
}

// StorageNamespaces opens StorageRepo values over a shared pool.
type StorageNamespaces struct{ db Querier }

func NewStorageNamespaces(db Querier) *StorageNamespaces {
	return &StorageNamespaces{db: db}
}

func (n *StorageNamespaces) Namespace(ns string) repository.StorageRepository {
	return NewStorageRepo(n.db, ns)
}

// PurgeBefore removes every stored key last written before cutoff, across all
// namespaces, and returns the number of rows removed.
func (n *StorageNamespaces) PurgeBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	const query = `DELETE FROM client_storage WHERE updated_at < $1`
	start := time.Now()
	defer func() { metrics.RecordDBQuery("storage_purge", time.Since(start)) }()

	res, err := n.db.ExecContext(ctx, query, cutoff)
	if err != nil {
		return 0, fmt.Errorf("PurgeBefore: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("PurgeBefore: %w", err)
	}
	return affected, nil
}
