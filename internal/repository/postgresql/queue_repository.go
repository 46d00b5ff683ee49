package postgresql

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"share-ingest-service/internal/entity"
)

func NewPool(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return pool, nil
}

// QueueRepository appends work items to the shared queue collection. It is
// write-only: records are never read or mutated from this side once inserted.
type QueueRepository struct {
	pool *pgxpool.Pool
}

func NewQueueRepository(pool *pgxpool.Pool) *QueueRepository {
	return &QueueRepository{pool: pool}
}

// EnsureSchema creates the queue table if it does not exist yet.
func (r *QueueRepository) EnsureSchema(ctx context.Context) error {
	const q = `
CREATE TABLE IF NOT EXISTS queue (
	id           UUID PRIMARY KEY DEFAULT gen_random_uuid(),
	type         TEXT NOT NULL,
	content      TEXT NOT NULL,
	url          TEXT,
	mode         TEXT NOT NULL,
	status       TEXT NOT NULL DEFAULT 'waiting',
	origin       TEXT NOT NULL,
	storage_path TEXT,
	created_at   TIMESTAMPTZ NOT NULL DEFAULT now()
);`
	_, err := r.pool.Exec(ctx, q)
	return err
}

// Insert appends one work item. created_at is assigned by the database so
// ordering stays monotonic under client clock skew.
func (r *QueueRepository) Insert(ctx context.Context, item entity.WorkItem) (uuid.UUID, time.Time, error) {
	const q = `
INSERT INTO queue (type, content, url, mode, status, origin, storage_path)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING id, created_at;
`
	var (
		id        uuid.UUID
		createdAt time.Time
	)
	if err := r.pool.QueryRow(ctx, q,
		string(item.Type),
		item.Content,
		item.URL,
		string(item.Mode),
		string(item.Status),
		item.Origin,
		item.StoragePath,
	).Scan(&id, &createdAt); err != nil {
		return uuid.Nil, time.Time{}, err
	}
	return id, createdAt, nil
}
