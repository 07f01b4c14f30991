package gallery

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
	pgxvector "github.com/pgvector/pgvector-go/pgx"
)

// PostgresStore keeps the gallery in PostgreSQL with a pgvector column, as an
// alternative to the artifact file for deployments that already run Postgres.
// It implements both Repository and Index: nearest-neighbor queries run in
// SQL with the L2 operator, matching the linear scan's Euclidean semantics.
type PostgresStore struct {
	pool *pgxpool.Pool
	dim  int
}

// NewPostgresStore connects to the database and ensures the schema exists.
// maxConns and minConns bound the pool size; zero keeps the pgx defaults.
func NewPostgresStore(ctx context.Context, connString string, dim, maxConns, minConns int) (*PostgresStore, error) {
	cfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("parsing database URL: %w", err)
	}
	if maxConns > 0 {
		cfg.MaxConns = int32(maxConns)
	}
	if minConns > 0 {
		cfg.MinConns = int32(minConns)
	}
	cfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		return pgxvector.RegisterTypes(ctx, conn)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	s := &PostgresStore{pool: pool, dim: dim}
	if err := s.initSchema(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("initializing database schema: %w", err)
	}
	return s, nil
}

// initSchema creates the vector extension and gallery table if they don't exist.
func (s *PostgresStore) initSchema(ctx context.Context) error {
	query := fmt.Sprintf(`
		CREATE EXTENSION IF NOT EXISTS vector;
		CREATE TABLE IF NOT EXISTS gallery_entries (
			id BIGSERIAL PRIMARY KEY,
			path TEXT NOT NULL UNIQUE,
			embedding VECTOR(%d) NOT NULL,
			created_at TIMESTAMPTZ DEFAULT NOW()
		);
	`, s.dim)
	_, err := s.pool.Exec(ctx, query)
	return err
}

// Close releases the connection pool.
func (s *PostgresStore) Close() {
	s.pool.Close()
}

// Load returns all entries in insertion order.
func (s *PostgresStore) Load(ctx context.Context) ([]Entry, error) {
	rows, err := s.pool.Query(ctx, "SELECT path, embedding FROM gallery_entries ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("querying gallery entries: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var entry Entry
		var vec pgvector.Vector
		if err := rows.Scan(&entry.Path, &vec); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrArtifactCorrupt, err)
		}
		entry.Embedding = vec.Slice()
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading gallery entries: %w", err)
	}
	return entries, nil
}

// Save replaces the table contents wholesale, mirroring the artifact file's
// overwrite semantics. Runs in one transaction so a failed build never
// leaves a half-replaced gallery.
func (s *PostgresStore) Save(ctx context.Context, entries []Entry) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, "DELETE FROM gallery_entries"); err != nil {
		return fmt.Errorf("clearing gallery entries: %w", err)
	}

	for _, entry := range entries {
		_, err := tx.Exec(ctx,
			"INSERT INTO gallery_entries (path, embedding) VALUES ($1, $2)",
			entry.Path, pgvector.NewVector(entry.Embedding),
		)
		if err != nil {
			return fmt.Errorf("inserting entry %s: %w", entry.Path, err)
		}
	}

	return tx.Commit(ctx)
}

// IsEmpty reports whether the gallery table holds no entries.
func (s *PostgresStore) IsEmpty(ctx context.Context) (bool, error) {
	var count int
	if err := s.pool.QueryRow(ctx, "SELECT COUNT(*) FROM gallery_entries").Scan(&count); err != nil {
		return false, fmt.Errorf("counting gallery entries: %w", err)
	}
	return count == 0, nil
}

// Nearest returns the entry closest to the probe by L2 distance, pushed down
// to pgvector's <-> operator.
func (s *PostgresStore) Nearest(ctx context.Context, probe []float32) (*Entry, float64, error) {
	query := `
		SELECT path, embedding, embedding <-> $1 AS distance
		FROM gallery_entries
		ORDER BY embedding <-> $1, id
		LIMIT 1
	`

	var entry Entry
	var vec pgvector.Vector
	var distance float64

	err := s.pool.QueryRow(ctx, query, pgvector.NewVector(probe)).Scan(&entry.Path, &vec, &distance)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, 0, ErrArtifactEmpty
	}
	if err != nil {
		return nil, 0, fmt.Errorf("nearest-neighbor query: %w", err)
	}

	entry.Embedding = vec.Slice()
	return &entry, distance, nil
}
