package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"

	"govrag/types"
)

// PostgresStore keeps indexed records in a pgvector-backed table. Concurrent
// upserts never collide because every record id is freshly generated.
type PostgresStore struct {
	pool      *pgxpool.Pool
	dimension int
}

func NewPostgresStore(ctx context.Context, connStr string, dimension int) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		return nil, err
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return &PostgresStore{
		pool:      pool,
		dimension: dimension,
	}, nil
}

// Init creates the extension, table and indexes if they do not exist.
func (p *PostgresStore) Init(ctx context.Context) error {
	query := fmt.Sprintf(`
	CREATE EXTENSION IF NOT EXISTS vector;

	CREATE TABLE IF NOT EXISTS records (
		id UUID PRIMARY KEY,
		document_name TEXT NOT NULL,
		page_numbers INT[] NOT NULL DEFAULT '{}',
		chunk_index INT NOT NULL,
		source_url TEXT NOT NULL DEFAULT '',
		content TEXT NOT NULL,
		extra JSONB NOT NULL DEFAULT '{}',
		embedding vector(%d) NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_records_embedding ON records USING ivfflat (embedding vector_cosine_ops)
	WITH (lists = 100);

	CREATE INDEX IF NOT EXISTS idx_records_document_name ON records(document_name);
	CREATE INDEX IF NOT EXISTS idx_records_source_url ON records(source_url);
	`, p.dimension)
	_, err := p.pool.Exec(ctx, query)
	return err
}

func (p *PostgresStore) Upsert(ctx context.Context, records []types.Record) error {
	if len(records) == 0 {
		return nil
	}

	query := `
	INSERT INTO records (id, document_name, page_numbers, chunk_index, source_url, content, extra, embedding)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	ON CONFLICT (id) DO UPDATE SET
		document_name = EXCLUDED.document_name,
		page_numbers = EXCLUDED.page_numbers,
		chunk_index = EXCLUDED.chunk_index,
		source_url = EXCLUDED.source_url,
		content = EXCLUDED.content,
		extra = EXCLUDED.extra,
		embedding = EXCLUDED.embedding
	`

	batch := &pgx.Batch{}
	for _, rec := range records {
		if len(rec.Vector) != p.dimension {
			return fmt.Errorf("record %s: vector dimension %d, want %d", rec.ID, len(rec.Vector), p.dimension)
		}
		meta := SanitizeMetadata(rec.Metadata)
		extra, err := json.Marshal(meta.Extra)
		if err != nil {
			return fmt.Errorf("record %s: marshal extra metadata: %w", rec.ID, err)
		}
		batch.Queue(query,
			rec.ID,
			meta.DocumentName,
			toInt32s(meta.PageNumbers),
			meta.ChunkIndex,
			meta.SourceURL,
			meta.Text,
			extra,
			pgvector.NewVector(rec.Vector),
		)
	}

	results := p.pool.SendBatch(ctx, batch)
	defer results.Close()

	for range records {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("upsert batch: %w", err)
		}
	}
	return nil
}

func (p *PostgresStore) Search(ctx context.Context, vector []float32, filter *Filter, topK int) ([]types.SearchHit, error) {
	if len(vector) == 0 {
		return nil, fmt.Errorf("empty query vector")
	}

	// Cosine distance mapped to a [0,1] similarity score.
	query := `
	SELECT id, document_name, page_numbers, chunk_index, source_url, content, extra,
	       (2 - (embedding <=> $1)) / 2 AS score
	FROM records
	`
	args := []any{pgvector.NewVector(vector)}
	if filter != nil && !filter.IsZero() {
		where := ""
		if filter.DocumentName != "" {
			args = append(args, filter.DocumentName)
			where = fmt.Sprintf("document_name = $%d", len(args))
		}
		if filter.SourceURL != "" {
			args = append(args, filter.SourceURL)
			if where != "" {
				where += " AND "
			}
			where += fmt.Sprintf("source_url = $%d", len(args))
		}
		query += "WHERE " + where + "\n"
	}
	args = append(args, topK)
	query += fmt.Sprintf("ORDER BY embedding <=> $1 LIMIT $%d", len(args))

	rows, err := p.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("vector search: %w", err)
	}
	defer rows.Close()

	var hits []types.SearchHit
	for rows.Next() {
		var (
			hit   types.SearchHit
			pages []int32
			extra []byte
		)
		if err := rows.Scan(
			&hit.ID,
			&hit.Metadata.DocumentName,
			&pages,
			&hit.Metadata.ChunkIndex,
			&hit.Metadata.SourceURL,
			&hit.Metadata.Text,
			&extra,
			&hit.Score,
		); err != nil {
			return nil, err
		}
		hit.Metadata.PageNumbers = fromInt32s(pages)
		if len(extra) > 0 {
			if err := json.Unmarshal(extra, &hit.Metadata.Extra); err != nil {
				return nil, fmt.Errorf("record %s: unmarshal extra metadata: %w", hit.ID, err)
			}
		}
		hits = append(hits, hit)
	}
	return hits, rows.Err()
}

func (p *PostgresStore) DeleteByFilter(ctx context.Context, filter Filter) error {
	if filter.IsZero() {
		return ErrEmptyFilter
	}

	query := "DELETE FROM records WHERE "
	var args []any
	if filter.DocumentName != "" {
		args = append(args, filter.DocumentName)
		query += fmt.Sprintf("document_name = $%d", len(args))
	}
	if filter.SourceURL != "" {
		args = append(args, filter.SourceURL)
		if len(args) > 1 {
			query += " AND "
		}
		query += fmt.Sprintf("source_url = $%d", len(args))
	}

	_, err := p.pool.Exec(ctx, query, args...)
	return err
}

func (p *PostgresStore) Stats(ctx context.Context) (Stats, error) {
	var count int64
	if err := p.pool.QueryRow(ctx, "SELECT count(*) FROM records").Scan(&count); err != nil {
		return Stats{}, err
	}
	return Stats{Count: count}, nil
}

// Close closes the connection pool.
func (p *PostgresStore) Close() error {
	if p.pool != nil {
		p.pool.Close()
	}
	return nil
}

func toInt32s(in []int) []int32 {
	out := make([]int32, len(in))
	for i, v := range in {
		out[i] = int32(v)
	}
	return out
}

func fromInt32s(in []int32) []int {
	out := make([]int, len(in))
	for i, v := range in {
		out[i] = int(v)
	}
	return out
}
