package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/triage-engine/internal/domain"
)

type corpusRepository struct {
	pool *pgxpool.Pool
}

// NewCorpusRepository instantiates the Postgres-backed corpus store.
func NewCorpusRepository(pool *pgxpool.Pool) CorpusRepository {
	return &corpusRepository{pool: pool}
}

func (r *corpusRepository) Append(ctx context.Context, entry *domain.CorpusEntry) error {
	const query = `
        INSERT INTO corpus_entries (id, title, description, department, priority, category, resolution, resolved_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
        ON CONFLICT (id) DO NOTHING`
	_, err := r.pool.Exec(ctx, query,
		entry.ID,
		entry.Title,
		entry.Description,
		entry.Department,
		entry.Priority,
		entry.Category,
		entry.Resolution,
		entry.ResolvedAt,
	)
	return err
}

func (r *corpusRepository) ListEntries(ctx context.Context) ([]domain.CorpusEntry, error) {
	const query = `
        SELECT id, title, description, department, priority, category, resolution, resolved_at
        FROM corpus_entries ORDER BY resolved_at DESC`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanCorpusEntries(rows)
}

func scanCorpusEntries(rows pgx.Rows) ([]domain.CorpusEntry, error) {
	var result []domain.CorpusEntry
	for rows.Next() {
		var entry domain.CorpusEntry
		if err := rows.Scan(
			&entry.ID,
			&entry.Title,
			&entry.Description,
			&entry.Department,
			&entry.Priority,
			&entry.Category,
			&entry.Resolution,
			&entry.ResolvedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, entry)
	}
	return result, rows.Err()
}
