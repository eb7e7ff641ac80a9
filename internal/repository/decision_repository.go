package repository

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/triage-engine/internal/domain"
)

type decisionRepository struct {
	pool *pgxpool.Pool
}

// NewDecisionRepository instantiates the Postgres-backed decision store.
func NewDecisionRepository(pool *pgxpool.Pool) DecisionRepository {
	return &decisionRepository{pool: pool}
}

func (r *decisionRepository) Create(ctx context.Context, record *domain.DecisionRecord) error {
	similar, err := json.Marshal(record.SimilarTickets)
	if err != nil {
		return err
	}
	const query = `
        INSERT INTO decisions (ticket_id, final_action, category, confidence, similarity_score,
            sla_risk, rsi_score, business_critical, matched_keywords, similar_tickets, decision_path, produced_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
        ON CONFLICT (ticket_id) DO NOTHING`
	_, err = r.pool.Exec(ctx, query,
		record.TicketID,
		record.FinalAction,
		record.Category,
		record.Confidence,
		record.SimilarityScore,
		record.SLARisk,
		record.RSIScore,
		record.BusinessCritical,
		record.MatchedKeywords,
		similar,
		record.DecisionPath,
		record.ProducedAt,
	)
	return err
}

func (r *decisionRepository) GetByTicket(ctx context.Context, ticketID string) (*domain.DecisionRecord, bool, error) {
	const query = `
        SELECT ticket_id, final_action, category, confidence, similarity_score,
               sla_risk, rsi_score, business_critical, matched_keywords, similar_tickets, decision_path, produced_at
        FROM decisions WHERE ticket_id=$1`
	record, err := scanDecision(r.pool.QueryRow(ctx, query, ticketID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return record, true, nil
}

func (r *decisionRepository) List(ctx context.Context) ([]domain.DecisionRecord, error) {
	const query = `
        SELECT ticket_id, final_action, category, confidence, similarity_score,
               sla_risk, rsi_score, business_critical, matched_keywords, similar_tickets, decision_path, produced_at
        FROM decisions ORDER BY produced_at`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.DecisionRecord
	for rows.Next() {
		record, err := scanDecision(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *record)
	}
	return result, rows.Err()
}

func scanDecision(row pgx.Row) (*domain.DecisionRecord, error) {
	var record domain.DecisionRecord
	var similar []byte
	if err := row.Scan(
		&record.TicketID,
		&record.FinalAction,
		&record.Category,
		&record.Confidence,
		&record.SimilarityScore,
		&record.SLARisk,
		&record.RSIScore,
		&record.BusinessCritical,
		&record.MatchedKeywords,
		&similar,
		&record.DecisionPath,
		&record.ProducedAt,
	); err != nil {
		return nil, err
	}
	if len(similar) > 0 {
		if err := json.Unmarshal(similar, &record.SimilarTickets); err != nil {
			return nil, err
		}
	}
	return &record, nil
}
