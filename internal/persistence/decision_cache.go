package persistence

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/triage-engine/internal/domain"
)

const decisionKeyPrefix = "triage:decision:"

// DecisionCache keeps recent decision records in Redis so idempotent submit
// retries and decision lookups skip Postgres. All methods are nil-safe and
// best-effort; a cache miss or error just falls through to the repository.
type DecisionCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewDecisionCache builds a cache over the shared Redis client. Pass a nil
// client to disable caching.
func NewDecisionCache(r *Redis, ttl time.Duration, logger *zap.Logger) *DecisionCache {
	var client *redis.Client
	if r != nil {
		client = r.Client
	}
	return &DecisionCache{client: client, ttl: ttl, logger: logger}
}

// Get returns the cached record for the ticket, if present.
func (c *DecisionCache) Get(ctx context.Context, ticketID string) (*domain.DecisionRecord, bool) {
	if c == nil || c.client == nil {
		return nil, false
	}
	raw, err := c.client.Get(ctx, decisionKeyPrefix+ticketID).Bytes()
	if err != nil {
		return nil, false
	}
	var record domain.DecisionRecord
	if err := json.Unmarshal(raw, &record); err != nil {
		c.logger.Warn("corrupt cached decision dropped", zap.String("ticket_id", ticketID), zap.Error(err))
		return nil, false
	}
	return &record, true
}

// Set stores the record under the ticket id with the configured TTL.
func (c *DecisionCache) Set(ctx context.Context, record *domain.DecisionRecord) {
	if c == nil || c.client == nil || record == nil {
		return
	}
	raw, err := json.Marshal(record)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, decisionKeyPrefix+record.TicketID, raw, c.ttl).Err(); err != nil {
		c.logger.Warn("decision cache write failed", zap.String("ticket_id", record.TicketID), zap.Error(err))
	}
}
