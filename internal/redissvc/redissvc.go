package redissvc

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/stockops/stock-console/internal/models"
)

// SummaryCache keeps the upstream's daily/weekly summary buckets in redis for
// a short TTL so dashboard polling does not hammer the upstream API. Cache
// misses and redis failures both fall through to a live fetch; the cache is
// never a source of truth.
type SummaryCache struct {
	rdb *redis.Client
	ttl time.Duration
	log zerolog.Logger
}

// NewSummaryCache wraps a redis client with the given entry TTL.
func NewSummaryCache(rdb *redis.Client, ttl time.Duration, log zerolog.Logger) *SummaryCache {
	return &SummaryCache{rdb: rdb, ttl: ttl, log: log}
}

// Get returns the cached rows for the key, with ok=false on miss or error.
func (c *SummaryCache) Get(ctx context.Context, key string) ([]models.SummaryRow, bool) {
	data, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.log.Warn().Str("key", key).Err(err).Msg("summary cache read failed")
		}
		return nil, false
	}
	var rows []models.SummaryRow
	if err := json.Unmarshal(data, &rows); err != nil {
		c.log.Warn().Str("key", key).Err(err).Msg("summary cache entry corrupt, ignoring")
		return nil, false
	}
	return rows, true
}

// Set stores the rows under the key. Failures are logged and swallowed.
func (c *SummaryCache) Set(ctx context.Context, key string, rows []models.SummaryRow) {
	data, err := json.Marshal(rows)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, key, data, c.ttl).Err(); err != nil {
		c.log.Warn().Str("key", key).Err(err).Msg("summary cache write failed")
	}
}
