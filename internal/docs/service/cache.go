package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Soodgit/ai-code-documenter/internal/common/logger"
	"github.com/Soodgit/ai-code-documenter/internal/observability/metrics"
)

type cacheItem struct {
	Markdown  string    `json:"markdown"`
	CreatedAt time.Time `json:"created_at"`
}

// Cache stores generated documentation in Redis keyed by a hash of the
// input. A nil Redis client disables caching entirely, every lookup is a
// miss and writes are dropped.
type Cache struct {
	rdb *redis.Client
	ttl time.Duration
	log *logger.Logger
}

func NewCache(rdb *redis.Client, ttl time.Duration, log *logger.Logger) *Cache {
	return &Cache{rdb: rdb, ttl: ttl, log: log}
}

func (c *Cache) Get(ctx context.Context, req GenerateRequest) (string, bool) {
	if c.rdb == nil {
		return "", false
	}

	key := cacheKey(req)
	data, err := c.rdb.Get(ctx, key).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.log.Warnf("docs cache get failed key=%s: %v", key, err)
		}
		metrics.DocsCacheMisses.Inc()
		return "", false
	}

	var item cacheItem
	if err := json.Unmarshal([]byte(data), &item); err != nil {
		c.log.Warnf("docs cache unmarshal failed key=%s: %v", key, err)
		metrics.DocsCacheMisses.Inc()
		return "", false
	}

	metrics.DocsCacheHits.Inc()
	return item.Markdown, true
}

func (c *Cache) Set(ctx context.Context, req GenerateRequest, markdown string) {
	if c.rdb == nil {
		return
	}

	data, err := json.Marshal(cacheItem{
		Markdown:  markdown,
		CreatedAt: time.Now(),
	})
	if err != nil {
		c.log.Warnf("docs cache marshal failed: %v", err)
		return
	}

	key := cacheKey(req)
	if err := c.rdb.Set(ctx, key, data, c.ttl).Err(); err != nil {
		c.log.Warnf("docs cache set failed key=%s: %v", key, err)
	}
}

// cacheKey hashes language and code with a separator so that shifting a
// character between the two fields never produces the same key.
func cacheKey(req GenerateRequest) string {
	h := sha256.New()
	h.Write([]byte(req.Language))
	h.Write([]byte{0})
	h.Write([]byte(req.Code))
	return "docs:" + hex.EncodeToString(h.Sum(nil))
}
