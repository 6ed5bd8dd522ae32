package concern

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jonesrussell/north-cloud/triage/infrastructure/logger"
)

const cacheKeyPrefix = "triage:zeroshot:"

// CachedZeroShot memoizes another classifier's scores in redis. Redis
// failures fall through to the wrapped classifier.
type CachedZeroShot struct {
	next  ZeroShotClassifier
	redis redis.Cmdable
	ttl   time.Duration
	log   logger.Logger
}

// NewCachedZeroShot wraps next. A non-positive ttl caches for an hour.
func NewCachedZeroShot(next ZeroShotClassifier, rdb redis.Cmdable, ttl time.Duration, log logger.Logger) *CachedZeroShot {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &CachedZeroShot{next: next, redis: rdb, ttl: ttl, log: log}
}

func (c *CachedZeroShot) ClassifyZeroShot(ctx context.Context, text string, labels []string) ([]Score, error) {
	key := CacheKey(text, labels)

	raw, err := c.redis.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var cached []Score
		if jsonErr := json.Unmarshal(raw, &cached); jsonErr == nil {
			return cached, nil
		}
		c.log.Warn("Discarding unreadable zero-shot cache entry", logger.String("key", key))
	case !errors.Is(err, redis.Nil):
		c.log.Warn("Zero-shot cache read failed", logger.String("model", "zero_shot"), logger.Error(err))
	}

	scores, err := c.next.ClassifyZeroShot(ctx, text, labels)
	if err != nil {
		return nil, err
	}

	if body, jsonErr := json.Marshal(scores); jsonErr == nil {
		if setErr := c.redis.Set(ctx, key, body, c.ttl).Err(); setErr != nil {
			c.log.Warn("Zero-shot cache write failed", logger.String("model", "zero_shot"), logger.Error(setErr))
		}
	}
	return scores, nil
}

// CacheKey hashes the text and label set so message text never appears in
// redis keys.
func CacheKey(text string, labels []string) string {
	h := sha256.New()
	h.Write([]byte(text))
	h.Write([]byte{0})
	h.Write([]byte(strings.Join(labels, "\x1f")))
	return cacheKeyPrefix + hex.EncodeToString(h.Sum(nil))
}
