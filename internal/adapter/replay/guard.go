package replay

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/blake2b"
)

const keyPrefix = "webhook_event:"

// Guard remembers processed webhook deliveries.
type Guard interface {
	Seen(ctx context.Context, key string) (bool, error)
	Remember(ctx context.Context, key string) error
}

// Key derives the dedup key of a delivery: the gateway event id when present, else a
// BLAKE2b-256 digest of the raw body.
func Key(eventID string, body []byte) string {
	if eventID != "" {
		return "id:" + eventID
	}
	sum := blake2b.Sum256(body)
	return "body:" + hex.EncodeToString(sum[:])
}

// RedisGuard stores delivery keys in Redis with a TTL.
type RedisGuard struct {
	client redis.Cmdable
	ttl    time.Duration
}

// NewRedisGuard builds a guard over an existing client.
func NewRedisGuard(client redis.Cmdable, ttl time.Duration) *RedisGuard {
	return &RedisGuard{client: client, ttl: ttl}
}

// Seen reports whether key was remembered and has not expired.
func (g *RedisGuard) Seen(ctx context.Context, key string) (bool, error) {
	n, err := g.client.Exists(ctx, keyPrefix+key).Result()
	if err != nil {
		return false, fmt.Errorf("check replay key: %w", err)
	}
	return n > 0, nil
}

// Remember stores key for the guard's TTL.
func (g *RedisGuard) Remember(ctx context.Context, key string) error {
	if err := g.client.Set(ctx, keyPrefix+key, time.Now().UTC().Format(time.RFC3339), g.ttl).Err(); err != nil {
		return fmt.Errorf("store replay key: %w", err)
	}
	return nil
}

// NopGuard never reports a replay.
type NopGuard struct{}

func (NopGuard) Seen(context.Context, string) (bool, error) { return false, nil }

func (NopGuard) Remember(context.Context, string) error { return nil }

var errEmptyURL = errors.New("redis url is empty")

func newClient(rawURL string) (*redis.Client, error) {
	if rawURL == "" {
		return nil, errEmptyURL
	}
	opt, err := redis.ParseURL(rawURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}
	return redis.NewClient(opt), nil
}
