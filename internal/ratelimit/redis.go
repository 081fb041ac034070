package ratelimit

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mkrogh/explorerwatch/internal/core/domain"
)

const ledgerKey = "explorerwatch:limit_rates"

// RedisLedger stores the ledger in a single Redis hash so failure streaks
// survive process restarts. The hash key carries one TTL for all
// currencies, re-armed on every write to the writer's next full hour -
// the same shared horizon the in-memory ledger keeps.
type RedisLedger struct {
	rdb     *redis.Client
	nowFunc func() time.Time
}

// NewRedisLedger wraps an existing Redis client.
func NewRedisLedger(rdb *redis.Client) *RedisLedger {
	return &RedisLedger{rdb: rdb, nowFunc: time.Now}
}

// RecordFailure implements Ledger.
func (l *RedisLedger) RecordFailure(ctx context.Context, currency, provider string) error {
	entry := domain.RateLimitEntry{Currency: currency, Count: 1, Provider: provider}

	raw, err := l.rdb.HGet(ctx, ledgerKey, currency).Result()
	if err != nil && err != redis.Nil {
		return fmt.Errorf("hget failed: %w", err)
	}
	if err == nil {
		var prev domain.RateLimitEntry
		if jsonErr := json.Unmarshal([]byte(raw), &prev); jsonErr == nil {
			entry.Count = prev.Count + 1
		}
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal entry: %w", err)
	}

	pipe := l.rdb.TxPipeline()
	pipe.HSet(ctx, ledgerKey, currency, data)
	pipe.Expire(ctx, ledgerKey, UntilNextHour(l.nowFunc()))
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("persist ledger: %w", err)
	}
	return nil
}

// Entry implements Ledger.
func (l *RedisLedger) Entry(ctx context.Context, currency string) (domain.RateLimitEntry, bool, error) {
	raw, err := l.rdb.HGet(ctx, ledgerKey, currency).Result()
	if err == redis.Nil {
		return domain.RateLimitEntry{}, false, nil
	}
	if err != nil {
		return domain.RateLimitEntry{}, false, fmt.Errorf("hget failed: %w", err)
	}

	var entry domain.RateLimitEntry
	if err := json.Unmarshal([]byte(raw), &entry); err != nil {
		return domain.RateLimitEntry{}, false, fmt.Errorf("decode entry: %w", err)
	}
	entry.Currency = currency
	return entry, true, nil
}

// Entries implements Ledger.
func (l *RedisLedger) Entries(ctx context.Context) ([]domain.RateLimitEntry, error) {
	raw, err := l.rdb.HGetAll(ctx, ledgerKey).Result()
	if err != nil {
		return nil, fmt.Errorf("hgetall failed: %w", err)
	}

	entries := make([]domain.RateLimitEntry, 0, len(raw))
	for currency, val := range raw {
		var entry domain.RateLimitEntry
		if err := json.Unmarshal([]byte(val), &entry); err != nil {
			continue
		}
		entry.Currency = currency
		entries = append(entries, entry)
	}
	return entries, nil
}

// Clear implements Ledger.
func (l *RedisLedger) Clear(ctx context.Context) error {
	return l.rdb.Del(ctx, ledgerKey).Err()
}
