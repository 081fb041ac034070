// Package ratelimit tracks provider-call failure streaks per currency.
//
// The ledger is operator-visible backoff signaling: the engine records
// failures but never refuses to call a provider because of ledger state.
// The whole ledger shares a single expiry horizon - the next full clock
// hour measured at the most recent failure write - because the upstream
// explorers refresh their rate limits on the hour.
package ratelimit

import (
	"context"
	"sync"
	"time"

	"github.com/mkrogh/explorerwatch/internal/core/domain"
)

// Ledger is the process-wide failure record shared by all fetches.
type Ledger interface {
	// RecordFailure increments (or creates) the entry for a currency and
	// re-arms the ledger-wide expiry to the caller's next full hour.
	RecordFailure(ctx context.Context, currency, provider string) error

	// Entry returns the current entry for a currency, or found=false if
	// none exists or the ledger-wide horizon has passed.
	Entry(ctx context.Context, currency string) (entry domain.RateLimitEntry, found bool, err error)

	// Entries returns all live entries.
	Entries(ctx context.Context) ([]domain.RateLimitEntry, error)

	// Clear drops the entire ledger. Called after a fully successful
	// fetch, matching the legacy behavior.
	Clear(ctx context.Context) error
}

// MemoryLedger is the in-process Ledger implementation.
type MemoryLedger struct {
	mu      sync.Mutex
	entries map[string]*domain.RateLimitEntry
	horizon time.Time

	nowFunc func() time.Time
}

// NewMemoryLedger creates an empty in-memory ledger.
func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{
		entries: make(map[string]*domain.RateLimitEntry),
		nowFunc: time.Now,
	}
}

// RecordFailure implements Ledger.
func (l *MemoryLedger) RecordFailure(_ context.Context, currency, provider string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.nowFunc()
	l.expireLocked(now)

	entry, ok := l.entries[currency]
	if !ok {
		entry = &domain.RateLimitEntry{Currency: currency}
		l.entries[currency] = entry
	}
	entry.Count++
	entry.Provider = provider

	// Every write re-persists the whole ledger with a fresh horizon, so
	// all currencies expire together at whichever hour boundary the most
	// recent failure observed.
	l.horizon = NextHour(now)
	return nil
}

// Entry implements Ledger.
func (l *MemoryLedger) Entry(_ context.Context, currency string) (domain.RateLimitEntry, bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.expireLocked(l.nowFunc())
	entry, ok := l.entries[currency]
	if !ok {
		return domain.RateLimitEntry{}, false, nil
	}
	return *entry, true, nil
}

// Entries implements Ledger.
func (l *MemoryLedger) Entries(_ context.Context) ([]domain.RateLimitEntry, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.expireLocked(l.nowFunc())
	out := make([]domain.RateLimitEntry, 0, len(l.entries))
	for _, entry := range l.entries {
		out = append(out, *entry)
	}
	return out, nil
}

// Clear implements Ledger.
func (l *MemoryLedger) Clear(_ context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.entries = make(map[string]*domain.RateLimitEntry)
	l.horizon = time.Time{}
	return nil
}

func (l *MemoryLedger) expireLocked(now time.Time) {
	if l.horizon.IsZero() || now.Before(l.horizon) {
		return
	}
	l.entries = make(map[string]*domain.RateLimitEntry)
	l.horizon = time.Time{}
}

// NextHour returns the next full clock hour after now.
func NextHour(now time.Time) time.Time {
	return now.Truncate(time.Hour).Add(time.Hour)
}

// UntilNextHour returns the duration until the next full clock hour.
func UntilNextHour(now time.Time) time.Duration {
	return NextHour(now).Sub(now)
}
