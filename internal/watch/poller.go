package watch

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/mkrogh/explorerwatch/internal/core/config"
	"github.com/mkrogh/explorerwatch/internal/explorer"
	"github.com/mkrogh/explorerwatch/internal/infra/storage"
	"github.com/mkrogh/explorerwatch/internal/metrics"
)

// Poller periodically fetches transactions for every watched address of
// one currency. Requests are paced so bursts of addresses don't trip the
// explorer's informal limits.
type Poller struct {
	cfg      config.CurrencyConfig
	client   *explorer.Client
	addrRepo storage.AddressRepository
	txRepo   storage.TransactionRepository
	monitor  *Monitor
	limiter  *rate.Limiter
	log      *slog.Logger
	clock    clock
}

// clock separates pass scheduling from pass execution so tests can drive
// passes directly.
type clock interface {
	// Tick blocks until the next pass is due. It returns false when the
	// context is cancelled.
	Tick(ctx context.Context) bool
}

type intervalClock struct {
	interval time.Duration
}

func (c intervalClock) Tick(ctx context.Context) bool {
	timer := time.NewTimer(c.interval)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

// NewPoller creates a poller for one currency. addrRepo and txRepo may
// be nil when persistence is not configured.
func NewPoller(
	cfg config.CurrencyConfig,
	client *explorer.Client,
	addrRepo storage.AddressRepository,
	txRepo storage.TransactionRepository,
	monitor *Monitor,
	log *slog.Logger,
) *Poller {
	return &Poller{
		cfg:      cfg,
		client:   client,
		addrRepo: addrRepo,
		txRepo:   txRepo,
		monitor:  monitor,
		limiter:  rate.NewLimiter(rate.Limit(cfg.RatePerSecond), 1),
		log:      log.With("currency", cfg.Code, "provider", cfg.Provider),
		clock:    intervalClock{interval: cfg.ScanInterval},
	}
}

// Run polls until the context is cancelled. The first pass runs
// immediately.
func (p *Poller) Run(ctx context.Context) error {
	for {
		p.runPass(ctx)
		if !p.clock.Tick(ctx) {
			return ctx.Err()
		}
	}
}

// runPass fetches every watched address once. One pass gets one batch id
// so the stored rows of a pass can be correlated.
func (p *Poller) runPass(ctx context.Context) {
	batchID := uuid.NewString()
	addresses := p.addresses(ctx)
	if len(addresses) == 0 {
		p.log.Debug("no watched addresses, skipping pass")
		return
	}

	var lastErr error
	for _, address := range addresses {
		if err := p.limiter.Wait(ctx); err != nil {
			return
		}

		txs, err := p.client.FetchTransactions(ctx, address, p.cfg.Code, p.cfg.Provider)
		if err != nil {
			lastErr = err
			continue
		}

		if p.txRepo != nil && len(txs) > 0 {
			if err := p.txRepo.SaveBatch(ctx, p.cfg.Code, address, batchID, txs); err != nil {
				p.log.Error("failed to persist transactions", "address", address, "error", err)
			}
		}
	}

	p.monitor.RecordPass(p.cfg.Code, lastErr)
	p.updateLedgerGauge(ctx)
}

// addresses merges the statically configured addresses with the watch
// list from storage.
func (p *Poller) addresses(ctx context.Context) []string {
	seen := make(map[string]bool, len(p.cfg.Addresses))
	var addresses []string
	for _, a := range p.cfg.Addresses {
		if !seen[a] {
			seen[a] = true
			addresses = append(addresses, a)
		}
	}

	if p.addrRepo != nil {
		stored, err := p.addrRepo.GetByCurrency(ctx, p.cfg.Code)
		if err != nil {
			p.log.Warn("failed to load watched addresses", "error", err)
		}
		for _, a := range stored {
			if !seen[a.Address] {
				seen[a.Address] = true
				addresses = append(addresses, a.Address)
			}
		}
	}
	return addresses
}

func (p *Poller) updateLedgerGauge(ctx context.Context) {
	entry, found, err := p.client.Ledger().Entry(ctx, p.cfg.Code)
	if err != nil {
		return
	}
	provider := p.cfg.Provider
	count := 0
	if found {
		count = entry.Count
		if entry.Provider != "" {
			provider = entry.Provider
		}
	}
	metrics.LedgerFailureCount.WithLabelValues(p.cfg.Code, provider).Set(float64(count))
}
