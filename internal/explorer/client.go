package explorer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/mkrogh/explorerwatch/internal/core/domain"
	"github.com/mkrogh/explorerwatch/internal/errlog"
	"github.com/mkrogh/explorerwatch/internal/heightcache"
	"github.com/mkrogh/explorerwatch/internal/metrics"
	"github.com/mkrogh/explorerwatch/internal/ratelimit"
)

// notFoundMarker is the provider's explicit "valid address, no activity"
// answer. It is the only way an empty result is a success; an empty
// transaction list without it is treated as a failure.
const notFoundMarker = "address not found."

// Options configures a Client. Ledger is required; ErrorLog and Logger
// are optional.
type Options struct {
	HTTPTimeout time.Duration
	HeightTTL   time.Duration
	// BaseURLs overrides the default base URL per provider id (the
	// "custom endpoint" configuration).
	BaseURLs map[string]string
	// Heights overrides the in-memory height cache, e.g. with the
	// Redis-backed store.
	Heights  heightcache.Store
	Ledger   ratelimit.Ledger
	ErrorLog *errlog.Logger
	Logger   *slog.Logger
}

// Client orchestrates provider-specific fetching, validation,
// normalization and confirmation resolution for watched addresses.
type Client struct {
	http    *HTTPClient
	heights heightcache.Store
	ledger  ratelimit.Ledger
	errlog  *errlog.Logger
	log     *slog.Logger
	bases   map[string]string

	nowFunc func() time.Time
}

// New creates an explorer client.
func New(opts Options) *Client {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	ledger := opts.Ledger
	if ledger == nil {
		ledger = ratelimit.NewMemoryLedger()
	}
	heights := opts.Heights
	if heights == nil {
		heights = heightcache.New(opts.HeightTTL)
	}
	return &Client{
		http:    NewHTTPClient(opts.HTTPTimeout),
		heights: heights,
		ledger:  ledger,
		errlog:  opts.ErrorLog,
		log:     log,
		bases:   opts.BaseURLs,
		nowFunc: time.Now,
	}
}

// Ledger exposes the client's rate-limit ledger.
func (c *Client) Ledger() ratelimit.Ledger { return c.ledger }

// FetchTransactions fetches and normalizes the transactions touching a
// payment address. Every returned transaction has a resolved confirmation
// count and timestamp. On failure it records the outcome in the
// rate-limit ledger and error log and returns a *domain.APIError.
//
// An empty slice with a nil error means the provider explicitly reported
// the address as having no activity.
func (c *Client) FetchTransactions(ctx context.Context, address, currency, providerID string) ([]domain.Transaction, error) {
	provider, err := providerByID(providerID)
	if err != nil {
		return nil, domain.NewAPIError(domain.ErrFormat, providerID, err.Error())
	}
	base := c.baseURL(provider)

	start := c.nowFunc()
	metrics.FetchesTotal.WithLabelValues(currency, providerID).Inc()
	defer func() {
		metrics.FetchLatency.WithLabelValues(currency, providerID).
			Observe(c.nowFunc().Sub(start).Seconds())
	}()

	chainHeight := c.CurrentHeight(ctx, currency, providerID)

	body, err := c.http.Get(ctx, provider.AddressURL(base, address))
	if err != nil {
		return nil, c.fail(ctx, currency, domain.NewAPIError(domain.ErrTransport, providerID, err.Error()))
	}

	if isNotFound(body) {
		// Valid address with zero activity: an explicit empty success,
		// not an error.
		return []domain.Transaction{}, nil
	}

	// A result is valid only if it is structurally a JSON object; bare
	// strings, arrays or garbage route to the failure path.
	var payload map[string]any
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, c.fail(ctx, currency, domain.NewAPIError(domain.ErrTransport, providerID, msgInvalidResponse))
	}

	env, err := provider.Normalize(payload)
	if err != nil {
		return nil, c.fail(ctx, currency, asAPIError(err, providerID, domain.ErrFormat))
	}

	txs, err := provider.Resolve(ctx, c.http, base, env, chainHeight)
	if err != nil {
		return nil, c.fail(ctx, currency, asAPIError(err, providerID, domain.ErrTransport))
	}

	if len(txs) == 0 {
		return nil, c.fail(ctx, currency, domain.NewAPIError(domain.ErrNoData, providerID, msgNoTxData))
	}

	now := c.nowFunc().Unix()
	for i := range txs {
		if txs[i].Time == 0 {
			if txs[i].BlockTime != 0 {
				txs[i].Time = txs[i].BlockTime
			} else {
				txs[i].Time = now
			}
		}
	}

	// A fully successful call clears the whole ledger, matching the
	// legacy transient behavior.
	if err := c.ledger.Clear(ctx); err != nil {
		c.log.Warn("failed to clear rate-limit ledger", "error", err)
	}

	metrics.TransactionsNormalized.WithLabelValues(currency, providerID).
		Add(float64(len(txs)))
	return txs, nil
}

// CurrentHeight returns the current chain height for a currency, cached
// inside the freshness window. 0 means unknown; callers must not derive
// confirmations from it.
func (c *Client) CurrentHeight(ctx context.Context, currency, providerID string) int64 {
	provider, err := providerByID(providerID)
	if err != nil {
		return 0
	}
	base := c.baseURL(provider)

	return c.heights.Get(ctx, currency, func(ctx context.Context) (int64, error) {
		metrics.HeightQueriesTotal.WithLabelValues(currency, providerID).Inc()

		body, err := c.http.Get(ctx, provider.HeightURL(base))
		if err != nil {
			// Height failures feed the ledger like any provider-call
			// failure, but the height itself degrades to 0.
			c.recordFailure(ctx, currency, domain.NewAPIError(domain.ErrTransport, providerID, err.Error()))
			return 0, err
		}

		height, err := strconv.ParseInt(strings.TrimSpace(string(body)), 10, 64)
		if err != nil {
			// Provider answered with something other than a bare
			// integer: unknown height, no ledger entry.
			return 0, nil
		}
		return height, nil
	})
}

func (c *Client) baseURL(p Provider) string {
	if base, ok := c.bases[p.ID()]; ok && base != "" {
		return strings.TrimRight(base, "/")
	}
	return p.DefaultBaseURL()
}

// fail records the failure and returns it as the fetch result.
func (c *Client) fail(ctx context.Context, currency string, apiErr *domain.APIError) *domain.APIError {
	c.recordFailure(ctx, currency, apiErr)
	return apiErr
}

func (c *Client) recordFailure(ctx context.Context, currency string, apiErr *domain.APIError) {
	metrics.FetchFailuresTotal.WithLabelValues(currency, apiErr.Provider, string(apiErr.Kind)).Inc()

	if err := c.ledger.RecordFailure(ctx, currency, apiErr.Provider); err != nil {
		c.log.Warn("failed to record rate-limit failure", "currency", currency, "error", err)
	}

	if err := c.errlog.Append(fmt.Sprintf("%s full address error %s", apiErr.Provider, apiErr.Message)); err != nil {
		c.log.Warn("failed to append error log", "error", err)
	}

	c.log.Warn("explorer fetch failed",
		"currency", currency,
		"provider", apiErr.Provider,
		"kind", apiErr.Kind,
		"error", apiErr.Message,
	)
}

func isNotFound(body []byte) bool {
	s := strings.TrimSpace(string(body))
	return s == notFoundMarker || s == `"`+notFoundMarker+`"`
}

// asAPIError coerces an error into *domain.APIError, annotating provider
// and defaulting the kind when the error came from outside the engine.
func asAPIError(err error, provider string, kind domain.ErrorKind) *domain.APIError {
	var apiErr *domain.APIError
	if errors.As(err, &apiErr) {
		if apiErr.Provider == "" {
			apiErr.Provider = provider
		}
		return apiErr
	}
	return domain.NewAPIError(kind, provider, err.Error())
}
