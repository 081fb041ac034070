// Package explorer implements the block-explorer transaction-ingestion
// engine: provider-specific fetching and normalization of address
// activity into the canonical transaction model, confirmation
// resolution, and failure bookkeeping.
package explorer

import (
	"context"
	"fmt"

	"github.com/mkrogh/explorerwatch/internal/core/domain"
)

// Provider identifiers. Each maps to a concrete explorer API with its own
// URL layout and payload shape.
const (
	// ProviderOfficial is the official explorer (blockexplorer-style API,
	// transaction list under "last_txs", confirmations via a secondary
	// POST endpoint).
	ProviderOfficial = "official"
	// ProviderInsight is the Iquidus/insight-style explorer (transaction
	// list under "transactions", entries referencing raw transactions
	// that are fetched individually).
	ProviderInsight = "insight"
)

// Legacy error messages, preserved byte-for-byte for log compatibility.
const (
	msgNoTxData        = "Could not find transaction data from block explorer api"
	msgNoOutputs       = "Could not find transaction outputs data from block explorer api"
	msgNoConfirmations = "Could not find tx confirmations from block explorer api result"
	msgInvalidResponse = "invalid response from block explorer api"
)

// TxRef references a transaction the client must fetch individually from
// the provider's raw-transaction endpoint.
type TxRef struct {
	TxID string
	Time int64
}

// Envelope is the normalizer output. Providers that inline full
// transaction data fill Transactions; providers that only list
// transaction ids fill Refs. Found reports that a recognized
// transaction-list field was present, so a found-but-empty list stays
// distinguishable from a malformed payload.
type Envelope struct {
	Transactions []domain.Transaction
	Refs         []TxRef
	Found        bool
}

// Provider is the per-explorer capability set: URL construction, payload
// normalization and confirmation resolution. Normalize is a pure
// transform; Resolve may issue secondary calls through the HTTP client.
type Provider interface {
	ID() string
	DefaultBaseURL() string
	AddressURL(base, address string) string
	HeightURL(base string) string
	Normalize(payload map[string]any) (*Envelope, error)
	Resolve(ctx context.Context, hc *HTTPClient, base string, env *Envelope, chainHeight int64) ([]domain.Transaction, error)
}

// LookupProvider resolves a provider identifier, typically from
// configuration.
func LookupProvider(id string) (Provider, error) {
	return providerByID(id)
}

func providerByID(id string) (Provider, error) {
	switch id {
	case ProviderOfficial:
		return officialProvider{}, nil
	case ProviderInsight:
		return insightProvider{}, nil
	default:
		return nil, fmt.Errorf("unknown explorer provider: %s", id)
	}
}

// Providers lists the known provider identifiers.
func Providers() []string {
	return []string{ProviderOfficial, ProviderInsight}
}
