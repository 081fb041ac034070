package storage

import (
	"context"
	"errors"

	"github.com/mkrogh/explorerwatch/internal/core/domain"
)

var (
	// ErrNotFound is returned when a record doesn't exist
	ErrNotFound = errors.New("not found")
)

// AddressRepository handles watched-address storage operations
type AddressRepository interface {
	// Save saves a watched address
	Save(ctx context.Context, addr *domain.WatchedAddress) error

	// GetByCurrency retrieves the watched addresses for a currency
	GetByCurrency(ctx context.Context, currency string) ([]*domain.WatchedAddress, error)

	// GetAll retrieves all watched addresses
	GetAll(ctx context.Context) ([]*domain.WatchedAddress, error)

	// Delete removes an address from the watch list
	Delete(ctx context.Context, currency, address string) error
}

// TransactionRepository handles normalized-transaction storage operations
type TransactionRepository interface {
	// SaveBatch saves the transactions of one fetch pass. batchID groups
	// the rows written by a single pass.
	SaveBatch(
		ctx context.Context,
		currency, address, batchID string,
		txs []domain.Transaction,
	) error

	// GetByAddress retrieves the stored transactions for an address,
	// newest first
	GetByAddress(ctx context.Context, currency, address string) ([]domain.Transaction, error)

	// Count returns the number of stored transactions for a currency
	Count(ctx context.Context, currency string) (int, error)
}
