package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mkrogh/explorerwatch/internal/core/domain"
)

// AddressRepo implements storage.AddressRepository using PostgreSQL.
type AddressRepo struct {
	db *DB
}

// NewAddressRepo creates a new PostgreSQL address repository.
func NewAddressRepo(db *DB) *AddressRepo {
	return &AddressRepo{db: db}
}

type addressRow struct {
	Address   string    `db:"address"`
	Currency  string    `db:"currency"`
	CreatedAt time.Time `db:"created_at"`
}

func (r *addressRow) toDomain() *domain.WatchedAddress {
	return &domain.WatchedAddress{
		Address:   r.Address,
		Currency:  r.Currency,
		CreatedAt: r.CreatedAt,
	}
}

// Save saves a watched address.
func (r *AddressRepo) Save(ctx context.Context, addr *domain.WatchedAddress) error {
	query := `
		INSERT INTO watched_addresses (currency, address, created_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (currency, address) DO NOTHING
	`
	_, err := r.db.ExecContext(ctx, query, addr.Currency, addr.Address)
	if err != nil {
		return fmt.Errorf("failed to save watched address: %w", err)
	}
	return nil
}

// GetByCurrency retrieves the watched addresses for a currency.
func (r *AddressRepo) GetByCurrency(
	ctx context.Context,
	currency string,
) ([]*domain.WatchedAddress, error) {
	query := `
		SELECT address, currency, created_at
		FROM watched_addresses
		WHERE currency = $1
		ORDER BY created_at
	`

	var rows []addressRow
	if err := r.db.SelectContext(ctx, &rows, query, currency); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get watched addresses: %w", err)
	}

	addrs := make([]*domain.WatchedAddress, 0, len(rows))
	for i := range rows {
		addrs = append(addrs, rows[i].toDomain())
	}
	return addrs, nil
}

// GetAll retrieves all watched addresses.
func (r *AddressRepo) GetAll(ctx context.Context) ([]*domain.WatchedAddress, error) {
	query := `
		SELECT address, currency, created_at
		FROM watched_addresses
		ORDER BY currency, created_at
	`

	var rows []addressRow
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("failed to get all watched addresses: %w", err)
	}

	addrs := make([]*domain.WatchedAddress, 0, len(rows))
	for i := range rows {
		addrs = append(addrs, rows[i].toDomain())
	}
	return addrs, nil
}

// Delete removes an address from the watch list.
func (r *AddressRepo) Delete(ctx context.Context, currency, address string) error {
	query := `DELETE FROM watched_addresses WHERE currency = $1 AND address = $2`
	_, err := r.db.ExecContext(ctx, query, currency, address)
	if err != nil {
		return fmt.Errorf("failed to delete watched address: %w", err)
	}
	return nil
}
