package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/mkrogh/explorerwatch/internal/core/domain"
)

// MemoryStorage backs the repositories when no database is configured.
type MemoryStorage struct {
	addresses map[string]*domain.WatchedAddress
	txs       map[string][]domain.Transaction
	mu        sync.RWMutex
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		addresses: make(map[string]*domain.WatchedAddress),
		txs:       make(map[string][]domain.Transaction),
	}
}

func key(currency, address string) string {
	return currency + ":" + address
}

// -----------------------------------------------------------------------------
// Address Repository
// -----------------------------------------------------------------------------

type AddressRepo struct {
	store *MemoryStorage
}

func NewAddressRepo(store *MemoryStorage) *AddressRepo {
	return &AddressRepo{store: store}
}

func (r *AddressRepo) Save(ctx context.Context, addr *domain.WatchedAddress) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	k := key(addr.Currency, addr.Address)
	if _, exists := r.store.addresses[k]; exists {
		return nil
	}
	saved := *addr
	if saved.CreatedAt.IsZero() {
		saved.CreatedAt = time.Now()
	}
	r.store.addresses[k] = &saved
	return nil
}

func (r *AddressRepo) GetByCurrency(ctx context.Context, currency string) ([]*domain.WatchedAddress, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	var addrs []*domain.WatchedAddress
	for _, a := range r.store.addresses {
		if a.Currency == currency {
			addrs = append(addrs, a)
		}
	}
	sortAddresses(addrs)
	return addrs, nil
}

func (r *AddressRepo) GetAll(ctx context.Context) ([]*domain.WatchedAddress, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	addrs := make([]*domain.WatchedAddress, 0, len(r.store.addresses))
	for _, a := range r.store.addresses {
		addrs = append(addrs, a)
	}
	sortAddresses(addrs)
	return addrs, nil
}

func (r *AddressRepo) Delete(ctx context.Context, currency, address string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	delete(r.store.addresses, key(currency, address))
	return nil
}

func sortAddresses(addrs []*domain.WatchedAddress) {
	sort.Slice(addrs, func(i, j int) bool {
		if addrs[i].Currency != addrs[j].Currency {
			return addrs[i].Currency < addrs[j].Currency
		}
		return addrs[i].CreatedAt.Before(addrs[j].CreatedAt)
	})
}

// -----------------------------------------------------------------------------
// Transaction Repository
// -----------------------------------------------------------------------------

type TxRepo struct {
	store *MemoryStorage
}

func NewTxRepo(store *MemoryStorage) *TxRepo {
	return &TxRepo{store: store}
}

func (r *TxRepo) SaveBatch(
	ctx context.Context,
	currency, address, batchID string,
	txs []domain.Transaction,
) error {
	if len(txs) == 0 {
		return nil
	}
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	k := key(currency, address)
	existing := r.store.txs[k]
	for _, tx := range txs {
		replaced := false
		for i := range existing {
			if existing[i].TxID == tx.TxID {
				existing[i] = tx
				replaced = true
				break
			}
		}
		if !replaced {
			existing = append(existing, tx)
		}
	}
	r.store.txs[k] = existing
	return nil
}

func (r *TxRepo) GetByAddress(ctx context.Context, currency, address string) ([]domain.Transaction, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	stored := r.store.txs[key(currency, address)]
	txs := make([]domain.Transaction, len(stored))
	copy(txs, stored)
	sort.Slice(txs, func(i, j int) bool { return txs[i].Time > txs[j].Time })
	return txs, nil
}

func (r *TxRepo) Count(ctx context.Context, currency string) (int, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	count := 0
	prefix := currency + ":"
	for k, txs := range r.store.txs {
		if len(k) >= len(prefix) && k[:len(prefix)] == prefix {
			count += len(txs)
		}
	}
	return count, nil
}
