package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mkrogh/explorerwatch/internal/core/domain"
)

// TxRepo implements storage.TransactionRepository using PostgreSQL.
type TxRepo struct {
	db *DB
}

// NewTxRepo creates a new PostgreSQL transaction repository.
func NewTxRepo(db *DB) *TxRepo {
	return &TxRepo{db: db}
}

type txRow struct {
	Currency      string    `db:"currency"`
	Address       string    `db:"address"`
	TxID          string    `db:"txid"`
	Time          int64     `db:"tx_time"`
	BlockTime     int64     `db:"block_time"`
	Confirmations int64     `db:"confirmations"`
	Outputs       []byte    `db:"outputs"`
	BatchID       string    `db:"batch_id"`
	CreatedAt     time.Time `db:"created_at"`
}

func (t *txRow) toDomain() (domain.Transaction, error) {
	tx := domain.Transaction{
		TxID:          t.TxID,
		Time:          t.Time,
		BlockTime:     t.BlockTime,
		Confirmations: t.Confirmations,
	}
	if len(t.Outputs) > 0 {
		if err := json.Unmarshal(t.Outputs, &tx.Outputs); err != nil {
			return tx, fmt.Errorf("failed to decode outputs: %w", err)
		}
	}
	return tx, nil
}

// SaveBatch saves the transactions of one fetch pass. Re-fetched
// transactions update their confirmation count in place.
func (r *TxRepo) SaveBatch(
	ctx context.Context,
	currency, address, batchID string,
	txs []domain.Transaction,
) error {
	if len(txs) == 0 {
		return nil
	}

	dbtx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer dbtx.Rollback()

	query := `
		INSERT INTO explorer_transactions (
			currency, address, txid, tx_time, block_time, confirmations, outputs, batch_id, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())
		ON CONFLICT (currency, address, txid) DO UPDATE SET
			confirmations = EXCLUDED.confirmations,
			batch_id = EXCLUDED.batch_id
	`

	stmt, err := dbtx.PrepareContext(ctx, query)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, tx := range txs {
		outputs, err := json.Marshal(tx.Outputs)
		if err != nil {
			return fmt.Errorf("failed to encode outputs: %w", err)
		}
		_, err = stmt.ExecContext(ctx,
			currency, address, tx.TxID,
			tx.Time, tx.BlockTime, tx.Confirmations,
			outputs, batchID,
		)
		if err != nil {
			return err
		}
	}

	return dbtx.Commit()
}

// GetByAddress retrieves the stored transactions for an address, newest first.
func (r *TxRepo) GetByAddress(
	ctx context.Context,
	currency, address string,
) ([]domain.Transaction, error) {
	query := `
		SELECT currency, address, txid, tx_time, block_time, confirmations, outputs, batch_id, created_at
		FROM explorer_transactions
		WHERE currency = $1 AND address = $2
		ORDER BY tx_time DESC
	`

	var rows []txRow
	err := r.db.SelectContext(ctx, &rows, query, currency, address)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get transactions: %w", err)
	}

	txs := make([]domain.Transaction, 0, len(rows))
	for i := range rows {
		tx, err := rows[i].toDomain()
		if err != nil {
			return nil, err
		}
		txs = append(txs, tx)
	}
	return txs, nil
}

// Count returns the number of stored transactions for a currency.
func (r *TxRepo) Count(ctx context.Context, currency string) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM explorer_transactions WHERE currency = $1`
	if err := r.db.GetContext(ctx, &count, query, currency); err != nil {
		return 0, fmt.Errorf("failed to count transactions: %w", err)
	}
	return count, nil
}
