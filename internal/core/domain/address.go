package domain

import "time"

// WatchedAddress is a payment address monitored for incoming transactions.
type WatchedAddress struct {
	Address   string    `json:"address"`
	Currency  string    `json:"currency"`
	CreatedAt time.Time `json:"created_at"`
}
