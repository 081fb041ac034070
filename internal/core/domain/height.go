package domain

import "time"

// ChainHeight is a cached "current chain height" observation for a
// currency. A Height of 0 means unknown/unavailable and must not be used
// to derive confirmations.
type ChainHeight struct {
	Currency  string
	Height    int64
	FetchedAt time.Time
}
