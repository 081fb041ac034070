package domain

// RateLimitEntry records consecutive provider-call failures for a
// currency since the last ledger-wide expiry. Provider is the identifier
// of the API that caused the most recent failure.
type RateLimitEntry struct {
	Currency string `json:"currency"`
	Count    int    `json:"count"`
	Provider string `json:"api"`
}
