package domain

// Output is a single recipient of a transaction.
type Output struct {
	Address string  `json:"address"`
	Amount  float64 `json:"amount"`
}

// Transaction is the canonical, provider-independent transaction record.
// Confirmations is always resolved before a Transaction leaves the
// explorer client; BlockTime is zero when the provider did not report one.
type Transaction struct {
	TxID          string   `json:"txid"`
	Outputs       []Output `json:"outputs"`
	Time          int64    `json:"time"`
	Confirmations int64    `json:"confirmations"`
	BlockTime     int64    `json:"blocktime,omitempty"`
}
