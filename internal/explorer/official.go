package explorer

import (
	"context"
	"time"

	"github.com/mkrogh/explorerwatch/internal/core/domain"
)

// confirmTimeout bounds the secondary confirmations call. The endpoint is
// slow under load; the legacy integration allowed a full minute.
const confirmTimeout = 60 * time.Second

// officialProvider talks to the official block explorer. Address payloads
// carry the transaction list under "last_txs" with output addresses in a
// flat "addresses" array per vout; confirmations come from a separate
// batched POST endpoint.
type officialProvider struct{}

func (officialProvider) ID() string             { return ProviderOfficial }
func (officialProvider) DefaultBaseURL() string { return "http://blockexplorer.gamecredits.org" }

func (officialProvider) AddressURL(base, address string) string {
	return base + "/api/addresses/" + address
}

func (officialProvider) HeightURL(base string) string {
	return base + "/api/network/info"
}

func (officialProvider) confirmationsURL(base string) string {
	return base + "/api/transactions/confirmations"
}

// Normalize maps the provider payload to canonical transactions. The
// "last_txs" field is the provider's name for the transaction list; a
// plain "transactions" field is accepted as the already-renamed form.
func (p officialProvider) Normalize(payload map[string]any) (*Envelope, error) {
	list, ok := payload["last_txs"].([]any)
	if !ok {
		list, ok = payload["transactions"].([]any)
	}
	if !ok {
		return nil, domain.NewAPIError(domain.ErrFormat, p.ID(), msgNoTxData)
	}

	env := &Envelope{Found: true, Transactions: make([]domain.Transaction, 0, len(list))}
	for _, raw := range list {
		item, ok := raw.(map[string]any)
		if !ok {
			return nil, domain.NewAPIError(domain.ErrFormat, p.ID(), msgNoTxData)
		}

		txid, _ := item["txid"].(string)
		if txid == "" {
			return nil, domain.NewAPIError(domain.ErrFormat, p.ID(), msgNoTxData)
		}

		vout, ok := item["vout"].([]any)
		if !ok {
			return nil, domain.NewAPIError(domain.ErrFormat, p.ID(), msgNoOutputs)
		}

		tx := domain.Transaction{
			TxID:      txid,
			Outputs:   parseOutputs(vout),
			Time:      intField(item, "time"),
			BlockTime: intField(item, "blocktime"),
		}
		env.Transactions = append(env.Transactions, tx)
	}

	return env, nil
}

// Resolve fills confirmations for the batch. The provider exposes a
// batched confirmations endpoint; the legacy integration posts the first
// txid of the batch and applies the answer to every transaction, and that
// call pattern is kept to avoid changing request counts against a
// rate-limited API.
func (p officialProvider) Resolve(
	ctx context.Context,
	hc *HTTPClient,
	base string,
	env *Envelope,
	chainHeight int64,
) ([]domain.Transaction, error) {
	txs := env.Transactions
	if len(txs) == 0 {
		return nil, nil
	}

	body := map[string]any{"transactions": []string{txs[0].TxID}}
	data, err := hc.PostJSON(ctx, p.confirmationsURL(base), body, confirmTimeout)
	if err != nil {
		return nil, domain.NewAPIError(domain.ErrTransport, p.ID(), err.Error())
	}

	explicit := parseConfirmationsResponse(data)
	for i := range txs {
		if err := applyConfirmations(&txs[i], explicit, chainHeight, p.ID()); err != nil {
			return nil, err
		}
	}

	return txs, nil
}

// parseOutputs flattens a vout list into canonical outputs. The provider
// reports recipient addresses as a flat "addresses" array per vout (the
// insight-compatible nested scriptPubKey form is accepted too).
func parseOutputs(vout []any) []domain.Output {
	outputs := make([]domain.Output, 0, len(vout))
	for _, raw := range vout {
		item, ok := raw.(map[string]any)
		if !ok {
			continue
		}

		amount, ok := item["amount"].(float64)
		if !ok {
			amount, _ = item["value"].(float64)
		}

		for _, addr := range outputAddresses(item) {
			outputs = append(outputs, domain.Output{Address: addr, Amount: amount})
		}
	}
	return outputs
}

// outputAddresses extracts recipient addresses from a single vout entry,
// whether they sit flat on the entry or nested under scriptPubKey.
func outputAddresses(item map[string]any) []string {
	addrsRaw, ok := item["addresses"]
	if !ok {
		if spk, ok := item["scriptPubKey"].(map[string]any); ok {
			addrsRaw = spk["addresses"]
			if addrsRaw == nil {
				if single, ok := spk["address"].(string); ok {
					return []string{single}
				}
			}
		}
	}

	switch v := addrsRaw.(type) {
	case string:
		return []string{v}
	case []any:
		addrs := make([]string, 0, len(v))
		for _, a := range v {
			if s, ok := a.(string); ok {
				addrs = append(addrs, s)
			}
		}
		return addrs
	default:
		return nil
	}
}

func intField(m map[string]any, key string) int64 {
	if v, ok := m[key].(float64); ok {
		return int64(v)
	}
	return 0
}
