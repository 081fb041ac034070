package explorer

import (
	"context"
	"encoding/json"
	"net/url"

	"github.com/mkrogh/explorerwatch/internal/core/domain"
)

// insightProvider talks to an Iquidus/insight-style explorer. The address
// endpoint only lists transaction ids (in a field confusingly named
// "addresses"); full transaction data is fetched one id at a time from
// the raw-transaction endpoint.
type insightProvider struct{}

func (insightProvider) ID() string             { return ProviderInsight }
func (insightProvider) DefaultBaseURL() string { return "http://gamecredits.network" }

func (insightProvider) AddressURL(base, address string) string {
	return base + "/ext/getaddress/" + address
}

func (insightProvider) HeightURL(base string) string {
	return base + "/api/getblockcount"
}

func (insightProvider) rawTxURL(base, txid string) string {
	return base + "/api/getrawtransaction?txid=" + url.QueryEscape(txid) + "&decrypt=1"
}

// Normalize extracts the transaction references. Kept pure: the per-id
// re-fetch happens in Resolve.
func (p insightProvider) Normalize(payload map[string]any) (*Envelope, error) {
	list, ok := payload["transactions"].([]any)
	if !ok {
		return nil, domain.NewAPIError(domain.ErrFormat, p.ID(), msgNoTxData)
	}

	env := &Envelope{Found: true, Refs: make([]TxRef, 0, len(list))}
	for _, raw := range list {
		item, ok := raw.(map[string]any)
		if !ok {
			return nil, domain.NewAPIError(domain.ErrFormat, p.ID(), msgNoTxData)
		}

		txid, _ := item["addresses"].(string)
		if txid == "" {
			txid, _ = item["txid"].(string)
		}
		if txid == "" {
			return nil, domain.NewAPIError(domain.ErrFormat, p.ID(), msgNoTxData)
		}

		env.Refs = append(env.Refs, TxRef{TxID: txid, Time: intField(item, "time")})
	}

	return env, nil
}

// Resolve fetches each referenced raw transaction and builds the
// canonical record from it, preserving source order.
func (p insightProvider) Resolve(
	ctx context.Context,
	hc *HTTPClient,
	base string,
	env *Envelope,
	chainHeight int64,
) ([]domain.Transaction, error) {
	txs := make([]domain.Transaction, 0, len(env.Refs))
	for _, ref := range env.Refs {
		data, err := hc.Get(ctx, p.rawTxURL(base, ref.TxID))
		if err != nil {
			return nil, domain.NewAPIError(domain.ErrTransport, p.ID(), err.Error())
		}

		var raw map[string]any
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, domain.NewAPIError(domain.ErrTransport, p.ID(), msgInvalidResponse)
		}

		tx := domain.Transaction{
			TxID:      ref.TxID,
			Time:      intField(raw, "time"),
			BlockTime: intField(raw, "blocktime"),
		}
		if txid, ok := raw["txid"].(string); ok && txid != "" {
			tx.TxID = txid
		}
		if tx.Time == 0 {
			tx.Time = ref.Time
		}
		if vout, ok := raw["vout"].([]any); ok {
			tx.Outputs = parseOutputs(vout)
		}

		var explicit *int64
		if conf, ok := raw["confirmations"].(float64); ok {
			c := int64(conf)
			explicit = &c
		}
		if err := applyConfirmations(&tx, explicit, chainHeight, p.ID()); err != nil {
			return nil, err
		}

		txs = append(txs, tx)
	}

	return txs, nil
}
