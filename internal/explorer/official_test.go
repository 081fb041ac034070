package explorer

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/mkrogh/explorerwatch/internal/core/domain"
)

func decodePayload(t *testing.T, raw string) map[string]any {
	t.Helper()
	var payload map[string]any
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		t.Fatalf("bad test payload: %v", err)
	}
	return payload
}

func TestOfficialNormalize_PreservesOrder(t *testing.T) {
	payload := decodePayload(t, `{
		"last_txs": [
			{"txid": "tx1", "vout": [{"addresses": ["addr1"], "amount": 1.5}], "blocktime": 1000},
			{"txid": "tx2", "vout": [{"addresses": ["addr2"], "amount": 2.5}], "time": 1700000000},
			{"txid": "tx3", "vout": [{"addresses": ["addr3"]}]}
		]
	}`)

	env, err := officialProvider{}.Normalize(payload)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !env.Found {
		t.Error("expected Found to be set")
	}
	if len(env.Transactions) != 3 {
		t.Fatalf("expected 3 transactions, got %d", len(env.Transactions))
	}

	for i, want := range []string{"tx1", "tx2", "tx3"} {
		if env.Transactions[i].TxID != want {
			t.Errorf("position %d: expected %s, got %s", i, want, env.Transactions[i].TxID)
		}
	}

	first := env.Transactions[0]
	if len(first.Outputs) != 1 || first.Outputs[0].Address != "addr1" || first.Outputs[0].Amount != 1.5 {
		t.Errorf("unexpected outputs: %+v", first.Outputs)
	}
	if first.BlockTime != 1000 {
		t.Errorf("expected blocktime 1000, got %d", first.BlockTime)
	}
	if env.Transactions[1].Time != 1700000000 {
		t.Errorf("expected time 1700000000, got %d", env.Transactions[1].Time)
	}
}

func TestOfficialNormalize_AcceptsRenamedField(t *testing.T) {
	payload := decodePayload(t, `{
		"transactions": [{"txid": "tx1", "vout": []}]
	}`)

	env, err := officialProvider{}.Normalize(payload)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(env.Transactions) != 1 {
		t.Fatalf("expected 1 transaction, got %d", len(env.Transactions))
	}
}

func TestOfficialNormalize_MissingListIsFormatError(t *testing.T) {
	payload := decodePayload(t, `{"balance": 12.5}`)

	_, err := officialProvider{}.Normalize(payload)
	var apiErr *domain.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.Kind != domain.ErrFormat {
		t.Errorf("expected format error, got %s", apiErr.Kind)
	}
	if apiErr.Message != msgNoTxData {
		t.Errorf("unexpected message: %s", apiErr.Message)
	}
}

func TestOfficialNormalize_MissingVoutIsOutputsError(t *testing.T) {
	payload := decodePayload(t, `{"last_txs": [{"txid": "tx1", "blocktime": 1000}]}`)

	_, err := officialProvider{}.Normalize(payload)
	var apiErr *domain.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.Message != msgNoOutputs {
		t.Errorf("unexpected message: %s", apiErr.Message)
	}
}

func TestOfficialNormalize_EmptyListIsFoundAndEmpty(t *testing.T) {
	payload := decodePayload(t, `{"last_txs": []}`)

	env, err := officialProvider{}.Normalize(payload)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !env.Found {
		t.Error("expected Found for an explicitly present empty list")
	}
	if len(env.Transactions) != 0 {
		t.Errorf("expected no transactions, got %d", len(env.Transactions))
	}
}

func TestParseOutputs_MultipleAddressesPerVout(t *testing.T) {
	vout := []any{
		map[string]any{
			"addresses": []any{"addr1", "addr2"},
			"amount":    float64(3),
		},
	}

	outputs := parseOutputs(vout)
	if len(outputs) != 2 {
		t.Fatalf("expected 2 outputs, got %d", len(outputs))
	}
	if outputs[0].Address != "addr1" || outputs[1].Address != "addr2" {
		t.Errorf("unexpected addresses: %+v", outputs)
	}
	if outputs[0].Amount != 3 || outputs[1].Amount != 3 {
		t.Errorf("expected amount 3 on both outputs: %+v", outputs)
	}
}

func TestParseOutputs_NestedScriptPubKey(t *testing.T) {
	vout := []any{
		map[string]any{
			"value": float64(0.5),
			"scriptPubKey": map[string]any{
				"addresses": []any{"addr1"},
			},
		},
		map[string]any{
			"value": float64(0.25),
			"scriptPubKey": map[string]any{
				"address": "addr2",
			},
		},
	}

	outputs := parseOutputs(vout)
	if len(outputs) != 2 {
		t.Fatalf("expected 2 outputs, got %d", len(outputs))
	}
	if outputs[0].Address != "addr1" || outputs[0].Amount != 0.5 {
		t.Errorf("unexpected first output: %+v", outputs[0])
	}
	if outputs[1].Address != "addr2" || outputs[1].Amount != 0.25 {
		t.Errorf("unexpected second output: %+v", outputs[1])
	}
}

func TestOfficialURLs(t *testing.T) {
	p := officialProvider{}
	base := "http://explorer.example.com"

	if got := p.AddressURL(base, "GaddrX"); got != "http://explorer.example.com/api/addresses/GaddrX" {
		t.Errorf("unexpected address URL: %s", got)
	}
	if got := p.HeightURL(base); got != "http://explorer.example.com/api/network/info" {
		t.Errorf("unexpected height URL: %s", got)
	}
	if got := p.confirmationsURL(base); got != "http://explorer.example.com/api/transactions/confirmations" {
		t.Errorf("unexpected confirmations URL: %s", got)
	}
}
