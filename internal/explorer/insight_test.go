package explorer

import (
	"errors"
	"testing"

	"github.com/mkrogh/explorerwatch/internal/core/domain"
)

func TestInsightNormalize_RefsFromAddressesField(t *testing.T) {
	// The insight list names its txid field "addresses".
	payload := decodePayload(t, `{
		"transactions": [
			{"addresses": "tx123", "time": 1690000000},
			{"addresses": "tx456"}
		]
	}`)

	env, err := insightProvider{}.Normalize(payload)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(env.Refs) != 2 {
		t.Fatalf("expected 2 refs, got %d", len(env.Refs))
	}
	if env.Refs[0].TxID != "tx123" || env.Refs[0].Time != 1690000000 {
		t.Errorf("unexpected first ref: %+v", env.Refs[0])
	}
	if env.Refs[1].TxID != "tx456" || env.Refs[1].Time != 0 {
		t.Errorf("unexpected second ref: %+v", env.Refs[1])
	}
	if len(env.Transactions) != 0 {
		t.Errorf("insight normalize should not inline transactions")
	}
}

func TestInsightNormalize_TxidFallback(t *testing.T) {
	payload := decodePayload(t, `{"transactions": [{"txid": "tx789"}]}`)

	env, err := insightProvider{}.Normalize(payload)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(env.Refs) != 1 || env.Refs[0].TxID != "tx789" {
		t.Errorf("unexpected refs: %+v", env.Refs)
	}
}

func TestInsightNormalize_MissingListIsFormatError(t *testing.T) {
	payload := decodePayload(t, `{"address": "GaddrX", "balance": 0}`)

	_, err := insightProvider{}.Normalize(payload)
	var apiErr *domain.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.Kind != domain.ErrFormat || apiErr.Message != msgNoTxData {
		t.Errorf("unexpected error: kind=%s message=%s", apiErr.Kind, apiErr.Message)
	}
}

func TestInsightURLs(t *testing.T) {
	p := insightProvider{}
	base := "http://insight.example.com"

	if got := p.AddressURL(base, "GaddrX"); got != "http://insight.example.com/ext/getaddress/GaddrX" {
		t.Errorf("unexpected address URL: %s", got)
	}
	if got := p.HeightURL(base); got != "http://insight.example.com/api/getblockcount" {
		t.Errorf("unexpected height URL: %s", got)
	}
	if got := p.rawTxURL(base, "tx 1"); got != "http://insight.example.com/api/getrawtransaction?txid=tx+1&decrypt=1" {
		t.Errorf("unexpected raw tx URL: %s", got)
	}
}
