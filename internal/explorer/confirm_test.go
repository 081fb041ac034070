package explorer

import (
	"errors"
	"testing"

	"github.com/mkrogh/explorerwatch/internal/core/domain"
)

func TestApplyConfirmations_ExplicitWins(t *testing.T) {
	tx := domain.Transaction{TxID: "tx1", BlockTime: 1000}
	explicit := int64(7)

	if err := applyConfirmations(&tx, &explicit, 900000, "official"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tx.Confirmations != 7 {
		t.Errorf("expected 7, got %d", tx.Confirmations)
	}
}

func TestApplyConfirmations_LegacyFallback(t *testing.T) {
	tx := domain.Transaction{TxID: "tx1", BlockTime: 1000}

	if err := applyConfirmations(&tx, nil, 900000, "official"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// The preserved legacy formula: chain height minus block time.
	if tx.Confirmations != 899000 {
		t.Errorf("expected 899000, got %d", tx.Confirmations)
	}
}

func TestApplyConfirmations_UnknownHeightDoesNotFeedFallback(t *testing.T) {
	tx := domain.Transaction{TxID: "tx1", BlockTime: 1000}

	err := applyConfirmations(&tx, nil, 0, "official")
	var apiErr *domain.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.Kind != domain.ErrConfirmations {
		t.Errorf("expected confirmations error, got %s", apiErr.Kind)
	}
	if apiErr.Message != msgNoConfirmations {
		t.Errorf("unexpected message: %s", apiErr.Message)
	}
}

func TestApplyConfirmations_NoBlockTimeFails(t *testing.T) {
	tx := domain.Transaction{TxID: "tx1"}

	if err := applyConfirmations(&tx, nil, 900000, "official"); err == nil {
		t.Fatal("expected error when neither explicit count nor blocktime is available")
	}
	if tx.Confirmations != 0 {
		t.Errorf("confirmations must not be defaulted, got %d", tx.Confirmations)
	}
}

func TestParseConfirmationsResponse(t *testing.T) {
	tests := []struct {
		name string
		body string
		want *int64
	}{
		{"valid", `[{"confirmations": 5}]`, ptr(5)},
		{"empty array", `[]`, nil},
		{"missing field", `[{"txid": "abc"}]`, nil},
		{"not an array", `{"confirmations": 5}`, nil},
		{"garbage", `oops`, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseConfirmationsResponse([]byte(tt.body))
			switch {
			case tt.want == nil && got != nil:
				t.Errorf("expected nil, got %d", *got)
			case tt.want != nil && got == nil:
				t.Errorf("expected %d, got nil", *tt.want)
			case tt.want != nil && *got != *tt.want:
				t.Errorf("expected %d, got %d", *tt.want, *got)
			}
		})
	}
}

func ptr(v int64) *int64 { return &v }
