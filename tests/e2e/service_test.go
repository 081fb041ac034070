package e2e

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/mkrogh/explorerwatch/internal/core/config"
	"github.com/mkrogh/explorerwatch/internal/watch"
)

// insightStub serves a minimal Iquidus-style explorer and counts the
// address fetches it receives.
func insightStub(fetches *atomic.Int64) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/api/getblockcount":
			io.WriteString(w, "850000")
		case r.URL.Path == "/ext/getaddress/GaddrX":
			fetches.Add(1)
			io.WriteString(w, `{"transactions":[{"addresses":"tx123","time":1690000000}]}`)
		case r.URL.Path == "/api/getrawtransaction":
			io.WriteString(w, `{"txid":"tx123","confirmations":5,"vout":[{"value":1.25,"scriptPubKey":{"addresses":["GaddrX"]}}]}`)
		default:
			http.NotFound(w, r)
		}
	}))
}

func TestServicePollsAndShutsDown(t *testing.T) {
	var fetches atomic.Int64
	explorerStub := insightStub(&fetches)
	defer explorerStub.Close()

	const healthPort = 18973
	cfg := &config.AppConfig{
		Server: config.ServerConfig{Port: healthPort},
		Currencies: []config.CurrencyConfig{
			{
				Code:          "GAME",
				Provider:      "insight",
				CustomURL:     explorerStub.URL,
				ScanInterval:  time.Second,
				RatePerSecond: 100,
				Addresses:     []string{"GaddrX"},
			},
		},
	}

	service, err := watch.NewService(cfg)
	if err != nil {
		t.Fatalf("Failed to create service: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	if err := service.Start(ctx); err != nil {
		t.Fatalf("Failed to start service: %v", err)
	}

	// Wait for the first polling pass to hit the stub.
	deadline := time.Now().Add(5 * time.Second)
	for fetches.Load() == 0 && time.Now().Before(deadline) {
		time.Sleep(50 * time.Millisecond)
	}
	if fetches.Load() == 0 {
		t.Fatal("Poller never fetched the watched address")
	}

	// The health endpoint reflects a clean pass.
	resp, err := http.Get(fmt.Sprintf("http://localhost:%d/health", healthPort))
	if err != nil {
		t.Fatalf("Health endpoint unreachable: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected 200 from /health, got %d", resp.StatusCode)
	}
	var body map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("Bad health body: %v", err)
	}
	if body["status"] != "healthy" {
		t.Errorf("Expected healthy status, got %s", body["status"])
	}

	// Trigger shutdown
	cancel()

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer stopCancel()

	if err := service.Stop(stopCtx); err != nil {
		t.Errorf("Stop failed: %v", err)
	}
}

func TestServiceRejectsUnknownProvider(t *testing.T) {
	cfg := &config.AppConfig{
		Currencies: []config.CurrencyConfig{
			{Code: "GAME", Provider: "mystery", ScanInterval: time.Second, RatePerSecond: 1},
		},
	}

	if _, err := watch.NewService(cfg); err == nil {
		t.Fatal("Expected an error for an unknown provider")
	}
}
