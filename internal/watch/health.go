// Package watch runs the polling service: one poller per configured
// currency, a shared rate-limit ledger, and the health/metrics endpoint.
package watch

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mkrogh/explorerwatch/internal/ratelimit"
)

// SystemStatus represents the overall health state of the system or a component.
type SystemStatus string

const (
	StatusHealthy  SystemStatus = "healthy"
	StatusDegraded SystemStatus = "degraded"
	StatusCritical SystemStatus = "critical"
)

// criticalFailures is the ledger failure streak at which a currency is
// reported critical rather than degraded.
const criticalFailures = 5

// CurrencyHealth contains health metrics for one watched currency.
type CurrencyHealth struct {
	Currency     string       `json:"currency"`
	Provider     string       `json:"provider"`
	Status       SystemStatus `json:"status"`
	FailureCount int          `json:"failure_count"`
	LastPass     time.Time    `json:"last_pass,omitempty"`
	LastError    string       `json:"last_error,omitempty"`
}

type passResult struct {
	at  time.Time
	err string
}

// Monitor aggregates health status from the ledger and poller passes.
type Monitor struct {
	currencies []string
	providers  map[string]string
	ledger     ratelimit.Ledger

	lastCheck  time.Time
	lastReport map[string]CurrencyHealth
	passes     map[string]passResult
	mu         sync.RWMutex
}

// NewMonitor creates a new health monitor.
func NewMonitor(currencies []string, providers map[string]string, ledger ratelimit.Ledger) *Monitor {
	return &Monitor{
		currencies: currencies,
		providers:  providers,
		ledger:     ledger,
		lastReport: make(map[string]CurrencyHealth),
		passes:     make(map[string]passResult),
	}
}

// RecordPass notes the outcome of a polling pass for a currency.
func (m *Monitor) RecordPass(currency string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	result := passResult{at: time.Now()}
	if err != nil {
		result.err = err.Error()
	}
	m.passes[currency] = result
}

// CheckHealth performs a health check for all currencies.
func (m *Monitor) CheckHealth(ctx context.Context) map[string]CurrencyHealth {
	m.mu.Lock()
	defer m.mu.Unlock()

	// Rate limit checks to avoid hammering the ledger backend
	if time.Since(m.lastCheck) < 10*time.Second && len(m.lastReport) > 0 {
		return m.lastReport
	}

	report := make(map[string]CurrencyHealth)

	for _, currency := range m.currencies {
		health := CurrencyHealth{
			Currency: currency,
			Provider: m.providers[currency],
			Status:   StatusHealthy,
		}

		entry, found, err := m.ledger.Entry(ctx, currency)
		if err != nil {
			health.Status = StatusDegraded
		} else if found {
			health.FailureCount = entry.Count
			if entry.Provider != "" {
				health.Provider = entry.Provider
			}
			if entry.Count >= criticalFailures {
				health.Status = StatusCritical
			} else if entry.Count > 0 {
				health.Status = StatusDegraded
			}
		}

		if pass, ok := m.passes[currency]; ok {
			health.LastPass = pass.at
			health.LastError = pass.err
		}

		report[currency] = health
	}

	m.lastCheck = time.Now()
	m.lastReport = report
	return report
}

// Server provides HTTP endpoints for health monitoring.
type Server struct {
	monitor *Monitor
	server  *http.Server
}

// NewServer creates a new health server.
func NewServer(monitor *Monitor, port int) *Server {
	mux := http.NewServeMux()
	s := &Server{
		monitor: monitor,
		server: &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: mux,
		},
	}

	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/health/detailed", s.handleDetailed)
	mux.Handle("/metrics", promhttp.Handler())

	return s
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	return s.server.ListenAndServe()
}

// Stop stops the HTTP server.
func (s *Server) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	report := s.monitor.CheckHealth(r.Context())
	status := StatusHealthy

	// Aggregate status (worst case wins)
	for _, cur := range report {
		if cur.Status == StatusCritical {
			status = StatusCritical
			break
		}
		if cur.Status == StatusDegraded {
			status = StatusDegraded
		}
	}

	response := map[string]string{"status": string(status)}
	w.Header().Set("Content-Type", "application/json")

	if status == StatusCritical {
		w.WriteHeader(http.StatusServiceUnavailable)
	} else {
		w.WriteHeader(http.StatusOK)
	}

	json.NewEncoder(w).Encode(response)
}

func (s *Server) handleDetailed(w http.ResponseWriter, r *http.Request) {
	report := s.monitor.CheckHealth(r.Context())
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(report)
}
