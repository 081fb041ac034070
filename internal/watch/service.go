package watch

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mkrogh/explorerwatch/internal/core/config"
	"github.com/mkrogh/explorerwatch/internal/core/domain"
	"github.com/mkrogh/explorerwatch/internal/errlog"
	"github.com/mkrogh/explorerwatch/internal/explorer"
	"github.com/mkrogh/explorerwatch/internal/heightcache"
	redisclient "github.com/mkrogh/explorerwatch/internal/infra/redis"
	"github.com/mkrogh/explorerwatch/internal/infra/storage"
	"github.com/mkrogh/explorerwatch/internal/infra/storage/memory"
	"github.com/mkrogh/explorerwatch/internal/infra/storage/postgres"
	"github.com/mkrogh/explorerwatch/internal/ratelimit"
)

// Service is the main application struct that manages the poller lifecycle.
type Service struct {
	cfg          *config.AppConfig
	pollers      map[string]*Poller
	monitor      *Monitor
	healthServer *Server
	ledger       ratelimit.Ledger
	db           *postgres.DB
	redisClient  *redisclient.Client
	log          *slog.Logger
}

// NewService creates a new Service instance with all dependencies initialized.
func NewService(cfg *config.AppConfig) (*Service, error) {
	log := slog.Default()

	// 1. Initialize Storage
	var addrRepo storage.AddressRepository
	var txRepo storage.TransactionRepository
	var db *postgres.DB

	if cfg.Database.URL != "" {
		var err error
		db, err = postgres.NewDB(context.Background(), cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("failed to init db: %w", err)
		}
		if err := db.Migrate("migrations"); err != nil {
			return nil, err
		}

		addrRepo = postgres.NewAddressRepo(db)
		txRepo = postgres.NewTxRepo(db)
		log.Info("Using PostgreSQL storage")
	} else {
		store := memory.NewMemoryStorage()
		addrRepo = memory.NewAddressRepo(store)
		txRepo = memory.NewTxRepo(store)
		log.Info("Using Memory storage")
	}

	// Seed the watch list with the statically configured addresses so
	// they survive into storage.
	for _, cur := range cfg.Currencies {
		for _, address := range cur.Addresses {
			watched := &domain.WatchedAddress{Currency: cur.Code, Address: address}
			if err := addrRepo.Save(context.Background(), watched); err != nil {
				log.Warn("Failed to seed watched address",
					"currency", cur.Code, "address", address, "error", err)
			}
		}
	}

	// 2. Initialize the rate-limit ledger. Redis keeps failure streaks
	// across restarts; without it the ledger lives in memory.
	var ledger ratelimit.Ledger = ratelimit.NewMemoryLedger()
	var heights heightcache.Store
	var redisClient *redisclient.Client
	if cfg.Redis.URL != "" {
		var err error
		redisClient, err = redisclient.NewClient(cfg.Redis)
		if err != nil {
			log.Warn("Failed to connect to Redis, using in-memory ledger", "error", err)
		} else {
			ledger = ratelimit.NewRedisLedger(redisClient.Raw())
			heights = heightcache.NewRedisCache(redisClient.Raw(), 0)
			log.Info("Using Redis rate-limit ledger")
		}
	}

	var errorLog *errlog.Logger
	if cfg.ErrorLog != "" {
		errorLog = errlog.New(cfg.ErrorLog)
	}

	// 3. Initialize Pollers
	currencies := make([]string, 0, len(cfg.Currencies))
	providers := make(map[string]string, len(cfg.Currencies))
	monitor := NewMonitor(nil, nil, ledger)
	pollers := make(map[string]*Poller, len(cfg.Currencies))

	for _, cur := range cfg.Currencies {
		if _, err := explorer.LookupProvider(cur.Provider); err != nil {
			return nil, fmt.Errorf("currency %s: %w", cur.Code, err)
		}

		// Each currency gets its own client so a custom endpoint only
		// affects that currency; the ledger and error log are shared.
		opts := explorer.Options{
			Heights:  heights,
			Ledger:   ledger,
			ErrorLog: errorLog,
			Logger:   log,
		}
		if cur.CustomURL != "" {
			opts.BaseURLs = map[string]string{cur.Provider: cur.CustomURL}
		}
		client := explorer.New(opts)

		pollers[cur.Code] = NewPoller(cur, client, addrRepo, txRepo, monitor, log)
		currencies = append(currencies, cur.Code)
		providers[cur.Code] = cur.Provider
	}

	monitor.currencies = currencies
	monitor.providers = providers

	healthServer := NewServer(monitor, cfg.Server.Port)

	return &Service{
		cfg:          cfg,
		pollers:      pollers,
		monitor:      monitor,
		healthServer: healthServer,
		ledger:       ledger,
		db:           db,
		redisClient:  redisClient,
		log:          log,
	}, nil
}

// Ledger exposes the shared rate-limit ledger.
func (s *Service) Ledger() ratelimit.Ledger { return s.ledger }

// Start starts the service and all its components.
func (s *Service) Start(ctx context.Context) error {
	// Start Health Server
	go func() {
		if err := s.healthServer.Start(); err != nil {
			s.log.Error("Health server failed", "error", err)
		}
	}()

	// Start DB Metrics Collector
	if s.db != nil {
		s.db.StartMetricsCollector(ctx)
	}

	// Start Pollers
	for code, poller := range s.pollers {
		s.log.Info("Starting poller", "currency", code)
		go func(code string, p *Poller) {
			if err := p.Run(ctx); err != nil && err != context.Canceled {
				s.log.Error("Poller failed", "currency", code, "error", err)
			}
		}(code, poller)
	}

	return nil
}

// Stop stops the service.
func (s *Service) Stop(ctx context.Context) error {
	s.log.Info("Stopping service...")

	if s.redisClient != nil {
		if err := s.redisClient.Close(); err != nil {
			s.log.Warn("Failed to close Redis", "error", err)
		}
	}

	if s.db != nil {
		if err := s.db.Close(); err != nil {
			s.log.Warn("Failed to close database", "error", err)
		}
	}

	return s.healthServer.Stop(ctx)
}
