package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"loan-referral/config"
	"loan-referral/format"
	httpLayer "loan-referral/http"
	"loan-referral/metrics"
	"loan-referral/repository"
	"loan-referral/service"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			logger, err := newLogger(cfg.Log)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg, logger)
		},
	}
}

func serve(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(reg)

	var (
		cache    repository.CacheRepository = repository.NewMockCache()
		sessions repository.SessionStore    = repository.NewMemorySessionStore()
	)
	if cfg.Redis.Addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer client.Close()
		if err := client.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("redis %s: %w", cfg.Redis.Addr, err)
		}
		cache = repository.NewRedisCache(client, cfg.Redis.KeyPrefix, logger)
		sessions = repository.NewRedisSessionStore(client, cfg.Redis.KeyPrefix)
		logger.Info("using redis", zap.String("addr", cfg.Redis.Addr))
	} else {
		logger.Warn("redis not configured, sessions and cache are in memory")
	}

	formatter, err := format.New(cfg.Currency.Locale, cfg.Currency.Code, cfg.Currency.Symbol)
	if err != nil {
		return err
	}

	leadAPI := repository.NewLeadAPIClient(repository.LeadAPIConfig{
		BaseURL:         cfg.LeadAPI.BaseURL,
		CustomerPath:    cfg.LeadAPI.CustomerPath,
		ApplicationPath: cfg.LeadAPI.ApplicationPath,
		Timeout:         cfg.LeadAPI.Timeout,
	}, logger)
	leads := repository.NewLeadRepositoryMemory()

	engine := service.AmortizationEngine{AllowZeroRate: cfg.EMI.AllowZeroRate}
	amortization := service.NewAmortizationService(engine, cache, cfg.EMI.CacheTTL, logger, m)
	leadService := service.NewLeadService(leadAPI, leads, cfg.Form.SubmitTimeout, logger, m)
	appService := service.NewApplicationService(sessions, leadAPI, leads, service.ApplicationConfig{
		SessionTTL:    cfg.Form.SessionTTL,
		SubmitTimeout: cfg.Form.SubmitTimeout,
	}, logger, m)

	limiter := httpLayer.NewRateLimiter(cfg.RateLimit.Capacity, cfg.RateLimit.Refill)
	defer limiter.Stop()

	server := &http.Server{
		Addr: cfg.Server.Addr,
		Handler: httpLayer.NewRouter(httpLayer.RouterConfig{
			Loans:        httpLayer.NewLoanHandler(amortization, service.NewTenureService(engine), formatter),
			Leads:        httpLayer.NewLeadHandler(leadService),
			Applications: httpLayer.NewApplicationHandler(appService),
			Limiter:      limiter,
			Metrics:      m,
			Gatherer:     reg,
			Logger:       logger,
		}),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("api listening", zap.String("addr", cfg.Server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return err
	}
	logger.Info("server exited")
	return nil
}
