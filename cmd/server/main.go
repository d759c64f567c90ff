package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	kitlog "github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/vecindario/adserver/internal/cache"
	"github.com/vecindario/adserver/internal/config"
	"github.com/vecindario/adserver/internal/database"
	"github.com/vecindario/adserver/internal/endpoint"
	"github.com/vecindario/adserver/internal/kv"
	"github.com/vecindario/adserver/internal/logger"
	"github.com/vecindario/adserver/internal/metrics"
	"github.com/vecindario/adserver/internal/middleware"
	"github.com/vecindario/adserver/internal/notify"
	"github.com/vecindario/adserver/internal/repository"
	"github.com/vecindario/adserver/internal/service"
	"github.com/vecindario/adserver/internal/storage"
	"github.com/vecindario/adserver/internal/transport"
)

const VERSION = "1.0.0"

func init() {
	config.LoadConfigs()
}

func main() {
	cfg := &config.AppConfigInstance

	log := logger.New(logger.Config{
		Service: "adserver",
		Version: VERSION,
		Level:   cfg.GeneralConfig.LogLevel,
	})
	transport.Version = VERSION

	m := metrics.NewPrometheusMetrics()

	// Repositories. When the database is unreachable (local development,
	// tests against the binary) the server falls back to the seeded
	// in-memory repository instead of refusing to start.
	var (
		adRepo          service.AdRepository
		userRepo        service.UserRepository
		campaignRepo    service.CampaignRepository
		residentialRepo service.ResidentialRepository
	)

	db, cleanup, err := database.Initialize(cfg.DatabaseConfig, "migrations")
	if err != nil {
		level.Warn(log).Log("msg", "database unavailable, using in-memory data", "err", err)
		mock := repository.NewMockRepository()
		adRepo, userRepo, campaignRepo, residentialRepo = mock, mock, mock, mock
		m.SetHealthCheckStatus("database", false)
	} else {
		defer cleanup()
		pg := repository.NewPostgresRepository(db)
		adRepo = repository.NewInstrumentedAdRepository(pg, m)
		userRepo = pg
		campaignRepo = repository.NewInstrumentedCampaignRepository(pg, m)
		residentialRepo = pg
		m.SetHealthCheckStatus("database", true)
	}

	// Cache tiers: memory first, Redis behind it when reachable.
	var tiers []kv.Store
	var shared kv.Store

	if cfg.CacheConfig.EnableMemory {
		mem := kv.NewMemoryStore()
		defer mem.Close()
		tiers = append(tiers, mem)
		shared = mem
	}
	if cfg.CacheConfig.EnableRedis {
		rs, err := kv.NewRedisStore(kv.RedisConfig{
			Addr:     cfg.CacheConfig.RedisAddr,
			Password: cfg.CacheConfig.RedisPassword,
			DB:       cfg.CacheConfig.RedisDB,
		})
		if err != nil {
			level.Warn(log).Log("msg", "redis unavailable, continuing without it", "err", err)
			m.SetHealthCheckStatus("redis", false)
		} else {
			defer rs.Close()
			tiers = append(tiers, rs)
			shared = rs
			m.SetHealthCheckStatus("redis", true)
		}
	}
	if len(tiers) == 0 {
		// Snapshots need at least one tier to be useful.
		mem := kv.NewMemoryStore()
		defer mem.Close()
		tiers = append(tiers, mem)
		shared = mem
	}

	snapshots := cache.NewSnapshotCache(tiers...)
	campaignRepo = cache.NewCachedCampaignRepository(campaignRepo, shared, cfg.CacheConfig.CampaignTTL, log)

	objectStorage, err := storage.New(storage.Config{
		Region:       cfg.StorageConfig.Region,
		BaseEndpoint: cfg.StorageConfig.BaseEndpoint,
		Bucket:       cfg.StorageConfig.Bucket,
		AccessKeyID:  cfg.StorageConfig.AccessKeyID,
		SecretKey:    cfg.StorageConfig.SecretKey,
		PublicURL:    cfg.StorageConfig.PublicURL,
	})
	if err != nil {
		level.Error(log).Log("msg", "failed to initialize object storage", "err", err)
		os.Exit(1)
	}

	sender := notify.NewWhatsAppClient(cfg.VerifyConfig.WhatsAppURL, cfg.VerifyConfig.WhatsAppToken)

	adDetail := service.NewAdDetailService(adRepo, userRepo, campaignRepo, snapshots, log)
	adDetail = middleware.NewAdDetailInstrumentingMiddleware(m)(adDetail)
	adDetail = middleware.NewAdDetailLoggingMiddleware(kitlog.With(log, "component", "ad_detail"))(adDetail)

	promo := service.NewPromoService(campaignRepo)
	promo = middleware.NewPromoInstrumentingMiddleware(m)(promo)
	promo = middleware.NewPromoLoggingMiddleware(kitlog.With(log, "component", "promo"))(promo)

	campaigns := service.NewCampaignService(campaignRepo, objectStorage, log)
	verify := service.NewVerifyService(residentialRepo, sender, shared, log)

	endpoints := endpoint.MakeEndpoints(endpoint.Services{
		AdDetail:  adDetail,
		Promo:     promo,
		Campaigns: campaigns,
		Verify:    verify,
		Users:     userRepo,
		Storage:   objectStorage,
	})

	auth := middleware.NewAuthMiddleware(cfg.AuthConfig.JWTSecret)
	handler := transport.NewHTTPHandler(endpoints, auth, promhttp.Handler(), log)
	handler = middleware.NewMetricsMiddleware(m).Middleware(handler)
	handler = middleware.NewRequestIDMiddleware().Middleware(handler)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.GeneralConfig.Port),
		Handler:      handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		level.Info(log).Log("msg", "starting server", "port", cfg.GeneralConfig.Port, "env", cfg.GeneralConfig.Env)
		errCh <- srv.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		level.Error(log).Log("msg", "server failed", "err", err)
		os.Exit(1)
	case sig := <-stop:
		level.Info(log).Log("msg", "shutting down", "signal", sig.String())
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		level.Error(log).Log("msg", "graceful shutdown failed", "err", err)
	}
}
