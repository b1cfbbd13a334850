package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"

	"github.com/securitycam/central/internal/api"
	"github.com/securitycam/central/internal/cache"
	"github.com/securitycam/central/internal/config"
	"github.com/securitycam/central/internal/data"
	"github.com/securitycam/central/internal/metrics"
	"github.com/securitycam/central/internal/notify"
	"github.com/securitycam/central/internal/ratelimit"
	"github.com/securitycam/central/internal/storage"
)

const (
	exitFailure       = 1
	exitMisconfigured = 2
	exitStorageDown   = 3
)

const cameraCacheSize = 256

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	log.SetPrefix("[server] ")

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Printf("configuration error: %v", err)
		os.Exit(exitMisconfigured)
	}

	db, err := data.Open(cfg.Database, cfg.Pool)
	if err != nil {
		log.Printf("database: %v", err)
		os.Exit(exitStorageDown)
	}
	defer db.Close()

	if err := data.Ping(context.Background(), db, cfg.Pool.AcquireTimeout()); err != nil {
		log.Printf("database unreachable: %v", err)
		os.Exit(exitStorageDown)
	}

	root := storage.Root{Path: cfg.Storage.Path}
	if _, err := os.Stat(root.Path); err != nil {
		log.Printf("storage root %s: %v", root.Path, err)
		os.Exit(exitStorageDown)
	}

	cameras := data.CameraModel{DB: db}
	events := data.EventModel{DB: db}
	logs := data.LogModel{DB: db}
	stats := data.StatsModel{DB: db}

	cameraCache, err := cache.NewCameras(cameras, cameraCacheSize)
	if err != nil {
		log.Printf("camera cache: %v", err)
		os.Exit(exitFailure)
	}

	var limiter *ratelimit.Limiter
	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr})
		defer rdb.Close()
		limiter = ratelimit.NewLimiter(rdb)
		log.Printf("rate limiting enabled via redis at %s", cfg.Redis.Addr)
	}

	publisher, err := notify.Connect(cfg.NATS.URL, cfg.NATS.SubjectPrefix, "central-server")
	if err != nil {
		log.Printf("nats: %v (continuing without notifications)", err)
	}
	defer publisher.Close()

	m := metrics.New()

	router := api.NewRouter(api.Handlers{
		Cameras: &api.CameraHandler{Cameras: cameras, Stats: stats, Cache: cameraCache, Root: root},
		Events:  &api.EventHandler{Events: events, Cache: cameraCache, Notify: publisher},
		Logs:    &api.LogHandler{Logs: logs},
		Health:  &api.HealthHandler{DB: db, ProbeTimeout: 2 * time.Second},
		Stats:   &api.StatsHandler{Stats: stats},

		Metrics: m,
		Limiter: limiter,
		LimiterConfig: ratelimit.Config{
			Rate:   cfg.Redis.Rate,
			Window: time.Duration(cfg.Redis.WindowSeconds) * time.Second,
		},
		AllowedOrigins: cfg.HTTP.AllowedOrigins,
		RequestTimeout: cfg.HTTP.RequestTimeout(),
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Retention.MaxDays > 0 {
		go runRetention(ctx, events, logs, cfg.Retention.MaxDays)
	}

	srv := &http.Server{
		Addr:        cfg.HTTP.Addr(),
		Handler:     router,
		ReadTimeout: 15 * time.Second,
		IdleTimeout: 60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("listening on %s", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		log.Printf("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("shutdown: %v", err)
		}
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("server: %v", err)
			os.Exit(exitFailure)
		}
	}
}

// runRetention prunes events and logs past the horizon once a day.
func runRetention(ctx context.Context, events data.EventModel, logs data.LogModel, maxDays int) {
	prune := func() {
		cutoff := time.Now().UTC().AddDate(0, 0, -maxDays)

		if n, err := logs.DeleteOlderThan(ctx, cutoff); err != nil {
			log.Printf("retention: prune logs: %v", err)
		} else if n > 0 {
			log.Printf("retention: pruned %d log lines older than %s", n, cutoff.Format(time.DateOnly))
		}
		if n, err := events.DeleteOlderThan(ctx, cutoff); err != nil {
			log.Printf("retention: prune events: %v", err)
		} else if n > 0 {
			log.Printf("retention: pruned %d events older than %s", n, cutoff.Format(time.DateOnly))
		}
	}

	prune()
	ticker := time.NewTicker(24 * time.Hour)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			prune()
		}
	}
}
