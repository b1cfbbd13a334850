package main

import (
	"context"
	"flag"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/lib/pq"

	"github.com/securitycam/central/internal/config"
	"github.com/securitycam/central/internal/data"
	"github.com/securitycam/central/internal/media"
	"github.com/securitycam/central/internal/metrics"
	"github.com/securitycam/central/internal/notify"
	"github.com/securitycam/central/internal/runfile"
	"github.com/securitycam/central/internal/storage"
	"github.com/securitycam/central/internal/worker"
)

const (
	exitFailure       = 1
	exitMisconfigured = 2
	exitStorageDown   = 3
)

const workerName = "convertd"

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	metricsAddr := flag.String("metrics-addr", "", "optional address to serve /metrics on")
	flag.Parse()

	log.SetPrefix("[" + workerName + "] ")

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Printf("configuration error: %v", err)
		os.Exit(exitMisconfigured)
	}

	logFile, err := runfile.OpenLog(cfg.Logging.Dir, workerName)
	if err != nil {
		log.Printf("open run log: %v", err)
		os.Exit(exitFailure)
	}
	defer logFile.Close()
	log.SetOutput(io.MultiWriter(os.Stderr, logFile))

	if err := runfile.WritePID(cfg.Run.Dir, workerName); err != nil {
		log.Printf("%v", err)
		os.Exit(exitFailure)
	}
	defer runfile.RemovePID(cfg.Run.Dir, workerName)

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

	publisher, err := notify.Connect(cfg.NATS.URL, cfg.NATS.SubjectPrefix, "central-"+workerName)
	if err != nil {
		log.Printf("nats: %v (continuing without notifications)", err)
	}
	defer publisher.Close()

	m := metrics.New()
	if *metricsAddr != "" {
		go serveMetrics(*metricsAddr, m)
	}

	converter := &worker.Converter{
		Store:    data.EventModel{DB: db},
		Trans:    media.NewTranscoder(cfg.Workers.FFmpegPath, cfg.Workers.FFprobePath),
		Root:     root,
		Notify:   publisher,
		Metrics:  m,
		Claimant: worker.Claimant(workerName),

		BatchSize:       cfg.Workers.BatchSize,
		Quiescence:      cfg.Workers.Quiescence(),
		ReclaimHorizon:  cfg.Workers.ReclaimHorizon(),
		PerEventTimeout: cfg.Workers.PerEventTimeout(),
		RetainH264:      cfg.Workers.RetainH264,
	}

	runner := worker.Runner{
		Proc:       converter,
		IdleMin:    cfg.Workers.PollIdle(),
		IdleMax:    cfg.Workers.PollIdleMax(),
		StaleEvery: cfg.Workers.ReclaimHorizon(),
	}

	// New .h264 arrivals wake the loop instead of waiting out the backoff.
	if watcher, err := storage.NewWatcher(root); err != nil {
		log.Printf("storage watcher disabled: %v", err)
	} else {
		defer watcher.Close()
		runner.Wake = watcher.Wake()
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	runner.Run(ctx)
}

func serveMetrics(addr string, m *metrics.Metrics) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Printf("metrics listener: %v", err)
	}
}
