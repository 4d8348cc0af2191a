package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/dvloznov/spendsense/internal/api/handlers"
	"github.com/dvloznov/spendsense/internal/api/middleware"
	"github.com/dvloznov/spendsense/internal/config"
	"github.com/dvloznov/spendsense/internal/gcs"
	"github.com/dvloznov/spendsense/internal/insights"
	"github.com/dvloznov/spendsense/internal/jobs/inmemory"
	"github.com/dvloznov/spendsense/internal/logger"
)

func main() {
	// Parse command-line flags
	configPath := flag.String("config", os.Getenv("SPENDSENSE_CONFIG"), "path to YAML config file (or set SPENDSENSE_CONFIG env)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log := logger.New()
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log, err := logger.NewWithOptions(os.Stdout, logger.Options{Level: cfg.Log.Level, Format: cfg.Log.Format})
	if err != nil {
		log = logger.New()
		log.Fatal().Err(err).Msg("Failed to create logger")
	}

	ctx := context.Background()

	// Object storage is needed for GCS-backed ledgers and export archiving
	var objects *gcs.Client
	if cfg.Ledger.Source == config.SourceGCS || cfg.Export.GCSPrefix != "" {
		objects, err = gcs.NewClient(ctx)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create storage client")
		}
		defer objects.Close()
	}

	var store gcs.ObjectStore
	if objects != nil {
		store = objects
	}
	source, closeSource, err := insights.OpenSource(ctx, cfg.Ledger, store)
	if err != nil {
		log.Fatal().Err(err).Str("source", cfg.Ledger.Source).Msg("Failed to open ledger source")
	}
	defer closeSource()

	// Initialize job infrastructure
	jobStore := inmemory.NewStore()
	jobQueue := inmemory.NewQueue(cfg.Export.QueueSize, jobStore, inmemory.WithWorkers(cfg.Export.Workers))

	workerCtx, cancelWorker := context.WithCancel(logger.WithContext(ctx, log.With().Str("component", "archive").Logger()))
	defer cancelWorker()

	opts := []insights.Option{}
	if cfg.Export.GCSPrefix != "" {
		if err := jobQueue.Start(workerCtx, insights.ArchiveHandler(objects)); err != nil {
			log.Fatal().Err(err).Msg("Failed to start archive workers")
		}
		opts = append(opts, insights.WithArchive(jobQueue, cfg.Export.GCSPrefix, cfg.Export.MaxRetries))
		log.Info().Str("prefix", cfg.Export.GCSPrefix).Int("workers", cfg.Export.Workers).Msg("Export archiving enabled")
	} else {
		log.Warn().Msg("No export prefix configured - exports will not be archived")
	}

	svc := insights.NewService(source, cfg.Signals.WindowDays, log, opts...)

	// Metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := middleware.NewMetrics(registry)

	// Initialize handlers
	insightsHandler := handlers.NewInsightsHandler(svc, metrics, log)
	jobsHandler := handlers.NewJobsHandler(jobStore, log)

	r := newRouter(log, metrics, registry, insightsHandler, jobsHandler)

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start server in a goroutine
	go func() {
		log.Info().
			Str("port", cfg.Server.Port).
			Str("ledger_source", cfg.Ledger.Source).
			Int("window_days", cfg.Signals.WindowDays).
			Msg("Starting API server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	// Stop job queue and wait for in-flight archive writes
	if err := jobQueue.Stop(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Error stopping job queue")
	}
	cancelWorker()

	log.Info().Msg("Server exited")
}

func newRouter(log zerolog.Logger, metrics *middleware.Metrics, gatherer prometheus.Gatherer, insightsHandler *handlers.InsightsHandler, jobsHandler *handlers.JobsHandler) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.Recovery(log))
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(log))
	r.Use(metrics.Handler)
	r.Use(middleware.CORS)
	r.Use(chimw.Compress(5))

	r.Get("/health", handlers.Health)
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	r.Route("/api", func(r chi.Router) {
		r.Route("/users/{userID}", func(r chi.Router) {
			r.Get("/signals", insightsHandler.GetSignals)
			r.Get("/persona", insightsHandler.GetPersona)
			r.Post("/what-if", insightsHandler.RunScenario)
			r.Post("/what-if/compare", insightsHandler.CompareScenarios)
			r.Post("/what-if/export", insightsHandler.ExportScenario)
		})

		r.Get("/jobs", jobsHandler.ListJobs)
		r.Get("/jobs/{jobID}", jobsHandler.GetJob)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		middleware.WriteError(w, http.StatusNotFound, "Not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
	})

	return r
}
