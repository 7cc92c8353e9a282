package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"photogrid/internal/cachestore"
	"photogrid/internal/decode"
	"photogrid/internal/gallery"
	"photogrid/internal/handlers"
	"photogrid/internal/logging"
	"photogrid/internal/memory"
	"photogrid/internal/middleware"
	"photogrid/internal/pipeline"
	"photogrid/internal/settings"
	"photogrid/internal/source"
	"photogrid/internal/startup"
	"photogrid/internal/workers"
)

func main() {
	startTime := time.Now()

	// Before any significant allocations.
	memory.ConfigureFromEnv()

	config, err := startup.LoadConfig()
	if err != nil {
		startup.LogFatal("Configuration error: %v", err)
	}

	ctx := context.Background()

	storeStart := time.Now()
	store, err := cachestore.Open(ctx, config.CachePath)
	if err != nil {
		startup.LogFatal("Failed to open cache store: %v", err)
	}
	defer store.Close()
	logging.Info("Cache store ready in %v", time.Since(storeStart))

	decode.InitVips()
	defer decode.ShutdownVips()

	monitor := memory.NewMonitor(memory.DefaultConfig())
	monitor.Start()

	decoder := decode.NewDecoder(store)
	pool := decode.NewPool(workers.ForCPU(8), decoder.Decode, monitor)
	pipe := pipeline.New(pool, decoder.Decode,
		pipeline.WithPreloadThrottle(monitor.ShouldThrottle))

	src := source.New(config.MediaDir)
	if config.WatchEnabled {
		if err := src.Watch(); err != nil {
			logging.Warn("Filesystem watcher unavailable: %v", err)
		}
	}

	saver := settings.NewSaver(store, config.WidgetID)

	engine, err := gallery.New(ctx, src, pipe, saver)
	if err != nil {
		startup.LogFatal("Failed to start gallery engine: %v", err)
	}
	go engine.Run(config.FrameInterval)

	router := mux.NewRouter()
	handlers.New(engine, src, store).RegisterRoutes(router)
	startup.LogHTTPRoutes(router, config.LogStaticFiles, config.LogHealthChecks)

	loggingConfig := middleware.DefaultLoggingConfig()
	loggingConfig.LogStaticFiles = config.LogStaticFiles
	loggingConfig.LogHealthChecks = config.LogHealthChecks
	handler := middleware.Logger(loggingConfig)(router)
	handler = middleware.Metrics(middleware.DefaultMetricsConfig())(handler)
	handler = middleware.Compression(middleware.DefaultCompressionConfig())(handler)

	srv := &http.Server{
		Addr:         ":" + config.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 0, // media streaming has no bounded duration
		IdleTimeout:  60 * time.Second,
	}

	var metricsSrv *http.Server
	if config.MetricsEnabled {
		metricsMux := http.NewServeMux()
		metricsMux.Handle("/metrics", promhttp.Handler())
		metricsSrv = &http.Server{
			Addr:         ":" + config.MetricsPort,
			Handler:      metricsMux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
		}
		go func() {
			if err := metricsSrv.ListenAndServe(); err != http.ErrServerClosed {
				logging.Error("Metrics server error: %v", err)
			}
		}()
	}

	go handleShutdown(srv, metricsSrv, engine, src, pipe, pool, monitor, saver)

	startup.LogServerStarted(startup.ServerConfig{
		Port:            config.Port,
		MetricsPort:     config.MetricsPort,
		MetricsEnabled:  config.MetricsEnabled,
		StartupDuration: time.Since(startTime),
	})
	if err := srv.ListenAndServe(); err != http.ErrServerClosed {
		startup.LogFatal("Server error: %v", err)
	}
}

func handleShutdown(srv, metricsSrv *http.Server, engine *gallery.Engine,
	src *source.Source, pipe *pipeline.Pipeline, pool *decode.Pool,
	monitor *memory.Monitor, saver *settings.Saver) {

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan

	startup.LogShutdownInitiated(sig.String())

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	startup.LogShutdownStep("Stopping filesystem watcher")
	src.Stop()
	startup.LogShutdownStepComplete("Filesystem watcher stopped")

	startup.LogShutdownStep("Stopping gallery engine")
	engine.Stop()
	startup.LogShutdownStepComplete("Gallery engine stopped")

	startup.LogShutdownStep("Stopping load pipeline")
	pipe.Stop()
	pool.Stop()
	monitor.Stop()
	startup.LogShutdownStepComplete("Load pipeline stopped")

	startup.LogShutdownStep("Flushing view state")
	if err := saver.Flush(ctx); err != nil {
		logging.Warn("View state flush error: %v", err)
	}
	startup.LogShutdownStepComplete("View state flushed")

	startup.LogShutdownStep("Shutting down HTTP server")
	if metricsSrv != nil {
		if err := metricsSrv.Shutdown(ctx); err != nil {
			logging.Warn("Metrics server shutdown error: %v", err)
		}
	}
	if err := srv.Shutdown(ctx); err != nil {
		logging.Warn("Server shutdown error: %v", err)
	} else {
		startup.LogShutdownStepComplete("HTTP server stopped")
	}

	startup.LogShutdownComplete()
}
