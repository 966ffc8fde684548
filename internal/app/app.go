// Package app provides the unified application lifecycle management for Intakegrid.
package app

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	httpapi "github.com/intakegrid/intakegrid/internal/api/http"
	"github.com/intakegrid/intakegrid/internal/archive"
	"github.com/intakegrid/intakegrid/internal/config"
	"github.com/intakegrid/intakegrid/internal/grid"
	"github.com/intakegrid/intakegrid/internal/importer"
	"github.com/intakegrid/intakegrid/internal/server"
	"github.com/intakegrid/intakegrid/internal/storage"
)

// App manages the Intakegrid service lifecycle.
type App struct {
	cfg *config.Config

	// Shared resources
	storage  storage.ObjectStorage
	store    grid.Store
	archiver *archive.Archiver
	importer *importer.Importer
	shutdown *server.ShutdownManager

	httpServer *http.Server

	// Lifecycle
	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// New creates a new App with the given configuration.
func New(cfg *config.Config) (*App, error) {
	cfg.Resolve()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("failed to create directories: %w", err)
	}

	return &App{
		cfg: cfg,
	}, nil
}

// Start initializes shared resources and starts the HTTP server.
func (a *App) Start(ctx context.Context) error {
	a.mu.Lock()
	if a.running {
		a.mu.Unlock()
		return fmt.Errorf("app is already running")
	}
	a.running = true
	a.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	a.cancel = cancel

	if err := a.initSharedResources(); err != nil {
		a.cleanup()
		return fmt.Errorf("failed to initialize shared resources: %w", err)
	}

	if err := a.startHTTPServer(ctx); err != nil {
		a.cleanup()
		return fmt.Errorf("failed to start HTTP server: %w", err)
	}

	log.Printf("Intakegrid started")
	return nil
}

// initSharedResources initializes storage, the grid store, the archiver,
// the importer, and the shutdown manager.
func (a *App) initSharedResources() error {
	var err error

	switch a.cfg.Storage.Type {
	case "local":
		a.storage, err = storage.NewLocalStorage(a.cfg.Storage.Path)
	case "s3":
		s3Cfg := storage.DefaultS3Config()
		if a.cfg.Storage.S3.Region != "" {
			s3Cfg.Region = a.cfg.Storage.S3.Region
		}
		if a.cfg.Storage.S3.Endpoint != "" {
			s3Cfg.Endpoint = a.cfg.Storage.S3.Endpoint
		}
		a.storage, err = storage.NewS3Storage(
			context.Background(),
			a.cfg.Storage.S3.Bucket,
			s3Cfg,
		)
	default:
		return fmt.Errorf("unsupported storage type: %s", a.cfg.Storage.Type)
	}
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	log.Printf("Storage initialized: type=%s", a.cfg.Storage.Type)
	if a.cfg.Storage.Type == "s3" {
		log.Printf("S3 Config: Bucket=%s, Region=%s, Endpoint=%s",
			a.cfg.Storage.S3.Bucket, a.cfg.Storage.S3.Region, a.cfg.Storage.S3.Endpoint)
	}

	a.store, err = grid.NewStore(a.cfg.Import.GridDBPath)
	if err != nil {
		return fmt.Errorf("failed to initialize grid store: %w", err)
	}
	log.Printf("Grid store initialized: %s", a.cfg.Import.GridDBPath)

	if a.cfg.Archive.Enabled {
		a.archiver = archive.NewArchiver(a.storage, a.cfg.Archive.WorkDir)
		log.Printf("Snapshot archive enabled: staging in %s", a.cfg.Archive.WorkDir)
	} else {
		log.Printf("Snapshot archive disabled")
	}

	a.importer = importer.New(a.store, a.archiver)

	shutdownConfig := server.DefaultShutdownConfig()
	a.shutdown = server.NewShutdownManager(shutdownConfig)
	a.shutdown.RegisterCloser(server.CloserFunc(func() error {
		return a.store.Close()
	}))

	return nil
}

// startHTTPServer starts the API server.
func (a *App) startHTTPServer(ctx context.Context) error {
	importHandler := httpapi.NewImportHandler(a.importer)
	previewHandler := httpapi.NewPreviewHandler(a.importer)
	gridsHandler := httpapi.NewGridsHandler(a.store)

	mux := http.NewServeMux()
	middleware := httpapi.ChainMiddleware(
		server.ShutdownMiddleware(a.shutdown),
		httpapi.RecoveryMiddleware,
		httpapi.RequestIDMiddleware,
		httpapi.ContentTypeMiddleware,
	)
	mux.Handle("/v1/import", middleware(importHandler))
	mux.Handle("/v1/preview", middleware(previewHandler))
	mux.Handle("/v1/grids", middleware(gridsHandler))
	mux.Handle("/v1/grids/", middleware(gridsHandler))
	mux.HandleFunc("/health", a.healthHandler("intakegrid"))

	a.httpServer = &http.Server{
		Addr:         a.cfg.HTTP.Addr,
		Handler:      mux,
		ReadTimeout:  a.cfg.HTTP.ReadTimeout,
		WriteTimeout: a.cfg.HTTP.WriteTimeout,
		IdleTimeout:  a.cfg.HTTP.IdleTimeout,
	}

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		log.Printf("HTTP server listening on %s", a.cfg.HTTP.Addr)
		if err := a.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("HTTP server error: %v", err)
		}
	}()

	return nil
}

// Stop gracefully stops the service and releases resources.
func (a *App) Stop(ctx context.Context) error {
	a.mu.Lock()
	if !a.running {
		a.mu.Unlock()
		return nil
	}
	a.running = false
	a.mu.Unlock()

	log.Printf("Initiating graceful shutdown...")

	if a.cancel != nil {
		a.cancel()
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if a.httpServer != nil {
		if err := a.httpServer.Shutdown(shutdownCtx); err != nil {
			log.Printf("HTTP server shutdown error: %v", err)
		}
	}

	done := make(chan struct{})
	go func() {
		a.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-shutdownCtx.Done():
		log.Printf("Shutdown timeout, some goroutines may not have finished")
	}

	a.cleanup()

	log.Printf("Intakegrid stopped")
	return nil
}

// cleanup releases all shared resources.
func (a *App) cleanup() {
	if a.store != nil {
		a.store.Close()
	}
}

// Importer returns the configured import pipeline.
func (a *App) Importer() *importer.Importer {
	return a.importer
}

// Store returns the configured grid store.
func (a *App) Store() grid.Store {
	return a.store
}

// healthHandler returns a health check handler for the given service.
func (a *App) healthHandler(service string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, `{"status":"healthy","service":"%s"}`, service)
	}
}

// WaitForShutdown blocks until a shutdown signal is received.
func (a *App) WaitForShutdown(ctx context.Context) error {
	return a.shutdown.ListenForSignals(ctx)
}
