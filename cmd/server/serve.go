package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/BerylCAtieno/resume-analyzer-api/internal/analyzer"
	"github.com/BerylCAtieno/resume-analyzer-api/internal/config"
	"github.com/BerylCAtieno/resume-analyzer-api/internal/db"
	"github.com/BerylCAtieno/resume-analyzer-api/internal/events"
	"github.com/BerylCAtieno/resume-analyzer-api/internal/handlers"
	"github.com/BerylCAtieno/resume-analyzer-api/internal/llm"
	"github.com/BerylCAtieno/resume-analyzer-api/internal/quota"
	"github.com/BerylCAtieno/resume-analyzer-api/internal/repository"
	"github.com/BerylCAtieno/resume-analyzer-api/internal/router"
	"github.com/BerylCAtieno/resume-analyzer-api/internal/services"
	"github.com/BerylCAtieno/resume-analyzer-api/internal/storage"
	"github.com/BerylCAtieno/resume-analyzer-api/internal/utils"

	"github.com/spf13/cobra"
)

const (
	shutdownTimeout   = 30 * time.Second
	readHeaderTimeout = 10 * time.Second

	// A client uploading slower than minUploadRate is cut off once the
	// grace period is used up.
	minUploadRate = 32 << 10
	uploadGrace   = 30 * time.Second
)

// uploadReadTimeout is how long a request body of maxFileSize may take to
// arrive at minUploadRate.
func uploadReadTimeout(maxFileSize int64) time.Duration {
	if maxFileSize < 0 {
		maxFileSize = 0
	}
	return uploadGrace + time.Duration(maxFileSize/minUploadRate)*time.Second
}

// newHTTPServer sizes the body read deadline to the upload limit. The write
// deadline starts with the body read, so it also covers the upload.
func newHTTPServer(cfg *config.Config, handler http.Handler) *http.Server {
	readTimeout := uploadReadTimeout(cfg.MaxFileSize)

	return &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: readHeaderTimeout,
		ReadTimeout:       readTimeout,
		WriteTimeout:      readTimeout + cfg.AnalysisTimeout + 15*time.Second,
		IdleTimeout:       60 * time.Second,
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(envFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	if port != "" {
		cfg.Port = port
	}

	logger := utils.NewLogger(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	stager, err := newStager(ctx, cfg)
	if err != nil {
		return err
	}

	store, storeCloser, err := newQuotaStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer storeCloser.Close()

	publisher, err := newPublisher(cfg, logger)
	if err != nil {
		return err
	}
	defer publisher.Close()

	client := llm.NewOpenRouterClient(llm.Options{
		APIKey:     cfg.LLMAPIKey,
		BaseURL:    cfg.LLMBaseURL,
		Model:      cfg.LLMModel,
		AppTitle:   "Resume Analyzer",
		Referer:    firstOrigin(cfg.AllowedOrigins),
		MaxRetries: cfg.LLMMaxRetries,
	}, logger)

	resumeAnalyzer := analyzer.NewResumeAnalyzer(client, analyzer.Options{
		MaxTokens:     cfg.LLMMaxTokens,
		Temperature:   cfg.LLMTemperature,
		Timeout:       cfg.AnalysisTimeout,
		MaxInputChars: cfg.LLMMaxInputChars,
	}, logger)

	resumeService := services.NewService(services.Dependencies{
		Stager:      stager,
		Quota:       store,
		Analyzer:    resumeAnalyzer,
		Publisher:   publisher,
		Logger:      logger,
		MaxFileSize: cfg.MaxFileSize,
	})

	handler := router.NewRouter(resumeService, router.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		MaxFileSize:    cfg.MaxFileSize,
		ReadyChecks: map[string]handlers.Checker{
			"quota":   store.Ping,
			"staging": stager.Check,
		},
	}, logger)

	srv := newHTTPServer(cfg, handler)

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting server",
			"port", cfg.Port,
			"staging", cfg.StagingBackend,
			"quota", cfg.QuotaBackend,
			"model", cfg.LLMModel)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	logger.Info("Server exited")
	return nil
}

func newStager(ctx context.Context, cfg *config.Config) (storage.Stager, error) {
	switch cfg.StagingBackend {
	case config.StagingS3:
		stager, err := storage.NewS3Stager(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize S3 staging: %w", err)
		}
		return stager, nil
	default:
		stager, err := storage.NewDiskStager(cfg.UploadDir)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize upload directory: %w", err)
		}
		return stager, nil
	}
}

type closerFunc func() error

func (f closerFunc) Close() error { return f() }

// newQuotaStore opens the configured quota backend. The returned closer
// releases its connections.
func newQuotaStore(ctx context.Context, cfg *config.Config) (quota.Store, io.Closer, error) {
	switch cfg.QuotaBackend {
	case config.QuotaSQLite:
		database, err := db.Open(cfg.DatabaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open quota database: %w", err)
		}
		return repository.NewQuotaRepository(database), database, nil
	case config.QuotaRedis:
		store, err := quota.NewRedisStore(ctx, cfg.RedisURL)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		return store, store, nil
	default:
		return quota.NewMemoryStore(), closerFunc(func() error { return nil }), nil
	}
}

func newPublisher(cfg *config.Config, logger *utils.Logger) (events.Publisher, error) {
	if cfg.AMQPURL == "" {
		return events.NopPublisher{}, nil
	}

	publisher, err := events.NewAMQPPublisher(cfg.AMQPURL, cfg.AMQPExchange)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize event publisher: %w", err)
	}
	logger.Info("Publishing analysis events", "exchange", cfg.AMQPExchange)
	return publisher, nil
}

func firstOrigin(origins []string) string {
	if len(origins) == 0 {
		return ""
	}
	return origins[0]
}
