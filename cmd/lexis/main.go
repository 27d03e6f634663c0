// Command lexis ingests legal documents and retrieves passages from them.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/custodia-labs/lexis/internal/adapters/driven/ai"
	"github.com/custodia-labs/lexis/internal/adapters/driven/config/file"
	"github.com/custodia-labs/lexis/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/lexis/internal/adapters/driven/storage/mongodb"
	"github.com/custodia-labs/lexis/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/lexis/internal/adapters/driving/cli"
	"github.com/custodia-labs/lexis/internal/core/domain"
	"github.com/custodia-labs/lexis/internal/core/ports/driven"
	"github.com/custodia-labs/lexis/internal/core/services"
	"github.com/custodia-labs/lexis/internal/extractors"
	"github.com/custodia-labs/lexis/internal/logger"
	"github.com/custodia-labs/lexis/internal/postprocessors"
)

// version is set at build time via -ldflags "-X main.version=...".
var version = "dev"

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func run() error {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if level := os.Getenv("LEXIS_LOG_LEVEL"); level != "" {
		if l, err := logger.ParseLevel(level); err == nil {
			logger.SetLevel(l)
		}
	}

	configStore, err := file.NewConfigStore("")
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	settingsService := services.NewSettingsService(configStore, ai.NewConfigValidator())

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("reading settings: %w", err)
	}

	docStore, closeStore, err := openDocumentStore(ctx, settings.Storage)
	if err != nil {
		return err
	}
	defer closeStore.Close()

	// A missing embedding provider only disables ingestion and retrieval;
	// config and document commands still work.
	var (
		embedder driven.EmbeddingService
		chat     driven.ChatService
	)
	aiServices, err := ai.Init(ctx, settings, false)
	if err != nil {
		logger.Debug("AI services unavailable: %v", err)
	} else {
		defer aiServices.Close()
		embedder = aiServices.EmbeddingService
		chat = aiServices.ChatService
	}

	processors := postprocessors.NewRegistry()
	postprocessors.RegisterDefaults(processors)
	// A broken pipeline table must not lock the user out of "config set".
	pipeline, err := postprocessors.Build(processors, settingsService.GetPipelineConfig())
	if err != nil {
		logger.Warn("chunk pipeline: %v; using defaults", err)
		if pipeline, err = postprocessors.Build(processors, domain.DefaultPipelineConfig()); err != nil {
			return fmt.Errorf("building chunk pipeline: %w", err)
		}
	}
	logger.Debug("chunk pipeline: %s", pipeline)

	prompts, err := file.NewPromptStore("")
	if err != nil {
		return fmt.Errorf("loading prompts: %w", err)
	}

	ingestion := services.NewIngestionPipeline(docStore, extractors.NewDefaultRegistry(),
		pipeline, embedder, settings.Ingestion.Timeout)
	retrieval := services.NewRetrievalService(docStore, embedder, settings.Retrieval)

	cli.SetVersion(version)
	cli.SetServices(cli.Services{
		Ingestion:   ingestion,
		Retrieval:   retrieval,
		Answer:      services.NewAnswerService(retrieval, chat, prompts),
		Document:    services.NewDocumentService(docStore),
		Settings:    settingsService,
		ConfigStore: configStore,
	})

	return cli.Execute(ctx)
}

// openDocumentStore opens the configured storage backend.
func openDocumentStore(ctx context.Context, cfg domain.StorageSettings) (driven.DocumentStore, io.Closer, error) {
	switch cfg.Backend {
	case domain.StorageMemory:
		logger.Warn("using in-memory storage; documents are lost on exit")
		return memory.NewDocumentStore(), io.NopCloser(nil), nil
	case domain.StorageMongoDB:
		store, err := mongodb.NewStore(ctx, mongodb.Config{
			URI:      cfg.MongoURI,
			Database: cfg.MongoDatabase,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("opening MongoDB store: %w", err)
		}
		return store, store, nil
	case domain.StorageSQLite, "":
		store, err := sqlite.NewStore(cfg.DataDir)
		if err != nil {
			return nil, nil, fmt.Errorf("opening SQLite store: %w", err)
		}
		return store, store, nil
	default:
		return nil, nil, fmt.Errorf("%w: unknown storage backend %q", domain.ErrInvalidInput, cfg.Backend)
	}
}
