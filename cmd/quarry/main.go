package main

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/veldtlabs/quarry/internal/adapters/driven/config/file"
	"github.com/veldtlabs/quarry/internal/adapters/driven/embedding/openai"
	llmopenai "github.com/veldtlabs/quarry/internal/adapters/driven/llm/openai"
	"github.com/veldtlabs/quarry/internal/adapters/driven/store/sqlite"
	"github.com/veldtlabs/quarry/internal/adapters/driving/cli"
	"github.com/veldtlabs/quarry/internal/core/services"
	"github.com/veldtlabs/quarry/internal/crawler"
	"github.com/veldtlabs/quarry/internal/extractors"
	"github.com/veldtlabs/quarry/internal/logger"
	"github.com/veldtlabs/quarry/internal/tokenizer"
)

// version is overridden at build time via -ldflags.
var version = "0.1.0"

func main() {
	_ = godotenv.Load()

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := file.NewConfigStore("")
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		apiKey = cfg.GetString("openai.api_key")
	}

	cli.SetVersion(version)

	// Commands that need no backing services (version, help) must work
	// without credentials. Service-backed commands report their own
	// "not configured" error when the key is absent.
	if apiKey != "" {
		if err := wireServices(cfg, apiKey); err != nil {
			return err
		}
	} else {
		logger.Warn("OPENAI_API_KEY not set; ingest and query are unavailable")
	}

	return cli.Execute()
}

func wireServices(cfg *file.ConfigStore, apiKey string) error {
	store, err := sqlite.NewStore(cfg.GetString("store.data_dir"))
	if err != nil {
		return fmt.Errorf("opening vector store: %w", err)
	}

	embedder, err := openai.NewEmbeddingService(openai.Config{
		APIKey:  apiKey,
		BaseURL: os.Getenv("OPENAI_BASE_URL"),
		Model:   cfg.GetString("openai.embedding_model"),
	})
	if err != nil {
		return fmt.Errorf("configuring embeddings: %w", err)
	}

	llm, err := llmopenai.NewCompletionService(llmopenai.Config{
		APIKey:  apiKey,
		BaseURL: os.Getenv("OPENAI_BASE_URL"),
		Model:   cfg.GetString("openai.completion_model"),
	})
	if err != nil {
		return fmt.Errorf("configuring completions: %w", err)
	}

	interval := crawler.DefaultFetchInterval
	if ms := cfg.GetInt("crawler.fetch_interval_ms"); ms > 0 {
		interval = time.Duration(ms) * time.Millisecond
	}
	limiter := crawler.NewRateLimiter(interval)
	fetcher := crawler.NewHTTPFetcher(0)

	ingest := services.NewIngestCoordinator(
		fetcher,
		limiter,
		extractors.DefaultRegistry(),
		tokenizer.New(),
		embedder,
		store,
	)
	query := services.NewRetrievalRanker(embedder, store, llm)

	cli.SetServices(ingest, query)
	return nil
}
