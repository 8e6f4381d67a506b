// Command ragserver is a question-answering backend over your own
// documents: ingest PDFs, retrieve relevant passages by embedding
// similarity, and answer questions with cited sources.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/askdocs/ragserver/internal/adapters/driven/archive/httpsnap"
	configfile "github.com/askdocs/ragserver/internal/adapters/driven/config/file"
	embollama "github.com/askdocs/ragserver/internal/adapters/driven/embedding/ollama"
	embopenai "github.com/askdocs/ragserver/internal/adapters/driven/embedding/openai"
	"github.com/askdocs/ragserver/internal/adapters/driven/extractor/pdf"
	llmgroq "github.com/askdocs/ragserver/internal/adapters/driven/llm/groq"
	llmopenai "github.com/askdocs/ragserver/internal/adapters/driven/llm/openai"
	"github.com/askdocs/ragserver/internal/adapters/driven/usagelog/sheets"
	"github.com/askdocs/ragserver/internal/adapters/driven/vector/memory"
	"github.com/askdocs/ragserver/internal/adapters/driving/cli"
	"github.com/askdocs/ragserver/internal/chunker"
	"github.com/askdocs/ragserver/internal/core/domain"
	"github.com/askdocs/ragserver/internal/core/ports/driven"
	"github.com/askdocs/ragserver/internal/core/services"
	"github.com/askdocs/ragserver/internal/logger"
)

// version is set at build time via
// -ldflags "-X main.version=v1.2.3".
var version = "dev"

func main() {
	cli.SetVersion(version)
	cli.SetAppBuilder(buildApp)
	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// buildApp wires adapters and services from the config file. Called
// once per command invocation, after flag parsing.
func buildApp(configPath string) (*cli.App, error) {
	cfg, err := configfile.LoadConfig(configPath)
	if err != nil {
		return nil, err
	}

	settings, err := cfg.Settings()
	if err != nil {
		return nil, err
	}

	embedder, err := buildEmbedder(cfg)
	if err != nil {
		return nil, err
	}

	llm, err := buildLLM(cfg)
	if err != nil {
		return nil, err
	}

	splitter, err := chunker.New(settings.ChunkSize, settings.ChunkOverlap)
	if err != nil {
		return nil, err
	}

	extractor := pdf.New()
	index := memory.New(embedder.Dimensions())
	fetcher := httpsnap.New(httpsnap.Config{DataDir: cfg.Snapshot.DataDir})

	prompts, err := configfile.NewPromptStore("")
	if err != nil {
		return nil, err
	}

	usageLog, err := buildUsageLogger(cfg)
	if err != nil {
		return nil, err
	}

	retriever := services.NewRetriever(embedder, index, settings)
	assembler := services.NewContextAssembler(settings.MaxContextChars)
	synthesizer := services.NewAnswerSynthesizer(llm, prompts, settings)
	query := services.NewQueryService(retriever, assembler, synthesizer, usageLog)
	ingest := services.NewIngestionOrchestrator(extractor, splitter, embedder, index, fetcher, settings)

	return &cli.App{
		Query:        query,
		Ingest:       ingest,
		Index:        index,
		Listen:       cfg.Server.Listen,
		SnapshotPath: cfg.Snapshot.Path,
		BootstrapURI: cfg.Snapshot.BootstrapURI,
		Close: func() {
			embedder.Close()
			llm.Close()
		},
	}, nil
}

func buildEmbedder(cfg *configfile.Config) (driven.EmbeddingService, error) {
	switch cfg.Embedding.Provider {
	case "", "openai":
		return embopenai.NewEmbeddingService(embopenai.Config{
			APIKey:  cfg.Embedding.APIKey,
			BaseURL: cfg.Embedding.BaseURL,
			Model:   cfg.Embedding.Model,
		})
	case "ollama":
		return embollama.NewEmbeddingService(embollama.Config{
			BaseURL: cfg.Embedding.BaseURL,
			Model:   cfg.Embedding.Model,
		}), nil
	default:
		return nil, fmt.Errorf("%w: unknown embedding provider %q",
			domain.ErrInvalidConfig, cfg.Embedding.Provider)
	}
}

func buildLLM(cfg *configfile.Config) (driven.LLMService, error) {
	switch cfg.LLM.Provider {
	case "", "openai":
		return llmopenai.NewLLMService(llmopenai.Config{
			APIKey:  cfg.LLM.APIKey,
			BaseURL: cfg.LLM.BaseURL,
			Model:   cfg.LLM.Model,
		})
	case "groq":
		return llmgroq.NewLLMService(llmgroq.Config{
			APIKey: cfg.LLM.APIKey,
			Model:  cfg.LLM.Model,
		})
	default:
		return nil, fmt.Errorf("%w: unknown llm provider %q",
			domain.ErrInvalidConfig, cfg.LLM.Provider)
	}
}

// buildUsageLogger returns nil when no spreadsheet is configured;
// audit logging is optional.
func buildUsageLogger(cfg *configfile.Config) (driven.UsageLogger, error) {
	if cfg.Sheets.SpreadsheetID == "" {
		return nil, nil
	}

	creds, err := cfg.GoogleCredentials()
	if err != nil {
		return nil, err
	}
	if len(creds) == 0 {
		logger.Warn("Usage log disabled: spreadsheet configured without credentials")
		return nil, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return sheets.New(ctx, sheets.Config{
		SpreadsheetID:   cfg.Sheets.SpreadsheetID,
		CredentialsJSON: creds,
		Range:           cfg.Sheets.Range,
	})
}
