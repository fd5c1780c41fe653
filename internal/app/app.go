// Package app wires configuration, storage, the SEC client and the services
// shared by the pitfacts commands.
package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/bobmcallan/pitfacts/internal/clients/sec"
	"github.com/bobmcallan/pitfacts/internal/common"
	"github.com/bobmcallan/pitfacts/internal/interfaces"
	"github.com/bobmcallan/pitfacts/internal/services/classify"
	"github.com/bobmcallan/pitfacts/internal/services/enrich"
	"github.com/bobmcallan/pitfacts/internal/services/pipeline"
	"github.com/bobmcallan/pitfacts/internal/services/report"
	"github.com/bobmcallan/pitfacts/internal/storage"
)

// App holds all initialized services and clients.
type App struct {
	Config      *common.Config
	Logger      *common.Logger
	Storage     interfaces.StorageManager
	SECClient   interfaces.SECClient
	Pipeline    *pipeline.Service
	Report      *report.Service
	StartupTime time.Time
}

// getBinaryDir returns the directory containing the executable.
func getBinaryDir() string {
	exe, err := os.Executable()
	if err != nil {
		return "."
	}
	return filepath.Dir(exe)
}

// ResolveConfigPath returns configPath, else PITFACTS_CONFIG, else pitfacts.toml next
// to the binary, else config/pitfacts.toml for development.
func ResolveConfigPath(configPath string) string {
	if configPath == "" {
		configPath = os.Getenv("PITFACTS_CONFIG")
	}
	if configPath == "" {
		configPath = filepath.Join(getBinaryDir(), "pitfacts.toml")
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			configPath = "config/pitfacts.toml"
		}
	}
	return configPath
}

// NewApp loads configuration and initializes storage, the SEC client and services.
// configPath may be empty, in which case ResolveConfigPath decides.
func NewApp(configPath string) (*App, error) {
	startupStart := time.Now()

	common.LoadVersionFromFile()
	common.LoadDotEnv(".env", filepath.Join(getBinaryDir(), ".env"))

	config, err := common.LoadConfig(ResolveConfigPath(configPath))
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger := common.NewLoggerFromConfig(config.Logging)

	// Tables are validated before any connection is opened
	classifier, sicMapper, err := loadTables(config.Pipeline)
	if err != nil {
		return nil, err
	}

	storageManager, err := storage.NewStorageManager(logger, config)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	secClient := sec.NewClientFromConfig(config.Clients.SEC, logger)

	a := &App{
		Config:      config,
		Logger:      logger,
		Storage:     storageManager,
		SECClient:   secClient,
		Pipeline:    pipeline.NewService(storageManager, secClient, classify.NewCache(classifier), sicMapper, config.Pipeline.Concurrency, logger),
		Report:      report.NewService(storageManager.FactStore(), storageManager.TTMStore(), config.Pipeline.OutputDir, logger),
		StartupTime: startupStart,
	}

	loaded, err := a.Pipeline.LoadClassifications(context.Background())
	if err != nil {
		logger.Warn().Err(err).Msg("Stored classifications unavailable, classifying from keyword tables")
	}

	logger.Info().
		Str("backend", storageManager.Backend()).
		Int("stored_classifications", loaded).
		Int("concurrency", config.Pipeline.Concurrency).
		Dur("startup", time.Since(startupStart)).
		Msg("App initialized")

	return a, nil
}

// loadTables reads the keyword and SIC tables named in the pipeline section,
// falling back to the built-in tables for empty paths.
func loadTables(cfg common.PipelineConfig) (*classify.Classifier, *enrich.SICMapper, error) {
	tables, err := classify.LoadKeywordTables(cfg.KeywordsFile)
	if err != nil {
		return nil, nil, err
	}
	classifier, err := classify.New(tables)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid keyword tables: %w", err)
	}

	ranges, err := enrich.LoadSICRanges(cfg.SICRangesFile)
	if err != nil {
		return nil, nil, err
	}
	sicMapper, err := enrich.NewSICMapper(ranges)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid SIC ranges: %w", err)
	}

	return classifier, sicMapper, nil
}

// Close releases storage connections.
func (a *App) Close() {
	if a.Storage != nil {
		if err := a.Storage.Close(); err != nil {
			a.Logger.Warn().Err(err).Msg("Failed to close storage")
		}
		a.Storage = nil
	}
}
