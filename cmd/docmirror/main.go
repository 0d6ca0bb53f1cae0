// Command docmirror mirrors, indexes and searches a directory of documents.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/custodia-labs/docmirror/internal/adapters/driven/ai"
	"github.com/custodia-labs/docmirror/internal/adapters/driven/config/file"
	indexmem "github.com/custodia-labs/docmirror/internal/adapters/driven/index/memory"
	"github.com/custodia-labs/docmirror/internal/adapters/driven/outputtree"
	"github.com/custodia-labs/docmirror/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/docmirror/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/docmirror/internal/adapters/driving/cli"
	"github.com/custodia-labs/docmirror/internal/connectors/filesystem"
	"github.com/custodia-labs/docmirror/internal/converters"
	"github.com/custodia-labs/docmirror/internal/core/domain"
	"github.com/custodia-labs/docmirror/internal/core/ports/driving"
	"github.com/custodia-labs/docmirror/internal/core/services"
	"github.com/custodia-labs/docmirror/internal/logger"
	"github.com/custodia-labs/docmirror/internal/normalisers"
	"github.com/custodia-labs/docmirror/internal/postprocessors"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	// A missing .env is fine; keys may come from the real environment.
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx)
	stop()
	os.Exit(code)
}

func run(ctx context.Context) int {
	cli.SetVersion(version)
	cli.SetSettingsBootstrap(openSettings)
	cli.SetBootstrap(buildServices)
	return cli.Execute(ctx, os.Stderr)
}

func resolveConfigDir(dir string) (string, error) {
	if dir != "" {
		return dir, nil
	}
	return file.DefaultDir()
}

func openSettings(configDir string) (driving.SettingsService, error) {
	dir, err := resolveConfigDir(configDir)
	if err != nil {
		return nil, err
	}
	store, err := file.NewConfigStore(dir)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	return services.NewSettingsService(store, ai.NewConfigValidator()), nil
}

// buildServices wires the adapters and services for one command.
func buildServices(ctx context.Context, configDir string) (*cli.Services, func(), error) {
	dir, err := resolveConfigDir(configDir)
	if err != nil {
		return nil, nil, err
	}
	store, err := file.NewConfigStore(dir)
	if err != nil {
		return nil, nil, fmt.Errorf("open config: %w", err)
	}
	settingsService := services.NewSettingsService(store, ai.NewConfigValidator())
	settings, err := settingsService.Get()
	if err != nil {
		return nil, nil, err
	}

	prompts, err := file.NewPromptStore(filepath.Join(dir, "prompts"))
	if err != nil {
		return nil, nil, err
	}
	caps := ai.Init(ctx, settings, prompts)

	dataDir := settings.DataDir
	if dataDir == "" {
		dataDir = filepath.Join(dir, "data")
	}
	db, err := sqlite.NewStore(dataDir)
	if err != nil {
		caps.Close()
		return nil, nil, err
	}
	cleanup := func() {
		caps.Close()
		if err := db.Close(); err != nil {
			logger.Warn("close database: %v", err)
		}
	}

	pipeline, err := postprocessors.BuildDefault(postprocessors.Capabilities{
		Embedding: caps.Embedding,
		Summary:   caps.Summary,
	}, map[string]map[string]any{
		"summary": {"max_length": settings.Summary.MaxLength},
	})
	if err != nil {
		cleanup()
		return nil, nil, err
	}

	registry := normalisers.NewDefaultRegistry(caps.OCR,
		normalisers.WithPipeline(pipeline),
		normalisers.WithTimeout(settings.Sync.ExtractionTimeout),
	)
	converter := converters.NewDefaultRegistry()
	index := indexmem.New()
	walker := filesystem.NewWalker()
	watcher := filesystem.NewWatcher(filesystem.WatchOptions{IncludeHidden: settings.Sync.IncludeHidden})

	syncService := services.NewSyncService(
		walker, registry, db.DocumentStore(), db.SnapshotStore(), index,
		converter, outputtree.Open, settings.Sync, watcher,
	)
	documentService := services.NewDocumentService(db.DocumentStore(), db.SnapshotStore())
	sessionService := services.NewSessionService(memory.NewTokenStore(), settings.Session)
	schedulerConfig := domain.DefaultSchedulerConfig(*settings)

	if err := syncService.Rehydrate(ctx); err != nil {
		logger.Warn("rebuild index: %v", err)
	}

	return &cli.Services{
		Sync:     syncService,
		Search:   services.NewSearchService(index, caps.Embedding, settings.Search),
		Document: documentService,
		Conversion: services.NewConversionService(
			documentService, walker, registry, converter, outputtree.Open, settings.Sync.MaxFileSize,
		),
		Session:      sessionService,
		Settings:     settingsService,
		ResultAction: services.NewResultActionService(db.SnapshotStore()),
		Scheduler: services.NewScheduler(
			schedulerConfig, db.SchedulerStore(), syncService, sessionService,
		),
		SchedulerConfig: schedulerConfig,
	}, cleanup, nil
}
