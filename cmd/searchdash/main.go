// Command searchdash searches tweets, Twitter Spaces and Discord messages
// stored as hashes in Redis through a RediSearch index.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/creativedestruction/searchdash/internal/adapters/driven/config/file"
	"github.com/creativedestruction/searchdash/internal/adapters/driven/redis"
	"github.com/creativedestruction/searchdash/internal/adapters/driven/storage/memory"
	"github.com/creativedestruction/searchdash/internal/adapters/driving/cli"
	"github.com/creativedestruction/searchdash/internal/core/ports/driven"
	"github.com/creativedestruction/searchdash/internal/core/services"
	"github.com/creativedestruction/searchdash/internal/logger"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	cli.SetVersion(version)
	cli.SetBootstrapper(bootstrap)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cli.Execute(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

// bootstrap loads settings, opens the store and builds the services.
func bootstrap(ctx context.Context, opts cli.Options) (*cli.Services, error) {
	configStore, err := file.NewConfigStore(opts.ConfigDir)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	settingsService := services.NewSettingsService(configStore)
	if opts.Offline {
		return &cli.Services{Settings: settingsService}, nil
	}

	settings, err := settingsService.Get()
	if err != nil {
		return nil, fmt.Errorf("settings: %w", err)
	}
	logger.SetFormat(settings.Log.Format)
	if !logger.IsVerbose() {
		if err := logger.SetLevel(settings.Log.Level); err != nil {
			logger.Warn("%v", err)
		}
	}

	registry := services.NewDefaultSchemaRegistry()
	if len(settings.Schema.Fields) > 0 {
		if registry, err = services.NewSchemaRegistry(settings.Schema); err != nil {
			return nil, fmt.Errorf("schema: %w", err)
		}
	}

	var store driven.SearchStore
	if opts.Memory {
		mem := memory.NewSearchStore()
		if err := seedDemo(ctx, mem); err != nil {
			return nil, fmt.Errorf("demo data: %w", err)
		}
		store = mem
	} else {
		rs, err := redis.Open(ctx, settings.Redis)
		if err != nil {
			return nil, err
		}
		rs.SetScanCount(settings.Index.ScanCount)
		store = rs
	}

	index := services.NewIndexManager(store, registry, services.NewReindexer(store, settings.Index.ReindexRate), settings.Index)
	executor := services.NewSearchExecutor(store, index.Name(), registry)
	paginator := services.NewPaginator(executor, settings.Search.PageSize, settings.Search.StrictTotals)
	search := services.NewSearchService(registry, services.NewQueryCompiler(), paginator, settings.Search)
	search.SetReadiness(index)

	return &cli.Services{
		Search:   search,
		Index:    index,
		Stats:    services.NewStatsService(store),
		Settings: settingsService,
		Close:    store.Close,
	}, nil
}
