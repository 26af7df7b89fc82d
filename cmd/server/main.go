// Package main is the entry point for the agentic UI backend. It
// serves the chat endpoint with its tool registry, the items and
// investment account collections, and the change notification feeds.
package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"google.golang.org/genai"

	"github.com/olufemi424/agentic-ui/internal/config"
	"github.com/olufemi424/agentic-ui/internal/events"
	"github.com/olufemi424/agentic-ui/internal/modules/chat"
	"github.com/olufemi424/agentic-ui/internal/modules/investments"
	"github.com/olufemi424/agentic-ui/internal/modules/items"
	"github.com/olufemi424/agentic-ui/internal/modules/speech"
	"github.com/olufemi424/agentic-ui/internal/reliability"
	"github.com/olufemi424/agentic-ui/internal/server"
	"github.com/olufemi424/agentic-ui/internal/storage"
	"github.com/olufemi424/agentic-ui/internal/watch"
	"github.com/olufemi424/agentic-ui/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fallback := logger.New(logger.Config{Level: "info", Pretty: true})
		fallback.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: cfg.DevMode,
	})
	logger.SetGlobalLogger(log)

	log.Info().
		Str("data_dir", cfg.DataDir).
		Str("backend", cfg.StoreBackend).
		Int("port", cfg.Port).
		Msg("Starting up")

	bus := events.NewBus(log)

	var (
		itemsStore    storage.Store[items.Item]
		accountsStore storage.Store[investments.InvestmentAccount]
		backupSources []string
	)
	switch cfg.StoreBackend {
	case "sqlite":
		// WAL commits land in the -wal sidecar rather than the database
		// file, so fsnotify cannot see sqlite writes. Change events are
		// published from the storage layer instead.
		dbPath := filepath.Join(cfg.DataDir, "app.db")
		itemsSQL, err := storage.NewSQLiteStore(dbPath, "items", items.Seed, log)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to open items store")
		}
		accountsSQL, err := storage.NewSQLiteStore(dbPath, "investment_accounts", investments.Seed, log)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to open investments store")
		}
		itemsStore = storage.NotifyOnWrite[items.Item](itemsSQL, func() {
			bus.Publish(events.ItemsChanged, "storage", map[string]interface{}{
				"file": dbPath,
				"ts":   time.Now().UnixMilli(),
			})
		})
		accountsStore = storage.NotifyOnWrite[investments.InvestmentAccount](accountsSQL, func() {
			bus.Publish(events.AccountsChanged, "storage", map[string]interface{}{
				"file": dbPath,
				"ts":   time.Now().UnixMilli(),
			})
		})
		backupSources = []string{dbPath}
	default:
		itemsStore = storage.NewFileStore(cfg.ItemsFile(), items.Seed, log)
		accountsStore = storage.NewFileStore(cfg.InvestmentsFile(), investments.Seed, log)
		backupSources = []string{cfg.ItemsFile(), cfg.InvestmentsFile()}

		watcher, err := watch.NewFileWatcher(bus, log, cfg.ItemsFile(), cfg.InvestmentsFile())
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to start file watcher")
		}
		watcher.Start()
		defer watcher.Close()
	}
	defer itemsStore.Close()
	defer accountsStore.Close()

	itemsRepo := items.NewRepository(itemsStore, log)
	accountsRepo := investments.NewRepository(accountsStore, log)

	var client *genai.Client
	if cfg.GeminiAPIKey != "" {
		client, err = genai.NewClient(context.Background(), &genai.ClientConfig{
			APIKey: cfg.GeminiAPIKey,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create model client")
		}
	} else {
		log.Warn().Msg("GEMINI_API_KEY not set, chat and speech endpoints disabled")
	}

	sessions, err := chat.NewSessionStore(filepath.Join(cfg.DataDir, "sessions"))
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create session store")
	}

	registry := chat.NewRegistry(append(
		chat.QueryTools(itemsRepo, accountsRepo),
		chat.ProposalTools()...,
	)...)
	chatService := chat.NewService(client, cfg.ChatModel, registry, sessions, log)
	speechService := speech.NewService(client, log)

	backup := reliability.NewBackupService(
		cfg.DataDir,
		backupSources,
		cfg.BackupRetain,
		bus,
		log,
	)
	if cfg.BackupSpec != "" {
		if err := backup.Start(cfg.BackupSpec); err != nil {
			log.Fatal().Err(err).Msg("Failed to start backup scheduler")
		}
		defer backup.Stop()
	}

	srv := server.New(server.Config{
		Log:    log,
		Config: cfg,
		Modules: []server.RouteRegistrar{
			items.NewHandler(itemsRepo, log),
			investments.NewHandler(accountsRepo, log),
			chat.NewHandler(chatService, log),
			speech.NewHandler(speechService, log),
		},
		EventsStream:   watch.NewSSEHandler(bus, log),
		EventsSocket:   watch.NewWSHandler(bus, log),
		SystemHandlers: server.NewSystemHandlers(backup, log),
		StaticDir:      "web",
	})

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-stop:
		log.Info().Str("signal", sig.String()).Msg("Shutdown signal received")
	case err := <-errCh:
		log.Error().Err(err).Msg("Server stopped unexpectedly")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Graceful shutdown failed")
	}
	log.Info().Msg("Shutdown complete")
}
