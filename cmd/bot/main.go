package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/fadedpez/sentenza/internal/bot"
	"github.com/fadedpez/sentenza/internal/config"
	"github.com/fadedpez/sentenza/pkg/games"
	"github.com/fadedpez/sentenza/pkg/games/diceduel"
	"github.com/fadedpez/sentenza/pkg/games/dicetable"
	"github.com/fadedpez/sentenza/pkg/games/duel"
	"github.com/fadedpez/sentenza/pkg/games/flower"
	"github.com/fadedpez/sentenza/pkg/games/hotcold"
	accountRepo "github.com/fadedpez/sentenza/pkg/repositories/account"
	gameRepo "github.com/fadedpez/sentenza/pkg/repositories/game"
	"github.com/fadedpez/sentenza/pkg/scheduler"
	"github.com/fadedpez/sentenza/pkg/services/engine"
	"github.com/fadedpez/sentenza/pkg/services/ledger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Error loading configuration: %v", err)
	}

	// Pick storage per configuration; memory keeps nothing across restarts.
	var accounts accountRepo.Repository
	var gamesStore gameRepo.Repository

	if cfg.StorageType == "sqlite" {
		dbPath := cfg.DatabasePath()
		log.Printf("Initializing SQLite storage at %s", dbPath)

		sqliteAccounts, err := accountRepo.NewSQLiteRepository(dbPath)
		if err != nil {
			log.Fatalf("Failed to initialize account storage: %v", err)
		}
		defer sqliteAccounts.Close()
		accounts = sqliteAccounts

		sqliteGames, err := gameRepo.NewSQLiteRepository(dbPath)
		if err != nil {
			log.Fatalf("Failed to initialize game storage: %v", err)
		}
		defer sqliteGames.Close()
		gamesStore = sqliteGames
	} else {
		log.Println("Using in-memory storage (data will be lost on restart)")
		accounts = accountRepo.NewMemoryRepository()
		gamesStore = gameRepo.NewMemoryRepository()
	}

	// Optionally mirror ledger entries into Elasticsearch for analytics.
	var auditScheduler *scheduler.AuditScheduler
	if cfg.ElasticsearchURL != "" {
		esConfig := accountRepo.DefaultElasticsearchConfig()
		esConfig.URL = cfg.ElasticsearchURL
		esConfig.Username = cfg.ElasticsearchUser
		esConfig.Password = cfg.ElasticsearchPassword

		esAccounts, err := accountRepo.NewElasticsearchRepository(accounts, esConfig)
		if err != nil {
			log.Printf("Audit archive unavailable, continuing without it: %v", err)
		} else {
			accounts = esAccounts
			auditScheduler = scheduler.NewAuditScheduler(esAccounts)
			auditScheduler.Start(context.Background())
			defer auditScheduler.Stop()
		}
	}

	ledgerSvc := ledger.NewService(accounts, cfg.SwapRate)

	registry := games.NewRegistry()
	for _, adapter := range []games.Adapter{
		duel.New(),
		dicetable.New(),
		diceduel.New(),
		flower.New(),
		hotcold.New(),
	} {
		if err := registry.Register(adapter); err != nil {
			log.Fatalf("Failed to register %s adapter: %v", adapter.Kind(), err)
		}
	}

	engineSvc := engine.NewService(gamesStore, ledgerSvc, registry)

	b, err := bot.New(cfg, ledgerSvc, engineSvc)
	if err != nil {
		log.Fatalf("Error creating bot: %v", err)
	}

	if err := b.Start(); err != nil {
		log.Fatalf("Error starting bot: %v", err)
	}

	log.Println("Bot is running. Press Ctrl+C to exit")

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	log.Println("Shutting down...")
	b.Shutdown()
}
