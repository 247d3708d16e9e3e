package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver

	"github.com/freshmind/recommender/internal/api"
	"github.com/freshmind/recommender/internal/chat"
	"github.com/freshmind/recommender/internal/config"
	"github.com/freshmind/recommender/internal/insights"
	"github.com/freshmind/recommender/internal/intent"
	"github.com/freshmind/recommender/internal/oracle"
	"github.com/freshmind/recommender/internal/recommend"
	"github.com/freshmind/recommender/internal/repository/memory"
	"github.com/freshmind/recommender/internal/repository/postgres"
	"github.com/freshmind/recommender/internal/storage"
)

func main() {
	cfg, err := config.LoadFromEnv("config/config.yaml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Oracle backend. A missing API key is not fatal: the engine and the
	// casual replies degrade to their deterministic fallbacks.
	var oracleClient oracle.Client
	client, err := oracle.NewClient(context.Background(), cfg.Oracle)
	switch {
	case err == nil:
		oracleClient = client
		log.Printf("oracle: provider=%s ready", cfg.Oracle.Provider)
	case errors.Is(err, oracle.ErrNotConfigured):
		log.Println("oracle: no API key configured, running deterministic-only")
	default:
		log.Fatalf("Failed to initialize oracle client: %v", err)
	}

	// Data layer. Without a database URL the server runs on the in-memory
	// store, which is empty until populated by another process.
	var (
		catalogRepo chat.CatalogRepository
		historyRepo chat.HistoryRepository
		userRepo    chat.UserRepository
		messageRepo chat.MessageRepository
	)
	if cfg.Database.URL != "" {
		db, err := sql.Open("postgres", cfg.Database.URL)
		if err != nil {
			log.Fatalf("Failed to open database: %v", err)
		}
		db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
		db.SetMaxIdleConns(cfg.Database.MaxIdleConns)

		pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := db.PingContext(pingCtx); err != nil {
			log.Fatalf("Failed to reach database: %v", err)
		}
		cancel()

		catalogRepo = postgres.NewProductRepo(db)
		historyRepo = postgres.NewHistoryRepo(db)
		userRepo = postgres.NewUserRepo(db)
		messageRepo = postgres.NewMessageRepo(db)
		log.Println("storage: PostgreSQL connected")
	} else {
		store := memory.NewStore()
		catalogRepo, historyRepo, userRepo, messageRepo = store, store, store, store
		log.Println("storage: no DATABASE_URL, using in-memory store")
	}

	// Conversation cache. Redis being down only costs casual-reply context.
	var conversations chat.ConversationCache
	convStore := storage.NewConversationStore(cfg.Redis)
	pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	if err := convStore.Ping(pingCtx); err != nil {
		log.Printf("storage: Redis unreachable, conversation memory disabled: %v", err)
	} else {
		conversations = convStore
		log.Printf("storage: Redis connected at %s", cfg.Redis.Addr)
	}
	cancel()

	var ranker recommend.Ranker
	var classifier intent.Classifier
	if oracleClient != nil {
		ranker = oracleClient
		classifier = oracleClient
	}

	engine := recommend.NewEngine(ranker, recommend.WithCandidateCap(cfg.Engine.CandidateCap))

	svcOpts := []chat.ServiceOption{
		chat.WithMessageStore(messageRepo),
		chat.WithHistoryWindow(cfg.Insights.DefaultWindowDays),
	}
	if oracleClient != nil {
		svcOpts = append(svcOpts,
			chat.WithSentimentAnalyzer(oracleClient),
			chat.WithCasualResponder(oracleClient),
		)
	}
	if conversations != nil {
		svcOpts = append(svcOpts, chat.WithConversationCache(conversations))
	}

	chatService := chat.NewService(
		intent.NewGate(classifier),
		engine,
		catalogRepo, historyRepo, userRepo,
		svcOpts...,
	)

	handlers := api.NewHandlers(
		chatService,
		catalogRepo, historyRepo, userRepo,
		insights.NewSummarizer(),
		insights.NewBannerRenderer(),
		cfg.Insights.DefaultWindowDays,
	)
	router := api.SetupRoutes(handlers)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Printf("server: listening on %s", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	<-done
	log.Println("server: shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("server: shutdown error: %v", err)
	}
	log.Println("server: stopped")
}
