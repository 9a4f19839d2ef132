package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/pkom79/email-metrics-cloud-sub001/internal/api"
	"github.com/pkom79/email-metrics-cloud-sub001/internal/config"
	"github.com/pkom79/email-metrics-cloud-sub001/internal/pkg/logger"
	"github.com/pkom79/email-metrics-cloud-sub001/internal/repository/postgres"
	"github.com/pkom79/email-metrics-cloud-sub001/internal/storage"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	applyLogging(cfg.Logging)

	store, err := storage.New(cfg.Storage)
	if err != nil {
		log.Fatalf("Failed to init storage: %v", err)
	}

	ctx := context.Background()

	if cfg.Storage.AWSEnabled() {
		awsStore, err := storage.NewAWSStorage(ctx,
			cfg.Storage.DynamoDBTable, cfg.Storage.S3Bucket,
			cfg.Storage.AWSRegion, cfg.Storage.AWSProfile)
		if err != nil {
			log.Printf("[main] AWS mirror disabled: %v", err)
		} else {
			store.EnableAWS(awsStore)
			log.Printf("[main] AWS mirror enabled (bucket=%s table=%s)",
				cfg.Storage.S3Bucket, cfg.Storage.DynamoDBTable)
		}
	}

	handlers := api.NewHandlers(store, cfg)

	if cfg.Database.URL != "" {
		db, err := postgres.Open(ctx, cfg.Database.URL)
		if err != nil {
			log.Printf("[main] import log disabled: %v", err)
		} else {
			defer db.Close()
			if err := postgres.Migrate(ctx, db); err != nil {
				log.Fatalf("Failed to migrate database: %v", err)
			}
			handlers.SetImportLog(postgres.NewImportRepo(db))
			log.Println("[main] Postgres import log enabled")
		}
	}

	if cfg.Redis.Addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			log.Printf("[main] response cache disabled: %v", err)
		} else {
			handlers.SetCache(api.NewCache(client, time.Duration(cfg.Redis.TTLSeconds)*time.Second))
			log.Printf("[main] Redis response cache enabled (ttl=%ds)", cfg.Redis.TTLSeconds)
		}
	}

	server := api.NewServer(cfg.Server, handlers)

	go func() {
		addr := cfg.Server.Addr()
		log.Printf("[main] listening on %s", addr)
		if err := server.ListenAndServe(addr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	<-done

	log.Println("[main] shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("[main] shutdown error: %v", err)
	}
}

func applyLogging(cfg config.LoggingConfig) {
	switch cfg.Level {
	case "debug":
		logger.SetLevel(logger.DEBUG)
	case "warn":
		logger.SetLevel(logger.WARN)
	case "error":
		logger.SetLevel(logger.ERROR)
	default:
		logger.SetLevel(logger.INFO)
	}
	if cfg.RedactPII != nil {
		logger.SetRedactPII(*cfg.RedactPII)
	}
}
