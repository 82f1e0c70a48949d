package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/Dominic0607/Order-System-sub000/internal/config"
	httpapi "github.com/Dominic0607/Order-System-sub000/internal/http"
	"github.com/Dominic0607/Order-System-sub000/internal/http/handlers"
	"github.com/Dominic0607/Order-System-sub000/internal/logger"
	"github.com/Dominic0607/Order-System-sub000/internal/queue"
	"github.com/Dominic0607/Order-System-sub000/internal/sheet"
	"github.com/Dominic0607/Order-System-sub000/internal/snapshot"
	"github.com/Dominic0607/Order-System-sub000/internal/storage"
	"github.com/Dominic0607/Order-System-sub000/internal/ws"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	log, err := logger.New(cfg.Env)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	if cfg.SheetAPIBaseURL == "" {
		log.Fatal("SHEET_API_BASE_URL is required")
	}
	sheetClient := sheet.NewClient(cfg.SheetAPIBaseURL, cfg.SheetAPIToken)

	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			log.Fatal("invalid REDIS_URL", zap.Error(err))
		}
		redisClient = redis.NewClient(opts)
		defer redisClient.Close()
		log.Info("snapshot cache enabled", zap.Duration("ttl", cfg.SnapshotCacheTTL))
	} else {
		log.Info("snapshot cache disabled (REDIS_URL is empty)")
	}

	snapshotSvc := snapshot.New(sheetClient, redisClient, cfg.SnapshotCacheTTL, log)

	var events *queue.Publisher
	if cfg.RabbitMQURL != "" {
		qc, err := queue.New(cfg.RabbitMQURL)
		if err != nil {
			if cfg.Env == "production" {
				log.Fatal("rabbitmq connection failed", zap.Error(err))
			}
			log.Warn("rabbitmq connection failed; continuing without events", zap.Error(err))
		}
		if qc != nil {
			if err := qc.EnsureExchange(queue.EventsExchange); err != nil {
				if cfg.Env == "production" {
					log.Fatal("rabbitmq exchange failed", zap.Error(err))
				}
				log.Warn("rabbitmq exchange failed; continuing without events", zap.Error(err))
				_ = qc.Close()
				qc = nil
			}
		}
		if qc != nil {
			defer qc.Close()
			events = queue.NewPublisher(qc, log)
			snapshotSvc.AddNotifier(events)
			log.Info("console events enabled", zap.String("exchange", queue.EventsExchange))
		}
	} else {
		log.Info("console events disabled (RABBITMQ_URL is empty)")
	}

	var archive *storage.ObjectStore
	if cfg.ObjectStoreEndpoint != "" {
		archive, err = storage.NewObjectStore(context.Background(), storage.Config{
			Endpoint:        cfg.ObjectStoreEndpoint,
			Region:          cfg.ObjectStoreRegion,
			AccessKeyID:     cfg.ObjectStoreAccessKeyID,
			SecretAccessKey: cfg.ObjectStoreSecretAccessKey,
			Bucket:          cfg.ObjectStoreBucket,
			PublicBaseURL:   cfg.ObjectStorePublicBaseURL,
		})
		if err != nil {
			log.Warn("object store unavailable; exports will not be archived", zap.Error(err))
			archive = nil
		}
	}

	wsServer := ws.New(log, cfg.WSHeartbeatInterval)
	snapshotSvc.AddNotifier(wsServer)

	h := &handlers.Handler{
		Snapshot: snapshotSvc,
		Source:   sheetClient,
		Logger:   log,
		Config:   cfg,
		Events:   events,
		Archive:  archive,
	}

	apiServer := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      httpapi.NewRouter(h, log, cfg, wsServer),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("console api ready", zap.String("base", "/api/console"))
		log.Info("console service listening", zap.String("addr", cfg.HTTPAddr))
		if err := apiServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("http server failed", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := apiServer.Shutdown(ctxShutdown); err != nil {
		log.Error("http server shutdown failed", zap.Error(err))
	}
}
