package main

import (
	"context"
	"flag"
	"log"
	"os/signal"
	"syscall"

	"github.com/bedside-care/bedside/internal/api"
	"github.com/bedside-care/bedside/internal/config"
	"github.com/bedside-care/bedside/internal/database"
	"github.com/bedside-care/bedside/internal/kvstore"
	"github.com/bedside-care/bedside/internal/logger"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

const version = "0.1.0"

func main() {
	configPath := flag.String("config", "app.yml", "Path to configuration file")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	zlog, err := logger.New(cfg.Logging.Level, cfg.Logging.Format, "bedside-api")
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer zlog.Sync()

	zlog.Info("starting bedside API", zap.String("version", version), zap.String("config", *configPath))

	db, err := database.Open(cfg, zlog)
	if err != nil {
		zlog.Fatal("failed to open database", zap.Error(err))
	}
	defer db.Close()

	var kv kvstore.Store
	if cfg.KVStore.Backend == "redis" {
		client := redis.NewClient(&redis.Options{
			Addr: cfg.KVStore.RedisAddr,
			DB:   cfg.KVStore.RedisDB,
		})
		if err := client.Ping(context.Background()).Err(); err != nil {
			zlog.Fatal("failed to connect to redis", zap.Error(err))
		}
		kv = kvstore.NewRedisStore(client)
	} else {
		kv = kvstore.NewSQLStore(db.DB(), cfg.Database.Driver)
	}

	a, err := api.NewApi(cfg, db, kv, zlog)
	if err != nil {
		zlog.Fatal("failed to initialize API", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := a.Serve(ctx); err != nil {
		zlog.Fatal("server error", zap.Error(err))
	}
}
