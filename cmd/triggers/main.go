package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"caseboard/internal/config"
	"caseboard/internal/fanout"
	"caseboard/internal/feed"
	"caseboard/internal/notify"
	"caseboard/internal/profile"
	"caseboard/internal/search"
	"caseboard/internal/store"
	"caseboard/internal/trigger"
)

func main() {
	cfg := config.Load()
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := store.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("database connection failed: %v", err)
	}
	defer db.Close()

	if err := store.ApplyMigrations(ctx, db, cfg.MigrationsDir); err != nil {
		log.Fatalf("migrations failed: %v", err)
	}

	primary := store.NewPostgresStore(db)

	refs, err := profile.NewRedisStore(cfg.RedisURL)
	if err != nil {
		log.Fatalf("redis connection failed: %v", err)
	}
	defer refs.Close()

	feedWriter := fanout.NewWriter(refs.Client(), cfg.FanoutBatch)
	index := search.NewMeili(cfg.MeiliURL, cfg.MeiliMasterKey)
	notifications := notify.New(primary)

	handlers := trigger.New(index, refs, notifications, feedWriter, primary)
	listener := feed.NewListener(cfg.DatabaseURL, handlers)

	log.Printf("caseboard triggers starting (region %s)", cfg.Region)
	if err := listener.Run(ctx); err != nil && ctx.Err() == nil {
		log.Fatalf("listener failed: %v", err)
	}
	log.Printf("caseboard triggers stopped")
}
