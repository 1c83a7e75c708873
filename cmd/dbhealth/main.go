package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"time"

	"github.com/joseph-ayodele/receipt-engine/internal/common"
	"github.com/joseph-ayodele/receipt-engine/internal/repository"
)

func main() {
	cfg, err := common.LoadConfig()
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	db, err := repository.Open(ctx, repository.Config{
		Driver:          cfg.Database.Driver,
		DSN:             cfg.Database.DSN,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	}, nil)
	if err != nil {
		log.Fatalf("opening DB: %v", err)
	}
	defer func() { _ = db.Close() }()

	if err := repository.HealthCheck(ctx, db, 3*time.Second); err != nil {
		log.Fatalf("DB health failed: %v", err)
	}

	var n int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM receipts").Scan(&n); err != nil {
		log.Fatalf("counting receipts: %v", err)
	}
	log.Printf("DB health OK (%s, %d receipts)", cfg.Database.Driver, n)
}
