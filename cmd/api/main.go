package main

import (
	"context"
	"log"

	"github.com/brickops/backend/internal/config"
	"github.com/brickops/backend/internal/db"
	"github.com/brickops/backend/internal/model"
	"github.com/brickops/backend/internal/server"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config load error: %v", err)
	}

	conn, err := db.Connect(cfg)
	if err != nil {
		log.Fatalf("db connect error: %v", err)
	}
	if err := conn.AutoMigrate(
		&model.Order{},
		&model.LineItem{},
		&model.LineItemAllocation{},
		&model.Fulfillment{},
		&model.InventoryItem{},
		&model.ResolutionQueueItem{},
		&model.SyncStatus{},
		&model.OrderTransaction{},
	); err != nil {
		log.Fatalf("auto migrate error: %v", err)
	}

	srv, err := server.New(context.Background(), cfg, conn)
	if err != nil {
		log.Fatalf("server init error: %v", err)
	}

	addr := ":" + cfg.Port
	log.Printf("starting server on %s", addr)
	if err := srv.Start(addr); err != nil {
		log.Fatalf("server stopped: %v", err)
	}
}
