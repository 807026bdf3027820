package main

import (
	"log"
	"os"

	"github.com/ethioshop/ethioshop-backend/internal/config"
	"github.com/ethioshop/ethioshop-backend/internal/db"
	"github.com/ethioshop/ethioshop-backend/internal/model"
	"github.com/ethioshop/ethioshop-backend/internal/server"
	"github.com/joho/godotenv"
)

var (
	gitSHA    = "dev"
	buildTime = "unknown"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config load error: %v", err)
	}

	srv := server.New(nil, cfg, gitSHA, buildTime)

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.Port
	}
	addr := ":" + port

	errCh := make(chan error, 1)

	go func() {
		log.Printf("starting server on %s", addr)
		errCh <- srv.Start(addr)
	}()

	// Connect and migrate in the background so a slow Cloud SQL attach does
	// not block the health check.
	go func() {
		conn, err := db.Connect(cfg)
		if err != nil {
			log.Printf("db connect error: %v", err)
			return
		}
		if err := conn.AutoMigrate(
			&model.User{},
			&model.Category{},
			&model.Location{},
			&model.Product{},
			&model.ProductImage{},
			&model.Order{},
			&model.OrderItem{},
			&model.Payment{},
			&model.Conversation{},
			&model.Message{},
			&model.Notification{},
			&model.Review{},
		); err != nil {
			log.Printf("auto migrate error: %v", err)
		}
		srv.SetDB(conn)
	}()

	if err := <-errCh; err != nil {
		log.Fatalf("server stopped: %v", err)
	}
}
