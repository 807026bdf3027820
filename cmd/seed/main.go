package main

import (
	"context"
	"fmt"
	"log"

	"github.com/ethioshop/ethioshop-backend/internal/config"
	"github.com/ethioshop/ethioshop-backend/internal/db"
	"github.com/ethioshop/ethioshop-backend/internal/model"
	"github.com/ethioshop/ethioshop-backend/internal/repository"
	"github.com/ethioshop/ethioshop-backend/internal/seed"
	"github.com/joho/godotenv"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("seed failed: %v", err)
	}
}

func run() error {
	ctx := context.Background()
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	gdb, err := db.Connect(cfg)
	if err != nil {
		return fmt.Errorf("connect db: %w", err)
	}

	if err := gdb.AutoMigrate(&model.Category{}, &model.Location{}); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}

	refRepo := repository.NewReferenceRepository(gdb)

	categories := seed.Categories()
	if err := refRepo.UpsertCategories(ctx, categories); err != nil {
		return fmt.Errorf("seed categories: %w", err)
	}
	locations := seed.Locations()
	if err := refRepo.UpsertLocations(ctx, locations); err != nil {
		return fmt.Errorf("seed locations: %w", err)
	}

	log.Printf("seeded %d categories, %d locations", len(categories), len(locations))
	return nil
}
