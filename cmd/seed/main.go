package main

import (
	"fmt"
	"os"

	"budgetwise/internal/database"
	"budgetwise/internal/logger"
	"budgetwise/internal/services"
)

func main() {
	logger.Init(os.Getenv("ENV"))
	defer logger.Sync()

	if err := run(); err != nil {
		logger.Get().Fatalf("Seed error: %v", err)
	}
}

func run() error {
	dbConfig, err := database.NewConfig()
	if err != nil {
		return fmt.Errorf("failed to load database configuration: %w", err)
	}

	dbManager, err := database.NewManager(dbConfig)
	if err != nil {
		return fmt.Errorf("failed to create database manager: %w", err)
	}

	categoryService := services.NewCategoryService(dbManager.DB())
	n, err := categoryService.Reseed()
	if err != nil {
		return fmt.Errorf("failed to seed category catalog: %w", err)
	}

	logger.Get().Infof("Seeded %d categories with their classification rules", n)
	return nil
}
