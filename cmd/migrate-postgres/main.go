package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/marcelsud/webhook-dispatch/config"
	"github.com/marcelsud/webhook-dispatch/webhook/postgres"
)

/*
migrate-postgres - creates the webhook_subscriptions table and its indexes

Reads DATABASE_URL (and the POSTGRES_* pool settings) from .env or the environment.
Safe to run repeatedly: every statement is IF NOT EXISTS.

Run with:
  STORE_DRIVER=postgres DATABASE_URL=postgres://... go run cmd/migrate-postgres/main.go
*/

func main() {
	cfg, err := config.GetConfig()
	if err != nil {
		fmt.Printf("❌ Error loading config: %v\n", err)
		os.Exit(1)
	}
	if cfg.DatabaseURL == "" {
		fmt.Println("❌ DATABASE_URL is required")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	fmt.Println("🔗 Connecting to PostgreSQL...")
	repo, err := postgres.NewRepositoryWithPoolConfig(
		cfg.DatabaseURL,
		cfg.PostgresMaxOpenConns,
		cfg.PostgresMaxIdleConns,
		cfg.PostgresConnMaxLifeMinutes,
	)
	if err != nil {
		fmt.Printf("❌ Error connecting to PostgreSQL: %v\n", err)
		os.Exit(1)
	}
	defer repo.Close(ctx)
	fmt.Println("✅ Connected to PostgreSQL!")

	if err := repo.CreateTable(ctx); err != nil {
		fmt.Printf("❌ %v\n", err)
		os.Exit(1)
	}

	fmt.Println("✅ webhook_subscriptions is up to date")
}
