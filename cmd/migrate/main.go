// Command migrate runs schema and maintenance operations for the backend.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"strings"
	"time"

	"chirp/internal/config"
	"chirp/internal/database"
	"chirp/internal/repository"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func usage() error {
	return fmt.Errorf("usage: go run ./cmd/migrate <auto|purge> [flags]")
}

func run() error {
	purgeAge := flag.Duration("purge-age", 30*24*time.Hour,
		"age past which soft-deleted posts are removed (purge command)")
	flag.Parse()
	if flag.NArg() < 1 {
		return usage()
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}

	ctx := context.Background()
	switch strings.ToLower(strings.TrimSpace(flag.Arg(0))) {
	case "auto":
		if err := db.AutoMigrate(database.AllModels()...); err != nil {
			return fmt.Errorf("automigration failed: %w", err)
		}
		log.Println("automigrations applied")
	case "purge":
		posts := repository.NewPostRepository(db)
		removed, err := posts.PurgeDeleted(ctx, time.Now().Add(-*purgeAge))
		if err != nil {
			return fmt.Errorf("purge failed: %w", err)
		}
		log.Printf("purged %d soft-deleted posts older than %s", removed, purgeAge)
	default:
		return usage()
	}
	return nil
}
