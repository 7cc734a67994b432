// Command migrate applies the database schema.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"agora/internal/config"
	"agora/internal/database"

	"github.com/jackc/pgx/v5"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	createDB := flag.Bool("create-db", false, "Create the configured Postgres database if it does not exist")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if *createDB {
		if cfg.DBDriver == "sqlite" {
			log.Println("sqlite creates its database file on first use; skipping -create-db")
		} else if err := ensureDatabase(cfg); err != nil {
			return err
		}
	}

	db, err := database.Open(cfg)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	if err := database.Migrate(db); err != nil {
		return err
	}
	log.Println("schema is up to date")
	return nil
}

// ensureDatabase connects to the maintenance database and creates
// cfg.DBName when it is missing.
func ensureDatabase(cfg *config.Config) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	conn, err := pgx.Connect(ctx, database.PostgresDSN(cfg, "postgres"))
	if err != nil {
		return fmt.Errorf("connect maintenance database: %w", err)
	}
	defer func() { _ = conn.Close(ctx) }()

	var exists bool
	if err := conn.QueryRow(ctx,
		"SELECT EXISTS (SELECT 1 FROM pg_database WHERE datname = $1)", cfg.DBName,
	).Scan(&exists); err != nil {
		return fmt.Errorf("check database %s: %w", cfg.DBName, err)
	}
	if exists {
		log.Printf("database %s already exists", cfg.DBName)
		return nil
	}

	if _, err := conn.Exec(ctx, "CREATE DATABASE "+pgx.Identifier{cfg.DBName}.Sanitize()); err != nil {
		return fmt.Errorf("create database %s: %w", cfg.DBName, err)
	}
	log.Printf("created database %s", cfg.DBName)
	return nil
}
