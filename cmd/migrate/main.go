package main

import (
	"context"
	"database/sql"
	"flag"
	"log"
	"os"

	"ai-medical-chat-be/internal/migrations"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
)

func main() {
	reset := flag.Bool("reset", false, "drop every table and migrate again from scratch")
	status := flag.Bool("status", false, "print migration status and exit")
	flag.Parse()

	// 1. Load Environment Variables
	if err := godotenv.Load(); err != nil {
		log.Println("Info: No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		log.Fatal("Error: DB_CONNECTION_STRING is not set")
	}

	// 2. Connect
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		log.Fatal("Error: Failed to open database:", err)
	}
	defer db.Close()

	ctx := context.Background()
	if err := db.PingContext(ctx); err != nil {
		log.Fatal("Error: Failed to connect to database:", err)
	}

	// 3. Migrate
	switch {
	case *status:
		err = migrations.Status(ctx, db)
	case *reset:
		log.Println("Resetting schema...")
		err = migrations.Reset(ctx, db)
	default:
		log.Println("Applying migrations...")
		err = migrations.Up(ctx, db)
	}
	if err != nil {
		log.Fatalf("Error: Migration failed: %v", err)
	}
	log.Println("Done.")
}
