package main

import (
	"context"
	"flag"
	"log"

	"tooltrack/internal/config"
	"tooltrack/internal/repository"
	"tooltrack/pkg/database"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
)

func main() {
	email := flag.String("email", "", "operator email (defaults to ADMIN_EMAIL)")
	password := flag.String("password", "", "new password (min 6 characters)")
	flag.Parse()

	// 1. Load Env
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, relying on system env")
	}
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if *email == "" {
		*email = cfg.AdminEmail
	}
	if len(*password) < 6 {
		log.Fatal("-password must have at least 6 characters")
	}

	// 2. Setup Database
	db, err := database.Open(database.Options{Driver: cfg.DBDriver, DSN: cfg.DatabaseURL})
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	users := repository.NewUserRepo(db)
	ctx := context.Background()

	// 3. Find operator
	user, err := users.FindByEmail(ctx, *email)
	if err != nil {
		log.Fatalf("User %s not found in database: %v", *email, err)
	}

	// 4. Hash and store, then end every open session
	if err := user.SetPassword(*password); err != nil {
		log.Fatalf("Failed to hash password: %v", err)
	}
	if err := users.UpdatePassword(ctx, user.ID, user.Password); err != nil {
		log.Fatalf("Failed to update password in DB: %v", err)
	}
	if err := users.UpdateTokenVersion(ctx, user.ID, uuid.New().String()); err != nil {
		log.Fatalf("Failed to revoke sessions: %v", err)
	}

	log.Printf("Password for %s has been reset", *email)
}
