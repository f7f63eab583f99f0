package main

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"itemvault/internal/config"
	"itemvault/internal/database"
	"itemvault/internal/models"
	"itemvault/internal/service"
	"itemvault/internal/store"
)

// Creates a superuser account directly in the database. When no password is
// given a random one is generated and printed once.
func main() {
	var configPath string
	var email string
	var fullName string
	var password string

	flag.StringVar(&configPath, "config", "config.yaml", "Path to config file")
	flag.StringVar(&email, "email", "", "Email address for the superuser")
	flag.StringVar(&fullName, "name", "", "Full name for the superuser")
	flag.StringVar(&password, "password", "", "Password (random if omitted)")
	flag.Parse()

	if email == "" {
		log.Fatal("email is required")
	}

	cfg, err := config.LoadFromPath(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	generated := false
	if password == "" {
		raw := make([]byte, 18)
		if _, err := rand.Read(raw); err != nil {
			log.Fatalf("Failed to generate password: %v", err)
		}
		password = base64.URLEncoding.EncodeToString(raw)
		generated = true
	}

	hashed, err := service.HashPassword(password)
	if err != nil {
		log.Fatalf("Failed to hash password: %v", err)
	}

	ctx := context.Background()
	pool, err := database.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	userStore := store.NewPostgresUserStore(pool)
	user := &models.User{
		ID:             uuid.New(),
		Email:          email,
		FullName:       fullName,
		HashedPassword: hashed,
		IsActive:       true,
		IsSuperuser:    true,
		CreatedAt:      time.Now(),
		UpdatedAt:      time.Now(),
	}

	if err := userStore.CreateUser(ctx, user); err != nil {
		log.Fatalf("Failed to create superuser: %v", err)
	}

	fmt.Printf("Superuser created: %s (%s)\n", user.Email, user.ID)
	if generated {
		fmt.Printf("Generated password: %s\n", password)
	}
}
