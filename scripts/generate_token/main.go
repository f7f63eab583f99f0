package main

import (
	"flag"
	"fmt"
	"log"
	"time"

	"itemvault/internal/config"
	"itemvault/internal/service"
)

// Issues an access token for an arbitrary user id, handy for poking the API
// with curl during development.
func main() {
	var configPath string
	var userID string
	var ttl time.Duration

	flag.StringVar(&configPath, "config", "config.yaml", "Path to config file")
	flag.StringVar(&userID, "user-id", "", "User ID to issue the token for")
	flag.DurationVar(&ttl, "ttl", 24*time.Hour, "Token lifetime")
	flag.Parse()

	if userID == "" {
		log.Fatal("user-id is required")
	}

	cfg, err := config.LoadFromPath(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	tokenString, err := service.CreateAccessToken(cfg.SecretKey, userID, ttl)
	if err != nil {
		log.Fatalf("Error signing token: %v", err)
	}

	fmt.Println(tokenString)
}
