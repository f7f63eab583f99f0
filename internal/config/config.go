package config

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Port                string          `yaml:"port"`
	Debug               bool            `yaml:"debug"`
	DatabaseURL         string          `yaml:"database_url"`
	SecretKey           string          `yaml:"secret_key"`
	AccessTokenTTL      time.Duration   `yaml:"access_token_ttl"`
	ResetTokenTTL       time.Duration   `yaml:"reset_token_ttl"`
	FirstSuperuserEmail string          `yaml:"first_superuser_email"`
	FirstSuperuserName  string          `yaml:"first_superuser_name"`
	FirstSuperuserPass  string          `yaml:"first_superuser_password"`
	FrontendHost        string          `yaml:"frontend_host"`
	TrustedProxies      []string        `yaml:"trusted_proxies"`
	RateLimitLogin      RateLimitConfig `yaml:"rate_limit_login"`
	RateLimitAPI        RateLimitConfig `yaml:"rate_limit_api"`
	SMTP                SMTPConfig      `yaml:"smtp"`
}

type RateLimitConfig struct {
	RequestsPerSecond float64       `yaml:"requests_per_second"`
	Burst             int           `yaml:"burst"`
	Enabled           bool          `yaml:"enabled"`
	CacheSize         int           `yaml:"cache_size"`
	CacheTTL          time.Duration `yaml:"cache_ttl"`
}

type SMTPConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Host      string `yaml:"host"`
	Port      int    `yaml:"port"`
	Username  string `yaml:"username"`
	Password  string `yaml:"password"`
	FromEmail string `yaml:"from_email"`
	FromName  string `yaml:"from_name"`
}

func Load() (Config, error) {
	return LoadFromPath("config.yaml")
}

func LoadFromPath(path string) (Config, error) {
	cfg := NewDefaultConfig()

	// .env values become plain environment variables, picked up by LoadEnv below.
	_ = godotenv.Load()

	f, err := os.Open(path)
	if err == nil {
		defer f.Close()
		decoder := yaml.NewDecoder(f)
		if err := decoder.Decode(&cfg); err != nil {
			return cfg, err
		}
	} else if !os.IsNotExist(err) {
		return cfg, err
	}

	cfg.LoadEnv()

	if err := cfg.ensureSecretKey(); err != nil {
		return cfg, err
	}

	return cfg, nil
}

func NewDefaultConfig() Config {
	return Config{
		Port:           "8080",
		Debug:          false,
		AccessTokenTTL: 8 * 24 * time.Hour,
		ResetTokenTTL:  1 * time.Hour,
		FrontendHost:   "http://localhost:8080",
		RateLimitLogin: RateLimitConfig{
			RequestsPerSecond: 2,
			Burst:             5,
			Enabled:           true,
			CacheSize:         5000,
			CacheTTL:          1 * time.Hour,
		},
		RateLimitAPI: RateLimitConfig{
			RequestsPerSecond: 20,
			Burst:             40,
			Enabled:           true,
			CacheSize:         5000,
			CacheTTL:          1 * time.Hour,
		},
		SMTP: SMTPConfig{
			Port:     587,
			FromName: "Itemvault",
		},
	}
}

func (c *Config) LoadEnv() {
	if envPort := os.Getenv("PORT"); envPort != "" {
		c.Port = envPort
	}
	if envDB := os.Getenv("DATABASE_URL"); envDB != "" {
		c.DatabaseURL = envDB
	}
	if envSecret := os.Getenv("SECRET_KEY"); envSecret != "" {
		c.SecretKey = envSecret
	}
	if envEmail := os.Getenv("FIRST_SUPERUSER_EMAIL"); envEmail != "" {
		c.FirstSuperuserEmail = envEmail
	}
	if envPass := os.Getenv("FIRST_SUPERUSER_PASSWORD"); envPass != "" {
		c.FirstSuperuserPass = envPass
	}
	if envHost := os.Getenv("FRONTEND_HOST"); envHost != "" {
		c.FrontendHost = envHost
	}
	if envTTL := os.Getenv("ACCESS_TOKEN_TTL"); envTTL != "" {
		if d, err := time.ParseDuration(envTTL); err == nil {
			c.AccessTokenTTL = d
		}
	}
	if envSMTPHost := os.Getenv("SMTP_HOST"); envSMTPHost != "" {
		c.SMTP.Host = envSMTPHost
		c.SMTP.Enabled = true
	}
	if envSMTPPort := os.Getenv("SMTP_PORT"); envSMTPPort != "" {
		if p, err := strconv.Atoi(envSMTPPort); err == nil {
			c.SMTP.Port = p
		}
	}
	if envSMTPUser := os.Getenv("SMTP_USER"); envSMTPUser != "" {
		c.SMTP.Username = envSMTPUser
	}
	if envSMTPPass := os.Getenv("SMTP_PASSWORD"); envSMTPPass != "" {
		c.SMTP.Password = envSMTPPass
	}
	if envFrom := os.Getenv("EMAILS_FROM_EMAIL"); envFrom != "" {
		c.SMTP.FromEmail = envFrom
	}
}

func (c *Config) ensureSecretKey() error {
	if c.SecretKey != "" {
		return nil
	}

	slog.Warn("SecretKey not found, generating a random ephemeral one. ISSUED TOKENS WILL BE INVALID AFTER RESTART.")

	keyBytes := make([]byte, 32)
	if _, err := rand.Read(keyBytes); err != nil {
		return fmt.Errorf("failed to generate secret key: %w", err)
	}
	c.SecretKey = base64.StdEncoding.EncodeToString(keyBytes)

	return nil
}
