package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"itemvault/internal/api"
	"itemvault/internal/config"
	"itemvault/internal/database"
	"itemvault/internal/models"
	"itemvault/internal/service"
	"itemvault/internal/store"
	"itemvault/internal/version"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	if cfg.Debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := database.Migrate(cfg.DatabaseURL, "migrations"); err != nil {
		slog.Info("Migration error (may be safe if no changes)", "error", err)
	}

	ctx := context.Background()
	pool, err := database.New(ctx, cfg.DatabaseURL)
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	userStore := store.NewPostgresUserStore(pool)
	itemStore := store.NewPostgresItemStore(pool)
	auditStore := store.NewPostgresAuditStore(pool)
	statsStore := store.NewPostgresStatsStore(pool)
	mailer := service.NewMailer(cfg.SMTP)

	if err := seedFirstSuperuser(ctx, cfg, userStore); err != nil {
		slog.Error("Failed to seed first superuser", "error", err)
		os.Exit(1)
	}

	server := api.NewServer(cfg, pool, userStore, itemStore, auditStore, statsStore, mailer)

	slog.Info("Itemvault ("+version.Version+") is ready", "port", cfg.Port)
	if err := server.Router.Run(":" + cfg.Port); err != nil {
		slog.Error("Failed to run server", "error", err)
		os.Exit(1)
	}
}

// seedFirstSuperuser creates the configured superuser account on first boot
// so a fresh deployment is immediately usable.
func seedFirstSuperuser(ctx context.Context, cfg config.Config, userStore store.UserStore) error {
	if cfg.FirstSuperuserEmail == "" || cfg.FirstSuperuserPass == "" {
		return nil
	}

	_, err := userStore.GetUserByEmail(ctx, cfg.FirstSuperuserEmail)
	if err == nil {
		return nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return err
	}

	hashed, err := service.HashPassword(cfg.FirstSuperuserPass)
	if err != nil {
		return err
	}

	user := &models.User{
		ID:             uuid.New(),
		Email:          cfg.FirstSuperuserEmail,
		FullName:       cfg.FirstSuperuserName,
		HashedPassword: hashed,
		IsActive:       true,
		IsSuperuser:    true,
		CreatedAt:      time.Now(),
		UpdatedAt:      time.Now(),
	}

	if err := userStore.CreateUser(ctx, user); err != nil {
		return err
	}

	slog.Info("First superuser created", "email", user.Email)
	return nil
}
