package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"itemvault/internal/api/middleware"
	"itemvault/internal/config"
	"itemvault/internal/models"
	"itemvault/internal/service"
	"itemvault/internal/store"
)

type resetPasswordRequest struct {
	Token       string `json:"token" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=8"`
}

// LoginHandler handles POST /login/access-token.
// Accepts OAuth2-style form fields (username holds the email) so existing
// token clients keep working unchanged.
func LoginHandler(userStore store.UserStore, cfg config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		email := c.PostForm("username")
		password := c.PostForm("password")

		user, err := userStore.GetUserByEmail(c.Request.Context(), email)
		if err != nil || !service.VerifyPassword(password, user.HashedPassword) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Incorrect email or password"})
			return
		}
		if !user.IsActive {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Inactive user"})
			return
		}

		tokenString, err := service.CreateAccessToken(cfg.SecretKey, user.ID.String(), cfg.AccessTokenTTL)
		if err != nil {
			slog.Error("Failed to create access token", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create access token"})
			return
		}

		c.JSON(http.StatusOK, models.Token{
			AccessToken: tokenString,
			TokenType:   "bearer",
			ID:          user.ID,
			Email:       user.Email,
			FullName:    user.FullName,
		})
	}
}

// TestTokenHandler handles POST /login/test-token
func TestTokenHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := middleware.CurrentUser(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
			return
		}
		c.JSON(http.StatusOK, user)
	}
}

// RecoverPasswordHandler handles POST /password-recovery/:email
func RecoverPasswordHandler(userStore store.UserStore, mailer service.Mailer, cfg config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		email := c.Param("email")

		user, err := userStore.GetUserByEmail(c.Request.Context(), email)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "The user with this email does not exist in the system."})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to look up user"})
			return
		}

		token, err := service.CreatePasswordResetToken(cfg.SecretKey, user.Email, cfg.ResetTokenTTL)
		if err != nil {
			slog.Error("Failed to create password reset token", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create reset token"})
			return
		}

		body, err := service.RenderResetPasswordEmail(user.FullName, user.Email, cfg.FrontendHost, token, cfg.ResetTokenTTL.String())
		if err != nil {
			slog.Error("Failed to render reset email", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to prepare email"})
			return
		}

		if err := mailer.Send(user.Email, "Password recovery", body); err != nil {
			slog.Error("Failed to send reset email", "error", err, "email", user.Email)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to send email"})
			return
		}

		c.JSON(http.StatusOK, models.Message{Message: "Password recovery email sent"})
	}
}

// ResetPasswordHandler handles POST /reset-password
func ResetPasswordHandler(userStore store.UserStore, cfg config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req resetPasswordRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		email, err := service.VerifyPasswordResetToken(cfg.SecretKey, req.Token)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid token"})
			return
		}

		user, err := userStore.GetUserByEmail(c.Request.Context(), email)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "The user with this email does not exist in the system."})
			return
		}
		if !user.IsActive {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Inactive user"})
			return
		}

		hashed, err := service.HashPassword(req.NewPassword)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash password"})
			return
		}

		user.HashedPassword = hashed
		user.UpdatedAt = time.Now()
		if err := userStore.UpdateUser(c.Request.Context(), user); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update password"})
			return
		}

		c.JSON(http.StatusOK, models.Message{Message: "Password updated successfully"})
	}
}
