package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"itemvault/internal/api/middleware"
	"itemvault/internal/config"
	"itemvault/internal/models"
	"itemvault/internal/service"
	"itemvault/internal/store"
)

type createUserRequest struct {
	Email       string `json:"email" binding:"required,email"`
	Password    string `json:"password" binding:"required,min=8"`
	FullName    string `json:"full_name"`
	AvatarURL   string `json:"avatar_url"`
	IsActive    *bool  `json:"is_active"`
	IsSuperuser bool   `json:"is_superuser"`
}

// Pointer fields distinguish "absent" from "zero" so a PATCH only
// touches what the client sent.
type updateUserRequest struct {
	Email       *string `json:"email"`
	Password    *string `json:"password"`
	FullName    *string `json:"full_name"`
	AvatarURL   *string `json:"avatar_url"`
	IsActive    *bool   `json:"is_active"`
	IsSuperuser *bool   `json:"is_superuser"`
}

type updateUserMeRequest struct {
	Email     *string `json:"email"`
	FullName  *string `json:"full_name"`
	AvatarURL *string `json:"avatar_url"`
}

type updatePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required,min=8"`
}

// ListUsersHandler handles GET /users
func ListUsersHandler(userStore store.UserStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		q := c.Query("q")
		pagination := ParsePaginationParams(c)

		users, totalCount, err := userStore.ListUsers(c.Request.Context(), q, pagination)
		if err != nil {
			slog.Error("Failed to list users", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list users"})
			return
		}

		if users == nil {
			users = []models.User{}
		}

		c.JSON(http.StatusOK, models.ListResponse[models.User]{
			Data:  users,
			Count: totalCount,
		})
	}
}

// CreateUserHandler handles POST /users
func CreateUserHandler(userStore store.UserStore, auditStore store.AuditStore, mailer service.Mailer, cfg config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req createUserRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		hashed, err := service.HashPassword(req.Password)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash password"})
			return
		}

		isActive := true
		if req.IsActive != nil {
			isActive = *req.IsActive
		}

		user := &models.User{
			ID:             uuid.New(),
			Email:          req.Email,
			FullName:       req.FullName,
			AvatarURL:      req.AvatarURL,
			HashedPassword: hashed,
			IsActive:       isActive,
			IsSuperuser:    req.IsSuperuser,
			CreatedAt:      time.Now(),
			UpdatedAt:      time.Now(),
		}

		if err := userStore.CreateUser(c.Request.Context(), user); err != nil {
			if errors.Is(err, store.ErrDuplicate) {
				c.JSON(http.StatusBadRequest, gin.H{"error": "The user with this email already exists in the system."})
				return
			}
			slog.Error("Failed to create user", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create user"})
			return
		}

		slog.Info("User created", "user_id", user.ID, "email", user.Email)

		body, err := service.RenderNewAccountEmail(user.FullName, user.Email, cfg.FrontendHost)
		if err != nil {
			slog.Error("Failed to render new account email", "error", err, "email", user.Email)
		} else if err := mailer.Send(user.Email, "New account", body); err != nil {
			slog.Error("Failed to send new account email", "error", err, "email", user.Email)
		}

		actorID := actorIDOf(c)
		logEntry := &models.AuditLog{
			Action:     "CREATE_USER",
			EntityType: "users",
			EntityID:   &user.ID,
			ActorID:    actorID,
			Details: map[string]interface{}{
				"email": user.Email,
			},
			CreatedAt: time.Now(),
		}
		service.AsyncLogAction(c.Request.Context(), auditStore, logEntry)

		c.JSON(http.StatusCreated, user)
	}
}

// ReadUserMeHandler handles GET /users/me
func ReadUserMeHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, _ := middleware.CurrentUser(c)
		c.JSON(http.StatusOK, user)
	}
}

// UpdateUserMeHandler handles PATCH /users/me
func UpdateUserMeHandler(userStore store.UserStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		current, _ := middleware.CurrentUser(c)

		var req updateUserMeRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		if req.Email != nil && *req.Email != "" && *req.Email != current.Email {
			existing, err := userStore.GetUserByEmail(c.Request.Context(), *req.Email)
			if err == nil && existing.ID != current.ID {
				c.JSON(http.StatusConflict, gin.H{"error": "User with this email already exists"})
				return
			}
			current.Email = *req.Email
		}
		if req.FullName != nil {
			current.FullName = *req.FullName
		}
		if req.AvatarURL != nil {
			current.AvatarURL = *req.AvatarURL
		}
		current.UpdatedAt = time.Now()

		if err := userStore.UpdateUser(c.Request.Context(), current); err != nil {
			if errors.Is(err, store.ErrDuplicate) {
				c.JSON(http.StatusConflict, gin.H{"error": "User with this email already exists"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update user"})
			return
		}

		c.JSON(http.StatusOK, current)
	}
}

// UpdatePasswordMeHandler handles PATCH /users/me/password
func UpdatePasswordMeHandler(userStore store.UserStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		current, _ := middleware.CurrentUser(c)

		var req updatePasswordRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		if !service.VerifyPassword(req.CurrentPassword, current.HashedPassword) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Incorrect password"})
			return
		}
		if req.CurrentPassword == req.NewPassword {
			c.JSON(http.StatusBadRequest, gin.H{"error": "New password cannot be the same as the current one"})
			return
		}

		hashed, err := service.HashPassword(req.NewPassword)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash password"})
			return
		}

		current.HashedPassword = hashed
		current.UpdatedAt = time.Now()
		if err := userStore.UpdateUser(c.Request.Context(), current); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update password"})
			return
		}

		c.JSON(http.StatusOK, models.Message{Message: "Password updated successfully"})
	}
}

// DeleteUserMeHandler handles DELETE /users/me
func DeleteUserMeHandler(userStore store.UserStore, itemStore store.ItemStore, auditStore store.AuditStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		current, _ := middleware.CurrentUser(c)

		if current.IsSuperuser {
			c.JSON(http.StatusForbidden, gin.H{"error": "Super users are not allowed to delete themselves"})
			return
		}

		if err := itemStore.DeleteItemsByOwner(c.Request.Context(), current.ID); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete user items"})
			return
		}
		if err := userStore.DeleteUser(c.Request.Context(), current.ID.String()); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete user"})
			return
		}

		userID := current.ID
		logEntry := &models.AuditLog{
			Action:     "DELETE_USER",
			EntityType: "users",
			EntityID:   &userID,
			ActorID:    &userID,
			Details:    map[string]interface{}{"self": true},
			CreatedAt:  time.Now(),
		}
		service.AsyncLogAction(c.Request.Context(), auditStore, logEntry)

		c.JSON(http.StatusOK, models.Message{Message: "User deleted successfully"})
	}
}

// ReadUserHandler handles GET /users/:id
func ReadUserHandler(userStore store.UserStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		current, _ := middleware.CurrentUser(c)
		id := c.Param("id")

		user, err := userStore.GetUser(c.Request.Context(), id)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}

		if user.ID != current.ID && !current.IsSuperuser {
			c.JSON(http.StatusForbidden, gin.H{"error": "The user doesn't have enough privileges"})
			return
		}

		c.JSON(http.StatusOK, user)
	}
}

// UpdateUserHandler handles PATCH /users/:id
func UpdateUserHandler(userStore store.UserStore, auditStore store.AuditStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")

		var req updateUserRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		user, err := userStore.GetUser(c.Request.Context(), id)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "The user with this id does not exist in the system"})
			return
		}

		if req.Email != nil && *req.Email != "" && *req.Email != user.Email {
			existing, err := userStore.GetUserByEmail(c.Request.Context(), *req.Email)
			if err == nil && existing.ID != user.ID {
				c.JSON(http.StatusConflict, gin.H{"error": "User with this email already exists"})
				return
			}
			user.Email = *req.Email
		}
		if req.Password != nil && *req.Password != "" {
			hashed, err := service.HashPassword(*req.Password)
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash password"})
				return
			}
			user.HashedPassword = hashed
		}
		if req.FullName != nil {
			user.FullName = *req.FullName
		}
		if req.AvatarURL != nil {
			user.AvatarURL = *req.AvatarURL
		}
		if req.IsActive != nil {
			user.IsActive = *req.IsActive
		}
		if req.IsSuperuser != nil {
			user.IsSuperuser = *req.IsSuperuser
		}
		user.UpdatedAt = time.Now()

		if err := userStore.UpdateUser(c.Request.Context(), user); err != nil {
			if errors.Is(err, store.ErrDuplicate) {
				c.JSON(http.StatusConflict, gin.H{"error": "User with this email already exists"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update user"})
			return
		}

		userID := user.ID
		logEntry := &models.AuditLog{
			Action:     "UPDATE_USER",
			EntityType: "users",
			EntityID:   &userID,
			ActorID:    actorIDOf(c),
			Details:    map[string]interface{}{"email": user.Email},
			CreatedAt:  time.Now(),
		}
		service.AsyncLogAction(c.Request.Context(), auditStore, logEntry)

		c.JSON(http.StatusOK, user)
	}
}

// DeleteUserHandler handles DELETE /users/:id
func DeleteUserHandler(userStore store.UserStore, itemStore store.ItemStore, auditStore store.AuditStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		current, _ := middleware.CurrentUser(c)
		id := c.Param("id")

		user, err := userStore.GetUser(c.Request.Context(), id)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}

		if user.ID == current.ID {
			c.JSON(http.StatusForbidden, gin.H{"error": "Super users are not allowed to delete themselves"})
			return
		}

		// Items go first so no orphans survive a partial failure.
		if err := itemStore.DeleteItemsByOwner(c.Request.Context(), user.ID); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete user items"})
			return
		}
		if err := userStore.DeleteUser(c.Request.Context(), id); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete user"})
			return
		}

		userID := user.ID
		logEntry := &models.AuditLog{
			Action:     "DELETE_USER",
			EntityType: "users",
			EntityID:   &userID,
			ActorID:    actorIDOf(c),
			Details:    map[string]interface{}{"email": user.Email},
			CreatedAt:  time.Now(),
		}
		service.AsyncLogAction(c.Request.Context(), auditStore, logEntry)

		c.JSON(http.StatusOK, models.Message{Message: "User deleted successfully"})
	}
}

func actorIDOf(c *gin.Context) *uuid.UUID {
	if user, ok := middleware.CurrentUser(c); ok {
		id := user.ID
		return &id
	}
	return nil
}
