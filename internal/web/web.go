// Package web serves the server-rendered items page: a list header with
// search, a create-item modal and the signed-in user's menu entry.
package web

import (
	"embed"
	"html/template"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"itemvault/internal/config"
	"itemvault/internal/models"
	"itemvault/internal/service"
	"itemvault/internal/store"
)

//go:embed templates/*.html
var templateFS embed.FS

// Templates parses the embedded page templates.
func Templates() *template.Template {
	return template.Must(template.ParseFS(templateFS, "templates/*.html"))
}

type itemsPageData struct {
	Title       string
	Description string
	Query       string
	Items       []models.Item
	Count       int
	User        *models.User
}

// ItemsPageHandler handles GET /. The search box is seeded from the `q`
// query parameter; submitting the form navigates back here with a new `q`,
// and the clear link navigates here with none. Item data is only shown to
// a caller presenting a valid token (cookie or bearer header).
func ItemsPageHandler(itemStore store.ItemStore, userStore store.UserStore, cfg config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		q := c.Query("q")

		data := itemsPageData{
			Title:       "Items",
			Description: "Manage your items",
			Query:       q,
		}

		if user := resolveUser(c, userStore, cfg); user != nil {
			data.User = user

			var ownerID *uuid.UUID
			if !user.IsSuperuser {
				ownerID = &user.ID
			}

			items, count, err := itemStore.ListItems(c.Request.Context(), ownerID, q, models.PaginationParams{Limit: 100})
			if err != nil {
				slog.Error("Failed to list items for page", "error", err)
				c.String(http.StatusInternalServerError, "Failed to load items")
				return
			}
			data.Items = items
			data.Count = count
		}

		c.HTML(http.StatusOK, "items.html", data)
	}
}

// CreateItemFormHandler handles POST /items-form from the create modal.
// On success it redirects back to the list so the new item shows up.
func CreateItemFormHandler(itemStore store.ItemStore, userStore store.UserStore, cfg config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := resolveUser(c, userStore, cfg)
		if user == nil {
			c.String(http.StatusUnauthorized, "Not authenticated")
			return
		}

		title := strings.TrimSpace(c.PostForm("title"))
		if title == "" {
			c.String(http.StatusBadRequest, "Title is required")
			return
		}

		item := &models.Item{
			ID:          uuid.New(),
			OwnerID:     user.ID,
			Title:       title,
			Description: c.PostForm("description"),
			CreatedAt:   time.Now(),
			UpdatedAt:   time.Now(),
		}

		if err := itemStore.CreateItem(c.Request.Context(), item); err != nil {
			slog.Error("Failed to create item from form", "error", err)
			c.String(http.StatusInternalServerError, "Failed to create item")
			return
		}

		c.Redirect(http.StatusSeeOther, "/")
	}
}

// resolveUser tries the access_token cookie first, then the bearer header.
// A missing or invalid token is not an error here; the page degrades to its
// signed-out rendering.
func resolveUser(c *gin.Context, userStore store.UserStore, cfg config.Config) *models.User {
	tokenString, err := c.Cookie("access_token")
	if err != nil || tokenString == "" {
		header := c.GetHeader("Authorization")
		if strings.HasPrefix(header, "Bearer ") {
			tokenString = strings.TrimPrefix(header, "Bearer ")
		}
	}
	if tokenString == "" {
		return nil
	}

	userID, err := service.ParseAccessToken(cfg.SecretKey, tokenString)
	if err != nil {
		return nil
	}

	user, err := userStore.GetUser(c.Request.Context(), userID)
	if err != nil || !user.IsActive {
		return nil
	}
	return user
}
