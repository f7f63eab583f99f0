package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"itemvault/internal/api/middleware"
	"itemvault/internal/models"
	"itemvault/internal/service"
	"itemvault/internal/store"
)

type createItemRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
}

type updateItemRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
}

// ListItemsHandler handles GET /items. Regular users only ever see their
// own items; superusers see everything.
func ListItemsHandler(itemStore store.ItemStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		current, _ := middleware.CurrentUser(c)

		var ownerID *uuid.UUID
		if !current.IsSuperuser {
			ownerID = &current.ID
		}

		q := c.Query("q")
		pagination := ParsePaginationParams(c)

		items, totalCount, err := itemStore.ListItems(c.Request.Context(), ownerID, q, pagination)
		if err != nil {
			slog.Error("Failed to list items", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list items"})
			return
		}

		if items == nil {
			items = []models.Item{}
		}

		c.JSON(http.StatusOK, models.ListResponse[models.Item]{
			Data:  items,
			Count: totalCount,
		})
	}
}

// CreateItemHandler handles POST /items
func CreateItemHandler(itemStore store.ItemStore, auditStore store.AuditStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		current, _ := middleware.CurrentUser(c)

		var req createItemRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		item := &models.Item{
			ID:          uuid.New(),
			OwnerID:     current.ID,
			Title:       req.Title,
			Description: req.Description,
			CreatedAt:   time.Now(),
			UpdatedAt:   time.Now(),
		}

		if err := itemStore.CreateItem(c.Request.Context(), item); err != nil {
			slog.Error("Failed to create item", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create item"})
			return
		}

		slog.Info("Item created", "item_id", item.ID, "owner_id", item.OwnerID)

		itemID := item.ID
		logEntry := &models.AuditLog{
			Action:     "CREATE_ITEM",
			EntityType: "items",
			EntityID:   &itemID,
			ActorID:    actorIDOf(c),
			Details: map[string]interface{}{
				"title": item.Title,
			},
			CreatedAt: time.Now(),
		}
		service.AsyncLogAction(c.Request.Context(), auditStore, logEntry)

		c.JSON(http.StatusCreated, item)
	}
}

// GetItemHandler handles GET /items/:id
func GetItemHandler(itemStore store.ItemStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		item, ok := fetchOwnedItem(c, itemStore)
		if !ok {
			return
		}
		c.JSON(http.StatusOK, item)
	}
}

// UpdateItemHandler handles PUT /items/:id
func UpdateItemHandler(itemStore store.ItemStore, auditStore store.AuditStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req updateItemRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		item, ok := fetchOwnedItem(c, itemStore)
		if !ok {
			return
		}

		item.Title = req.Title
		item.Description = req.Description
		item.UpdatedAt = time.Now()

		if err := itemStore.UpdateItem(c.Request.Context(), item); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update item"})
			return
		}

		itemID := item.ID
		logEntry := &models.AuditLog{
			Action:     "UPDATE_ITEM",
			EntityType: "items",
			EntityID:   &itemID,
			ActorID:    actorIDOf(c),
			Details: map[string]interface{}{
				"title": item.Title,
			},
			CreatedAt: time.Now(),
		}
		service.AsyncLogAction(c.Request.Context(), auditStore, logEntry)

		c.JSON(http.StatusOK, item)
	}
}

// DeleteItemHandler handles DELETE /items/:id
func DeleteItemHandler(itemStore store.ItemStore, auditStore store.AuditStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		item, ok := fetchOwnedItem(c, itemStore)
		if !ok {
			return
		}

		if err := itemStore.DeleteItem(c.Request.Context(), item.ID.String()); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete item"})
			return
		}

		itemID := item.ID
		logEntry := &models.AuditLog{
			Action:     "DELETE_ITEM",
			EntityType: "items",
			EntityID:   &itemID,
			ActorID:    actorIDOf(c),
			Details: map[string]interface{}{
				"title": item.Title,
			},
			CreatedAt: time.Now(),
		}
		service.AsyncLogAction(c.Request.Context(), auditStore, logEntry)

		c.JSON(http.StatusOK, models.Message{Message: "Item deleted successfully"})
	}
}

// fetchOwnedItem loads the :id item and enforces the ownership rule.
// On failure it has already written the response and returns ok=false.
func fetchOwnedItem(c *gin.Context, itemStore store.ItemStore) (*models.Item, bool) {
	current, _ := middleware.CurrentUser(c)

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Item not found"})
		return nil, false
	}

	item, err := itemStore.GetItem(c.Request.Context(), id.String())
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Item not found"})
			return nil, false
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get item"})
		return nil, false
	}

	if !current.IsSuperuser && item.OwnerID != current.ID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Not enough permissions"})
		return nil, false
	}

	return item, true
}
