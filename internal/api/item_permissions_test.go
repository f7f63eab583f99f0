package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"itemvault/internal/api/handlers"
	"itemvault/internal/models"
	"itemvault/internal/store"
)

func itemRouter(user *models.User, itemStore *MockItemStore, auditStore *MockAuditStore) *gin.Engine {
	router := gin.New()
	router.Use(asUser(user))
	router.GET("/items/:id", handlers.GetItemHandler(itemStore))
	router.PUT("/items/:id", handlers.UpdateItemHandler(itemStore, auditStore))
	router.DELETE("/items/:id", handlers.DeleteItemHandler(itemStore, auditStore))
	return router
}

func TestItemOwnershipRules(t *testing.T) {
	gin.SetMode(gin.TestMode)

	owner := regularUser()
	stranger := regularUser()
	stranger.Email = "eve@example.com"

	item := &models.Item{
		ID:          uuid.New(),
		OwnerID:     owner.ID,
		Title:       "Secret plans",
		Description: "Do not share",
	}

	t.Run("OwnerCanRead", func(t *testing.T) {
		mockItemStore := new(MockItemStore)
		mockItemStore.On("GetItem", mock.Anything, item.ID.String()).Return(item, nil)
		router := itemRouter(owner, mockItemStore, new(MockAuditStore))

		req, _ := http.NewRequest("GET", "/items/"+item.ID.String(), nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "Secret plans")
	})

	t.Run("StrangerGetsNotEnoughPermissions", func(t *testing.T) {
		mockItemStore := new(MockItemStore)
		mockItemStore.On("GetItem", mock.Anything, item.ID.String()).Return(item, nil)
		router := itemRouter(stranger, mockItemStore, new(MockAuditStore))

		req, _ := http.NewRequest("GET", "/items/"+item.ID.String(), nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "Not enough permissions")
	})

	t.Run("SuperuserBypassesOwnership", func(t *testing.T) {
		mockItemStore := new(MockItemStore)
		mockItemStore.On("GetItem", mock.Anything, item.ID.String()).Return(item, nil)
		router := itemRouter(superUser(), mockItemStore, new(MockAuditStore))

		req, _ := http.NewRequest("GET", "/items/"+item.ID.String(), nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("MissingItemIs404", func(t *testing.T) {
		missingID := uuid.New()
		mockItemStore := new(MockItemStore)
		mockItemStore.On("GetItem", mock.Anything, missingID.String()).Return(nil, store.ErrNotFound)
		router := itemRouter(owner, mockItemStore, new(MockAuditStore))

		req, _ := http.NewRequest("GET", "/items/"+missingID.String(), nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Contains(t, w.Body.String(), "Item not found")
	})

	t.Run("MalformedItemIDIs404", func(t *testing.T) {
		mockItemStore := new(MockItemStore)
		router := itemRouter(owner, mockItemStore, new(MockAuditStore))

		req, _ := http.NewRequest("GET", "/items/not-a-uuid", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Contains(t, w.Body.String(), "Item not found")
		mockItemStore.AssertNotCalled(t, "GetItem", mock.Anything, mock.Anything)
	})

	t.Run("StrangerCannotUpdate", func(t *testing.T) {
		mockItemStore := new(MockItemStore)
		mockItemStore.On("GetItem", mock.Anything, item.ID.String()).Return(item, nil)
		router := itemRouter(stranger, mockItemStore, new(MockAuditStore))

		body, _ := json.Marshal(map[string]string{"title": "Hijacked"})
		req, _ := http.NewRequest("PUT", "/items/"+item.ID.String(), bytes.NewBuffer(body))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "Not enough permissions")
		mockItemStore.AssertNotCalled(t, "UpdateItem", mock.Anything, mock.Anything)
	})

	t.Run("OwnerUpdates", func(t *testing.T) {
		// Fresh copy; the handler mutates the item it loads.
		current := *item
		mockItemStore := new(MockItemStore)
		mockAuditStore := new(MockAuditStore)
		mockAuditStore.On("CreateAuditLog", mock.Anything, mock.Anything).Return(nil).Maybe()
		mockItemStore.On("GetItem", mock.Anything, item.ID.String()).Return(&current, nil)
		mockItemStore.On("UpdateItem", mock.Anything, mock.MatchedBy(func(it *models.Item) bool {
			return it.ID == item.ID && it.Title == "Updated title" && it.Description == "Updated description"
		})).Return(nil)
		router := itemRouter(owner, mockItemStore, mockAuditStore)

		body, _ := json.Marshal(map[string]string{
			"title":       "Updated title",
			"description": "Updated description",
		})
		req, _ := http.NewRequest("PUT", "/items/"+item.ID.String(), bytes.NewBuffer(body))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		mockItemStore.AssertExpectations(t)
	})

	t.Run("OwnerDeletes", func(t *testing.T) {
		mockItemStore := new(MockItemStore)
		mockAuditStore := new(MockAuditStore)
		mockAuditStore.On("CreateAuditLog", mock.Anything, mock.Anything).Return(nil).Maybe()
		mockItemStore.On("GetItem", mock.Anything, item.ID.String()).Return(item, nil)
		mockItemStore.On("DeleteItem", mock.Anything, item.ID.String()).Return(nil)
		router := itemRouter(owner, mockItemStore, mockAuditStore)

		req, _ := http.NewRequest("DELETE", "/items/"+item.ID.String(), nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var msg models.Message
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &msg))
		assert.Equal(t, "Item deleted successfully", msg.Message)
		mockItemStore.AssertExpectations(t)
	})
}
