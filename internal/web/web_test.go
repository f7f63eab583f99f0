package web

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"itemvault/internal/config"
	"itemvault/internal/models"
	"itemvault/internal/service"
)

type MockItemStore struct {
	mock.Mock
}

func (m *MockItemStore) ListItems(ctx context.Context, ownerID *uuid.UUID, q string, p models.PaginationParams) ([]models.Item, int, error) {
	args := m.Called(ctx, ownerID, q, p)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]models.Item), args.Int(1), args.Error(2)
}

func (m *MockItemStore) CreateItem(ctx context.Context, item *models.Item) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

func (m *MockItemStore) GetItem(ctx context.Context, id string) (*models.Item, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Item), args.Error(1)
}

func (m *MockItemStore) UpdateItem(ctx context.Context, item *models.Item) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

func (m *MockItemStore) DeleteItem(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockItemStore) DeleteItemsByOwner(ctx context.Context, ownerID uuid.UUID) error {
	args := m.Called(ctx, ownerID)
	return args.Error(0)
}

type MockUserStore struct {
	mock.Mock
}

func (m *MockUserStore) ListUsers(ctx context.Context, q string, p models.PaginationParams) ([]models.User, int, error) {
	args := m.Called(ctx, q, p)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]models.User), args.Int(1), args.Error(2)
}

func (m *MockUserStore) CreateUser(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserStore) GetUser(ctx context.Context, id string) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserStore) UpdateUser(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserStore) DeleteUser(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func testConfig() config.Config {
	cfg := config.NewDefaultConfig()
	cfg.SecretKey = "test-secret"
	return cfg
}

func pageRouter(itemStore *MockItemStore, userStore *MockUserStore, cfg config.Config) *gin.Engine {
	router := gin.New()
	router.SetHTMLTemplate(Templates())
	router.GET("/", ItemsPageHandler(itemStore, userStore, cfg))
	router.POST("/items-form", CreateItemFormHandler(itemStore, userStore, cfg))
	return router
}

func signedInUser() *models.User {
	return &models.User{
		ID:        uuid.New(),
		Email:     "ada@example.com",
		FullName:  "Ada Lovelace",
		AvatarURL: "https://example.com/ada.png",
		IsActive:  true,
	}
}

func TestItemsPageHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cfg := testConfig()

	t.Run("SearchInputSeededFromQueryParam", func(t *testing.T) {
		router := pageRouter(new(MockItemStore), new(MockUserStore), cfg)

		req, _ := http.NewRequest("GET", "/?q=widget", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `value="widget"`)
		assert.Contains(t, w.Body.String(), ">Clear</a>")
	})

	t.Run("EmptyQueryLeavesInputBlank", func(t *testing.T) {
		router := pageRouter(new(MockItemStore), new(MockUserStore), cfg)

		req, _ := http.NewRequest("GET", "/", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `value=""`)
		assert.NotContains(t, w.Body.String(), ">Clear</a>")
	})

	t.Run("SignedOutShowsAvatarFallback", func(t *testing.T) {
		router := pageRouter(new(MockItemStore), new(MockUserStore), cfg)

		req, _ := http.NewRequest("GET", "/", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), ">CN</span>")
		assert.NotContains(t, w.Body.String(), "<img")
		assert.Contains(t, w.Body.String(), "Sign in to see your items.")
	})

	t.Run("InvalidTokenDegradesToSignedOut", func(t *testing.T) {
		router := pageRouter(new(MockItemStore), new(MockUserStore), cfg)

		req, _ := http.NewRequest("GET", "/", nil)
		req.AddCookie(&http.Cookie{Name: "access_token", Value: "not-a-jwt"})
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), ">CN</span>")
	})

	t.Run("UserWithoutAvatarGetsFallback", func(t *testing.T) {
		user := signedInUser()
		user.AvatarURL = ""
		token, err := service.CreateAccessToken(cfg.SecretKey, user.ID.String(), time.Hour)
		assert.NoError(t, err)

		mockUserStore := new(MockUserStore)
		mockUserStore.On("GetUser", mock.Anything, user.ID.String()).Return(user, nil)
		mockItemStore := new(MockItemStore)
		mockItemStore.On("ListItems", mock.Anything, mock.Anything, "", mock.Anything).
			Return([]models.Item{}, 0, nil)
		router := pageRouter(mockItemStore, mockUserStore, cfg)

		req, _ := http.NewRequest("GET", "/", nil)
		req.AddCookie(&http.Cookie{Name: "access_token", Value: token})
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), ">CN</span>")
		assert.Contains(t, w.Body.String(), "Ada Lovelace")
	})

	t.Run("SignedInShowsAvatarNameAndItems", func(t *testing.T) {
		user := signedInUser()
		token, err := service.CreateAccessToken(cfg.SecretKey, user.ID.String(), time.Hour)
		assert.NoError(t, err)

		mockUserStore := new(MockUserStore)
		mockUserStore.On("GetUser", mock.Anything, user.ID.String()).Return(user, nil)
		mockItemStore := new(MockItemStore)
		mockItemStore.On("ListItems", mock.Anything, &user.ID, "widget", mock.Anything).
			Return([]models.Item{
				{ID: uuid.New(), OwnerID: user.ID, Title: "Widget deluxe", Description: "The good one"},
			}, 1, nil)
		router := pageRouter(mockItemStore, mockUserStore, cfg)

		req, _ := http.NewRequest("GET", "/?q=widget", nil)
		req.AddCookie(&http.Cookie{Name: "access_token", Value: token})
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "https://example.com/ada.png")
		assert.NotContains(t, w.Body.String(), ">CN</span>")
		assert.Contains(t, w.Body.String(), "Ada Lovelace")
		assert.Contains(t, w.Body.String(), "ada@example.com")
		assert.Contains(t, w.Body.String(), "Widget deluxe")
		assert.Contains(t, w.Body.String(), "1 item")
		mockItemStore.AssertExpectations(t)
	})

	t.Run("ModalMarkupPresent", func(t *testing.T) {
		router := pageRouter(new(MockItemStore), new(MockUserStore), cfg)

		req, _ := http.NewRequest("GET", "/", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		body := w.Body.String()
		assert.Contains(t, body, `id="create-item-modal"`)
		assert.Contains(t, body, `action="/items-form"`)
		assert.Contains(t, body, `name="title"`)
		assert.Contains(t, body, ">Add Item</label>")
		assert.Contains(t, body, ">Cancel</label>")
	})
}

func TestCreateItemFormHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cfg := testConfig()

	postForm := func(router *gin.Engine, token string, form url.Values) *httptest.ResponseRecorder {
		req, _ := http.NewRequest("POST", "/items-form", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		if token != "" {
			req.AddCookie(&http.Cookie{Name: "access_token", Value: token})
		}
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	t.Run("Success", func(t *testing.T) {
		user := signedInUser()
		token, err := service.CreateAccessToken(cfg.SecretKey, user.ID.String(), time.Hour)
		assert.NoError(t, err)

		mockUserStore := new(MockUserStore)
		mockUserStore.On("GetUser", mock.Anything, user.ID.String()).Return(user, nil)
		mockItemStore := new(MockItemStore)
		mockItemStore.On("CreateItem", mock.Anything, mock.MatchedBy(func(it *models.Item) bool {
			return it.OwnerID == user.ID && it.Title == "New widget" && it.Description == "Shiny"
		})).Return(nil)
		router := pageRouter(mockItemStore, mockUserStore, cfg)

		w := postForm(router, token, url.Values{
			"title":       {"New widget"},
			"description": {"Shiny"},
		})

		assert.Equal(t, http.StatusSeeOther, w.Code)
		assert.Equal(t, "/", w.Header().Get("Location"))
		mockItemStore.AssertExpectations(t)
	})

	t.Run("Unauthenticated", func(t *testing.T) {
		mockItemStore := new(MockItemStore)
		router := pageRouter(mockItemStore, new(MockUserStore), cfg)

		w := postForm(router, "", url.Values{"title": {"New widget"}})

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		mockItemStore.AssertNotCalled(t, "CreateItem", mock.Anything, mock.Anything)
	})

	t.Run("BlankTitleRejected", func(t *testing.T) {
		user := signedInUser()
		token, err := service.CreateAccessToken(cfg.SecretKey, user.ID.String(), time.Hour)
		assert.NoError(t, err)

		mockUserStore := new(MockUserStore)
		mockUserStore.On("GetUser", mock.Anything, user.ID.String()).Return(user, nil)
		mockItemStore := new(MockItemStore)
		router := pageRouter(mockItemStore, mockUserStore, cfg)

		w := postForm(router, token, url.Values{"title": {"   "}})

		assert.Equal(t, http.StatusBadRequest, w.Code)
		mockItemStore.AssertNotCalled(t, "CreateItem", mock.Anything, mock.Anything)
	})
}
