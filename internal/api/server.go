package api

import (
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	"itemvault/internal/api/handlers"
	"itemvault/internal/api/middleware"
	"itemvault/internal/config"
	"itemvault/internal/service"
	"itemvault/internal/store"
	"itemvault/internal/web"
)

type Server struct {
	Router *gin.Engine
	DB     *pgxpool.Pool
	Config config.Config

	UserStore  store.UserStore
	ItemStore  store.ItemStore
	AuditStore store.AuditStore
	StatsStore store.StatsStore
	Mailer     service.Mailer
}

func NewServer(cfg config.Config, db *pgxpool.Pool, us store.UserStore, is store.ItemStore, as store.AuditStore, ss store.StatsStore, mailer service.Mailer) *Server {
	r := gin.Default()

	r.SetHTMLTemplate(web.Templates())
	if len(cfg.TrustedProxies) > 0 {
		r.SetTrustedProxies(cfg.TrustedProxies)
	}

	server := &Server{
		Router:     r,
		DB:         db,
		Config:     cfg,
		UserStore:  us,
		ItemStore:  is,
		AuditStore: as,
		StatsStore: ss,
		Mailer:     mailer,
	}

	server.setupRoutes()
	return server
}

func (s *Server) setupRoutes() {
	loginRateLimiter := middleware.RateLimitMiddleware(s.Config.RateLimitLogin)
	apiRateLimiter := middleware.RateLimitMiddleware(s.Config.RateLimitAPI)

	// Public routes
	s.Router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// Server-rendered items page
	s.Router.GET("/", web.ItemsPageHandler(s.ItemStore, s.UserStore, s.Config))
	s.Router.POST("/items-form", web.CreateItemFormHandler(s.ItemStore, s.UserStore, s.Config))

	v1 := s.Router.Group("/api/v1")

	// Login & password recovery
	v1.POST("/login/access-token", loginRateLimiter, handlers.LoginHandler(s.UserStore, s.Config))
	v1.POST("/password-recovery/:email", loginRateLimiter, handlers.RecoverPasswordHandler(s.UserStore, s.Mailer, s.Config))
	v1.POST("/reset-password", loginRateLimiter, handlers.ResetPasswordHandler(s.UserStore, s.Config))

	// Protected routes
	authorized := v1.Group("/")
	authorized.Use(apiRateLimiter)
	authorized.Use(middleware.JWTAuth(s.Config, s.UserStore))
	{
		authorized.POST("/login/test-token", handlers.TestTokenHandler())

		// Own account
		authorized.GET("/users/me", handlers.ReadUserMeHandler())
		authorized.PATCH("/users/me", handlers.UpdateUserMeHandler(s.UserStore))
		authorized.PATCH("/users/me/password", handlers.UpdatePasswordMeHandler(s.UserStore))
		authorized.DELETE("/users/me", handlers.DeleteUserMeHandler(s.UserStore, s.ItemStore, s.AuditStore))
		authorized.GET("/users/:id", handlers.ReadUserHandler(s.UserStore))

		// Item Management
		authorized.GET("/items", handlers.ListItemsHandler(s.ItemStore))
		authorized.POST("/items", handlers.CreateItemHandler(s.ItemStore, s.AuditStore))
		authorized.GET("/items/:id", handlers.GetItemHandler(s.ItemStore))
		authorized.PUT("/items/:id", handlers.UpdateItemHandler(s.ItemStore, s.AuditStore))
		authorized.DELETE("/items/:id", handlers.DeleteItemHandler(s.ItemStore, s.AuditStore))

		// Superuser-only surface
		admin := authorized.Group("/")
		admin.Use(middleware.RequireSuperuser())
		{
			admin.GET("/users", handlers.ListUsersHandler(s.UserStore))
			admin.POST("/users", handlers.CreateUserHandler(s.UserStore, s.AuditStore, s.Mailer, s.Config))
			admin.PATCH("/users/:id", handlers.UpdateUserHandler(s.UserStore, s.AuditStore))
			admin.DELETE("/users/:id", handlers.DeleteUserHandler(s.UserStore, s.ItemStore, s.AuditStore))

			admin.GET("/admin/stats", handlers.GetDashboardStatsHandler(s.StatsStore))
			admin.GET("/admin/logs", handlers.ListAuditLogsHandler(s.AuditStore))
		}
	}
}
