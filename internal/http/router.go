package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/bookshelf/internal/auth"
)

// NewRouter creates and configures the HTTP router with all endpoints.
// Uses RouterConfig to receive all dependencies, improving testability
// and reducing parameter count.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	// Apply security headers to all responses
	router.Use(auth.SecurityHeadersMiddleware())
	if cfg.HSTSMaxAge > 0 {
		router.Use(auth.StrictTransportSecurityMiddleware(cfg.HSTSMaxAge))
	}

	router.NoRoute(func(c *gin.Context) {
		respondError(c, http.StatusNotFound, "Not found.")
	})

	// Health endpoints
	health := NewHealthController(cfg.Database, cfg.TaskQueue, cfg.Version)
	router.GET("/health", health.Status)
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "pong",
		})
	})

	requireAuth := auth.NewMiddleware(cfg.AuthService).RequireAuth()
	api := router.Group("/api")

	// Account endpoints
	users := NewUsersController(cfg.AuthService)
	userRoutes := api.Group("/users")
	userRoutes.POST("/register", users.Register)
	userRoutes.POST("/login", users.Login)
	userRoutes.POST("/token/refresh", users.Refresh)

	account := userRoutes.Group("", requireAuth)
	account.POST("/logout", users.Logout)
	account.PUT("/update-user-details", users.UpdateDetails)
	account.PUT("/change-password", users.ChangePassword)
	if cfg.AuditService != nil {
		activity := NewAuditController(cfg.AuditService, cfg.Paginator)
		account.GET("/activity", activity.GetActivity)
	}

	// Book endpoints
	books := NewBooksController(cfg.BookService)
	bookRoutes := api.Group("/books", requireAuth)
	bookRoutes.POST("/create", books.Create)
	bookRoutes.PUT("/update/:id", books.Update)
	bookRoutes.DELETE("/delete/:id", books.Delete)
	bookRoutes.PATCH("/upload/:id", books.Upload)
	bookRoutes.GET("/list", books.List)
	bookRoutes.GET("/mine", books.Mine)
	bookRoutes.GET("/:id/file", books.File)

	// Reading list endpoints
	lists := NewReadingListsController(cfg.ReadingListService)
	listRoutes := bookRoutes.Group("/reading-lists")
	listRoutes.POST("", lists.Create)
	listRoutes.GET("", lists.List)
	listRoutes.DELETE("/:id", lists.Delete)
	listRoutes.GET("/:id/items", lists.Items)
	listRoutes.POST("/:id/items", lists.AddItem)
	listRoutes.PUT("/:id/items/reorder", lists.Reorder)
	listRoutes.DELETE("/:id/items/:book_id", lists.RemoveItem)

	return router
}
