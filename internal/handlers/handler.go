package handlers

import (
	"github.com/Petroo-2/marnstack4/internal/logger"
	"github.com/Petroo-2/marnstack4/internal/service"

	"github.com/gin-gonic/gin"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Handler wires HTTP layer to services and logging.
type Handler struct {
	services *service.Service
	log      *logger.Logger
}

// NewHandler constructs a new HTTP handler with dependencies.
func NewHandler(services *service.Service, log *logger.Logger) *Handler {
	return &Handler{services: services, log: log}
}

// InitRoutes builds and returns the Gin router with all routes registered.
func (h *Handler) InitRoutes() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health endpoint
	router.GET("/health", h.health)

	// Auth endpoints
	h.registerAuthRoutes(router)

	// Versioned API endpoints
	h.registerAPIRoutes(router)

	return router
}

func (h *Handler) registerAuthRoutes(r *gin.Engine) {
	auth := r.Group("/auth")
	{
		auth.POST("/sign-up", h.signUp)
		auth.POST("/sign-in", h.signIn)
	}
}

func (h *Handler) registerAPIRoutes(r *gin.Engine) {
	api := r.Group("/api/v1")

	// Reads are public; everything that mutates goes through the identity
	// middleware first, so no ownership check ever runs without a caller.
	posts := api.Group("/posts")
	{
		posts.GET("", h.listPosts)
		posts.GET("/:id", h.getPost)
	}

	protected := api.Group("/posts", h.identityMiddleware)
	{
		protected.POST("", h.createPost)
		protected.GET("/my", h.myPosts)
		protected.PUT("/:id", h.updatePost)
		protected.DELETE("/:id", h.deletePost)
		protected.POST("/:id/image", h.uploadImage)
		protected.POST("/:id/comments", h.addComment)
	}
}
