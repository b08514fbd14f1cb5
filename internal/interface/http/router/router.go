// Package router 组装Gin引擎：全局中间件、/api/v1路由、健康检查、指标和Swagger
package router

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/xiebiao/bookstore-orderengine/docs" // swagger文档
	"github.com/xiebiao/bookstore-orderengine/internal/infrastructure/config"
	"github.com/xiebiao/bookstore-orderengine/internal/interface/http/handler"
	"github.com/xiebiao/bookstore-orderengine/internal/interface/http/middleware"
	apperrors "github.com/xiebiao/bookstore-orderengine/pkg/errors"
	"github.com/xiebiao/bookstore-orderengine/pkg/metrics"
	"github.com/xiebiao/bookstore-orderengine/pkg/response"
	"github.com/xiebiao/bookstore-orderengine/pkg/validator"
)

// Handlers 所有HTTP处理器
type Handlers struct {
	User     *handler.UserHandler
	Book     *handler.BookHandler
	Category *handler.CategoryHandler
	Order    *handler.OrderHandler
}

// NewHandlers 供wire组装
func NewHandlers(
	userHandler *handler.UserHandler,
	bookHandler *handler.BookHandler,
	categoryHandler *handler.CategoryHandler,
	orderHandler *handler.OrderHandler,
) *Handlers {
	return &Handlers{
		User:     userHandler,
		Book:     bookHandler,
		Category: categoryHandler,
		Order:    orderHandler,
	}
}

// New 创建并配置Gin引擎
func New(cfg *config.Config, h *Handlers, auth *middleware.AuthMiddleware) *gin.Engine {
	switch cfg.Server.Mode {
	case gin.ReleaseMode, gin.TestMode:
		gin.SetMode(cfg.Server.Mode)
	}
	validator.Register()

	r := gin.New()
	r.Use(
		gin.Recovery(),
		middleware.Tracing(),
		middleware.Logger(),
		middleware.CORS(cfg.CORS),
	)
	if cfg.Metrics.Enabled {
		r.Use(middleware.Metrics())
		r.GET(cfg.Metrics.Path, gin.WrapH(metrics.Handler()))
	}

	r.GET("/ping", func(c *gin.Context) {
		response.Success(c, gin.H{
			"message": "pong",
			"status":  "healthy",
		})
	})
	if cfg.Server.Mode != gin.ReleaseMode {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}
	r.NoRoute(func(c *gin.Context) {
		response.ErrorWithCode(c, apperrors.ErrCodeNotFound, "接口不存在")
	})

	v1 := r.Group("/api/v1")
	registerUserRoutes(v1, h.User, auth)
	registerCatalogRoutes(v1, h.Book, h.Category, auth)
	registerOrderRoutes(v1, h.Order, auth)

	return r
}

func registerUserRoutes(v1 *gin.RouterGroup, h *handler.UserHandler, auth *middleware.AuthMiddleware) {
	users := v1.Group("/users")
	{
		// 公开接口
		users.POST("/register", h.Register)
		users.POST("/login", h.Login)
		users.POST("/refresh", h.Refresh)

		users.POST("/logout", auth.RequireAuth(), h.Logout)

		admin := users.Group("", auth.RequireAuth(), auth.RequireAdmin())
		admin.GET("", h.ListUsers)
		admin.PATCH("/:id", h.UpdateUser)
		admin.DELETE("/:id", h.DeleteUser)
	}

	profile := v1.Group("/profile", auth.RequireAuth())
	{
		profile.GET("", h.Profile)
		profile.PATCH("", h.UpdateProfile)
	}
}

func registerCatalogRoutes(v1 *gin.RouterGroup, books *handler.BookHandler, categories *handler.CategoryHandler, auth *middleware.AuthMiddleware) {
	b := v1.Group("/books")
	{
		b.GET("", books.ListBooks)
		b.GET("/:id", books.GetBook)

		admin := b.Group("", auth.RequireAuth(), auth.RequireAdmin())
		admin.POST("", books.CreateBook)
		admin.PATCH("/:id", books.UpdateBook)
		admin.DELETE("/:id", books.DeleteBook)
		admin.POST("/:id/stock", books.Restock)
	}

	c := v1.Group("/categories")
	{
		c.GET("", categories.ListCategories)
		c.GET("/:id", categories.GetCategory)

		admin := c.Group("", auth.RequireAuth(), auth.RequireAdmin())
		admin.POST("", categories.CreateCategory)
		admin.PATCH("/:id", categories.UpdateCategory)
		admin.DELETE("/:id", categories.DeleteCategory)
	}
}

func registerOrderRoutes(v1 *gin.RouterGroup, h *handler.OrderHandler, auth *middleware.AuthMiddleware) {
	orders := v1.Group("/orders", auth.RequireAuth())
	{
		orders.POST("", h.PlaceOrder)
		orders.GET("/history/:userId", h.History)
		orders.GET("/:id", h.GetOrder)

		admin := orders.Group("", auth.RequireAdmin())
		admin.GET("", h.ListOrders)
		admin.PATCH("/:id/status", h.UpdateStatus)
	}
}
