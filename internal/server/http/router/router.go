package router

import (
	"log/slog"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"

	"github.com/vfaivre/thumbdesk/internal/server/http/handlers"
	"github.com/vfaivre/thumbdesk/internal/server/http/middleware"
	"github.com/vfaivre/thumbdesk/internal/usecase"
)

// Setup configures gin router with handlers and middleware.
func Setup(facade handlers.StudioFacade, logger *slog.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	engine.Use(gin.Recovery())
	engine.Use(middleware.RequestLogger(logger))
	engine.Use(middleware.DecompressRequest())
	engine.Use(gzip.Gzip(gzip.DefaultCompression))

	authHandler := handlers.NewAuthHandler(facade)
	orderHandler := handlers.NewOrderHandler(facade)
	paymentHandler := handlers.NewPaymentHandler(facade)

	api := engine.Group("/api")
	api.POST("/auth/register", authHandler.Register)
	api.POST("/auth/login", authHandler.Login)

	// Provider notifications authenticate by re-reading the referenced
	// order from the provider, not by session.
	api.POST("/payments/webhook", paymentHandler.Webhook)

	authed := api.Group("")
	authed.Use(middleware.AuthRequired(facade))

	authed.POST("/orders", orderHandler.Create)
	authed.GET("/orders", orderHandler.List)
	authed.GET("/orders/:id", orderHandler.Get)
	authed.GET("/orders/:id/time", orderHandler.TimeEntries)
	authed.POST("/orders/:id/cancel", orderHandler.Transition(usecase.TransitionCancel))
	authed.POST("/orders/:id/revision", orderHandler.Transition(usecase.TransitionRequestRevision))

	authed.GET("/payments", paymentHandler.History)
	authed.GET("/payments/orders", paymentHandler.BillableOrders)
	authed.POST("/payments/checkout", paymentHandler.Checkout)
	authed.GET("/payments/return", paymentHandler.Return)

	admin := authed.Group("")
	admin.Use(middleware.AdminRequired())
	admin.POST("/orders/:id/accept", orderHandler.Transition(usecase.TransitionAccept))
	admin.POST("/orders/:id/refuse", orderHandler.Transition(usecase.TransitionRefuse))
	admin.POST("/orders/:id/start", orderHandler.Transition(usecase.TransitionStart))
	admin.POST("/orders/:id/deliver", orderHandler.Transition(usecase.TransitionDeliver))
	admin.POST("/orders/:id/finish", orderHandler.Transition(usecase.TransitionFinish))
	admin.POST("/orders/:id/time", orderHandler.TrackTime)

	return engine
}
