package router

import (
	"log/slog"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"

	"github.com/polkiloo/storefront/internal/idempotency"
	"github.com/polkiloo/storefront/internal/server/http/handlers"
	"github.com/polkiloo/storefront/internal/server/http/middleware"
)

// Setup configures gin router with handlers and middleware.
func Setup(facade handlers.CheckoutFacade, store idempotency.Store, logger *slog.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	engine.Use(gin.Recovery())
	engine.Use(middleware.RequestLogger(logger))
	engine.Use(middleware.DecompressRequest())
	engine.Use(gzip.Gzip(gzip.DefaultCompression))

	orderHandler := handlers.NewOrderHandler(facade)
	checkoutHandler := handlers.NewCheckoutHandler(facade)

	api := engine.Group("/api")
	api.Use(middleware.Identify(facade))
	api.Use(middleware.Idempotent(store, logger))

	api.POST("/orders", orderHandler.Create)

	order := api.Group("/orders/:number")
	order.GET("", orderHandler.Get)
	order.POST("/line_items", orderHandler.AddLineItem)
	order.PUT("/line_items/:id", orderHandler.SetQuantity)
	order.PUT("/address", checkoutHandler.SetAddress)
	order.PUT("/shipping_method", checkoutHandler.SelectShippingMethod)
	order.POST("/payments", checkoutHandler.AddPayment)
	order.POST("/advance", checkoutHandler.Advance)
	order.GET("/checkout_allowed", checkoutHandler.CheckoutAllowed)
	order.GET("/rates", checkoutHandler.Rates)
	order.POST("/cancel", checkoutHandler.Cancel)
	order.POST("/claim", middleware.AuthRequired(facade), orderHandler.Claim)

	return engine
}
