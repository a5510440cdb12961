package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"shop-svc/cart"
	"shop-svc/database"
	"shop-svc/handlers"
	"shop-svc/kafka"
	"shop-svc/middleware"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"
)

func main() {
	// Initialize logger
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	// Initialize database
	db, err := database.InitDB(logger)
	if err != nil {
		logger.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer db.Close()

	if err := database.EnsureAdmin(db, logger); err != nil {
		logger.Fatal("Failed to seed admin account", zap.Error(err))
	}

	// Initialize Redis (session carts + product cache)
	redisClient, err := cart.InitRedis(logger)
	if err != nil {
		logger.Fatal("Failed to initialize Redis", zap.Error(err))
	}
	defer redisClient.Close()
	cartStore := cart.NewRedisStore(redisClient)

	// Initialize Kafka producer
	producer, err := kafka.InitProducer(logger)
	if err != nil {
		logger.Fatal("Failed to initialize Kafka producer", zap.Error(err))
	}
	defer producer.Close()

	// Initialize Kafka consumer
	consumer, err := kafka.InitConsumer(logger)
	if err != nil {
		logger.Fatal("Failed to initialize Kafka consumer", zap.Error(err))
	}
	defer consumer.Close()

	// Start Kafka consumer in background
	go func() {
		if err := kafka.StartConsumer(consumer, logger); err != nil {
			logger.Error("Kafka consumer error", zap.Error(err))
		}
	}()

	// Initialize OpenTelemetry
	shutdownTracing, err := middleware.InitTracing("shop-svc")
	if err != nil {
		logger.Fatal("Failed to initialize tracing", zap.Error(err))
	}
	defer shutdownTracing()

	// Setup Gin router
	router := gin.New()
	router.Use(gin.Recovery())
	// OpenTelemetry middleware must be first to extract trace context
	router.Use(otelgin.Middleware("shop-svc"))
	router.Use(middleware.LoggerMiddleware(logger))
	router.Use(middleware.MetricsMiddleware())
	router.Use(middleware.AuthMiddleware())

	// Health and metrics endpoints
	healthHandler := handlers.NewHealthHandler(db)
	router.GET("/health", handlers.HealthCheck)
	router.GET("/health/db", healthHandler.DBPing)
	router.GET("/metrics", middleware.PrometheusHandler())

	// Auth endpoints
	authHandler := handlers.NewAuthHandler(db, logger)
	router.POST("/auth/register", authHandler.Register)
	router.POST("/auth/login", authHandler.Login)

	// Product browsing
	productHandler := handlers.NewProductHandler(db, redisClient, logger)
	router.GET("/products", productHandler.GetProducts)
	router.GET("/products/featured", productHandler.GetFeatured)
	router.GET("/products/:id", productHandler.GetProduct)

	// Session cart
	cartHandler := handlers.NewCartHandler(cartStore, logger)
	router.GET("/cart", cartHandler.List)
	router.GET("/cart/count", cartHandler.Count)
	router.POST("/cart/items", cartHandler.AddItem)
	router.PUT("/cart/items", cartHandler.UpdateItem)
	router.DELETE("/cart/items", cartHandler.RemoveItem)
	router.DELETE("/cart", cartHandler.Clear)

	// Checkout and payment confirmation
	checkoutHandler := handlers.NewCheckoutHandler(db, cartStore, producer, logger)
	router.POST("/checkout", checkoutHandler.Checkout)

	paymentHandler := handlers.NewPaymentHandler(db, producer, logger)
	router.POST("/payments/confirm", paymentHandler.Confirm)
	router.GET("/payments/status", paymentHandler.Status)

	// Admin
	adminHandler := handlers.NewAdminHandler(db, redisClient, logger)
	admin := router.Group("/admin", middleware.RequireAdmin())
	admin.POST("/products", adminHandler.CreateProduct)
	admin.PUT("/products/:id", adminHandler.UpdateProduct)
	admin.DELETE("/products/:id", adminHandler.DeleteProduct)
	admin.POST("/products/map-images", adminHandler.MapImages)
	admin.GET("/customers", adminHandler.ListCustomers)
	admin.DELETE("/customers/:id", adminHandler.DeleteCustomer)
	admin.GET("/orders", adminHandler.ListOrders)

	// Start server
	srv := &http.Server{
		Addr:    ":" + getEnv("PORT", "8080"),
		Handler: router,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	logger.Info("Shop service started", zap.String("addr", srv.Addr))

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
