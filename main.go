package main

import (
	"log"
	"log/slog"
	"net/http"
	"os"

	"github.com/Abel-cordero/ORDEN/internal/config"
	"github.com/Abel-cordero/ORDEN/internal/handlers"
	"github.com/Abel-cordero/ORDEN/internal/middleware"
	"github.com/Abel-cordero/ORDEN/internal/models"
	"github.com/Abel-cordero/ORDEN/internal/registry"
	"github.com/Abel-cordero/ORDEN/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

var reg *registry.Registry

func init() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found")
	}

	cfg := config.Load()

	var err error
	reg, err = registry.Open(cfg.DatabaseURL, cfg.OrderPrefix)
	if err != nil {
		log.Fatal("failed to connect to database: ", err)
	}

	// Schema corruption is fatal: nothing sensible can run against a
	// database that migration could not bring up to date.
	if err := reg.EnsureSchema(); err != nil {
		log.Fatal("failed to migrate database: ", err)
	}
}

func main() {
	cfg := config.Load()
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, nil)))

	if err := os.MkdirAll(cfg.OutDir, 0o755); err != nil {
		log.Fatal("failed to create output directory: ", err)
	}

	var smsService services.SMSServiceInterface = services.NoopSMSService{}
	if cfg.SMSEnabled() {
		smsService = services.NewSMSService(cfg.SMSUsername, cfg.SMSAPIKey, cfg.SMSSenderID)
	}

	customerHandler := handlers.NewCustomerHandler(reg)
	orderHandler := handlers.NewOrderHandler(reg, smsService)
	documentHandler := handlers.NewDocumentHandler(reg, cfg.OutDir)

	r := gin.Default()
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.CORSMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api/v1")
	{
		// dropdown contents for the intake form
		api.GET("/catalog", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{
				"equipment_types": models.EquipmentTypes,
				"brands":          models.Brands,
				"statuses":        models.Statuses,
			})
		})

		customers := api.Group("/customers")
		{
			customers.POST("", customerHandler.RegisterCustomer)
			customers.GET("/search", customerHandler.SearchCustomers)
			customers.GET("/:id", customerHandler.GetCustomer)
		}

		orders := api.Group("/orders")
		{
			orders.POST("", orderHandler.CreateOrder)
			orders.GET("", orderHandler.ListOrders)
			orders.GET("/:number", orderHandler.GetOrder)
			orders.PATCH("/:number", orderHandler.UpdateOrder)
			orders.PATCH("/:number/status", orderHandler.UpdateStatus)
			orders.POST("/:number/document", documentHandler.GenerateDocument)
		}
	}

	log.Printf("server is starting on %s", cfg.Bind)
	log.Fatal(r.Run(cfg.Bind))
}
