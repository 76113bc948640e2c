package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/cmms-platform/inventory-service/pkg/api"
	"github.com/cmms-platform/inventory-service/pkg/cloudevents"
	"github.com/cmms-platform/inventory-service/pkg/errors"
	"github.com/cmms-platform/inventory-service/pkg/kafka"
	"github.com/cmms-platform/inventory-service/pkg/logging"
	"github.com/cmms-platform/inventory-service/pkg/metrics"
	"github.com/cmms-platform/inventory-service/pkg/middleware"
	"github.com/cmms-platform/inventory-service/pkg/mongodb"
	"github.com/cmms-platform/inventory-service/pkg/outbox"
	outboxMongo "github.com/cmms-platform/inventory-service/pkg/outbox/mongodb"

	"github.com/cmms-platform/inventory-service/internal/application"
	mongoRepo "github.com/cmms-platform/inventory-service/internal/infrastructure/mongodb"
)

const serviceName = "inventory-service"

func main() {
	logConfig := logging.DefaultConfig(serviceName)
	logConfig.Level = logging.LogLevel(getEnv("LOG_LEVEL", "info"))
	logger := logging.New(logConfig)
	logger.SetDefault()

	logger.Info("starting inventory-service API")

	config := loadConfig()
	ctx := context.Background()

	metricsConfig := metrics.DefaultConfig(serviceName)
	m := metrics.New(metricsConfig)

	mongoClient, err := mongodb.NewClient(ctx, config.MongoDB)
	if err != nil {
		logger.WithError(err).Error("failed to connect to MongoDB")
		os.Exit(1)
	}
	defer mongoClient.Close(ctx)
	logger.Info("connected to MongoDB", "database", config.MongoDB.Database)

	producer := kafka.NewProducer(config.Kafka, logger)
	defer producer.Close()
	logger.Info("Kafka producer initialized", "brokers", config.Kafka.Brokers)

	eventFactory := cloudevents.NewEventFactory(cloudevents.SourceInventory)

	db := mongoClient.Database()
	stockRepo := mongoRepo.NewStockRepository(db, eventFactory)
	movementRepo := mongoRepo.NewMovementRepository(db)
	reservationRepo := mongoRepo.NewReservationRepository(db)
	partRepo := mongoRepo.NewPartRepository(db, eventFactory)
	warehouseRepo := mongoRepo.NewWarehouseRepository(db)
	poRepo := mongoRepo.NewPurchaseOrderRepository(db, eventFactory)

	outboxRepo := outboxMongo.NewOutboxRepository(db)
	outboxPublisher := outbox.NewPublisher(outboxRepo, producer, logger, m, &outbox.PublisherConfig{
		PollInterval: 1 * time.Second,
		BatchSize:    100,
	})
	if err := outboxPublisher.Start(ctx); err != nil {
		logger.WithError(err).Error("failed to start outbox publisher")
		os.Exit(1)
	}
	defer outboxPublisher.Stop()
	logger.Info("outbox publisher started")

	stockService := application.NewStockService(stockRepo, logger, m)
	movementService := application.NewMovementService(movementRepo, logger)
	reservationService := application.NewReservationService(stockRepo, reservationRepo, logger, m)
	receiptService := application.NewReceiptService(stockRepo, partRepo, warehouseRepo, poRepo, logger, m)
	fulfillmentService := application.NewFulfillmentService(stockRepo, poRepo, logger, m)
	reportingService := application.NewReportingService(stockRepo, reservationRepo, partRepo,
		config.StaleThreshold, logger, m)
	catalogService := application.NewCatalogService(partRepo, warehouseRepo, logger)

	router := gin.New()
	middleware.Setup(router, middleware.DefaultConfig(serviceName, logger.Logger))
	router.Use(middleware.MetricsMiddleware(m))

	router.NoRoute(middleware.NoRoute())
	router.NoMethod(middleware.NoMethod())

	router.GET("/health", middleware.HealthCheck(serviceName))
	router.GET("/ready", middleware.ReadinessCheck(serviceName, func() error {
		return mongoClient.HealthCheck(ctx)
	}))
	router.GET("/metrics", middleware.MetricsEndpoint(m))

	v1 := router.Group("/api/v1/inventory")
	v1.Use(middleware.ActorAuth(middleware.DefaultActorAuthConfig()))
	{
		v1.GET("/stock", getStockHandler(stockService, logger))
		v1.GET("/stock/:stockId", getStockByIDHandler(stockService, logger))
		v1.POST("/stock/:stockId/adjust", adjustStockHandler(stockService, logger))
		v1.POST("/stock/transfer", transferStockHandler(stockService, logger))

		v1.GET("/movements", listMovementsHandler(movementService, logger))
		v1.POST("/movements/cleanup-duplicates", cleanupDuplicatesHandler(movementService, logger))

		v1.POST("/reservations", reservePartsHandler(reservationService, logger))
		v1.GET("/reservations/work-order/:workOrderId", reservationStatusHandler(reservationService, logger))
		v1.POST("/reservations/:reservationId/release", releaseReservationHandler(reservationService, logger))

		v1.POST("/purchase-orders/:purchaseOrderId/receive", receiveToInventoryHandler(receiptService, logger))
		v1.POST("/purchase-orders/:purchaseOrderId/fulfill", fulfillFromInventoryHandler(fulfillmentService, logger))

		v1.GET("/reports/low-stock", lowStockHandler(reportingService, logger))
		v1.GET("/reports/stale-reservations", staleReservationsHandler(reportingService, logger))
		v1.GET("/reports/valuation", valuationHandler(reportingService, logger))

		v1.GET("/parts", searchPartsHandler(catalogService, logger))
		v1.POST("/parts", createPartHandler(catalogService, logger))
		v1.GET("/parts/:partId", getPartHandler(catalogService, logger))
		v1.POST("/parts/:partId/deactivate", deactivatePartHandler(catalogService, logger))

		v1.GET("/warehouses", listWarehousesHandler(catalogService, logger))
		v1.POST("/warehouses", createWarehouseHandler(catalogService, logger))
	}

	srv := &http.Server{
		Addr:         config.ServerAddr,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
		}
	}()
	logger.Info("server started", "addr", config.ServerAddr)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
	}

	logger.Info("server stopped")
}

// Config holds application configuration
type Config struct {
	ServerAddr     string
	StaleThreshold time.Duration
	MongoDB        *mongodb.Config
	Kafka          *kafka.Config
}

func loadConfig() *Config {
	staleThreshold, err := time.ParseDuration(getEnv("RESERVATION_STALE_AFTER", "72h"))
	if err != nil || staleThreshold <= 0 {
		staleThreshold = 72 * time.Hour
	}

	return &Config{
		ServerAddr:     getEnv("SERVER_ADDR", ":8010"),
		StaleThreshold: staleThreshold,
		MongoDB: &mongodb.Config{
			URI:            getEnv("MONGODB_URI", "mongodb://localhost:27017"),
			Database:       getEnv("MONGODB_DATABASE", "cmms_inventory"),
			ConnectTimeout: 10 * time.Second,
			MaxPoolSize:    100,
			MinPoolSize:    10,
		},
		Kafka: &kafka.Config{
			Brokers:      strings.Split(getEnv("KAFKA_BROKERS", "localhost:9092"), ","),
			ClientID:     serviceName,
			BatchSize:    100,
			BatchTimeout: 10 * time.Millisecond,
			RequiredAcks: -1,
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func respondError(c *gin.Context, logger *logging.Logger, err error) {
	responder := middleware.NewErrorResponder(c, logger.Logger)
	if appErr, ok := errors.AsAppError(err); ok {
		responder.RespondWithAppError(appErr)
		return
	}
	responder.RespondInternalError(err)
}

func getStockHandler(service *application.StockService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		query := application.GetStockQuery{
			PartID:       c.Query("partId"),
			WarehouseID:  c.Query("warehouseId"),
			PlantID:      c.Query("plantId"),
			LowStockOnly: c.Query("lowStockOnly") == "true",
		}

		stocks, err := service.GetStock(c.Request.Context(), query)
		if err != nil {
			respondError(c, logger, err)
			return
		}
		c.JSON(http.StatusOK, api.OK(stocks))
	}
}

func getStockByIDHandler(service *application.StockService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		stock, err := service.GetStockByID(c.Request.Context(), c.Param("stockId"))
		if err != nil {
			respondError(c, logger, err)
			return
		}
		c.JSON(http.StatusOK, api.OK(stock))
	}
}

func adjustStockHandler(service *application.StockService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			PhysicalCount *int   `json:"physicalCount" binding:"required"`
			Reason        string `json:"reason" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, logger, errors.ErrValidation(err.Error()))
			return
		}

		cmd := application.AdjustStockCommand{
			StockID:       c.Param("stockId"),
			PhysicalCount: *req.PhysicalCount,
			Reason:        req.Reason,
			ActorID:       middleware.GetActorID(c),
		}

		stock, err := service.AdjustStock(c.Request.Context(), cmd)
		if err != nil {
			respondError(c, logger, err)
			return
		}
		c.JSON(http.StatusOK, api.OK(stock))
	}
}

func transferStockHandler(service *application.StockService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			PartID          string `json:"partId" binding:"required"`
			FromWarehouseID string `json:"fromWarehouseId" binding:"required"`
			ToWarehouseID   string `json:"toWarehouseId" binding:"required"`
			Quantity        int    `json:"quantity" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, logger, errors.ErrValidation(err.Error()))
			return
		}

		cmd := application.TransferStockCommand{
			PartID:          req.PartID,
			FromWarehouseID: req.FromWarehouseID,
			ToWarehouseID:   req.ToWarehouseID,
			Quantity:        req.Quantity,
			ActorID:         middleware.GetActorID(c),
		}

		if err := service.TransferStock(c.Request.Context(), cmd); err != nil {
			respondError(c, logger, err)
			return
		}
		c.JSON(http.StatusOK, api.OK(gin.H{"transferred": req.Quantity}))
	}
}

func listMovementsHandler(service *application.MovementService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		page := api.ParsePagination(c)
		query := application.ListMovementsQuery{
			PartID:          c.Query("partId"),
			WarehouseID:     c.Query("warehouseId"),
			MovementType:    c.Query("type"),
			WorkOrderID:     c.Query("workOrderId"),
			PurchaseOrderID: c.Query("purchaseOrderId"),
			From:            c.Query("from"),
			To:              c.Query("to"),
			Page:            int(page.Page),
			PageSize:        int(page.PageSize),
		}

		result, err := service.ListMovements(c.Request.Context(), query)
		if err != nil {
			respondError(c, logger, err)
			return
		}
		c.JSON(http.StatusOK, api.OK(result))
	}
}

func cleanupDuplicatesHandler(service *application.MovementService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			PurchaseOrderID string `json:"purchaseOrderId"`
		}
		// Body is optional; an empty body means cleanup across all POs
		_ = c.ShouldBindJSON(&req)

		cmd := application.CleanupDuplicateReceiptsCommand{
			PurchaseOrderID: req.PurchaseOrderID,
			ActorID:         middleware.GetActorID(c),
		}

		result, err := service.CleanupDuplicateReceipts(c.Request.Context(), cmd)
		if err != nil {
			respondError(c, logger, err)
			return
		}
		c.JSON(http.StatusOK, api.OK(result))
	}
}

func reservePartsHandler(service *application.ReservationService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			WorkOrderID  string                        `json:"workOrderId" binding:"required"`
			Reservations []application.ReservationLine `json:"reservations" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, logger, errors.ErrValidation(err.Error()))
			return
		}

		cmd := application.ReservePartsCommand{
			WorkOrderID: req.WorkOrderID,
			Lines:       req.Reservations,
			ActorID:     middleware.GetActorID(c),
		}

		result, err := service.ReserveParts(c.Request.Context(), cmd)
		if err != nil {
			respondError(c, logger, err)
			return
		}
		c.JSON(http.StatusOK, api.OK(result))
	}
}

func reservationStatusHandler(service *application.ReservationService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		status, err := service.GetReservationStatus(c.Request.Context(), c.Param("workOrderId"))
		if err != nil {
			respondError(c, logger, err)
			return
		}
		c.JSON(http.StatusOK, api.OK(status))
	}
}

func releaseReservationHandler(service *application.ReservationService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Consumed bool `json:"consumed"`
		}
		_ = c.ShouldBindJSON(&req)

		cmd := application.ReleaseReservationCommand{
			ReservationID: c.Param("reservationId"),
			Consumed:      req.Consumed,
			ActorID:       middleware.GetActorID(c),
		}

		reservation, err := service.ReleaseReservation(c.Request.Context(), cmd)
		if err != nil {
			respondError(c, logger, err)
			return
		}
		c.JSON(http.StatusOK, api.OK(reservation))
	}
}

func receiveToInventoryHandler(service *application.ReceiptService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Items []application.ReceiptItem `json:"items" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, logger, errors.ErrValidation(err.Error()))
			return
		}

		cmd := application.ReceiveToInventoryCommand{
			PurchaseOrderID: c.Param("purchaseOrderId"),
			Items:           req.Items,
			ActorID:         middleware.GetActorID(c),
		}

		result, err := service.ReceiveToInventory(c.Request.Context(), cmd)
		if err != nil {
			respondError(c, logger, err)
			return
		}
		c.JSON(http.StatusOK, api.OK(result))
	}
}

func fulfillFromInventoryHandler(service *application.FulfillmentService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Fulfillments []application.FulfillmentLine `json:"fulfillments" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, logger, errors.ErrValidation(err.Error()))
			return
		}

		cmd := application.FulfillFromInventoryCommand{
			PurchaseOrderID: c.Param("purchaseOrderId"),
			Lines:           req.Fulfillments,
			ActorID:         middleware.GetActorID(c),
		}

		result, err := service.FulfillFromInventory(c.Request.Context(), cmd)
		if err != nil {
			respondError(c, logger, err)
			return
		}
		c.JSON(http.StatusOK, api.OK(result))
	}
}

func lowStockHandler(service *application.ReportingService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		rows, err := service.GetLowStock(c.Request.Context(), c.Query("plantId"))
		if err != nil {
			respondError(c, logger, err)
			return
		}
		c.JSON(http.StatusOK, api.OK(rows))
	}
}

func staleReservationsHandler(service *application.ReportingService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		rows, err := service.GetStaleReservations(c.Request.Context())
		if err != nil {
			respondError(c, logger, err)
			return
		}
		c.JSON(http.StatusOK, api.OK(rows))
	}
}

func valuationHandler(service *application.ReportingService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		query := application.GetStockQuery{
			PartID:      c.Query("partId"),
			WarehouseID: c.Query("warehouseId"),
			PlantID:     c.Query("plantId"),
		}

		report, err := service.GetValuation(c.Request.Context(), query)
		if err != nil {
			respondError(c, logger, err)
			return
		}
		c.JSON(http.StatusOK, api.OK(report))
	}
}

func searchPartsHandler(service *application.CatalogService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		parts, err := service.SearchParts(c.Request.Context(), c.Query("query"))
		if err != nil {
			respondError(c, logger, err)
			return
		}
		c.JSON(http.StatusOK, api.OK(parts))
	}
}

func getPartHandler(service *application.CatalogService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		part, err := service.GetPart(c.Request.Context(), c.Param("partId"))
		if err != nil {
			respondError(c, logger, err)
			return
		}
		c.JSON(http.StatusOK, api.OK(part))
	}
}

func createPartHandler(service *application.CatalogService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			PartNumber string `json:"partNumber" binding:"required"`
			Name       string `json:"name" binding:"required"`
			Category   string `json:"category"`
			SupplierID string `json:"supplierId"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, logger, errors.ErrValidation(err.Error()))
			return
		}

		cmd := application.CreatePartCommand{
			PartNumber: req.PartNumber,
			Name:       req.Name,
			Category:   req.Category,
			SupplierID: req.SupplierID,
			ActorID:    middleware.GetActorID(c),
		}

		part, err := service.CreatePart(c.Request.Context(), cmd)
		if err != nil {
			respondError(c, logger, err)
			return
		}
		c.JSON(http.StatusCreated, api.OK(part))
	}
}

func deactivatePartHandler(service *application.CatalogService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		part, err := service.DeactivatePart(c.Request.Context(), c.Param("partId"), middleware.GetActorID(c))
		if err != nil {
			respondError(c, logger, err)
			return
		}
		c.JSON(http.StatusOK, api.OK(part))
	}
}

func listWarehousesHandler(service *application.CatalogService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		warehouses, err := service.ListWarehouses(c.Request.Context(),
			c.Query("plantId"), c.Query("activeOnly") == "true")
		if err != nil {
			respondError(c, logger, err)
			return
		}
		c.JSON(http.StatusOK, api.OK(warehouses))
	}
}

func createWarehouseHandler(service *application.CatalogService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			PlantID string `json:"plantId" binding:"required"`
			Code    string `json:"code" binding:"required"`
			Name    string `json:"name" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, logger, errors.ErrValidation(err.Error()))
			return
		}

		cmd := application.CreateWarehouseCommand{
			PlantID: req.PlantID,
			Code:    req.Code,
			Name:    req.Name,
			ActorID: middleware.GetActorID(c),
		}

		warehouse, err := service.CreateWarehouse(c.Request.Context(), cmd)
		if err != nil {
			respondError(c, logger, err)
			return
		}
		c.JSON(http.StatusCreated, api.OK(warehouse))
	}
}
