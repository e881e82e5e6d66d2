package main

import (
	"context"
	stderrors "errors"
	"net/http"
	"os"
	"os/signal"
	"sort"
	"strconv"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"

	"github.com/wms-platform/production-service/internal/application"
	"github.com/wms-platform/production-service/internal/domain"
	kafkaPub "github.com/wms-platform/production-service/internal/infrastructure/kafka"
	mongoRepo "github.com/wms-platform/production-service/internal/infrastructure/mongodb"
	"github.com/wms-platform/production-service/internal/infrastructure/writer"
	"github.com/wms-platform/production-service/pkg/auth"
	"github.com/wms-platform/production-service/pkg/blob"
	"github.com/wms-platform/production-service/pkg/errors"
	"github.com/wms-platform/production-service/pkg/kafka"
	"github.com/wms-platform/production-service/pkg/logging"
	"github.com/wms-platform/production-service/pkg/metrics"
	"github.com/wms-platform/production-service/pkg/middleware"
	"github.com/wms-platform/production-service/pkg/mongodb"
)

const serviceName = "production-service"

func main() {
	godotenv.Load()

	logConfig := logging.DefaultConfig(serviceName)
	logConfig.Level = logging.LogLevel(getEnv("LOG_LEVEL", "info"))
	logger := logging.New(logConfig)
	logger.SetDefault()

	logger.Info("Starting production-service API")

	config := loadConfig()
	ctx := context.Background()

	metricsConfig := metrics.DefaultConfig(serviceName)
	m := metrics.New(metricsConfig)
	logger.Info("Metrics initialized")

	mongoClient, err := mongodb.NewClient(ctx, config.MongoDB)
	if err != nil {
		logger.WithError(err).Error("Failed to connect to MongoDB")
		os.Exit(1)
	}
	defer mongoClient.Close(ctx)
	logger.Info("Connected to MongoDB", "database", config.MongoDB.Database)

	kafkaProducer := kafka.NewProducer(config.Kafka)
	defer kafkaProducer.Close()
	logger.Info("Kafka producer initialized", "brokers", config.Kafka.Brokers)

	blobStore := blob.NewHTTPStore(config.Blob, logger.Logger)
	authorizer := auth.AllowAll{}

	// Repositories
	caseRepo := mongoRepo.NewCaseRecordRepository(mongoClient, m)
	manifestRepo := mongoRepo.NewImportManifestRepository(mongoClient, m)
	jobRepo := mongoRepo.NewImportJobRepository(mongoClient, m)
	shipmentRepo := mongoRepo.NewShipmentRepository(mongoClient, m)
	productivityRepo := mongoRepo.NewProductivityRepository(mongoClient, m)

	// Write strategy is probed once; the store topology does not change at runtime.
	writerFactory := writer.NewFactory(ctx, caseRepo, mongoClient, m, logger.Logger)
	logger.Info("Write strategy selected", "strategy", writerFactory.Strategy())

	publisher := kafkaPub.NewPublisher(kafkaProducer, logger.Logger)

	// Application services
	importService := application.NewImportService(
		caseRepo, manifestRepo, jobRepo, shipmentRepo,
		writerFactory, authorizer, publisher, m, logger, config.ImportBudget,
	)
	deletionService := application.NewDeletionService(
		caseRepo, manifestRepo, shipmentRepo, blobStore,
		authorizer, publisher, m, logger,
	)
	lookupService := application.NewLookupService(caseRepo, logger)
	productivityService := application.NewProductivityService(
		caseRepo, productivityRepo, authorizer, publisher, m, logger,
	)

	// Setup Gin router with middleware
	router := gin.New()

	middlewareConfig := middleware.DefaultConfig(serviceName, logger.Logger)
	middleware.Setup(router, middlewareConfig)
	router.Use(middleware.MetricsMiddleware(m))

	router.NoRoute(middleware.NoRoute())
	router.NoMethod(middleware.NoMethod())

	router.GET("/health", middleware.HealthCheck(serviceName))
	router.GET("/ready", middleware.ReadinessCheck(serviceName, func() error {
		return mongoClient.HealthCheck(ctx)
	}))
	router.GET("/metrics", middleware.MetricsEndpoint(m))

	api := router.Group("/api/v1/production")
	api.Use(middleware.RequireUserAuth())
	{
		api.POST("/import", importHandler(importService, logger))
		api.DELETE("/import", deleteHandler(deletionService, logger))
		api.GET("/import/jobs/:jobId", getJobHandler(importService, logger))
		api.GET("/cases", listCasesHandler(lookupService, logger))
		api.GET("/case", getCaseHandler(lookupService, logger))
		api.POST("/productivity", recordProductivityHandler(productivityService, logger))
		api.GET("/productivity/monthly", monthlyProductivityHandler(productivityService, logger))
	}

	srv := &http.Server{
		Addr:         config.ServerAddr,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: config.ImportBudget + 10*time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Error("Server error")
		}
	}()
	logger.Info("Server started", "addr", config.ServerAddr)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("Server forced to shutdown")
	}

	logger.Info("Server stopped")
}

// Config holds application configuration
type Config struct {
	ServerAddr   string
	ImportBudget time.Duration
	MongoDB      *mongodb.Config
	Kafka        *kafka.Config
	Blob         *blob.Config
}

func loadConfig() *Config {
	budget := application.DefaultImportBudget
	if raw := os.Getenv("IMPORT_BUDGET_SECONDS"); raw != "" {
		if seconds, err := strconv.Atoi(raw); err == nil && seconds > 0 {
			budget = time.Duration(seconds) * time.Second
		}
	}

	return &Config{
		ServerAddr:   getEnv("SERVER_ADDR", ":8021"),
		ImportBudget: budget,
		MongoDB: &mongodb.Config{
			URI:            getEnv("MONGODB_URI", "mongodb://localhost:27017"),
			Database:       getEnv("MONGODB_DATABASE", "production_db"),
			ConnectTimeout: 10 * time.Second,
			MaxPoolSize:    100,
			MinPoolSize:    10,
		},
		Kafka: &kafka.Config{
			Brokers:      []string{getEnv("KAFKA_BROKERS", "localhost:9092")},
			ClientID:     serviceName,
			BatchSize:    100,
			BatchTimeout: 10 * time.Millisecond,
			RequiredAcks: -1,
		},
		Blob: &blob.Config{
			BaseURL:    getEnv("BLOB_GATEWAY_URL", "http://localhost:9000"),
			APIKey:     os.Getenv("BLOB_GATEWAY_API_KEY"),
			Timeout:    10 * time.Second,
			RetryCount: 2,
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// HTTP Handlers

func respond(responder *middleware.ErrorResponder, err error) {
	if appErr, ok := errors.AsAppError(err); ok {
		responder.RespondWithAppError(appErr)
		return
	}
	responder.RespondInternalError(err)
}

// respondBindError separates field-level validation failures from malformed
// request bodies, so a bad date is VALIDATION while broken JSON stays
// INVALID_PAYLOAD.
func respondBindError(responder *middleware.ErrorResponder, err error) {
	var fieldErrs validator.ValidationErrors
	if stderrors.As(err, &fieldErrs) {
		fields := make(map[string]string, len(fieldErrs))
		for _, fe := range fieldErrs {
			fields[fe.Field()] = fe.Tag()
		}
		responder.RespondWithAppError(errors.ErrValidationWithFields("request failed validation", fields))
		return
	}
	responder.RespondInvalidPayload(err.Error())
}

func importHandler(service *application.ImportService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		var req struct {
			Shipments map[string][]domain.CaseRow `json:"shipments" binding:"required"`
			Meta      struct {
				FileName    string `json:"fileName"`
				FileURL     string `json:"fileUrl"`
				StoragePath string `json:"storagePath"`
			} `json:"meta"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			responder.RespondInvalidPayload(err.Error())
			return
		}

		cmd := application.ImportCommand{
			UserID:    middleware.GetUserID(c),
			Shipments: orderedShipmentRows(req.Shipments),
			Source: domain.SourceFile{
				FileName:    req.Meta.FileName,
				FileURL:     req.Meta.FileURL,
				StoragePath: req.Meta.StoragePath,
			},
		}

		result, err := service.Import(c.Request.Context(), cmd)
		if err != nil {
			respond(responder, err)
			return
		}
		c.JSON(http.StatusOK, result)
	}
}

// orderedShipmentRows fixes an iteration order for the shipment map so the
// import budget cuts off a deterministic suffix.
func orderedShipmentRows(shipments map[string][]domain.CaseRow) []application.ShipmentRows {
	ids := make([]string, 0, len(shipments))
	for id := range shipments {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	ordered := make([]application.ShipmentRows, 0, len(ids))
	for _, id := range ids {
		ordered = append(ordered, application.ShipmentRows{ShipmentID: id, Rows: shipments[id]})
	}
	return ordered
}

func deleteHandler(service *application.DeletionService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		var req struct {
			Shipments map[string][]string `json:"shipments" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			responder.RespondInvalidPayload(err.Error())
			return
		}

		ids := make([]string, 0, len(req.Shipments))
		for id := range req.Shipments {
			ids = append(ids, id)
		}
		sort.Strings(ids)

		cmd := application.DeleteCommand{UserID: middleware.GetUserID(c)}
		for _, id := range ids {
			cmd.Shipments = append(cmd.Shipments, application.ShipmentDeletion{
				ShipmentID:  id,
				CaseNumbers: req.Shipments[id],
			})
		}

		result, err := service.Delete(c.Request.Context(), cmd)
		if err != nil {
			respond(responder, err)
			return
		}
		c.JSON(http.StatusOK, result)
	}
}

func getJobHandler(service *application.ImportService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		job, err := service.GetJob(c.Request.Context(), c.Param("jobId"))
		if err != nil {
			respond(responder, err)
			return
		}
		c.JSON(http.StatusOK, job)
	}
}

func listCasesHandler(service *application.LookupService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		result, err := service.ListCases(c.Request.Context(), c.Query("shipmentId"))
		if err != nil {
			respond(responder, err)
			return
		}
		c.JSON(http.StatusOK, result)
	}
}

func getCaseHandler(service *application.LookupService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		detail, err := service.GetCase(c.Request.Context(), c.Query("shipmentId"), c.Query("caseNumber"))
		if err != nil {
			respond(responder, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": detail})
	}
}

func recordProductivityHandler(service *application.ProductivityService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		var req struct {
			Date           string                `json:"date" binding:"required,date_ymd"`
			SortingEntries []domain.SortingEntry `json:"sortingEntries"`
			PackingEntries []domain.PackingEntry `json:"packingEntries"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBindError(responder, err)
			return
		}

		result, err := service.Record(c.Request.Context(), application.RecordProductivityCommand{
			UserID:         middleware.GetUserID(c),
			Date:           req.Date,
			SortingEntries: req.SortingEntries,
			PackingEntries: req.PackingEntries,
		})
		if err != nil {
			respond(responder, err)
			return
		}
		c.JSON(http.StatusOK, result)
	}
}

func monthlyProductivityHandler(service *application.ProductivityService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		date := c.Query("date")
		if date == "" {
			date = time.Now().UTC().Format("2006-01-02")
		}

		result, err := service.MonthlySummaries(c.Request.Context(), middleware.GetUserID(c), date)
		if err != nil {
			respond(responder, err)
			return
		}
		c.JSON(http.StatusOK, result)
	}
}
