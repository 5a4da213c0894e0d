// Entry point for REST API
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/sqs"
	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"shiftpay.service/internal/api"
	"shiftpay.service/internal/api/handler"
	"shiftpay.service/internal/config"
	"shiftpay.service/internal/core"
	"shiftpay.service/internal/gateway"
	"shiftpay.service/internal/ports/messaging"
	"shiftpay.service/internal/ports/repository"
	"shiftpay.service/pkg/aws"
	"shiftpay.service/pkg/database"
	"shiftpay.service/pkg/logger"
	"shiftpay.service/pkg/telemetry"
)

func main() {
	// Load config
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("Could not load configuration")
	}

	// Configure structured logging
	logger.Setup(cfg.IsLocalDev)

	// Configure OpenTelemetry Tracing
	shutdownTracer, err := telemetry.InitTracer("shiftpay-api", cfg.OTLPEndpoint)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to init tracer")
	}
	defer func() {
		_ = shutdownTracer(context.Background())
	}()

	// DB connection
	db, err := database.NewInstrumentedConnection(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Error opening database")
	}
	defer db.Close()
	log.Info().Msg("Successfully connected to the database.")

	if err := repository.Migrate(db); err != nil {
		log.Fatal().Err(err).Msg("Error migrating database schema")
	}

	// AWS SDK Config
	awsCfg, err := aws.NewAWSConfig(context.Background(), cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("unable to load SDK config")
	}

	// Initialize dependencies
	sqsClient := sqs.NewFromConfig(awsCfg)
	repo := repository.NewPostgresRepository(db)
	producer := messaging.NewSQSProducer(sqsClient, cfg.SettlementSQSQueueURL, cfg.NotificationSQSQueueURL)

	var gw gateway.PaymentGateway
	if cfg.PaymentGatewayMode == "http" {
		gw = gateway.NewHTTPGateway(cfg.PaymentGatewayURL)
	} else {
		gw = gateway.NewSimulatedGateway()
	}

	settlementHandler := &handler.SettlementHandler{
		Ledger:     core.NewEscrowLedger(repo).WithDefaultFee(cfg.PlatformFeePercent),
		Engine:     core.NewSettlementEngine(repo, gw, producer).WithDefaultFee(cfg.PlatformFeePercent),
		Timesheets: core.NewTimesheetService(repo),
		Repo:       repo,
	}

	// Setup router and server
	router := api.NewRouter(settlementHandler)

	// Middleware to inject logger with trace ID
	loggerMiddleware := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			ctx = logger.EnrichContextWithLogger(ctx)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}

	// Wrap the router with OpenTelemetry middleware to create spans for each request
	h := otelhttp.NewHandler(loggerMiddleware(router), "api")

	serverAddr := ":" + cfg.ServerPort
	srv := &http.Server{
		Addr:    serverAddr,
		Handler: h,
	}

	// Start server in a goroutine
	go func() {
		log.Info().Str("port", cfg.ServerPort).Str("gateway_mode", cfg.PaymentGatewayMode).Msg("API Service starting")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("listen")
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	// The context is used to inform the server it has 5 seconds to finish
	// the requests it is currently handling
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exiting")
}
