package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gemhaus/marketplace-api/internal/app"
	"github.com/gemhaus/marketplace-api/internal/clock"
	"github.com/gemhaus/marketplace-api/internal/config"
	"github.com/gemhaus/marketplace-api/internal/storage/postgres"
	transporthttp "github.com/gemhaus/marketplace-api/internal/transport/http"
	"github.com/gemhaus/marketplace-api/internal/worker"
	"github.com/gemhaus/marketplace-api/migrations"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stdout)

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("load config: %v", err)
	}
	if level, err := logrus.ParseLevel(cfg.Log.Level); err == nil {
		logger.SetLevel(level)
	} else {
		logger.Warnf("unknown log level %q, using info", cfg.Log.Level)
	}

	startupCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	pool, err := pgxpool.New(startupCtx, cfg.Database.URL)
	if err != nil {
		logger.Fatalf("connect to db: %v", err)
	}
	defer pool.Close()

	if err := pool.Ping(startupCtx); err != nil {
		logger.Fatalf("db ping: %v", err)
	}
	if err := migrations.Apply(startupCtx, pool); err != nil {
		logger.Fatalf("apply migrations: %v", err)
	}

	notificationRepo := postgres.NewNotificationRepository(pool)
	entityRepo := postgres.NewEntityRepository(pool)
	profileRepo := postgres.NewProfileRepository(pool)
	clk := clock.NewSystem()

	workflowSvc := app.NewWorkflowService(
		notificationRepo, notificationRepo, entityRepo, profileRepo, clk,
		app.WithSweepBatchSize(cfg.Workflow.SweepBatchSize),
	)
	offerSvc := app.NewOfferService(
		notificationRepo, notificationRepo, entityRepo, profileRepo, clk,
		app.WithHoldTTL(cfg.Workflow.HoldTTL),
	)
	feedSvc := app.NewNotificationService(notificationRepo)

	mux := http.NewServeMux()
	mux.HandleFunc("/health", transporthttp.HealthHandler)
	mux.Handle("/notifications", transporthttp.HandleNotifications(feedSvc))
	mux.Handle("/notifications/", transporthttp.HandleNotificationActions(feedSvc, workflowSvc))
	mux.Handle("/holds", transporthttp.HandleRequestHold(offerSvc))
	mux.Handle("/deals", transporthttp.HandleProposeDeal(offerSvc))
	mux.Handle("/", transporthttp.NotFoundHandler())

	handler := transporthttp.RequestLogger(transporthttp.CORS(cfg.Server.CORSOrigins, mux), logger)

	server := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: handler,
	}

	stopCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sweeper := worker.NewHoldExpiryWorker(workflowSvc, cfg.Workflow.SweepInterval, logger)
	go sweeper.Start(stopCtx)

	logger.Infof("api listening on :%s", cfg.Server.Port)

	srvErr := make(chan error, 1)
	go func() {
		srvErr <- server.ListenAndServe()
	}()

	select {
	case err := <-srvErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Errorf("server error: %v", err)
		}
	case <-stopCtx.Done():
		logger.Info("shutdown signal received, stopping server")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Errorf("server shutdown error: %v", err)
	}
	logger.Info("server stopped")
}
