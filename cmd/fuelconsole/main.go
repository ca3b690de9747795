package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/Renal37/fuel-orders/internal/backend"
	"github.com/Renal37/fuel-orders/internal/database"
	router "github.com/Renal37/fuel-orders/internal/http"
	"github.com/Renal37/fuel-orders/internal/logger"
	"github.com/Renal37/fuel-orders/internal/metrics"
	"github.com/Renal37/fuel-orders/internal/services"
	"github.com/Renal37/fuel-orders/internal/utils"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

func main() {
	config, err := NewConfig(os.Args[1:])
	if err != nil {
		log.Fatalf("Config wasn't read due to %s", err)
	}

	if err := logger.Initialize(config.logLevel, config.env); err != nil {
		log.Fatalf("Logger wasn't initialized due to %s", err)
	}
	defer logger.Log.Sync()

	metrics.Register()

	ctx, cancel := utils.HandleTerminationProcess(context.Background(), nil)
	defer cancel()

	client, err := backend.New(backend.Config{
		BaseURL:   config.apiBase,
		PathStyle: backend.PathStyle(config.apiPathStyle),
		Timeout:   config.upstreamTimeout,
	})
	if err != nil {
		logger.Log.Fatal("fuel order API client wasn't created", zap.Error(err))
	}

	var (
		storage services.AuditStorage
		queue   *services.JobQueueService
	)

	if config.dsn != "" {
		db, err := database.New(ctx, config.dsn)
		if err != nil {
			logger.Log.Fatal("database wasn't initialized", zap.Error(err))
		}
		defer db.Close()

		if err := db.RunMigrations(); err != nil {
			logger.Log.Fatal("migrations weren't run", zap.Error(err))
		}

		storage = db
		// not bound to ctx so that queued entries are written during shutdown
		queue = services.NewJobQueueService(context.Background(), config.auditQueueLength, config.auditWorkers)
	} else {
		logger.Log.Warn("DATABASE_URI is empty, audit trail is disabled")
	}

	auditService := services.NewAuditService(storage, queue)
	jwtService := services.NewJWTService()

	server := router.New(
		router.Config{Endpoint: config.endpoint, CookieSecure: config.cookieSecure},
		services.NewAuthService(client, jwtService),
		jwtService,
		services.NewOrderService(client, auditService),
		auditService,
	).Server()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Log.Info("running server",
			zap.String("address", config.endpoint),
			zap.String("api", config.apiBase),
			zap.String("pathStyle", config.apiPathStyle),
		)

		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Log.Error("server stopped with error", zap.Error(err))
	}

	if queue != nil {
		queue.Shutdown()
	}

	logger.Log.Info("server stopped")
}
