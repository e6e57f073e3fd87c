package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"signtrack/internal/config"
	"signtrack/internal/handler"
	"signtrack/internal/infra/sqlite"
	"signtrack/internal/infra/sqlite/migrations"
	"signtrack/internal/observability"
	"signtrack/internal/pipeline"
	"signtrack/internal/ratelimit"
	"signtrack/internal/repository"
	"signtrack/internal/service"
	"signtrack/internal/transport"
	"signtrack/internal/workflow"
)

const serverShutdownTimeout = 5 * time.Second

func newSubmitCommand() *cobra.Command {
	var serve bool

	cmd := &cobra.Command{
		Use:   "submit <file>...",
		Short: "Submit documents to the signing pipeline and track them to completion",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSubmit(args, serve)
		},
	}

	cmd.Flags().BoolVar(&serve, "serve", false, "Expose the local status API while tracking")

	return cmd
}

func runSubmit(paths []string, serve bool) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger, err := observability.NewLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	db, err := sqlite.NewSQLite(cfg.JournalPath)
	if err != nil {
		return fmt.Errorf("journal initialization failed: %w", err)
	}
	if err := migrations.Migrate(db); err != nil {
		return fmt.Errorf("journal migrations failed: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	client, err := pipeline.NewClient(cfg.PipelineURL, cfg.AuthToken)
	if err != nil {
		return err
	}

	session := workflow.NewSession()
	session.AddFiles(paths...)

	tracker, err := service.NewTracker(session, client, repository.NewGormJournalRepo(db), logger)
	if err != nil {
		return err
	}
	metrics := observability.NewMetrics()
	tracker.SetMetrics(metrics)

	poller, err := service.NewPoller(tracker, logger)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := tracker.Submit(ctx); err != nil {
		fmt.Println(renderSnapshot(tracker.Snapshot()))
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	serveCtx, stopServe := context.WithCancel(gctx)
	defer stopServe()

	if serve {
		app := newStatusApp(cfg, logger, metrics, tracker, poller, sqlDB)
		g.Go(func() error {
			logger.Info("status api listening", zap.String("addr", cfg.ListenAddr))
			return app.Listen(cfg.ListenAddr)
		})
		g.Go(func() error {
			<-serveCtx.Done()
			return app.ShutdownWithTimeout(serverShutdownTimeout)
		})
	}

	g.Go(func() error {
		defer stopServe()
		return poller.Start(gctx)
	})

	if err := g.Wait(); err != nil {
		return err
	}

	fmt.Println(renderSnapshot(tracker.Snapshot()))

	snap := tracker.Snapshot()
	if snap.Result != nil && !snap.Result.Success {
		return fmt.Errorf("batch finished with %d failed file(s)", snap.Result.FailedFiles)
	}
	if snap.Result == nil && snap.LastError != "" {
		return fmt.Errorf("tracking stopped: %s", snap.LastError)
	}
	return nil
}

func newStatusApp(
	cfg *config.Config,
	logger *zap.Logger,
	metrics *observability.Metrics,
	tracker *service.Tracker,
	poller *service.Poller,
	sqlDB *sql.DB,
) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler:          transport.ErrorHandler(logger),
		DisableStartupMessage: true,
	})

	app.Use(metrics.HTTPMiddleware())
	app.Get("/metrics", adaptor.HTTPHandler(metrics.Handler()))

	limiter := ratelimit.NewLocalRateLimiter(
		float64(cfg.RefreshPerMinute)/60.0,
		cfg.RefreshBurst,
	)

	handler.RegisterHealthRoutes(app, sqlDB)
	if err := handler.RegisterStatusRoutes(app, tracker, poller, limiter); err != nil {
		logger.Error("failed to register status routes", zap.Error(err))
	}

	return app
}
