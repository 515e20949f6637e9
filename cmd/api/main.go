package main

import (
	"context"
	"fmt"
	"log"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/innovast/followup/internal/config"
	"github.com/innovast/followup/internal/domain"
	"github.com/innovast/followup/internal/handler"
	"github.com/innovast/followup/internal/infra/postgresql"
	"github.com/innovast/followup/internal/infra/postgresql/migrations"
	infraredis "github.com/innovast/followup/internal/infra/redis"
	"github.com/innovast/followup/internal/observability"
	"github.com/innovast/followup/internal/provider"
	"github.com/innovast/followup/internal/render"
	"github.com/innovast/followup/internal/repository"
	"github.com/innovast/followup/internal/service"
	"github.com/innovast/followup/internal/transport"

	"github.com/valyala/fasthttp/fasthttpadaptor"
)

func main() {
	// A missing .env is fine; the environment may carry everything.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.LogLevel)
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	if err := run(cfg, logger); err != nil {
		logger.Fatal("service stopped with error", zap.Error(err))
	}
}

func run(cfg *config.Config, logger *zap.Logger) error {
	db, err := postgresql.NewPostgres(cfg.DatabaseDSN)
	if err != nil {
		return fmt.Errorf("postgres initialization failed: %w", err)
	}

	if err := migrations.Migrate(db); err != nil {
		return fmt.Errorf("database migrations failed: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("postgres underlying db init failed: %w", err)
	}
	defer sqlDB.Close()

	rdb, err := infraredis.NewRedis(cfg.RedisURL)
	if err != nil {
		return fmt.Errorf("redis initialization failed: %w", err)
	}
	defer rdb.Close()

	listLocker, err := infraredis.NewListLocker(rdb)
	if err != nil {
		return fmt.Errorf("list locker initialization failed: %w", err)
	}

	mailProvider, err := buildMailProvider(cfg)
	if err != nil {
		return err
	}

	metrics := observability.NewMetrics()
	location := cfg.Location()

	visitorRepo := repository.NewGormVisitorRepo(db)
	listRepo := repository.NewGormListRepo(db)
	templateRepo := repository.NewGormTemplateRepo(db)
	configRepo := repository.NewGormScheduleConfigRepo(db)
	jobRepo := repository.NewGormJobRepo(db)
	deliveryRepo := repository.NewGormDeliveryRepo(db)

	lifecycleSvc, err := service.NewLifecycleService(visitorRepo, domain.DefaultTransitionGraph(), logger)
	if err != nil {
		return err
	}
	listSvc, err := service.NewListService(listRepo, listLocker, logger)
	if err != nil {
		return err
	}
	templateSvc, err := service.NewTemplateService(templateRepo)
	if err != nil {
		return err
	}
	scheduleSvc, err := service.NewScheduleService(configRepo, jobRepo, location, logger)
	if err != nil {
		return err
	}
	dispatchSvc, err := service.NewDispatchService(
		deliveryRepo, mailProvider, render.Default(), scheduleSvc, metrics, cfg.MailFrom, logger,
	)
	if err != nil {
		return err
	}
	trigger, err := service.NewTrigger(scheduleSvc, dispatchSvc, listSvc, metrics, cfg.TriggerInterval(), logger)
	if err != nil {
		return err
	}

	app := fiber.New(fiber.Config{
		AppName:      "followup",
		ErrorHandler: transport.ErrorHandler(logger),
	})
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(transport.CorrelationMiddleware())
	app.Use(metrics.HTTPMiddleware())
	app.Get("/metrics", func(c *fiber.Ctx) error {
		fasthttpadaptor.NewFastHTTPHandler(metrics.Handler())(c.Context())
		return nil
	})

	handler.RegisterHealthRoutes(app, sqlDB, rdb)
	if err := handler.RegisterListRoutes(app, listSvc); err != nil {
		return err
	}
	if err := handler.RegisterVisitorRoutes(app, lifecycleSvc, templateSvc, listSvc, dispatchSvc, location); err != nil {
		return err
	}
	if err := handler.RegisterTemplateRoutes(app, templateSvc); err != nil {
		return err
	}
	if err := handler.RegisterScheduleRoutes(app, scheduleSvc); err != nil {
		return err
	}
	if err := handler.RegisterDispatchRoutes(app, dispatchSvc, listSvc); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		logger.Info("api listening",
			zap.Int("port", cfg.APIPort),
			zap.String("mailProvider", cfg.MailProvider),
			zap.String("timezone", cfg.Timezone),
		)
		return app.Listen(fmt.Sprintf(":%d", cfg.APIPort))
	})

	group.Go(func() error {
		return trigger.Start(groupCtx)
	})

	group.Go(func() error {
		<-groupCtx.Done()
		logger.Info("shutting down")
		return app.Shutdown()
	})

	return group.Wait()
}

func buildMailProvider(cfg *config.Config) (provider.Provider, error) {
	switch cfg.MailProvider {
	case config.MailProviderResend:
		return provider.NewResendProvider(cfg.ResendAPIKey)
	case config.MailProviderSMTP:
		return provider.NewSMTPProvider(
			cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword, cfg.SenderName,
		), nil
	default:
		return nil, fmt.Errorf("unsupported mail provider %q", cfg.MailProvider)
	}
}
