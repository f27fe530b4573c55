package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Freeeeeet/appointment_service/internal/app"
	"github.com/Freeeeeet/appointment_service/internal/clock"
	"github.com/Freeeeeet/appointment_service/internal/config"
	"github.com/Freeeeeet/appointment_service/internal/controller/api"
	botcontroller "github.com/Freeeeeet/appointment_service/internal/controller/bot"
	"github.com/Freeeeeet/appointment_service/internal/metrics"
	"github.com/Freeeeeet/appointment_service/internal/migrations"
	"github.com/Freeeeeet/appointment_service/internal/repository"
	"github.com/Freeeeeet/appointment_service/internal/service"
	"github.com/go-telegram/bot"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 15 * time.Second

func main() {
	rootCmd := &cobra.Command{
		Use:          "appointment-service",
		Short:        "Doctor appointment availability and booking service",
		SilenceUsage: true,
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API (and the doctor bot when TELEGRAM_TOKEN is set)",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			logger := app.NewLogger(cfg.Environment)
			defer logger.Sync()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return runServer(ctx, cfg, logger)
		},
	}
}

func runServer(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	logger.Info("Starting appointment service",
		zap.String("environment", cfg.Environment),
		zap.String("addr", cfg.HTTPAddr),
		zap.String("timezone", cfg.Location.String()),
		zap.Bool("bot_enabled", cfg.BotEnabled()),
	)

	pool, err := app.NewPool(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer pool.Close()

	if cfg.AutoMigrate {
		if err := migrateUp(ctx, pool, logger); err != nil {
			return err
		}
	}

	var m *metrics.Metrics
	if cfg.MetricsEnabled {
		m = metrics.New()
	}
	clk := clock.New(cfg.Location)

	doctorRepo := repository.NewDoctorRepository(pool)
	scheduleRepo := repository.NewScheduleRepository(pool, logger)
	appointmentRepo := repository.NewAppointmentRepository(pool)
	userRepo := repository.NewUserRepository(pool)

	availabilityService := service.NewAvailabilityService(
		doctorRepo, scheduleRepo, appointmentRepo, clk,
		service.AvailabilityConfig{Days: cfg.PlannerDays, Consultation: cfg.Consultation},
		m, logger,
	)
	scheduleService := service.NewScheduleService(doctorRepo, scheduleRepo, logger)
	bookingService := service.NewBookingService(availabilityService, appointmentRepo, userRepo, m, logger)
	dashboardService := service.NewDashboardService(doctorRepo, appointmentRepo, clk, logger)
	doctorService := service.NewDoctorService(doctorRepo, availabilityService, logger)

	handler := api.NewHandler(api.Services{
		Schedules:    scheduleService,
		Availability: availabilityService,
		Booking:      bookingService,
		Dashboard:    dashboardService,
		Doctors:      doctorService,
	}, logger)

	// Бот создаётся до старта HTTP-сервера
	botController, err := newBotController(cfg, logger, doctorService, dashboardService, bookingService, availabilityService)
	if err != nil {
		return err
	}

	server := &http.Server{
		Addr: cfg.HTTPAddr,
		Handler: api.NewRouter(handler, api.RouterConfig{
			CORSOrigins: cfg.CORSOrigins,
			Metrics:     m,
			Health:      pool.Ping,
		}, logger),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("HTTP server listening", zap.String("addr", cfg.HTTPAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down HTTP server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if botController != nil {
		if err := botController.RegisterHandlers(gctx); err != nil {
			logger.Warn("Bot commands were not registered", zap.Error(err))
		}

		g.Go(func() error {
			botController.Start(gctx)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		logger.Error("Service stopped with error", zap.Error(err))
		return err
	}

	logger.Info("Service stopped")
	return nil
}

// newBotController возвращает nil, если токен не задан
func newBotController(
	cfg *config.Config,
	logger *zap.Logger,
	doctors *service.DoctorService,
	dashboard *service.DashboardService,
	booking *service.BookingService,
	availability *service.AvailabilityService,
) (*botcontroller.Controller, error) {
	if !cfg.BotEnabled() {
		return nil, nil
	}

	botInstance, err := bot.New(cfg.TelegramToken, bot.WithErrorsHandler(func(err error) {
		logger.Warn("Telegram bot error", zap.Error(err))
	}))
	if err != nil {
		return nil, fmt.Errorf("create telegram bot: %w", err)
	}

	return botcontroller.NewController(botInstance, doctors, dashboard, booking, availability, logger), nil
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withPool(cmd.Context(), func(ctx context.Context, pool *pgxpool.Pool, logger *zap.Logger) error {
				return migrateUp(ctx, pool, logger)
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withPool(cmd.Context(), func(ctx context.Context, pool *pgxpool.Pool, logger *zap.Logger) error {
				migrator, err := app.NewMigrator(pool, migrations.FS, logger)
				if err != nil {
					return err
				}
				defer migrator.Close()

				return migrator.Status(ctx)
			})
		},
	})

	return cmd
}

// withPool поднимает конфиг, логгер и пул для одноразовых команд
func withPool(ctx context.Context, fn func(ctx context.Context, pool *pgxpool.Pool, logger *zap.Logger) error) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := app.NewLogger(cfg.Environment)
	defer logger.Sync()

	pool, err := app.NewPool(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer pool.Close()

	return fn(ctx, pool, logger)
}

func migrateUp(ctx context.Context, pool *pgxpool.Pool, logger *zap.Logger) error {
	migrator, err := app.NewMigrator(pool, migrations.FS, logger)
	if err != nil {
		return err
	}
	defer migrator.Close()

	if err := migrator.Run(ctx); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	return nil
}
