package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	appattendance "github.com/fa146612-art/kingdog-system-sub000/internal/application/attendance"
	"github.com/fa146612-art/kingdog-system-sub000/internal/application/billing"
	"github.com/fa146612-art/kingdog-system-sub000/internal/infrastructure/postgres"
	"github.com/fa146612-art/kingdog-system-sub000/internal/infrastructure/push"
	"github.com/fa146612-art/kingdog-system-sub000/internal/infrastructure/scheduler"
	httpRouter "github.com/fa146612-art/kingdog-system-sub000/internal/interfaces/http"
	"github.com/fa146612-art/kingdog-system-sub000/pkg/config"
	"github.com/fa146612-art/kingdog-system-sub000/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:     cfg.App.Env,
		Level:   "info",
		Service: cfg.App.Name,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	if err := postgres.Migrate(ctx, pool); err != nil {
		log.Fatal().Err(err).Msg("migraciones")
	}

	// Eventos: los casos de uso publican vía pg_notify y el listener los
	// trae de vuelta al hub local, sea cual sea la instancia que los generó.
	hub := push.NewHub(64)
	hub.Start()
	defer hub.Stop()
	postgres.NewListener(pool, hub).Start(ctx)
	publisher := postgres.NewNotifyPublisher(pool)

	customerRepo := postgres.NewCustomerRepository(pool)
	txRepo := postgres.NewTransactionRepository(pool)
	attendanceRepo := postgres.NewAttendanceRepository(pool)
	ticketLogRepo := postgres.NewTicketLogRepository(pool)
	analyticsRepo := postgres.NewAnalyticsRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	transactionUC := billing.NewTransactionUseCase(txRunner, txRepo, customerRepo, publisher)
	reconcileUC := billing.NewReconcileUseCase(txRepo, customerRepo, publisher)
	customerUC := billing.NewCustomerUseCase(customerRepo, publisher)
	analyticsUC := billing.NewAnalyticsUseCase(analyticsRepo)
	attendanceUC := appattendance.NewUseCase(txRunner, attendanceRepo, publisher)
	ticketUC := appattendance.NewTicketUseCase(txRunner, customerRepo, ticketLogRepo, publisher)

	// Job diario de recordatorios de tiquetes por vencer.
	reminder := scheduler.New(cfg.Reminder, ticketUC)
	if err := reminder.Start(); err != nil {
		log.Fatal().Err(err).Msg("programador de recordatorios")
	}
	defer reminder.Stop()

	// Sin WriteTimeout: /api/events mantiene streams SSE abiertos.
	app := fiber.New(fiber.Config{
		AppName:     cfg.App.Name,
		ReadTimeout: time.Second * 10,
		IdleTimeout: time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "KingDog API",
	}))

	httpRouter.Router(app, httpRouter.RouterDeps{
		TransactionUC: transactionUC,
		AnalyticsUC:   analyticsUC,
		CustomerUC:    customerUC,
		ReconcileUC:   reconcileUC,
		AttendanceUC:  attendanceUC,
		TicketUC:      ticketUC,
		Hub:           hub,
		JWTSecret:     cfg.JWT.Secret,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("apagando servidor...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor HTTP")
	}
	log.Info().Msg("servidor detenido")
}
