package http

import (
	"github.com/gofiber/fiber/v2"

	appattendance "github.com/fa146612-art/kingdog-system-sub000/internal/application/attendance"
	"github.com/fa146612-art/kingdog-system-sub000/internal/application/billing"
	"github.com/fa146612-art/kingdog-system-sub000/internal/infrastructure/push"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	TransactionUC *billing.TransactionUseCase
	AnalyticsUC   *billing.AnalyticsUseCase
	CustomerUC    *billing.CustomerUseCase
	ReconcileUC   *billing.ReconcileUseCase
	AttendanceUC  *appattendance.UseCase
	TicketUC      *appattendance.TicketUseCase
	Hub           *push.Hub
	JWTSecret     string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	// Rutas protegidas (requieren Bearer Token)
	api := app.Group("/api", AuthMiddleware(deps.JWTSecret))

	// Transacciones
	transactions := api.Group("/transactions")
	transactionHandler := NewTransactionHandler(deps.TransactionUC, deps.AnalyticsUC)
	transactions.Post("/", transactionHandler.Create)
	transactions.Get("/", transactionHandler.List)
	transactions.Get("/summary", transactionHandler.Summary)
	// Las operaciones masivas destructivas quedan reservadas al admin.
	transactions.Post("/batch-delete", RequireRole("admin"), transactionHandler.BatchDelete)
	transactions.Post("/import", RequireRole("admin"), transactionHandler.Import)
	transactions.Get("/:id", transactionHandler.GetByID)
	transactions.Put("/:id", transactionHandler.Update)
	transactions.Patch("/:id/paid-amount", transactionHandler.UpdatePaidAmount)
	transactions.Delete("/:id", transactionHandler.Delete)

	// Clientes, balance y tiquete
	customers := api.Group("/customers")
	customerHandler := NewCustomerHandler(deps.CustomerUC, deps.ReconcileUC, deps.TicketUC)
	customers.Post("/", customerHandler.Create)
	customers.Get("/", customerHandler.List)
	customers.Get("/:id", customerHandler.GetByID)
	customers.Put("/:id", customerHandler.Update)
	customers.Get("/:id/balance", customerHandler.Balance)
	customers.Post("/:id/reconcile", customerHandler.Reconcile)
	customers.Post("/:id/ticket/charge", customerHandler.ChargeTicket)
	customers.Get("/:id/ticket", customerHandler.Ticket)

	// Asistencia
	attendance := api.Group("/attendance")
	attendanceHandler := NewAttendanceHandler(deps.AttendanceUC)
	attendance.Post("/mark", attendanceHandler.Mark)
	attendance.Get("/:date", attendanceHandler.ListByDate)

	// Eventos en vivo (SSE)
	eventsHandler := NewEventsHandler(deps.Hub)
	api.Get("/events", eventsHandler.Stream)
}
