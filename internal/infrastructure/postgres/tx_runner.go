package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fa146612-art/kingdog-system-sub000/internal/application/attendance"
	"github.com/fa146612-art/kingdog-system-sub000/internal/application/billing"
	"github.com/fa146612-art/kingdog-system-sub000/internal/domain/repository"
)

var _ billing.TxRunner = (*TxRunner)(nil)
var _ attendance.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL: la unidad
// atómica del sistema. Los repos que recibe fn están atados a la tx.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// Run inicia una transacción para escrituras de facturación (transacción +
// incremento de balance) y hace Commit o Rollback.
func (r *TxRunner) Run(ctx context.Context, fn func(
	txRepo repository.TransactionRepository,
	customerRepo repository.CustomerRepository,
) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(NewTransactionRepository(tx), NewCustomerRepository(tx)); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// RunAttendance inicia una transacción para la máquina de estados de
// asistencia (registro + tiquete + bitácora) y hace Commit o Rollback.
func (r *TxRunner) RunAttendance(ctx context.Context, fn func(
	attRepo repository.AttendanceRepository,
	customerRepo repository.CustomerRepository,
	logRepo repository.TicketLogRepository,
) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(NewAttendanceRepository(tx), NewCustomerRepository(tx), NewTicketLogRepository(tx)); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
