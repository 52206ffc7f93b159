package postgres

import (
	"context"
	"fmt"

	"github.com/fa146612-art/kingdog-system-sub000/internal/domain/entity"
	"github.com/fa146612-art/kingdog-system-sub000/internal/domain/repository"
)

var _ repository.TicketLogRepository = (*TicketLogRepo)(nil)

// TicketLogRepo implementación de TicketLogRepository. La tabla es
// append-only: no hay UPDATE ni DELETE.
type TicketLogRepo struct {
	q Querier
}

// NewTicketLogRepository construye el adaptador. Pasar pool o tx (Querier).
func NewTicketLogRepository(q Querier) *TicketLogRepo {
	return &TicketLogRepo{q: q}
}

// Append asienta un movimiento del tiquete.
func (r *TicketLogRepo) Append(l *entity.TicketLog) error {
	query := `
		INSERT INTO ticket_logs (id, customer_id, date, type, amount,
			prev_remaining, new_remaining, staff_name, reason, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.q.Exec(context.Background(), query,
		l.ID, l.CustomerID, l.Date, l.Type, l.Amount,
		l.PrevRemaining, l.NewRemaining, l.StaffName, l.Reason, l.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("append ticket log: %w", err)
	}
	return nil
}

// ListByCustomer bitácora del cliente, más reciente primero.
func (r *TicketLogRepo) ListByCustomer(customerID string, limit, offset int) ([]*entity.TicketLog, error) {
	query := `
		SELECT id, customer_id, date, type, amount, prev_remaining, new_remaining,
			staff_name, reason, created_at
		FROM ticket_logs WHERE customer_id = $1
		ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	rows, err := r.q.Query(context.Background(), query, customerID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list ticket logs: %w", err)
	}
	defer rows.Close()
	var list []*entity.TicketLog
	for rows.Next() {
		var l entity.TicketLog
		if err := rows.Scan(&l.ID, &l.CustomerID, &l.Date, &l.Type, &l.Amount,
			&l.PrevRemaining, &l.NewRemaining, &l.StaffName, &l.Reason, &l.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan ticket log: %w", err)
		}
		list = append(list, &l)
	}
	return list, rows.Err()
}
