package repository

import "github.com/fa146612-art/kingdog-system-sub000/internal/domain/entity"

// TicketLogRepository define el puerto de la bitácora del tiquete.
// Es append-only: no hay Update ni Delete.
type TicketLogRepository interface {
	Append(log *entity.TicketLog) error
	ListByCustomer(customerID string, limit, offset int) ([]*entity.TicketLog, error)
}
