package attendance

import (
	"context"

	"github.com/fa146612-art/kingdog-system-sub000/internal/domain/repository"
	"github.com/fa146612-art/kingdog-system-sub000/internal/infrastructure/push"
)

// TxRunner ejecuta una función dentro de una transacción de BD con los
// repositorios del ledger de asistencia atados a esa tx. La transición de
// estado, el ajuste del tiquete y el asiento en la bitácora viajan en una
// sola unidad atómica.
type TxRunner interface {
	RunAttendance(ctx context.Context, fn func(
		attRepo repository.AttendanceRepository,
		customerRepo repository.CustomerRepository,
		logRepo repository.TicketLogRepository,
	) error) error
}

// Publisher publica eventos de push después de un commit exitoso.
type Publisher interface {
	Publish(event push.Event)
}
