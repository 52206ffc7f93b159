package billing

import (
	"context"

	"github.com/fa146612-art/kingdog-system-sub000/internal/domain/repository"
	"github.com/fa146612-art/kingdog-system-sub000/internal/infrastructure/push"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando
// repositorios atados a esa tx. Es la unidad atómica del motor: la escritura
// de la transacción financiera y el incremento del balance viajan juntos, o
// no viaja ninguno. La aplicación parcial (transacción guardada sin balance,
// o al revés) es el modo de fallo principal que esto previene.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		txRepo repository.TransactionRepository,
		customerRepo repository.CustomerRepository,
	) error) error
}

// Publisher publica eventos de push después de un commit exitoso. Los
// consumidores (UI en vivo) re-renderizan al recibirlos; nunca hay polling.
type Publisher interface {
	Publish(event push.Event)
}
