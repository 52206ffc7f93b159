package repository

import (
	"time"

	"github.com/fa146612-art/kingdog-system-sub000/internal/domain/entity"
)

// TransactionFilter filtros para listados de transacciones.
type TransactionFilter struct {
	From       *time.Time
	To         *time.Time
	CustomerID string
	Type       string
	Limit      int
	Offset     int
}

// TransactionRepository define el puerto de persistencia para Transaction.
// Los métodos ListIncomeBy* son los tres emparejadores independientes de la
// reconciliación; reciben valores ya normalizados (ver domain/matching).
type TransactionRepository interface {
	Create(t *entity.Transaction) error
	GetByID(id string) (*entity.Transaction, error)
	// GetForUpdate lee la transacción bloqueando la fila dentro de la tx en
	// curso; es la lectura previa a toda mutación que derive una delta.
	GetForUpdate(id string) (*entity.Transaction, error)
	Update(t *entity.Transaction) error
	// UpdatePaidAmount edición inline del monto pagado, sin tocar el resto.
	UpdatePaidAmount(id string, paidAmount int64, at time.Time) error
	Delete(id string) error
	List(filter TransactionFilter) ([]*entity.Transaction, error)

	ListIncomeByCustomerID(customerID string) ([]*entity.Transaction, error)
	ListIncomeByDogAndPhone(dogNorm, phoneNorm string) ([]*entity.Transaction, error)
	ListIncomeByDogAndOwner(dogNorm, ownerNorm string) ([]*entity.Transaction, error)
}
