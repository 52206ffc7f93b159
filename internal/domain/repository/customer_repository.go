package repository

import (
	"time"

	"github.com/fa146612-art/kingdog-system-sub000/internal/domain/entity"
)

// CustomerRepository define el puerto de persistencia para Customer.
// Los métodos de balance/tiquete son primitivas de incremento conmutativo
// (UPDATE ... SET x = x + delta): incrementos concurrentes sobre el mismo
// campo nunca pierden una actualización.
type CustomerRepository interface {
	Create(customer *entity.Customer) error
	GetByID(id string) (*entity.Customer, error)
	// GetForUpdate bloquea la fila del cliente (SELECT FOR UPDATE). Punto de
	// serialización del ledger de tiquetes dentro de una transacción.
	GetForUpdate(id string) (*entity.Customer, error)
	List(limit, offset int) ([]*entity.Customer, error)
	Update(customer *entity.Customer) error

	// FindByDogAndPhone / FindByDogAndOwner emparejadores de respaldo de la
	// cadena priorizada; reciben valores normalizados (ver domain/matching).
	FindByDogAndPhone(dogNorm, phoneNorm string) (*entity.Customer, error)
	FindByDogAndOwner(dogNorm, ownerNorm string) (*entity.Customer, error)

	// IncrementBalance aplica un delta con signo al balance.
	IncrementBalance(id string, delta int64) error
	// OverwriteBalance sobrescribe (no incrementa) el balance; lo usa solo la
	// reconciliación, que recalcula la verdad desde cero.
	OverwriteBalance(id string, balance int64, at time.Time) error

	// IncrementTicketRemaining aplica un delta con signo al saldo del tiquete.
	IncrementTicketRemaining(id string, delta int) error
	// ChargeTicket suma créditos comprados y sobrescribe la vigencia.
	ChargeTicket(id string, count int, start, expiry *time.Time) error
	// ListTicketExpiring lista clientes cuyo tiquete vence antes de la fecha
	// dada y aún tiene saldo (para recordatorios).
	ListTicketExpiring(before time.Time) ([]*entity.Customer, error)
}
