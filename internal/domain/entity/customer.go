package entity

import "time"

// Customer representa un cliente del hotel canino (dueño + perro).
// Balance en unidades enteras de moneda: positivo = crédito prepagado,
// negativo = saldo adeudado. El signo es parte del contrato externo.
type Customer struct {
	ID                string
	OwnerName         string
	DogName           string
	Phone             string
	Balance           int64
	Ticket            Ticket
	IsDepositExempt   bool
	LastBalanceUpdate time.Time
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// Ticket es la bolsa de créditos de asistencia prepagados del cliente.
// Remaining puede quedar negativo tras un check-in forzado: los depósitos de
// no-show se retienen como ingreso, así que el negocio acepta saldos en rojo.
type Ticket struct {
	Remaining  int
	StartDate  *time.Time
	ExpiryDate *time.Time
}
