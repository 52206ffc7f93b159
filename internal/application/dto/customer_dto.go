package dto

import "time"

// CreateCustomerRequest alta de cliente en el mostrador.
type CreateCustomerRequest struct {
	OwnerName       string `json:"ownerName"`
	DogName         string `json:"dogName"`
	Phone           string `json:"phone"`
	IsDepositExempt bool   `json:"isDepositExempt"`
}

// UpdateCustomerRequest edición de datos del cliente (no toca balance ni
// tiquete: esos solo los mueven el motor y la reconciliación).
type UpdateCustomerRequest struct {
	OwnerName       *string `json:"ownerName"`
	DogName         *string `json:"dogName"`
	Phone           *string `json:"phone"`
	IsDepositExempt *bool   `json:"isDepositExempt"`
}

// CustomerResponse cliente con balance y tiquete.
type CustomerResponse struct {
	ID                string     `json:"id"`
	OwnerName         string     `json:"ownerName"`
	DogName           string     `json:"dogName"`
	Phone             string     `json:"phone"`
	Balance           int64      `json:"balance"`
	TicketRemaining   int        `json:"ticketRemaining"`
	TicketStartDate   *time.Time `json:"ticketStartDate,omitempty"`
	TicketExpiryDate  *time.Time `json:"ticketExpiryDate,omitempty"`
	IsDepositExempt   bool       `json:"isDepositExempt"`
	LastBalanceUpdate time.Time  `json:"lastBalanceUpdate"`
}

// BalanceResponse consulta de balance. Convención de signo fija: negativo =
// el cliente debe, positivo = crédito prepagado.
type BalanceResponse struct {
	CustomerID        string    `json:"customerId"`
	Balance           int64     `json:"balance"`
	LastBalanceUpdate time.Time `json:"lastBalanceUpdate"`
}

// ChargeTicketRequest compra de créditos de asistencia.
type ChargeTicketRequest struct {
	Count      int        `json:"count"`
	StartDate  *time.Time `json:"startDate"`
	ExpiryDate *time.Time `json:"expiryDate"`
	StaffName  string     `json:"staffName"`
	Reason     string     `json:"reason"`
}

// TicketResponse saldo del tiquete y su bitácora.
type TicketResponse struct {
	CustomerID string           `json:"customerId"`
	Remaining  int              `json:"remaining"`
	StartDate  *time.Time       `json:"startDate,omitempty"`
	ExpiryDate *time.Time       `json:"expiryDate,omitempty"`
	History    []TicketLogEntry `json:"history"`
}

// TicketLogEntry asiento de la bitácora en respuestas.
type TicketLogEntry struct {
	ID            string    `json:"id"`
	Date          string    `json:"date"`
	Type          string    `json:"type"`
	Amount        int       `json:"amount"`
	PrevRemaining int       `json:"prevRemaining"`
	NewRemaining  int       `json:"newRemaining"`
	StaffName     string    `json:"staffName,omitempty"`
	Reason        string    `json:"reason,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
}
