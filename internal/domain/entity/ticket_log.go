package entity

import "time"

// Tipos de asiento en la bitácora del tiquete.
const (
	TicketLogCharge  = "charge"  // compra de créditos
	TicketLogUse     = "use"     // consumo por asistencia (-1)
	TicketLogRestore = "restore" // reverso por marcar ausente (+1)
)

// TicketLog asiento inmutable de la bitácora del tiquete (append-only).
// Guarda el saldo previo y el nuevo para que la bitácora sea auditable sin
// recomputar: newRemaining == prevRemaining + Amount.
type TicketLog struct {
	ID            string
	CustomerID    string
	Date          string // YYYY-MM-DD del evento
	Type          string // charge | use | restore
	Amount        int    // con signo
	PrevRemaining int
	NewRemaining  int
	StaffName     string
	Reason        string
	CreatedAt     time.Time
}
