package entity

import "time"

// Tipos de transacción. Solo income contribuye al balance del cliente.
const (
	TransactionTypeIncome  = "income"
	TransactionTypeExpense = "expense"
)

// Tipos de descuento.
const (
	DiscountTypeAmount  = "amount"
	DiscountTypePercent = "percent"
)

// Categorías de servicio conocidas (payload específico por categoría).
const (
	CategoryHotel    = "hotel"
	CategoryDaycare  = "daycare"
	CategoryGrooming = "grooming"
	CategoryProduct  = "product"
	CategoryOther    = "other"
)

// Transaction representa un movimiento financiero (venta de servicio o gasto).
// CustomerID es una referencia débil opcional; DogName/CustomerName/Phone son
// la identidad de respaldo cuando el enlace por ID falta (brecha de calidad de
// datos conocida, no un error).
type Transaction struct {
	ID           string
	Type         string // income | expense
	CustomerID   string // opcional; "" = sin enlazar
	DogName      string
	CustomerName string
	Phone        string

	Price         int64
	Quantity      int
	ExtraDogCount int
	DiscountValue int64
	DiscountType  string // amount | percent
	PaidAmount    int64

	Category string
	// Payload específico por categoría (unión etiquetada, validada en el borde).
	Hotel    *HotelDetail
	Grooming *GroomingDetail

	StartDate   time.Time
	EndDate     time.Time // igual a StartDate para servicios de un día
	IsCompleted bool
	IsRunning   bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

// HotelDetail payload de hospedaje (servicios multi-día).
type HotelDetail struct {
	Nights      int
	RoomName    string
	PickupNotes string
}

// GroomingDetail payload de peluquería.
type GroomingDetail struct {
	Style   string
	AddOns  []string
	Groomer string
}

// IsIncome indica si la transacción aporta al balance del cliente.
func (t *Transaction) IsIncome() bool {
	return t.Type == TransactionTypeIncome
}
