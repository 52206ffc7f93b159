package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// HotelDetailDTO payload de hospedaje.
type HotelDetailDTO struct {
	Nights      int    `json:"nights"`
	RoomName    string `json:"roomName"`
	PickupNotes string `json:"pickupNotes"`
}

// GroomingDetailDTO payload de peluquería.
type GroomingDetailDTO struct {
	Style   string   `json:"style"`
	AddOns  []string `json:"addOns"`
	Groomer string   `json:"groomer"`
}

// TransactionRequest cuerpo para crear o editar una transacción.
// Los campos numéricos ausentes o negativos se tratan como 0 (el payload
// llega de un POS permisivo; la brecha es de calidad de datos, no un error).
type TransactionRequest struct {
	Type          string             `json:"type"`
	CustomerID    string             `json:"customerId"`
	DogName       string             `json:"dogName"`
	CustomerName  string             `json:"customerName"`
	Phone         string             `json:"phone"`
	Price         int64              `json:"price"`
	Quantity      int                `json:"quantity"`
	ExtraDogCount int                `json:"extraDogCount"`
	DiscountValue int64              `json:"discountValue"`
	DiscountType  string             `json:"discountType"`
	PaidAmount    int64              `json:"paidAmount"`
	Category      string             `json:"category"`
	Hotel         *HotelDetailDTO    `json:"hotel,omitempty"`
	Grooming      *GroomingDetailDTO `json:"grooming,omitempty"`
	StartDate     time.Time          `json:"startDate"`
	EndDate       time.Time          `json:"endDate"`
	IsCompleted   bool               `json:"isCompleted"`
	IsRunning     bool               `json:"isRunning"`
}

// Normalize colapsa numéricos negativos a 0 y aplica valores por defecto.
func (r *TransactionRequest) Normalize() {
	if r.Price < 0 {
		r.Price = 0
	}
	if r.Quantity < 0 {
		r.Quantity = 0
	}
	if r.ExtraDogCount < 0 {
		r.ExtraDogCount = 0
	}
	if r.DiscountValue < 0 {
		r.DiscountValue = 0
	}
	if r.PaidAmount < 0 {
		r.PaidAmount = 0
	}
	if r.EndDate.IsZero() {
		r.EndDate = r.StartDate
	}
}

// TransactionResponse respuesta con los montos derivados.
type TransactionResponse struct {
	ID            string             `json:"id"`
	Type          string             `json:"type"`
	CustomerID    string             `json:"customerId,omitempty"`
	DogName       string             `json:"dogName"`
	CustomerName  string             `json:"customerName"`
	Phone         string             `json:"phone"`
	Price         int64              `json:"price"`
	Quantity      int                `json:"quantity"`
	ExtraDogCount int                `json:"extraDogCount"`
	DiscountValue int64              `json:"discountValue"`
	DiscountType  string             `json:"discountType"`
	PaidAmount    int64              `json:"paidAmount"`
	BilledAmount  int64              `json:"billedAmount"`
	Diff          int64              `json:"diff"`
	Category      string             `json:"category"`
	Hotel         *HotelDetailDTO    `json:"hotel,omitempty"`
	Grooming      *GroomingDetailDTO `json:"grooming,omitempty"`
	StartDate     time.Time          `json:"startDate"`
	EndDate       time.Time          `json:"endDate"`
	IsCompleted   bool               `json:"isCompleted"`
	IsRunning     bool               `json:"isRunning"`
}

// UpdatePaidAmountRequest edición inline del monto pagado.
type UpdatePaidAmountRequest struct {
	PaidAmount int64 `json:"paidAmount"`
}

// BatchDeleteRequest borrado por lote; Confirm es la confirmación en dos
// pasos exigida para acciones destructivas.
type BatchDeleteRequest struct {
	IDs     []string `json:"ids"`
	Confirm bool     `json:"confirm"`
}

// ImportRequest importación por lote (se aplica en bloques secuenciales).
type ImportRequest struct {
	Transactions []TransactionRequest `json:"transactions"`
}

// ImportResponse resultado de la importación.
type ImportResponse struct {
	Imported int `json:"imported"`
	Chunks   int `json:"chunks"`
}

// CategoryRevenue agregados de un período para una categoría de servicio.
// Los totales llegan de SUM() en NUMERIC; se exponen como decimal.
type CategoryRevenue struct {
	Category string          `json:"category"`
	Count    int64           `json:"count"`
	Billed   decimal.Decimal `json:"billed"`
	Paid     decimal.Decimal `json:"paid"`
	Diff     decimal.Decimal `json:"diff"`
}

// RevenueSummaryResponse resumen de ingresos del rango pedido.
type RevenueSummaryResponse struct {
	From       time.Time         `json:"from"`
	To         time.Time         `json:"to"`
	Categories []CategoryRevenue `json:"categories"`
}

// ReconcileResponse resultado de la reconciliación por cliente.
type ReconcileResponse struct {
	CustomerID        string    `json:"customerId"`
	Balance           int64     `json:"balance"`
	MatchedCount      int       `json:"matchedCount"`
	LastBalanceUpdate time.Time `json:"lastBalanceUpdate"`
}
