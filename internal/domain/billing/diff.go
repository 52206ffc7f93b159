// Package billing contiene los servicios de dominio puros del motor
// financiero: el cálculo del monto facturado de una transacción y su
// contribución con signo (diff) al balance del cliente.
package billing

import (
	"github.com/shopspring/decimal"

	"github.com/fa146612-art/kingdog-system-sub000/internal/domain/entity"
)

// ExtraDogFee recargo fijo por perro adicional, en unidades enteras de
// moneda. Es parte del contrato externo de la API.
const ExtraDogFee int64 = 10_000

// BilledAmount calcula el monto facturado de una transacción:
//
//	unitPrice = price + extraDogCount * ExtraDogFee
//	subtotal  = unitPrice * quantity
//	discount  = percent ? round(subtotal * value / 100) : value
//	billed    = subtotal - discount
//
// El resultado NO se recorta a cero: un descuento mayor que el subtotal
// produce un facturado negativo (comportamiento observado del negocio).
func BilledAmount(t *entity.Transaction) int64 {
	unitPrice := t.Price + int64(t.ExtraDogCount)*ExtraDogFee
	subtotal := unitPrice * int64(t.Quantity)
	return subtotal - discountAmount(subtotal, t.DiscountType, t.DiscountValue)
}

// Diff es la contribución con signo de la transacción al balance del
// cliente: paidAmount - billed. Solo definida para income; los gastos
// (expense) nunca tocan el balance.
func Diff(t *entity.Transaction) int64 {
	if !t.IsIncome() {
		return 0
	}
	return t.PaidAmount - BilledAmount(t)
}

// discountAmount resuelve el descuento en unidades enteras. El porcentaje se
// calcula en decimal y se redondea a la unidad (la moneda no tiene
// fracciones).
func discountAmount(subtotal int64, discountType string, value int64) int64 {
	if discountType == entity.DiscountTypePercent {
		return decimal.NewFromInt(subtotal).
			Mul(decimal.NewFromInt(value)).
			Div(decimal.NewFromInt(100)).
			Round(0).
			IntPart()
	}
	return value
}
