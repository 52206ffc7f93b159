package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// CategoryRevenueResult agregados de un período por categoría de servicio.
// Los SUM de PostgreSQL sobre BIGINT devuelven NUMERIC; se escanean como
// decimal vía el codec registrado en el pool.
type CategoryRevenueResult struct {
	Category string
	Count    int64
	Billed   decimal.Decimal
	Paid     decimal.Decimal
	Diff     decimal.Decimal
}

// AnalyticsRepository consultas de solo lectura para resúmenes de ingresos.
// Fuera de la ruta de escritura: nunca participa en transacciones.
type AnalyticsRepository interface {
	RevenueByCategory(ctx context.Context, from, to time.Time) ([]CategoryRevenueResult, error)
}
