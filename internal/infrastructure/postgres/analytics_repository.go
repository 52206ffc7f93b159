package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fa146612-art/kingdog-system-sub000/internal/domain/billing"
	"github.com/fa146612-art/kingdog-system-sub000/internal/domain/repository"
)

var _ repository.AnalyticsRepository = (*AnalyticsRepo)(nil)

// AnalyticsRepo consultas de solo lectura para resúmenes de ingresos.
type AnalyticsRepo struct {
	pool *pgxpool.Pool
}

// NewAnalyticsRepository construye el adaptador de analítica.
func NewAnalyticsRepository(pool *pgxpool.Pool) *AnalyticsRepo {
	return &AnalyticsRepo{pool: pool}
}

// RevenueByCategory agrupa facturado, pagado y diff por categoría en el rango.
// La fórmula del facturado replica la del calculador de diffs:
// (price + extra_dog_count × ExtraDogFee) × quantity − descuento, sin clamp.
// El recargo viaja como parámetro para que SQL y dominio compartan la misma
// constante.
func (r *AnalyticsRepo) RevenueByCategory(
	ctx context.Context,
	from, to time.Time,
) ([]repository.CategoryRevenueResult, error) {
	const query = `
	SELECT
	    category,
	    COUNT(*)                                                       AS tx_count,
	    SUM(billed)                                                    AS total_billed,
	    SUM(paid_amount)                                               AS total_paid,
	    SUM(paid_amount - billed)                                      AS total_diff
	FROM (
	    SELECT
	        category,
	        paid_amount,
	        (price + extra_dog_count * $3) * quantity
	        - CASE WHEN discount_type = 'percent'
	               THEN ROUND((price + extra_dog_count * $3) * quantity * discount_value / 100.0)
	               ELSE discount_value
	          END                                                      AS billed
	    FROM transactions
	    WHERE type = 'income' AND start_date BETWEEN $1 AND $2
	) t
	GROUP BY category
	ORDER BY total_billed DESC`

	rows, err := r.pool.Query(ctx, query, from, to, billing.ExtraDogFee)
	if err != nil {
		return nil, fmt.Errorf("analytics.RevenueByCategory: %w", err)
	}
	defer rows.Close()

	var results []repository.CategoryRevenueResult
	for rows.Next() {
		var row repository.CategoryRevenueResult
		if err := rows.Scan(&row.Category, &row.Count, &row.Billed, &row.Paid, &row.Diff); err != nil {
			return nil, fmt.Errorf("analytics.RevenueByCategory scan: %w", err)
		}
		results = append(results, row)
	}
	return results, rows.Err()
}
