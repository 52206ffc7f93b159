package billing

import (
	"context"
	"time"

	"github.com/fa146612-art/kingdog-system-sub000/internal/application/dto"
	"github.com/fa146612-art/kingdog-system-sub000/internal/domain"
	"github.com/fa146612-art/kingdog-system-sub000/internal/domain/repository"
)

// AnalyticsUseCase resúmenes de ingresos de solo lectura.
type AnalyticsUseCase struct {
	analyticsRepo repository.AnalyticsRepository
}

// NewAnalyticsUseCase construye el caso de uso.
func NewAnalyticsUseCase(analyticsRepo repository.AnalyticsRepository) *AnalyticsUseCase {
	return &AnalyticsUseCase{analyticsRepo: analyticsRepo}
}

// RevenueSummary agregados por categoría en [from, to].
func (uc *AnalyticsUseCase) RevenueSummary(ctx context.Context, from, to time.Time) (*dto.RevenueSummaryResponse, error) {
	if to.Before(from) {
		return nil, domain.ErrInvalidInput
	}
	rows, err := uc.analyticsRepo.RevenueByCategory(ctx, from, to)
	if err != nil {
		return nil, err
	}
	out := &dto.RevenueSummaryResponse{From: from, To: to, Categories: make([]dto.CategoryRevenue, 0, len(rows))}
	for _, r := range rows {
		out.Categories = append(out.Categories, dto.CategoryRevenue{
			Category: r.Category,
			Count:    r.Count,
			Billed:   r.Billed,
			Paid:     r.Paid,
			Diff:     r.Diff,
		})
	}
	return out, nil
}
