package billing

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/fa146612-art/kingdog-system-sub000/internal/application/dto"
	"github.com/fa146612-art/kingdog-system-sub000/internal/domain"
	domainbilling "github.com/fa146612-art/kingdog-system-sub000/internal/domain/billing"
	"github.com/fa146612-art/kingdog-system-sub000/internal/domain/entity"
	"github.com/fa146612-art/kingdog-system-sub000/internal/domain/matching"
	"github.com/fa146612-art/kingdog-system-sub000/internal/domain/repository"
	"github.com/fa146612-art/kingdog-system-sub000/internal/infrastructure/push"
)

// ReconcileUseCase recomputa la verdad del balance de un cliente desde cero:
// reúne todas las transacciones income alcanzables por los tres
// emparejadores, deduplica por id, suma diff() y SOBRESCRIBE el balance
// almacenado. Es el camino correctivo autoritativo contra la deriva causada
// por transacciones sin enlazar, lotes parcialmente fallidos o ediciones
// manuales. Se invoca por cliente, bajo demanda; nunca hay un job programado.
type ReconcileUseCase struct {
	txRepo       repository.TransactionRepository
	customerRepo repository.CustomerRepository
	publisher    Publisher
}

// NewReconcileUseCase construye el caso de uso.
func NewReconcileUseCase(
	txRepo repository.TransactionRepository,
	customerRepo repository.CustomerRepository,
	publisher Publisher,
) *ReconcileUseCase {
	return &ReconcileUseCase{txRepo: txRepo, customerRepo: customerRepo, publisher: publisher}
}

// Reconcile ejecuta la reconciliación del cliente. Las tres lecturas no se
// sincronizan entre sí antes de la única escritura: una edición concurrente
// en esa ventana puede leer datos viejos, aceptable porque la operación es
// idempotente y re-ejecutable manualmente.
func (uc *ReconcileUseCase) Reconcile(ctx context.Context, customerID string) (*dto.ReconcileResponse, error) {
	customer, err := uc.customerRepo.GetByID(customerID)
	if err != nil {
		return nil, err
	}
	if customer == nil {
		return nil, domain.ErrCustomerNotFound
	}

	byID, err := uc.txRepo.ListIncomeByCustomerID(customer.ID)
	if err != nil {
		return nil, err
	}
	byPhone, err := uc.txRepo.ListIncomeByDogAndPhone(
		matching.NormalizeName(customer.DogName), matching.NormalizePhone(customer.Phone),
	)
	if err != nil {
		return nil, err
	}
	byOwner, err := uc.txRepo.ListIncomeByDogAndOwner(
		matching.NormalizeName(customer.DogName), matching.NormalizeName(customer.OwnerName),
	)
	if err != nil {
		return nil, err
	}

	// Unión con deduplicación por id: una transacción puede satisfacer más de
	// un emparejador y debe contar una sola vez. Matches re-verifica en
	// dominio lo que las consultas trajeron.
	seen := make(map[string]struct{})
	var sum int64
	var matched int
	for _, group := range [][]*entity.Transaction{byID, byPhone, byOwner} {
		for _, t := range group {
			if _, ok := seen[t.ID]; ok {
				continue
			}
			if !matching.Matches(customer, t) {
				continue
			}
			seen[t.ID] = struct{}{}
			sum += domainbilling.Diff(t)
			matched++
		}
	}

	now := time.Now()
	if err := uc.customerRepo.OverwriteBalance(customer.ID, sum, now); err != nil {
		return nil, err
	}

	log.Info().Str("customer", customer.ID).Int64("balance", sum).Int("matched", matched).
		Msg("balance reconciliado")
	uc.publisher.Publish(push.Event{Topic: push.TopicCustomers, Action: "reconciled", Key: customer.ID})

	return &dto.ReconcileResponse{
		CustomerID:        customer.ID,
		Balance:           sum,
		MatchedCount:      matched,
		LastBalanceUpdate: now,
	}, nil
}
