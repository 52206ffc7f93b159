package billing

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/fa146612-art/kingdog-system-sub000/internal/application/dto"
	"github.com/fa146612-art/kingdog-system-sub000/internal/domain"
	domainbilling "github.com/fa146612-art/kingdog-system-sub000/internal/domain/billing"
	"github.com/fa146612-art/kingdog-system-sub000/internal/domain/entity"
	"github.com/fa146612-art/kingdog-system-sub000/internal/domain/matching"
	"github.com/fa146612-art/kingdog-system-sub000/internal/domain/repository"
	"github.com/fa146612-art/kingdog-system-sub000/internal/infrastructure/push"
)

// ImportChunkSize tamaño máximo de bloque en la importación por lote. Cada
// bloque es una transacción atómica independiente y secuencial.
const ImportChunkSize = 500

// TransactionUseCase es el ajustador incremental de balance: cada escritura
// de transacción que afecta balance viaja en la misma unidad atómica que el
// incremento del balance (create, edit, delete, borrado por lote y edición
// inline del monto pagado).
type TransactionUseCase struct {
	txRunner     TxRunner
	txRepo       repository.TransactionRepository
	customerRepo repository.CustomerRepository
	publisher    Publisher
}

// NewTransactionUseCase construye el caso de uso.
func NewTransactionUseCase(
	txRunner TxRunner,
	txRepo repository.TransactionRepository,
	customerRepo repository.CustomerRepository,
	publisher Publisher,
) *TransactionUseCase {
	return &TransactionUseCase{
		txRunner:     txRunner,
		txRepo:       txRepo,
		customerRepo: customerRepo,
		publisher:    publisher,
	}
}

// Create valida, resuelve el cliente por la cadena de emparejadores y guarda
// la transacción junto con el incremento de balance en una sola tx.
func (uc *TransactionUseCase) Create(ctx context.Context, in dto.TransactionRequest) (*dto.TransactionResponse, error) {
	if err := validateRequest(&in); err != nil {
		return nil, err
	}
	in.Normalize()

	t := requestToEntity(&in)
	t.ID = uuid.New().String()
	now := time.Now()
	t.CreatedAt = now
	t.UpdatedAt = now

	uc.resolveCustomer(t)

	err := uc.txRunner.Run(ctx, func(
		txRepo repository.TransactionRepository,
		customerRepo repository.CustomerRepository,
	) error {
		if err := txRepo.Create(t); err != nil {
			return err
		}
		if delta := domainbilling.Diff(t); delta != 0 && t.CustomerID != "" {
			return customerRepo.IncrementBalance(t.CustomerID, delta)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.publisher.Publish(push.Event{Topic: push.TopicTransactions, Action: "created", Key: t.ID})
	if t.CustomerID != "" {
		uc.publisher.Publish(push.Event{Topic: push.TopicCustomers, Action: "updated", Key: t.CustomerID})
	}
	return entityToResponse(t), nil
}

// Update reemplaza la transacción y aplica la delta de balance
// diff(nueva) - diff(vieja). Si la edición re-enlaza la transacción a otro
// cliente, se revierte en el anterior y se aplica en el nuevo; los
// incrementos son conmutativos, así que el orden no importa.
func (uc *TransactionUseCase) Update(ctx context.Context, id string, in dto.TransactionRequest) (*dto.TransactionResponse, error) {
	if err := validateRequest(&in); err != nil {
		return nil, err
	}
	in.Normalize()

	t := requestToEntity(&in)
	t.ID = id
	t.UpdatedAt = time.Now()
	uc.resolveCustomer(t)

	// La lectura de la versión vieja ocurre dentro de la tx con bloqueo de
	// fila: la delta se calcula siempre contra lo realmente persistido.
	var old *entity.Transaction
	err := uc.txRunner.Run(ctx, func(
		txRepo repository.TransactionRepository,
		customerRepo repository.CustomerRepository,
	) error {
		var err error
		old, err = txRepo.GetForUpdate(id)
		if err != nil {
			return err
		}
		if old == nil {
			return domain.ErrNotFound
		}
		t.CreatedAt = old.CreatedAt
		oldDiff := domainbilling.Diff(old)
		newDiff := domainbilling.Diff(t)
		if err := txRepo.Update(t); err != nil {
			return err
		}
		if old.CustomerID == t.CustomerID {
			if delta := newDiff - oldDiff; delta != 0 && t.CustomerID != "" {
				return customerRepo.IncrementBalance(t.CustomerID, delta)
			}
			return nil
		}
		if old.CustomerID != "" && oldDiff != 0 {
			if err := customerRepo.IncrementBalance(old.CustomerID, -oldDiff); err != nil {
				return err
			}
		}
		if t.CustomerID != "" && newDiff != 0 {
			return customerRepo.IncrementBalance(t.CustomerID, newDiff)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.publisher.Publish(push.Event{Topic: push.TopicTransactions, Action: "updated", Key: t.ID})
	for _, cid := range []string{old.CustomerID, t.CustomerID} {
		if cid != "" {
			uc.publisher.Publish(push.Event{Topic: push.TopicCustomers, Action: "updated", Key: cid})
		}
	}
	return entityToResponse(t), nil
}

// UpdatePaidAmount edición inline del monto pagado: el facturado no cambia,
// así que la delta de balance es newPaid - oldPaid.
func (uc *TransactionUseCase) UpdatePaidAmount(ctx context.Context, id string, newPaid int64) (*dto.TransactionResponse, error) {
	if newPaid < 0 {
		newPaid = 0
	}
	now := time.Now()
	var old *entity.Transaction
	err := uc.txRunner.Run(ctx, func(
		txRepo repository.TransactionRepository,
		customerRepo repository.CustomerRepository,
	) error {
		var err error
		old, err = txRepo.GetForUpdate(id)
		if err != nil {
			return err
		}
		if old == nil {
			return domain.ErrNotFound
		}
		if err := txRepo.UpdatePaidAmount(id, newPaid, now); err != nil {
			return err
		}
		if delta := newPaid - old.PaidAmount; delta != 0 && old.IsIncome() && old.CustomerID != "" {
			return customerRepo.IncrementBalance(old.CustomerID, delta)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	old.PaidAmount = newPaid
	old.UpdatedAt = now
	uc.publisher.Publish(push.Event{Topic: push.TopicTransactions, Action: "updated", Key: id})
	if old.CustomerID != "" {
		uc.publisher.Publish(push.Event{Topic: push.TopicCustomers, Action: "updated", Key: old.CustomerID})
	}
	return entityToResponse(old), nil
}

// Delete borra la transacción revirtiendo primero su efecto sobre el balance
// (balance -= diff) dentro de la misma tx. Exige la confirmación en dos
// pasos.
func (uc *TransactionUseCase) Delete(ctx context.Context, id string, confirm bool) error {
	if !confirm {
		return domain.ErrConfirmFlagMissing
	}
	var t *entity.Transaction
	err := uc.txRunner.Run(ctx, func(
		txRepo repository.TransactionRepository,
		customerRepo repository.CustomerRepository,
	) error {
		var err error
		t, err = txRepo.GetForUpdate(id)
		if err != nil {
			return err
		}
		if t == nil {
			return domain.ErrNotFound
		}
		if err := txRepo.Delete(id); err != nil {
			return err
		}
		if delta := domainbilling.Diff(t); delta != 0 && t.CustomerID != "" {
			return customerRepo.IncrementBalance(t.CustomerID, -delta)
		}
		return nil
	})
	if err != nil {
		return err
	}

	uc.publisher.Publish(push.Event{Topic: push.TopicTransactions, Action: "deleted", Key: id})
	if t.CustomerID != "" {
		uc.publisher.Publish(push.Event{Topic: push.TopicCustomers, Action: "updated", Key: t.CustomerID})
	}
	return nil
}

// BatchDelete borra un lote en una sola tx aplicando la reversión de cada
// transacción como incrementos numéricos. Al ser conmutativos no hay
// requisito de orden ni acumulación previa.
func (uc *TransactionUseCase) BatchDelete(ctx context.Context, ids []string, confirm bool) error {
	if !confirm {
		return domain.ErrConfirmFlagMissing
	}
	if len(ids) == 0 {
		return domain.ErrInvalidInput
	}

	var targets []*entity.Transaction
	err := uc.txRunner.Run(ctx, func(
		txRepo repository.TransactionRepository,
		customerRepo repository.CustomerRepository,
	) error {
		targets = make([]*entity.Transaction, 0, len(ids))
		for _, id := range ids {
			t, err := txRepo.GetForUpdate(id)
			if err != nil {
				return err
			}
			if t == nil {
				return domain.ErrNotFound
			}
			targets = append(targets, t)
		}
		for _, t := range targets {
			if err := txRepo.Delete(t.ID); err != nil {
				return err
			}
			if delta := domainbilling.Diff(t); delta != 0 && t.CustomerID != "" {
				if err := customerRepo.IncrementBalance(t.CustomerID, -delta); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	for _, t := range targets {
		uc.publisher.Publish(push.Event{Topic: push.TopicTransactions, Action: "deleted", Key: t.ID})
		if t.CustomerID != "" {
			uc.publisher.Publish(push.Event{Topic: push.TopicCustomers, Action: "updated", Key: t.CustomerID})
		}
	}
	return nil
}

// Import aplica una importación masiva en bloques secuenciales de
// ImportChunkSize, cada bloque como tx atómica independiente (límites del
// store y memoria acotada). Los clientes se precargan una sola vez y cada
// fila se resuelve contra esa lista con la cadena de emparejadores.
func (uc *TransactionUseCase) Import(ctx context.Context, in dto.ImportRequest) (*dto.ImportResponse, error) {
	if len(in.Transactions) == 0 {
		return nil, domain.ErrInvalidInput
	}

	candidates, err := uc.customerRepo.List(100_000, 0)
	if err != nil {
		return nil, err
	}
	known := make(map[string]struct{}, len(candidates))
	for _, c := range candidates {
		known[c.ID] = struct{}{}
	}

	entities := make([]*entity.Transaction, 0, len(in.Transactions))
	now := time.Now()
	for i := range in.Transactions {
		req := in.Transactions[i]
		if err := validateRequest(&req); err != nil {
			return nil, err
		}
		req.Normalize()
		t := requestToEntity(&req)
		t.ID = uuid.New().String()
		t.CreatedAt = now
		t.UpdatedAt = now
		if t.CustomerID != "" {
			if _, ok := known[t.CustomerID]; !ok {
				// Referencia débil rota: se descarta y se intenta el respaldo.
				t.CustomerID = ""
			}
		}
		if t.CustomerID == "" {
			if c := matching.Resolve(t, candidates); c != nil {
				t.CustomerID = c.ID
			} else if t.IsIncome() {
				log.Warn().Str("dog", t.DogName).Str("owner", t.CustomerName).
					Msg("fila income sin cliente resoluble: excluida del balance")
			}
		}
		entities = append(entities, t)
	}

	chunks := 0
	for start := 0; start < len(entities); start += ImportChunkSize {
		end := start + ImportChunkSize
		if end > len(entities) {
			end = len(entities)
		}
		chunk := entities[start:end]
		err := uc.txRunner.Run(ctx, func(
			txRepo repository.TransactionRepository,
			customerRepo repository.CustomerRepository,
		) error {
			for _, t := range chunk {
				if err := txRepo.Create(t); err != nil {
					return err
				}
				if delta := domainbilling.Diff(t); delta != 0 && t.CustomerID != "" {
					if err := customerRepo.IncrementBalance(t.CustomerID, delta); err != nil {
						return err
					}
				}
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
		chunks++
	}

	uc.publisher.Publish(push.Event{Topic: push.TopicTransactions, Action: "created", Key: "batch"})
	return &dto.ImportResponse{Imported: len(entities), Chunks: chunks}, nil
}

// List lista transacciones con filtros de rango de fechas y enlace.
func (uc *TransactionUseCase) List(filter repository.TransactionFilter) ([]*dto.TransactionResponse, error) {
	if filter.Limit <= 0 {
		filter.Limit = 50
	}
	list, err := uc.txRepo.List(filter)
	if err != nil {
		return nil, err
	}
	out := make([]*dto.TransactionResponse, 0, len(list))
	for _, t := range list {
		out = append(out, entityToResponse(t))
	}
	return out, nil
}

// GetByID obtiene una transacción.
func (uc *TransactionUseCase) GetByID(id string) (*dto.TransactionResponse, error) {
	t, err := uc.txRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, domain.ErrNotFound
	}
	return entityToResponse(t), nil
}

// resolveCustomer resuelve el enlace con la cadena priorizada: id exacto,
// (perro, teléfono) y (perro, dueño). Si resuelve por respaldo, el id queda
// persistido en la transacción (reparación del enlace). Si nadie empareja,
// la transacción queda fuera de los efectos de balance: brecha de calidad de
// datos conocida, no un error.
func (uc *TransactionUseCase) resolveCustomer(t *entity.Transaction) {
	if t.CustomerID != "" {
		if c, err := uc.customerRepo.GetByID(t.CustomerID); err == nil && c != nil {
			return
		}
		// Referencia débil rota: se descarta y se intenta el respaldo.
		t.CustomerID = ""
	}
	if c, err := uc.customerRepo.FindByDogAndPhone(
		matching.NormalizeName(t.DogName), matching.NormalizePhone(t.Phone),
	); err == nil && c != nil {
		t.CustomerID = c.ID
		return
	}
	if c, err := uc.customerRepo.FindByDogAndOwner(
		matching.NormalizeName(t.DogName), matching.NormalizeName(t.CustomerName),
	); err == nil && c != nil {
		t.CustomerID = c.ID
		return
	}
	if t.IsIncome() {
		log.Warn().Str("dog", t.DogName).Str("owner", t.CustomerName).
			Msg("transacción income sin cliente resoluble: excluida del balance")
	}
}

func validateRequest(in *dto.TransactionRequest) error {
	if in.Type != entity.TransactionTypeIncome && in.Type != entity.TransactionTypeExpense {
		return domain.ErrInvalidInput
	}
	if in.DiscountType != "" &&
		in.DiscountType != entity.DiscountTypeAmount &&
		in.DiscountType != entity.DiscountTypePercent {
		return domain.ErrInvalidInput
	}
	switch in.Category {
	case "", entity.CategoryHotel, entity.CategoryDaycare, entity.CategoryGrooming,
		entity.CategoryProduct, entity.CategoryOther:
	default:
		return domain.ErrInvalidInput
	}
	// Unión etiquetada: el payload debe corresponder a la categoría.
	if in.Hotel != nil && in.Category != entity.CategoryHotel {
		return domain.ErrInvalidInput
	}
	if in.Grooming != nil && in.Category != entity.CategoryGrooming {
		return domain.ErrInvalidInput
	}
	return nil
}

func requestToEntity(in *dto.TransactionRequest) *entity.Transaction {
	t := &entity.Transaction{
		Type:          in.Type,
		CustomerID:    in.CustomerID,
		DogName:       in.DogName,
		CustomerName:  in.CustomerName,
		Phone:         in.Phone,
		Price:         in.Price,
		Quantity:      in.Quantity,
		ExtraDogCount: in.ExtraDogCount,
		DiscountValue: in.DiscountValue,
		DiscountType:  in.DiscountType,
		PaidAmount:    in.PaidAmount,
		Category:      in.Category,
		StartDate:     in.StartDate,
		EndDate:       in.EndDate,
		IsCompleted:   in.IsCompleted,
		IsRunning:     in.IsRunning,
	}
	if in.Hotel != nil {
		t.Hotel = &entity.HotelDetail{
			Nights:      in.Hotel.Nights,
			RoomName:    in.Hotel.RoomName,
			PickupNotes: in.Hotel.PickupNotes,
		}
	}
	if in.Grooming != nil {
		t.Grooming = &entity.GroomingDetail{
			Style:   in.Grooming.Style,
			AddOns:  in.Grooming.AddOns,
			Groomer: in.Grooming.Groomer,
		}
	}
	return t
}

func entityToResponse(t *entity.Transaction) *dto.TransactionResponse {
	resp := &dto.TransactionResponse{
		ID:            t.ID,
		Type:          t.Type,
		CustomerID:    t.CustomerID,
		DogName:       t.DogName,
		CustomerName:  t.CustomerName,
		Phone:         t.Phone,
		Price:         t.Price,
		Quantity:      t.Quantity,
		ExtraDogCount: t.ExtraDogCount,
		DiscountValue: t.DiscountValue,
		DiscountType:  t.DiscountType,
		PaidAmount:    t.PaidAmount,
		BilledAmount:  domainbilling.BilledAmount(t),
		Diff:          domainbilling.Diff(t),
		Category:      t.Category,
		StartDate:     t.StartDate,
		EndDate:       t.EndDate,
		IsCompleted:   t.IsCompleted,
		IsRunning:     t.IsRunning,
	}
	if t.Hotel != nil {
		resp.Hotel = &dto.HotelDetailDTO{
			Nights:      t.Hotel.Nights,
			RoomName:    t.Hotel.RoomName,
			PickupNotes: t.Hotel.PickupNotes,
		}
	}
	if t.Grooming != nil {
		resp.Grooming = &dto.GroomingDetailDTO{
			Style:   t.Grooming.Style,
			AddOns:  t.Grooming.AddOns,
			Groomer: t.Grooming.Groomer,
		}
	}
	return resp
}
