package billing

import (
	"time"

	"github.com/google/uuid"

	"github.com/fa146612-art/kingdog-system-sub000/internal/application/dto"
	"github.com/fa146612-art/kingdog-system-sub000/internal/domain"
	"github.com/fa146612-art/kingdog-system-sub000/internal/domain/entity"
	"github.com/fa146612-art/kingdog-system-sub000/internal/domain/matching"
	"github.com/fa146612-art/kingdog-system-sub000/internal/domain/repository"
	"github.com/fa146612-art/kingdog-system-sub000/internal/infrastructure/push"
)

// CustomerUseCase altas, consultas y edición de clientes. El balance y el
// tiquete nunca se editan por aquí: los mueven el ajustador incremental, el
// ledger de asistencia y la reconciliación.
type CustomerUseCase struct {
	repo      repository.CustomerRepository
	publisher Publisher
}

// NewCustomerUseCase construye el caso de uso.
func NewCustomerUseCase(repo repository.CustomerRepository, publisher Publisher) *CustomerUseCase {
	return &CustomerUseCase{repo: repo, publisher: publisher}
}

// Create registra un cliente nuevo. (dogName, phone) identifica al cliente en
// el mostrador, así que se rechazan duplicados exactos.
func (uc *CustomerUseCase) Create(in dto.CreateCustomerRequest) (*dto.CustomerResponse, error) {
	if in.OwnerName == "" || in.DogName == "" || in.Phone == "" {
		return nil, domain.ErrInvalidInput
	}
	existing, _ := uc.repo.FindByDogAndPhone(
		matching.NormalizeName(in.DogName), matching.NormalizePhone(in.Phone),
	)
	if existing != nil {
		return nil, domain.ErrDuplicate
	}
	now := time.Now()
	customer := &entity.Customer{
		ID:                uuid.New().String(),
		OwnerName:         in.OwnerName,
		DogName:           in.DogName,
		Phone:             in.Phone,
		IsDepositExempt:   in.IsDepositExempt,
		LastBalanceUpdate: now,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if err := uc.repo.Create(customer); err != nil {
		return nil, err
	}
	uc.publisher.Publish(push.Event{Topic: push.TopicCustomers, Action: "created", Key: customer.ID})
	return customerToResponse(customer), nil
}

// GetByID obtiene un cliente.
func (uc *CustomerUseCase) GetByID(id string) (*dto.CustomerResponse, error) {
	c, err := uc.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, domain.ErrCustomerNotFound
	}
	return customerToResponse(c), nil
}

// List lista clientes con paginación.
func (uc *CustomerUseCase) List(limit, offset int) ([]*dto.CustomerResponse, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	list, err := uc.repo.List(limit, offset)
	if err != nil {
		return nil, err
	}
	out := make([]*dto.CustomerResponse, 0, len(list))
	for _, c := range list {
		out = append(out, customerToResponse(c))
	}
	return out, nil
}

// Update edición de datos identitarios del cliente.
func (uc *CustomerUseCase) Update(id string, in dto.UpdateCustomerRequest) (*dto.CustomerResponse, error) {
	c, err := uc.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, domain.ErrCustomerNotFound
	}
	if in.OwnerName != nil {
		c.OwnerName = *in.OwnerName
	}
	if in.DogName != nil {
		c.DogName = *in.DogName
	}
	if in.Phone != nil {
		c.Phone = *in.Phone
	}
	if in.IsDepositExempt != nil {
		c.IsDepositExempt = *in.IsDepositExempt
	}
	c.UpdatedAt = time.Now()
	if err := uc.repo.Update(c); err != nil {
		return nil, err
	}
	uc.publisher.Publish(push.Event{Topic: push.TopicCustomers, Action: "updated", Key: c.ID})
	return customerToResponse(c), nil
}

// Balance consulta el balance con su convención de signo fija: negativo =
// adeudado por el cliente, positivo = crédito prepagado.
func (uc *CustomerUseCase) Balance(id string) (*dto.BalanceResponse, error) {
	c, err := uc.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, domain.ErrCustomerNotFound
	}
	return &dto.BalanceResponse{
		CustomerID:        c.ID,
		Balance:           c.Balance,
		LastBalanceUpdate: c.LastBalanceUpdate,
	}, nil
}

func customerToResponse(c *entity.Customer) *dto.CustomerResponse {
	return &dto.CustomerResponse{
		ID:                c.ID,
		OwnerName:         c.OwnerName,
		DogName:           c.DogName,
		Phone:             c.Phone,
		Balance:           c.Balance,
		TicketRemaining:   c.Ticket.Remaining,
		TicketStartDate:   c.Ticket.StartDate,
		TicketExpiryDate:  c.Ticket.ExpiryDate,
		IsDepositExempt:   c.IsDepositExempt,
		LastBalanceUpdate: c.LastBalanceUpdate,
	}
}
