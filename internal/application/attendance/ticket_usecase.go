package attendance

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/fa146612-art/kingdog-system-sub000/internal/application/dto"
	"github.com/fa146612-art/kingdog-system-sub000/internal/domain"
	"github.com/fa146612-art/kingdog-system-sub000/internal/domain/entity"
	"github.com/fa146612-art/kingdog-system-sub000/internal/domain/repository"
	"github.com/fa146612-art/kingdog-system-sub000/internal/infrastructure/push"
)

// TicketUseCase flujo de compra de créditos (independiente de la máquina de
// estados de asistencia) y consulta del tiquete con su bitácora.
type TicketUseCase struct {
	txRunner     TxRunner
	customerRepo repository.CustomerRepository
	logRepo      repository.TicketLogRepository
	publisher    Publisher
}

// NewTicketUseCase construye el caso de uso.
func NewTicketUseCase(
	txRunner TxRunner,
	customerRepo repository.CustomerRepository,
	logRepo repository.TicketLogRepository,
	publisher Publisher,
) *TicketUseCase {
	return &TicketUseCase{
		txRunner:     txRunner,
		customerRepo: customerRepo,
		logRepo:      logRepo,
		publisher:    publisher,
	}
}

// Charge suma incondicionalmente los créditos comprados, sobrescribe la
// vigencia y asienta {charge,+count} en la bitácora, todo en una sola tx.
func (uc *TicketUseCase) Charge(ctx context.Context, customerID string, in dto.ChargeTicketRequest) (*dto.CustomerResponse, error) {
	if in.Count <= 0 {
		return nil, domain.ErrInvalidInput
	}

	var updated *entity.Customer
	err := uc.txRunner.RunAttendance(ctx, func(
		attRepo repository.AttendanceRepository,
		customerRepo repository.CustomerRepository,
		logRepo repository.TicketLogRepository,
	) error {
		customer, err := customerRepo.GetForUpdate(customerID)
		if err != nil {
			return err
		}
		if customer == nil {
			return domain.ErrCustomerNotFound
		}

		if err := customerRepo.ChargeTicket(customerID, in.Count, in.StartDate, in.ExpiryDate); err != nil {
			return err
		}
		now := time.Now()
		if err := logRepo.Append(&entity.TicketLog{
			ID:            uuid.New().String(),
			CustomerID:    customerID,
			Date:          now.Format("2006-01-02"),
			Type:          entity.TicketLogCharge,
			Amount:        in.Count,
			PrevRemaining: customer.Ticket.Remaining,
			NewRemaining:  customer.Ticket.Remaining + in.Count,
			StaffName:     in.StaffName,
			Reason:        in.Reason,
			CreatedAt:     now,
		}); err != nil {
			return err
		}

		customer.Ticket.Remaining += in.Count
		customer.Ticket.StartDate = in.StartDate
		customer.Ticket.ExpiryDate = in.ExpiryDate
		updated = customer
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.publisher.Publish(push.Event{Topic: push.TopicTickets, Action: "charged", Key: customerID})
	return customerToResponse(updated), nil
}

// Ticket devuelve el saldo del tiquete y su bitácora append-only.
func (uc *TicketUseCase) Ticket(customerID string, limit, offset int) (*dto.TicketResponse, error) {
	customer, err := uc.customerRepo.GetByID(customerID)
	if err != nil {
		return nil, err
	}
	if customer == nil {
		return nil, domain.ErrCustomerNotFound
	}
	if limit <= 0 {
		limit = 50
	}
	logs, err := uc.logRepo.ListByCustomer(customerID, limit, offset)
	if err != nil {
		return nil, err
	}
	history := make([]dto.TicketLogEntry, 0, len(logs))
	for _, l := range logs {
		history = append(history, dto.TicketLogEntry{
			ID:            l.ID,
			Date:          l.Date,
			Type:          l.Type,
			Amount:        l.Amount,
			PrevRemaining: l.PrevRemaining,
			NewRemaining:  l.NewRemaining,
			StaffName:     l.StaffName,
			Reason:        l.Reason,
			CreatedAt:     l.CreatedAt,
		})
	}
	return &dto.TicketResponse{
		CustomerID: customer.ID,
		Remaining:  customer.Ticket.Remaining,
		StartDate:  customer.Ticket.StartDate,
		ExpiryDate: customer.Ticket.ExpiryDate,
		History:    history,
	}, nil
}

// NotifyExpiring publica un evento por cada tiquete que vence antes de la
// fecha dada y aún tiene saldo. Lo invoca el scheduler diario.
func (uc *TicketUseCase) NotifyExpiring(before time.Time) (int, error) {
	list, err := uc.customerRepo.ListTicketExpiring(before)
	if err != nil {
		return 0, err
	}
	for _, c := range list {
		uc.publisher.Publish(push.Event{
			Topic:  push.TopicTickets,
			Action: "expiring",
			Key:    c.ID,
			Payload: map[string]any{
				"remaining": c.Ticket.Remaining,
				"expiry":    c.Ticket.ExpiryDate,
			},
		})
	}
	return len(list), nil
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
