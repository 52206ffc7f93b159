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

// UseCase es la máquina de estados de asistencia por (perro, fecha): descuenta
// o restaura créditos del tiquete exactamente una vez por transición. La
// decisión se toma SIEMPRE contra el último estado persistido, nunca contra
// la petición cruda, y la fila se bloquea (FOR UPDATE) para que llamadas
// concurrentes no puedan descontar dos veces.
type UseCase struct {
	txRunner  TxRunner
	attRepo   repository.AttendanceRepository
	publisher Publisher
}

// NewUseCase construye el caso de uso.
func NewUseCase(txRunner TxRunner, attRepo repository.AttendanceRepository, publisher Publisher) *UseCase {
	return &UseCase{txRunner: txRunner, attRepo: attRepo, publisher: publisher}
}

// Mark aplica una transición de asistencia.
//
//   - absent→present|home: si el tiquete está agotado y force=false devuelve
//     ErrConfirmRequired SIN mutar nada; con saldo (o force) descuenta 1,
//     asienta {use,-1}, registra hora de llegada y agrega la fecha al plan de
//     asistencia. Un check-in forzado puede dejar el saldo negativo.
//   - present|home→absent: solo si el estado persistido era present|home
//     (el perro contó como asistido ese día): restaura 1 y asienta {restore,+1}.
//   - present↔home: sin efecto de tiquete; solo estado y horas.
func (uc *UseCase) Mark(ctx context.Context, in dto.MarkAttendanceRequest) (*dto.MarkAttendanceResponse, error) {
	if in.DogID == "" || !entity.ValidAttendanceStatus(in.Status) {
		return nil, domain.ErrInvalidInput
	}
	if _, err := time.Parse("2006-01-02", in.Date); err != nil {
		return nil, domain.ErrInvalidInput
	}

	var remaining int
	err := uc.txRunner.RunAttendance(ctx, func(
		attRepo repository.AttendanceRepository,
		customerRepo repository.CustomerRepository,
		logRepo repository.TicketLogRepository,
	) error {
		// Bloquea al cliente (tiquete) y la fila de asistencia: punto de
		// serialización por (perro, fecha).
		customer, err := customerRepo.GetForUpdate(in.DogID)
		if err != nil {
			return err
		}
		if customer == nil {
			return domain.ErrCustomerNotFound
		}

		persisted, err := attRepo.GetForUpdate(in.Date, in.DogID)
		if err != nil {
			return err
		}
		prevStatus := entity.AttendanceAbsent
		if persisted != nil {
			prevStatus = persisted.Status
		}

		now := time.Now()
		next := &entity.AttendanceLog{
			Date:      in.Date,
			DogID:     in.DogID,
			Status:    in.Status,
			UpdatedAt: now,
		}
		if persisted != nil {
			next.ArrivalTime = persisted.ArrivalTime
			next.PickupTime = persisted.PickupTime
		}

		remaining = customer.Ticket.Remaining
		attended := prevStatus == entity.AttendancePresent || prevStatus == entity.AttendanceHome
		arriving := prevStatus == entity.AttendanceAbsent && in.Status != entity.AttendanceAbsent
		leaving := attended && in.Status == entity.AttendanceAbsent

		switch {
		case arriving:
			if customer.Ticket.Remaining <= 0 && !in.Force {
				return domain.ErrConfirmRequired
			}
			if err := customerRepo.IncrementTicketRemaining(customer.ID, -1); err != nil {
				return err
			}
			if err := logRepo.Append(&entity.TicketLog{
				ID:            uuid.New().String(),
				CustomerID:    customer.ID,
				Date:          in.Date,
				Type:          entity.TicketLogUse,
				Amount:        -1,
				PrevRemaining: customer.Ticket.Remaining,
				NewRemaining:  customer.Ticket.Remaining - 1,
				StaffName:     in.StaffName,
				CreatedAt:     now,
			}); err != nil {
				return err
			}
			remaining = customer.Ticket.Remaining - 1
			next.ArrivalTime = &now
			if in.Status == entity.AttendanceHome {
				next.PickupTime = &now
			}
			if err := attRepo.AddPlannedDate(customer.ID, in.Date); err != nil {
				return err
			}

		case leaving:
			if err := customerRepo.IncrementTicketRemaining(customer.ID, 1); err != nil {
				return err
			}
			if err := logRepo.Append(&entity.TicketLog{
				ID:            uuid.New().String(),
				CustomerID:    customer.ID,
				Date:          in.Date,
				Type:          entity.TicketLogRestore,
				Amount:        1,
				PrevRemaining: customer.Ticket.Remaining,
				NewRemaining:  customer.Ticket.Remaining + 1,
				StaffName:     in.StaffName,
				CreatedAt:     now,
			}); err != nil {
				return err
			}
			remaining = customer.Ticket.Remaining + 1
			next.ArrivalTime = nil
			next.PickupTime = nil

		default:
			// present↔home (o repetición del mismo estado): sin efecto de
			// tiquete, solo horas.
			if prevStatus == entity.AttendancePresent && in.Status == entity.AttendanceHome {
				next.PickupTime = &now
			}
			if prevStatus == entity.AttendanceHome && in.Status == entity.AttendancePresent {
				next.PickupTime = nil
			}
		}

		return attRepo.Upsert(next)
	})
	if err != nil {
		return nil, err
	}

	uc.publisher.Publish(push.Event{
		Topic:  push.TopicAttendance,
		Action: "marked",
		Key:    in.Date + "_" + in.DogID,
		Payload: map[string]any{
			"status": in.Status, "remaining": remaining,
		},
	})
	return &dto.MarkAttendanceResponse{
		DogID:           in.DogID,
		Date:            in.Date,
		Status:          in.Status,
		TicketRemaining: remaining,
	}, nil
}

// ListByDate registros diarios de asistencia para la fecha.
func (uc *UseCase) ListByDate(date string) ([]*dto.AttendanceLogResponse, error) {
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return nil, domain.ErrInvalidInput
	}
	list, err := uc.attRepo.ListByDate(date)
	if err != nil {
		return nil, err
	}
	out := make([]*dto.AttendanceLogResponse, 0, len(list))
	for _, a := range list {
		out = append(out, &dto.AttendanceLogResponse{
			Date:        a.Date,
			DogID:       a.DogID,
			Status:      a.Status,
			ArrivalTime: a.ArrivalTime,
			PickupTime:  a.PickupTime,
			UpdatedAt:   a.UpdatedAt,
		})
	}
	return out, nil
}
