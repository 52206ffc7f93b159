package attendance_test

import (
	"context"
	"errors"
	"time"

	appattendance "github.com/fa146612-art/kingdog-system-sub000/internal/application/attendance"
	"github.com/fa146612-art/kingdog-system-sub000/internal/domain"
	"github.com/fa146612-art/kingdog-system-sub000/internal/domain/entity"
	"github.com/fa146612-art/kingdog-system-sub000/internal/domain/repository"
	"github.com/fa146612-art/kingdog-system-sub000/internal/infrastructure/push"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fakes en memoria para la máquina de estados. Guardan entidades por valor
// para que el rollback del runner restaure el estado previo a la tx.
// ──────────────────────────────────────────────────────────────────────────────

var errStoreRejected = errors.New("operación rechazada por el store")

type fakeCustomerStore struct {
	customers  map[string]entity.Customer
	failCharge bool
}

func newFakeCustomerStore() *fakeCustomerStore {
	return &fakeCustomerStore{customers: make(map[string]entity.Customer)}
}

func (r *fakeCustomerStore) snapshot() map[string]entity.Customer {
	cp := make(map[string]entity.Customer, len(r.customers))
	for k, v := range r.customers {
		cp[k] = v
	}
	return cp
}

func (r *fakeCustomerStore) Create(c *entity.Customer) error {
	r.customers[c.ID] = *c
	return nil
}

func (r *fakeCustomerStore) GetByID(id string) (*entity.Customer, error) {
	if c, ok := r.customers[id]; ok {
		cp := c
		return &cp, nil
	}
	return nil, nil
}

func (r *fakeCustomerStore) GetForUpdate(id string) (*entity.Customer, error) {
	return r.GetByID(id)
}

func (r *fakeCustomerStore) List(limit, offset int) ([]*entity.Customer, error) {
	return nil, nil
}

func (r *fakeCustomerStore) Update(c *entity.Customer) error {
	r.customers[c.ID] = *c
	return nil
}

func (r *fakeCustomerStore) FindByDogAndPhone(dogNorm, phoneNorm string) (*entity.Customer, error) {
	return nil, nil
}

func (r *fakeCustomerStore) FindByDogAndOwner(dogNorm, ownerNorm string) (*entity.Customer, error) {
	return nil, nil
}

func (r *fakeCustomerStore) IncrementBalance(id string, delta int64) error {
	c, ok := r.customers[id]
	if !ok {
		return domain.ErrCustomerNotFound
	}
	c.Balance += delta
	r.customers[id] = c
	return nil
}

func (r *fakeCustomerStore) OverwriteBalance(id string, balance int64, at time.Time) error {
	c, ok := r.customers[id]
	if !ok {
		return domain.ErrCustomerNotFound
	}
	c.Balance = balance
	c.LastBalanceUpdate = at
	r.customers[id] = c
	return nil
}

func (r *fakeCustomerStore) IncrementTicketRemaining(id string, delta int) error {
	c, ok := r.customers[id]
	if !ok {
		return domain.ErrCustomerNotFound
	}
	c.Ticket.Remaining += delta
	r.customers[id] = c
	return nil
}

func (r *fakeCustomerStore) ChargeTicket(id string, count int, start, expiry *time.Time) error {
	if r.failCharge {
		return errStoreRejected
	}
	c, ok := r.customers[id]
	if !ok {
		return domain.ErrCustomerNotFound
	}
	c.Ticket.Remaining += count
	c.Ticket.StartDate = start
	c.Ticket.ExpiryDate = expiry
	r.customers[id] = c
	return nil
}

func (r *fakeCustomerStore) ListTicketExpiring(before time.Time) ([]*entity.Customer, error) {
	var out []*entity.Customer
	for _, c := range r.customers {
		if c.Ticket.ExpiryDate != nil && c.Ticket.ExpiryDate.Before(before) && c.Ticket.Remaining > 0 {
			cp := c
			out = append(out, &cp)
		}
	}
	return out, nil
}

var _ repository.CustomerRepository = (*fakeCustomerStore)(nil)

type fakeAttendanceStore struct {
	logs    map[string]entity.AttendanceLog
	planned map[string][]string
}

func newFakeAttendanceStore() *fakeAttendanceStore {
	return &fakeAttendanceStore{
		logs:    make(map[string]entity.AttendanceLog),
		planned: make(map[string][]string),
	}
}

func (r *fakeAttendanceStore) key(date, dogID string) string { return date + "_" + dogID }

func (r *fakeAttendanceStore) Get(date, dogID string) (*entity.AttendanceLog, error) {
	if l, ok := r.logs[r.key(date, dogID)]; ok {
		cp := l
		return &cp, nil
	}
	return nil, nil
}

func (r *fakeAttendanceStore) GetForUpdate(date, dogID string) (*entity.AttendanceLog, error) {
	return r.Get(date, dogID)
}

func (r *fakeAttendanceStore) Upsert(l *entity.AttendanceLog) error {
	r.logs[r.key(l.Date, l.DogID)] = *l
	return nil
}

func (r *fakeAttendanceStore) ListByDate(date string) ([]*entity.AttendanceLog, error) {
	var out []*entity.AttendanceLog
	for _, l := range r.logs {
		if l.Date == date {
			cp := l
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeAttendanceStore) AddPlannedDate(customerID, date string) error {
	for _, d := range r.planned[customerID] {
		if d == date {
			return nil
		}
	}
	r.planned[customerID] = append(r.planned[customerID], date)
	return nil
}

var _ repository.AttendanceRepository = (*fakeAttendanceStore)(nil)

type fakeTicketLogStore struct {
	logs []entity.TicketLog
}

func (r *fakeTicketLogStore) Append(l *entity.TicketLog) error {
	r.logs = append(r.logs, *l)
	return nil
}

func (r *fakeTicketLogStore) ListByCustomer(customerID string, limit, offset int) ([]*entity.TicketLog, error) {
	var out []*entity.TicketLog
	for i := len(r.logs) - 1; i >= 0; i-- {
		if r.logs[i].CustomerID == customerID {
			cp := r.logs[i]
			out = append(out, &cp)
		}
	}
	if offset < len(out) {
		out = out[offset:]
	} else {
		out = nil
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeTicketLogStore) countByType(logType string) int {
	n := 0
	for _, l := range r.logs {
		if l.Type == logType {
			n++
		}
	}
	return n
}

var _ repository.TicketLogRepository = (*fakeTicketLogStore)(nil)

// fakeTxRunner toma una instantánea antes de fn y la restaura si fn falla.
type fakeTxRunner struct {
	customerRepo *fakeCustomerStore
	attRepo      *fakeAttendanceStore
	logRepo      *fakeTicketLogStore
}

var _ appattendance.TxRunner = (*fakeTxRunner)(nil)

func (r *fakeTxRunner) RunAttendance(ctx context.Context, fn func(
	attRepo repository.AttendanceRepository,
	customerRepo repository.CustomerRepository,
	logRepo repository.TicketLogRepository,
) error) error {
	custSnap := r.customerRepo.snapshot()
	attSnap := make(map[string]entity.AttendanceLog, len(r.attRepo.logs))
	for k, v := range r.attRepo.logs {
		attSnap[k] = v
	}
	logSnap := append([]entity.TicketLog(nil), r.logRepo.logs...)
	if err := fn(r.attRepo, r.customerRepo, r.logRepo); err != nil {
		r.customerRepo.customers = custSnap
		r.attRepo.logs = attSnap
		r.logRepo.logs = logSnap
		return err
	}
	return nil
}

type fakePublisher struct {
	events []push.Event
}

func (p *fakePublisher) Publish(e push.Event) { p.events = append(p.events, e) }
