package billing_test

import (
	"context"
	"errors"
	"sort"
	"time"

	appattendance "github.com/fa146612-art/kingdog-system-sub000/internal/application/attendance"
	appbilling "github.com/fa146612-art/kingdog-system-sub000/internal/application/billing"
	"github.com/fa146612-art/kingdog-system-sub000/internal/domain"
	"github.com/fa146612-art/kingdog-system-sub000/internal/domain/entity"
	"github.com/fa146612-art/kingdog-system-sub000/internal/domain/matching"
	"github.com/fa146612-art/kingdog-system-sub000/internal/domain/repository"
	"github.com/fa146612-art/kingdog-system-sub000/internal/infrastructure/push"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fakes en memoria. Guardan entidades por valor para que un rollback del
// runner restaure el estado exacto previo a la tx.
// ──────────────────────────────────────────────────────────────────────────────

var errIncrementFailed = errors.New("increment rechazado por el store")

type fakeCustomerRepo struct {
	customers     map[string]entity.Customer
	failIncrement bool
}

func newFakeCustomerRepo() *fakeCustomerRepo {
	return &fakeCustomerRepo{customers: make(map[string]entity.Customer)}
}

func (r *fakeCustomerRepo) snapshot() map[string]entity.Customer {
	cp := make(map[string]entity.Customer, len(r.customers))
	for k, v := range r.customers {
		cp[k] = v
	}
	return cp
}

func (r *fakeCustomerRepo) Create(c *entity.Customer) error {
	r.customers[c.ID] = *c
	return nil
}

func (r *fakeCustomerRepo) GetByID(id string) (*entity.Customer, error) {
	if c, ok := r.customers[id]; ok {
		cp := c
		return &cp, nil
	}
	return nil, nil
}

func (r *fakeCustomerRepo) GetForUpdate(id string) (*entity.Customer, error) {
	return r.GetByID(id)
}

func (r *fakeCustomerRepo) List(limit, offset int) ([]*entity.Customer, error) {
	ids := make([]string, 0, len(r.customers))
	for id := range r.customers {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	var out []*entity.Customer
	for _, id := range ids {
		c := r.customers[id]
		out = append(out, &c)
	}
	return out, nil
}

func (r *fakeCustomerRepo) Update(c *entity.Customer) error {
	if _, ok := r.customers[c.ID]; !ok {
		return domain.ErrCustomerNotFound
	}
	r.customers[c.ID] = *c
	return nil
}

func (r *fakeCustomerRepo) FindByDogAndPhone(dogNorm, phoneNorm string) (*entity.Customer, error) {
	if dogNorm == "" || phoneNorm == "" {
		return nil, nil
	}
	for _, c := range r.customers {
		if matching.NormalizeName(c.DogName) == dogNorm && matching.NormalizePhone(c.Phone) == phoneNorm {
			cp := c
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeCustomerRepo) FindByDogAndOwner(dogNorm, ownerNorm string) (*entity.Customer, error) {
	if dogNorm == "" || ownerNorm == "" {
		return nil, nil
	}
	for _, c := range r.customers {
		if matching.NormalizeName(c.DogName) == dogNorm && matching.NormalizeName(c.OwnerName) == ownerNorm {
			cp := c
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeCustomerRepo) IncrementBalance(id string, delta int64) error {
	if r.failIncrement {
		return errIncrementFailed
	}
	c, ok := r.customers[id]
	if !ok {
		return domain.ErrCustomerNotFound
	}
	c.Balance += delta
	c.LastBalanceUpdate = time.Now()
	r.customers[id] = c
	return nil
}

func (r *fakeCustomerRepo) OverwriteBalance(id string, balance int64, at time.Time) error {
	c, ok := r.customers[id]
	if !ok {
		return domain.ErrCustomerNotFound
	}
	c.Balance = balance
	c.LastBalanceUpdate = at
	r.customers[id] = c
	return nil
}

func (r *fakeCustomerRepo) IncrementTicketRemaining(id string, delta int) error {
	c, ok := r.customers[id]
	if !ok {
		return domain.ErrCustomerNotFound
	}
	c.Ticket.Remaining += delta
	r.customers[id] = c
	return nil
}

func (r *fakeCustomerRepo) ChargeTicket(id string, count int, start, expiry *time.Time) error {
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

func (r *fakeCustomerRepo) ListTicketExpiring(before time.Time) ([]*entity.Customer, error) {
	var out []*entity.Customer
	for _, c := range r.customers {
		if c.Ticket.ExpiryDate != nil && c.Ticket.ExpiryDate.Before(before) && c.Ticket.Remaining > 0 {
			cp := c
			out = append(out, &cp)
		}
	}
	return out, nil
}

type fakeTransactionRepo struct {
	transactions map[string]entity.Transaction
}

func newFakeTransactionRepo() *fakeTransactionRepo {
	return &fakeTransactionRepo{transactions: make(map[string]entity.Transaction)}
}

func (r *fakeTransactionRepo) snapshot() map[string]entity.Transaction {
	cp := make(map[string]entity.Transaction, len(r.transactions))
	for k, v := range r.transactions {
		cp[k] = v
	}
	return cp
}

func (r *fakeTransactionRepo) Create(t *entity.Transaction) error {
	r.transactions[t.ID] = *t
	return nil
}

func (r *fakeTransactionRepo) GetByID(id string) (*entity.Transaction, error) {
	if t, ok := r.transactions[id]; ok {
		cp := t
		return &cp, nil
	}
	return nil, nil
}

func (r *fakeTransactionRepo) GetForUpdate(id string) (*entity.Transaction, error) {
	return r.GetByID(id)
}

func (r *fakeTransactionRepo) Update(t *entity.Transaction) error {
	r.transactions[t.ID] = *t
	return nil
}

func (r *fakeTransactionRepo) UpdatePaidAmount(id string, paidAmount int64, at time.Time) error {
	t, ok := r.transactions[id]
	if !ok {
		return nil
	}
	t.PaidAmount = paidAmount
	t.UpdatedAt = at
	r.transactions[id] = t
	return nil
}

func (r *fakeTransactionRepo) Delete(id string) error {
	delete(r.transactions, id)
	return nil
}

func (r *fakeTransactionRepo) List(filter repository.TransactionFilter) ([]*entity.Transaction, error) {
	var out []*entity.Transaction
	for _, t := range r.transactions {
		if filter.CustomerID != "" && t.CustomerID != filter.CustomerID {
			continue
		}
		if filter.Type != "" && t.Type != filter.Type {
			continue
		}
		cp := t
		out = append(out, &cp)
	}
	return out, nil
}

func (r *fakeTransactionRepo) ListIncomeByCustomerID(customerID string) ([]*entity.Transaction, error) {
	var out []*entity.Transaction
	for _, t := range r.transactions {
		if t.Type == entity.TransactionTypeIncome && t.CustomerID == customerID {
			cp := t
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeTransactionRepo) ListIncomeByDogAndPhone(dogNorm, phoneNorm string) ([]*entity.Transaction, error) {
	var out []*entity.Transaction
	for _, t := range r.transactions {
		if t.Type == entity.TransactionTypeIncome &&
			matching.NormalizeName(t.DogName) == dogNorm &&
			matching.NormalizePhone(t.Phone) == phoneNorm {
			cp := t
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeTransactionRepo) ListIncomeByDogAndOwner(dogNorm, ownerNorm string) ([]*entity.Transaction, error) {
	var out []*entity.Transaction
	for _, t := range r.transactions {
		if t.Type == entity.TransactionTypeIncome &&
			matching.NormalizeName(t.DogName) == dogNorm &&
			matching.NormalizeName(t.CustomerName) == ownerNorm {
			cp := t
			out = append(out, &cp)
		}
	}
	return out, nil
}

type fakeAttendanceRepo struct {
	logs    map[string]entity.AttendanceLog // clave date_dogID
	planned map[string]bool                 // clave customerID_date
}

func newFakeAttendanceRepo() *fakeAttendanceRepo {
	return &fakeAttendanceRepo{
		logs:    make(map[string]entity.AttendanceLog),
		planned: make(map[string]bool),
	}
}

func (r *fakeAttendanceRepo) key(date, dogID string) string { return date + "_" + dogID }

func (r *fakeAttendanceRepo) Get(date, dogID string) (*entity.AttendanceLog, error) {
	if l, ok := r.logs[r.key(date, dogID)]; ok {
		cp := l
		return &cp, nil
	}
	return nil, nil
}

func (r *fakeAttendanceRepo) GetForUpdate(date, dogID string) (*entity.AttendanceLog, error) {
	return r.Get(date, dogID)
}

func (r *fakeAttendanceRepo) Upsert(l *entity.AttendanceLog) error {
	r.logs[r.key(l.Date, l.DogID)] = *l
	return nil
}

func (r *fakeAttendanceRepo) ListByDate(date string) ([]*entity.AttendanceLog, error) {
	var out []*entity.AttendanceLog
	for _, l := range r.logs {
		if l.Date == date {
			cp := l
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeAttendanceRepo) AddPlannedDate(customerID, date string) error {
	r.planned[customerID+"_"+date] = true
	return nil
}

type fakeTicketLogRepo struct {
	logs []entity.TicketLog
}

func (r *fakeTicketLogRepo) Append(l *entity.TicketLog) error {
	r.logs = append(r.logs, *l)
	return nil
}

func (r *fakeTicketLogRepo) ListByCustomer(customerID string, limit, offset int) ([]*entity.TicketLog, error) {
	var out []*entity.TicketLog
	for i := range r.logs {
		if r.logs[i].CustomerID == customerID {
			cp := r.logs[i]
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeTicketLogRepo) countByType(logType string) int {
	n := 0
	for i := range r.logs {
		if r.logs[i].Type == logType {
			n++
		}
	}
	return n
}

// fakeRunner implementa billing.TxRunner y attendance.TxRunner. Toma una
// instantánea antes de fn y la restaura si fn falla: simula el
// commit/rollback atómico del store.
type fakeRunner struct {
	txRepo       *fakeTransactionRepo
	customerRepo *fakeCustomerRepo
	attRepo      *fakeAttendanceRepo
	logRepo      *fakeTicketLogRepo

	// beforeRun simula una escritura concurrente confirmada justo antes de
	// que abra la tx. Se dispara una sola vez y se limpia.
	beforeRun func()
}

var _ appbilling.TxRunner = (*fakeRunner)(nil)
var _ appattendance.TxRunner = (*fakeRunner)(nil)

func (r *fakeRunner) Run(ctx context.Context, fn func(
	txRepo repository.TransactionRepository,
	customerRepo repository.CustomerRepository,
) error) error {
	if hook := r.beforeRun; hook != nil {
		r.beforeRun = nil
		hook()
	}
	txSnap := r.txRepo.snapshot()
	custSnap := r.customerRepo.snapshot()
	if err := fn(r.txRepo, r.customerRepo); err != nil {
		r.txRepo.transactions = txSnap
		r.customerRepo.customers = custSnap
		return err
	}
	return nil
}

func (r *fakeRunner) RunAttendance(ctx context.Context, fn func(
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

func repositoryFilterAll() repository.TransactionFilter {
	return repository.TransactionFilter{Limit: 1000}
}

// fakePublisher acumula los eventos publicados.
type fakePublisher struct {
	events []push.Event
}

func (p *fakePublisher) Publish(e push.Event) { p.events = append(p.events, e) }
