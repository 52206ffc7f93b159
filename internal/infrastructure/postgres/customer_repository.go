package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/fa146612-art/kingdog-system-sub000/internal/domain"
	"github.com/fa146612-art/kingdog-system-sub000/internal/domain/entity"
	"github.com/fa146612-art/kingdog-system-sub000/internal/domain/matching"
	"github.com/fa146612-art/kingdog-system-sub000/internal/domain/repository"
)

var _ repository.CustomerRepository = (*CustomerRepo)(nil)

const customerColumns = `id, owner_name, dog_name, phone, balance,
	ticket_remaining, ticket_start, ticket_expiry, is_deposit_exempt,
	last_balance_update, created_at, updated_at`

// CustomerRepo implementación de CustomerRepository (usable con pool o tx).
type CustomerRepo struct {
	q Querier
}

// NewCustomerRepository construye el adaptador. Pasar pool o tx (Querier).
func NewCustomerRepository(q Querier) *CustomerRepo {
	return &CustomerRepo{q: q}
}

// Create persiste un nuevo cliente. Las columnas *_norm se derivan aquí para
// que todo camino de escritura deje la identidad normalizada consistente.
func (r *CustomerRepo) Create(c *entity.Customer) error {
	query := `
		INSERT INTO customers (id, owner_name, dog_name, phone,
			owner_name_norm, dog_name_norm, phone_norm,
			balance, ticket_remaining, ticket_start, ticket_expiry,
			is_deposit_exempt, last_balance_update, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`
	_, err := r.q.Exec(context.Background(), query,
		c.ID, c.OwnerName, c.DogName, c.Phone,
		matching.NormalizeName(c.OwnerName), matching.NormalizeName(c.DogName), matching.NormalizePhone(c.Phone),
		c.Balance, c.Ticket.Remaining, c.Ticket.StartDate, c.Ticket.ExpiryDate,
		c.IsDepositExempt, c.LastBalanceUpdate, c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert customer: %w", err)
	}
	return nil
}

// GetByID obtiene un cliente por ID. Devuelve nil si no existe.
func (r *CustomerRepo) GetByID(id string) (*entity.Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM customers WHERE id = $1`
	return r.scanOne(r.q.QueryRow(context.Background(), query, id), "get customer")
}

// GetForUpdate obtiene el cliente y bloquea la fila (SELECT FOR UPDATE).
// Punto de serialización del ledger de tiquetes.
func (r *CustomerRepo) GetForUpdate(id string) (*entity.Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM customers WHERE id = $1 FOR UPDATE`
	return r.scanOne(r.q.QueryRow(context.Background(), query, id), "get customer for update")
}

// List lista clientes con paginación, ordenados por nombre del perro.
func (r *CustomerRepo) List(limit, offset int) ([]*entity.Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM customers ORDER BY dog_name LIMIT $1 OFFSET $2`
	rows, err := r.q.Query(context.Background(), query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list customers: %w", err)
	}
	defer rows.Close()
	return r.scanAll(rows)
}

// Update actualiza los campos de identidad/configuración del cliente.
// Balance y tiquete tienen sus propias primitivas; aquí no se tocan.
func (r *CustomerRepo) Update(c *entity.Customer) error {
	query := `
		UPDATE customers SET owner_name = $2, dog_name = $3, phone = $4,
			owner_name_norm = $5, dog_name_norm = $6, phone_norm = $7,
			is_deposit_exempt = $8, updated_at = $9
		WHERE id = $1`
	tag, err := r.q.Exec(context.Background(), query,
		c.ID, c.OwnerName, c.DogName, c.Phone,
		matching.NormalizeName(c.OwnerName), matching.NormalizeName(c.DogName), matching.NormalizePhone(c.Phone),
		c.IsDepositExempt, c.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("update customer: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrCustomerNotFound
	}
	return nil
}

// FindByDogAndPhone emparejador de respaldo (perro, teléfono). Recibe valores
// ya normalizados.
func (r *CustomerRepo) FindByDogAndPhone(dogNorm, phoneNorm string) (*entity.Customer, error) {
	if dogNorm == "" || phoneNorm == "" {
		return nil, nil
	}
	query := `SELECT ` + customerColumns + ` FROM customers
		WHERE dog_name_norm = $1 AND phone_norm = $2 LIMIT 1`
	return r.scanOne(r.q.QueryRow(context.Background(), query, dogNorm, phoneNorm), "find customer by dog+phone")
}

// FindByDogAndOwner emparejador de respaldo (perro, dueño). Recibe valores
// ya normalizados.
func (r *CustomerRepo) FindByDogAndOwner(dogNorm, ownerNorm string) (*entity.Customer, error) {
	if dogNorm == "" || ownerNorm == "" {
		return nil, nil
	}
	query := `SELECT ` + customerColumns + ` FROM customers
		WHERE dog_name_norm = $1 AND owner_name_norm = $2 LIMIT 1`
	return r.scanOne(r.q.QueryRow(context.Background(), query, dogNorm, ownerNorm), "find customer by dog+owner")
}

// IncrementBalance aplica un delta con signo al balance. El incremento se
// hace en SQL (balance = balance + delta): conmutativo, nunca pierde
// escrituras concurrentes.
func (r *CustomerRepo) IncrementBalance(id string, delta int64) error {
	query := `
		UPDATE customers
		SET balance = balance + $2, last_balance_update = now(), updated_at = now()
		WHERE id = $1`
	tag, err := r.q.Exec(context.Background(), query, id, delta)
	if err != nil {
		return fmt.Errorf("increment balance: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrCustomerNotFound
	}
	return nil
}

// OverwriteBalance sobrescribe el balance; lo usa solo la reconciliación.
func (r *CustomerRepo) OverwriteBalance(id string, balance int64, at time.Time) error {
	query := `
		UPDATE customers
		SET balance = $2, last_balance_update = $3, updated_at = now()
		WHERE id = $1`
	tag, err := r.q.Exec(context.Background(), query, id, balance, at)
	if err != nil {
		return fmt.Errorf("overwrite balance: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrCustomerNotFound
	}
	return nil
}

// IncrementTicketRemaining aplica un delta con signo al saldo del tiquete.
// Puede dejar el saldo negativo (check-in forzado).
func (r *CustomerRepo) IncrementTicketRemaining(id string, delta int) error {
	query := `
		UPDATE customers
		SET ticket_remaining = ticket_remaining + $2, updated_at = now()
		WHERE id = $1`
	tag, err := r.q.Exec(context.Background(), query, id, delta)
	if err != nil {
		return fmt.Errorf("increment ticket remaining: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrCustomerNotFound
	}
	return nil
}

// ChargeTicket suma créditos comprados y sobrescribe la vigencia.
func (r *CustomerRepo) ChargeTicket(id string, count int, start, expiry *time.Time) error {
	query := `
		UPDATE customers
		SET ticket_remaining = ticket_remaining + $2,
			ticket_start = $3, ticket_expiry = $4, updated_at = now()
		WHERE id = $1`
	tag, err := r.q.Exec(context.Background(), query, id, count, start, expiry)
	if err != nil {
		return fmt.Errorf("charge ticket: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrCustomerNotFound
	}
	return nil
}

// ListTicketExpiring lista clientes con tiquete vigente que vence antes de la
// fecha dada y aún con saldo.
func (r *CustomerRepo) ListTicketExpiring(before time.Time) ([]*entity.Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM customers
		WHERE ticket_expiry IS NOT NULL AND ticket_expiry < $1 AND ticket_remaining > 0
		ORDER BY ticket_expiry`
	rows, err := r.q.Query(context.Background(), query, before)
	if err != nil {
		return nil, fmt.Errorf("list expiring tickets: %w", err)
	}
	defer rows.Close()
	return r.scanAll(rows)
}

func (r *CustomerRepo) scanOne(row pgx.Row, op string) (*entity.Customer, error) {
	var c entity.Customer
	err := row.Scan(
		&c.ID, &c.OwnerName, &c.DogName, &c.Phone, &c.Balance,
		&c.Ticket.Remaining, &c.Ticket.StartDate, &c.Ticket.ExpiryDate, &c.IsDepositExempt,
		&c.LastBalanceUpdate, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &c, nil
}

func (r *CustomerRepo) scanAll(rows pgx.Rows) ([]*entity.Customer, error) {
	var list []*entity.Customer
	for rows.Next() {
		var c entity.Customer
		if err := rows.Scan(
			&c.ID, &c.OwnerName, &c.DogName, &c.Phone, &c.Balance,
			&c.Ticket.Remaining, &c.Ticket.StartDate, &c.Ticket.ExpiryDate, &c.IsDepositExempt,
			&c.LastBalanceUpdate, &c.CreatedAt, &c.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan customer: %w", err)
		}
		list = append(list, &c)
	}
	return list, rows.Err()
}
