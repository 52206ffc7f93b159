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

var _ repository.TransactionRepository = (*TransactionRepo)(nil)

const transactionColumns = `id, type, customer_id, dog_name, customer_name, phone,
	price, quantity, extra_dog_count, discount_value, discount_type, paid_amount,
	category, hotel_nights, hotel_room, hotel_pickup_notes,
	grooming_style, grooming_addons, grooming_groomer,
	start_date, end_date, is_completed, is_running, created_at, updated_at`

// TransactionRepo implementación de TransactionRepository (usable con pool o tx).
type TransactionRepo struct {
	q Querier
}

// NewTransactionRepository construye el adaptador. Pasar pool o tx (Querier).
func NewTransactionRepository(q Querier) *TransactionRepo {
	return &TransactionRepo{q: q}
}

// Create persiste una transacción. customer_id vacío se guarda como NULL
// (referencia débil ausente, no string vacío).
func (r *TransactionRepo) Create(t *entity.Transaction) error {
	query := `
		INSERT INTO transactions (id, type, customer_id, dog_name, customer_name, phone,
			dog_name_norm, customer_name_norm, phone_norm,
			price, quantity, extra_dog_count, discount_value, discount_type, paid_amount,
			category, hotel_nights, hotel_room, hotel_pickup_notes,
			grooming_style, grooming_addons, grooming_groomer,
			start_date, end_date, is_completed, is_running, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15,
			$16, $17, $18, $19, $20, $21, $22, $23, $24, $25, $26, $27, $28)`
	hotelNights, hotelRoom, hotelNotes := hotelFields(t)
	groomStyle, groomAddons, groomGroomer := groomingFields(t)
	_, err := r.q.Exec(context.Background(), query,
		t.ID, t.Type, nullIfEmpty(t.CustomerID), t.DogName, t.CustomerName, t.Phone,
		matching.NormalizeName(t.DogName), matching.NormalizeName(t.CustomerName), matching.NormalizePhone(t.Phone),
		t.Price, t.Quantity, t.ExtraDogCount, t.DiscountValue, t.DiscountType, t.PaidAmount,
		t.Category, hotelNights, hotelRoom, hotelNotes,
		groomStyle, groomAddons, groomGroomer,
		t.StartDate, t.EndDate, t.IsCompleted, t.IsRunning, t.CreatedAt, t.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert transaction: %w", err)
	}
	return nil
}

// GetByID obtiene una transacción por ID. Devuelve nil si no existe.
func (r *TransactionRepo) GetByID(id string) (*entity.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE id = $1`
	return scanTransaction(r.q.QueryRow(context.Background(), query, id), "get transaction")
}

// GetForUpdate como GetByID pero con bloqueo de fila; solo tiene sentido
// sobre un Querier ligado a una tx.
func (r *TransactionRepo) GetForUpdate(id string) (*entity.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE id = $1 FOR UPDATE`
	return scanTransaction(r.q.QueryRow(context.Background(), query, id), "get transaction for update")
}

// Update reemplaza todos los campos editables de la transacción.
func (r *TransactionRepo) Update(t *entity.Transaction) error {
	query := `
		UPDATE transactions SET type = $2, customer_id = $3,
			dog_name = $4, customer_name = $5, phone = $6,
			dog_name_norm = $7, customer_name_norm = $8, phone_norm = $9,
			price = $10, quantity = $11, extra_dog_count = $12,
			discount_value = $13, discount_type = $14, paid_amount = $15,
			category = $16, hotel_nights = $17, hotel_room = $18, hotel_pickup_notes = $19,
			grooming_style = $20, grooming_addons = $21, grooming_groomer = $22,
			start_date = $23, end_date = $24, is_completed = $25, is_running = $26,
			updated_at = $27
		WHERE id = $1`
	hotelNights, hotelRoom, hotelNotes := hotelFields(t)
	groomStyle, groomAddons, groomGroomer := groomingFields(t)
	tag, err := r.q.Exec(context.Background(), query,
		t.ID, t.Type, nullIfEmpty(t.CustomerID),
		t.DogName, t.CustomerName, t.Phone,
		matching.NormalizeName(t.DogName), matching.NormalizeName(t.CustomerName), matching.NormalizePhone(t.Phone),
		t.Price, t.Quantity, t.ExtraDogCount,
		t.DiscountValue, t.DiscountType, t.PaidAmount,
		t.Category, hotelNights, hotelRoom, hotelNotes,
		groomStyle, groomAddons, groomGroomer,
		t.StartDate, t.EndDate, t.IsCompleted, t.IsRunning,
		t.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update transaction: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// UpdatePaidAmount edición inline del monto pagado, sin tocar el resto.
func (r *TransactionRepo) UpdatePaidAmount(id string, paidAmount int64, at time.Time) error {
	query := `UPDATE transactions SET paid_amount = $2, updated_at = $3 WHERE id = $1`
	tag, err := r.q.Exec(context.Background(), query, id, paidAmount, at)
	if err != nil {
		return fmt.Errorf("update paid amount: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete elimina la transacción por ID.
func (r *TransactionRepo) Delete(id string) error {
	tag, err := r.q.Exec(context.Background(), `DELETE FROM transactions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// List lista transacciones con filtros opcionales, más recientes primero.
func (r *TransactionRepo) List(filter repository.TransactionFilter) ([]*entity.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE 1=1`
	args := []any{}
	n := 0
	next := func() string {
		n++
		return fmt.Sprintf("$%d", n)
	}
	if filter.From != nil {
		query += ` AND start_date >= ` + next()
		args = append(args, *filter.From)
	}
	if filter.To != nil {
		query += ` AND start_date <= ` + next()
		args = append(args, *filter.To)
	}
	if filter.CustomerID != "" {
		query += ` AND customer_id = ` + next()
		args = append(args, filter.CustomerID)
	}
	if filter.Type != "" {
		query += ` AND type = ` + next()
		args = append(args, filter.Type)
	}
	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += ` ORDER BY start_date DESC, created_at DESC LIMIT ` + next()
	args = append(args, limit)
	query += ` OFFSET ` + next()
	args = append(args, filter.Offset)

	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()
	return scanTransactions(rows)
}

// ListIncomeByCustomerID emparejador 1 de la reconciliación: enlace directo.
func (r *TransactionRepo) ListIncomeByCustomerID(customerID string) ([]*entity.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions
		WHERE type = 'income' AND customer_id = $1`
	rows, err := r.q.Query(context.Background(), query, customerID)
	if err != nil {
		return nil, fmt.Errorf("list income by customer: %w", err)
	}
	defer rows.Close()
	return scanTransactions(rows)
}

// ListIncomeByDogAndPhone emparejador 2: identidad de respaldo (perro, teléfono).
func (r *TransactionRepo) ListIncomeByDogAndPhone(dogNorm, phoneNorm string) ([]*entity.Transaction, error) {
	if dogNorm == "" || phoneNorm == "" {
		return nil, nil
	}
	query := `SELECT ` + transactionColumns + ` FROM transactions
		WHERE type = 'income' AND dog_name_norm = $1 AND phone_norm = $2`
	rows, err := r.q.Query(context.Background(), query, dogNorm, phoneNorm)
	if err != nil {
		return nil, fmt.Errorf("list income by dog+phone: %w", err)
	}
	defer rows.Close()
	return scanTransactions(rows)
}

// ListIncomeByDogAndOwner emparejador 3: identidad de respaldo (perro, dueño).
func (r *TransactionRepo) ListIncomeByDogAndOwner(dogNorm, ownerNorm string) ([]*entity.Transaction, error) {
	if dogNorm == "" || ownerNorm == "" {
		return nil, nil
	}
	query := `SELECT ` + transactionColumns + ` FROM transactions
		WHERE type = 'income' AND dog_name_norm = $1 AND customer_name_norm = $2`
	rows, err := r.q.Query(context.Background(), query, dogNorm, ownerNorm)
	if err != nil {
		return nil, fmt.Errorf("list income by dog+owner: %w", err)
	}
	defer rows.Close()
	return scanTransactions(rows)
}

func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func hotelFields(t *entity.Transaction) (*int, *string, *string) {
	if t.Hotel == nil {
		return nil, nil, nil
	}
	return &t.Hotel.Nights, &t.Hotel.RoomName, &t.Hotel.PickupNotes
}

func groomingFields(t *entity.Transaction) (*string, []string, *string) {
	if t.Grooming == nil {
		return nil, nil, nil
	}
	return &t.Grooming.Style, t.Grooming.AddOns, &t.Grooming.Groomer
}

func scanTransaction(row pgx.Row, op string) (*entity.Transaction, error) {
	t, err := scanTransactionFields(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return t, nil
}

func scanTransactions(rows pgx.Rows) ([]*entity.Transaction, error) {
	var list []*entity.Transaction
	for rows.Next() {
		t, err := scanTransactionFields(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		list = append(list, t)
	}
	return list, rows.Err()
}

func scanTransactionFields(row pgx.Row) (*entity.Transaction, error) {
	var t entity.Transaction
	var customerID *string
	var hotelNights *int
	var hotelRoom, hotelNotes *string
	var groomStyle, groomGroomer *string
	var groomAddons []string
	err := row.Scan(
		&t.ID, &t.Type, &customerID, &t.DogName, &t.CustomerName, &t.Phone,
		&t.Price, &t.Quantity, &t.ExtraDogCount, &t.DiscountValue, &t.DiscountType, &t.PaidAmount,
		&t.Category, &hotelNights, &hotelRoom, &hotelNotes,
		&groomStyle, &groomAddons, &groomGroomer,
		&t.StartDate, &t.EndDate, &t.IsCompleted, &t.IsRunning, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if customerID != nil {
		t.CustomerID = *customerID
	}
	if hotelNights != nil {
		t.Hotel = &entity.HotelDetail{Nights: *hotelNights}
		if hotelRoom != nil {
			t.Hotel.RoomName = *hotelRoom
		}
		if hotelNotes != nil {
			t.Hotel.PickupNotes = *hotelNotes
		}
	}
	if groomStyle != nil {
		t.Grooming = &entity.GroomingDetail{Style: *groomStyle, AddOns: groomAddons}
		if groomGroomer != nil {
			t.Grooming.Groomer = *groomGroomer
		}
	}
	return &t, nil
}
