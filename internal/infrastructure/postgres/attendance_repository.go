package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/fa146612-art/kingdog-system-sub000/internal/domain/entity"
	"github.com/fa146612-art/kingdog-system-sub000/internal/domain/repository"
)

var _ repository.AttendanceRepository = (*AttendanceRepo)(nil)

// AttendanceRepo implementación de AttendanceRepository (usable con pool o tx).
type AttendanceRepo struct {
	q Querier
}

// NewAttendanceRepository construye el adaptador. Pasar pool o tx (Querier).
func NewAttendanceRepository(q Querier) *AttendanceRepo {
	return &AttendanceRepo{q: q}
}

// Get obtiene el registro (date, dogID). Devuelve nil si no existe: el
// estado por defecto es "absent".
func (r *AttendanceRepo) Get(date, dogID string) (*entity.AttendanceLog, error) {
	query := `
		SELECT date, dog_id, status, arrival_time, pickup_time, updated_at
		FROM attendance_logs WHERE date = $1 AND dog_id = $2`
	return r.scanOne(r.q.QueryRow(context.Background(), query, date, dogID), "get attendance")
}

// GetForUpdate obtiene el registro y bloquea la fila (SELECT FOR UPDATE):
// punto de serialización por (perro, fecha).
func (r *AttendanceRepo) GetForUpdate(date, dogID string) (*entity.AttendanceLog, error) {
	query := `
		SELECT date, dog_id, status, arrival_time, pickup_time, updated_at
		FROM attendance_logs WHERE date = $1 AND dog_id = $2
		FOR UPDATE`
	return r.scanOne(r.q.QueryRow(context.Background(), query, date, dogID), "get attendance for update")
}

// Upsert inserta o sobrescribe el registro del día.
func (r *AttendanceRepo) Upsert(l *entity.AttendanceLog) error {
	query := `
		INSERT INTO attendance_logs (date, dog_id, status, arrival_time, pickup_time, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (date, dog_id)
		DO UPDATE SET status = EXCLUDED.status, arrival_time = EXCLUDED.arrival_time,
			pickup_time = EXCLUDED.pickup_time, updated_at = EXCLUDED.updated_at`
	_, err := r.q.Exec(context.Background(), query,
		l.Date, l.DogID, l.Status, l.ArrivalTime, l.PickupTime, l.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert attendance: %w", err)
	}
	return nil
}

// ListByDate registros del día.
func (r *AttendanceRepo) ListByDate(date string) ([]*entity.AttendanceLog, error) {
	query := `
		SELECT date, dog_id, status, arrival_time, pickup_time, updated_at
		FROM attendance_logs WHERE date = $1 ORDER BY dog_id`
	rows, err := r.q.Query(context.Background(), query, date)
	if err != nil {
		return nil, fmt.Errorf("list attendance: %w", err)
	}
	defer rows.Close()
	var list []*entity.AttendanceLog
	for rows.Next() {
		var l entity.AttendanceLog
		if err := rows.Scan(&l.Date, &l.DogID, &l.Status, &l.ArrivalTime, &l.PickupTime, &l.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan attendance: %w", err)
		}
		list = append(list, &l)
	}
	return list, rows.Err()
}

// AddPlannedDate agrega (customerID, date) al plan de asistencia. Idempotente.
func (r *AttendanceRepo) AddPlannedDate(customerID, date string) error {
	query := `
		INSERT INTO planned_attendance (customer_id, date)
		VALUES ($1, $2) ON CONFLICT DO NOTHING`
	_, err := r.q.Exec(context.Background(), query, customerID, date)
	if err != nil {
		return fmt.Errorf("add planned date: %w", err)
	}
	return nil
}

func (r *AttendanceRepo) scanOne(row pgx.Row, op string) (*entity.AttendanceLog, error) {
	var l entity.AttendanceLog
	err := row.Scan(&l.Date, &l.DogID, &l.Status, &l.ArrivalTime, &l.PickupTime, &l.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &l, nil
}
