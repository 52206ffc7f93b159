package repository

import "github.com/fa146612-art/kingdog-system-sub000/internal/domain/entity"

// AttendanceRepository define el puerto para los registros diarios de
// asistencia, clave (date, dogID). Get devuelve nil cuando no hay registro
// persistido (estado "absent" por defecto).
type AttendanceRepository interface {
	Get(date, dogID string) (*entity.AttendanceLog, error)
	// GetForUpdate bloquea la fila de asistencia (SELECT FOR UPDATE) para que
	// la decisión descontar/restaurar se tome contra el estado persistido sin
	// carreras entre llamadas concurrentes.
	GetForUpdate(date, dogID string) (*entity.AttendanceLog, error)
	Upsert(log *entity.AttendanceLog) error
	ListByDate(date string) ([]*entity.AttendanceLog, error)

	// AddPlannedDate agrega la fecha al conjunto de asistencia planificada
	// del cliente (señal desnormalizada que consume la planeación de rutas;
	// idempotente).
	AddPlannedDate(customerID, date string) error
}
