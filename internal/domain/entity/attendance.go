package entity

import "time"

// Estados de asistencia por (perro, fecha). "absent" es el estado por defecto
// cuando no hay registro persistido.
const (
	AttendanceAbsent  = "absent"
	AttendancePresent = "present"
	AttendanceHome    = "home"
)

// ValidAttendanceStatus valida un estado solicitado.
func ValidAttendanceStatus(s string) bool {
	return s == AttendanceAbsent || s == AttendancePresent || s == AttendanceHome
}

// AttendanceLog registro diario de asistencia, clave (Date, DogID).
// Se crea o sobrescribe por día; nunca se borra.
type AttendanceLog struct {
	Date        string // YYYY-MM-DD
	DogID       string // ID del cliente (un perro por cliente)
	Status      string // absent | present | home
	ArrivalTime *time.Time
	PickupTime  *time.Time
	UpdatedAt   time.Time
}
