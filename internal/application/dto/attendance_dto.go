package dto

import "time"

// MarkAttendanceRequest transición de asistencia para (perro, fecha).
// Force=true confirma un check-in con tiquete agotado después de recibir
// REQUIRE_CONFIRM.
type MarkAttendanceRequest struct {
	DogID     string `json:"dogId"`
	Date      string `json:"date"` // YYYY-MM-DD
	Status    string `json:"status"`
	Force     bool   `json:"force"`
	StaffName string `json:"staffName"`
}

// MarkAttendanceResponse resultado de la transición.
type MarkAttendanceResponse struct {
	DogID           string `json:"dogId"`
	Date            string `json:"date"`
	Status          string `json:"status"`
	TicketRemaining int    `json:"ticketRemaining"`
}

// AttendanceLogResponse registro diario.
type AttendanceLogResponse struct {
	Date        string     `json:"date"`
	DogID       string     `json:"dogId"`
	Status      string     `json:"status"`
	ArrivalTime *time.Time `json:"arrivalTime,omitempty"`
	PickupTime  *time.Time `json:"pickupTime,omitempty"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}
