package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/fa146612-art/kingdog-system-sub000/internal/application/attendance"
	"github.com/fa146612-art/kingdog-system-sub000/internal/application/dto"
	"github.com/fa146612-art/kingdog-system-sub000/internal/domain"
)

// AttendanceHandler maneja las peticiones HTTP de asistencia (protegido).
type AttendanceHandler struct {
	uc *attendance.UseCase
}

// NewAttendanceHandler construye el handler.
func NewAttendanceHandler(uc *attendance.UseCase) *AttendanceHandler {
	return &AttendanceHandler{uc: uc}
}

// Mark godoc
// @Summary      Marcar asistencia
// @Description  Transición de la máquina de estados por (perro, fecha). Con tiquete agotado responde 409 REQUIRE_CONFIRM sin mutar nada; reenviar con force=true confirma y puede dejar el saldo negativo.
// @Tags         attendance
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body      dto.MarkAttendanceRequest  true  "transición"
// @Success      200   {object}  dto.MarkAttendanceResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/attendance/mark [post]
func (h *AttendanceHandler) Mark(c *fiber.Ctx) error {
	var in dto.MarkAttendanceRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if in.StaffName == "" {
		in.StaffName = GetUserName(c)
	}
	resp, err := h.uc.Mark(c.Context(), in)
	if err != nil {
		switch err {
		case domain.ErrConfirmRequired:
			// Puerta de decisión, no un fallo: la UI debe pedir confirmación
			// y reenviar con force=true.
			return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "REQUIRE_CONFIRM", Message: "tiquete agotado: confirme con force=true"})
		case domain.ErrInvalidInput:
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "dogId, date (YYYY-MM-DD) y status son requeridos"})
		case domain.ErrCustomerNotFound:
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "cliente no encontrado"})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
		}
	}
	return c.JSON(resp)
}

// ListByDate GET /api/attendance/:date
func (h *AttendanceHandler) ListByDate(c *fiber.Ctx) error {
	list, err := h.uc.ListByDate(c.Params("date"))
	if err != nil {
		if err == domain.ErrInvalidInput {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "fecha inválida (YYYY-MM-DD)"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(list)
}
