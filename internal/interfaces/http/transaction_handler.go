package http

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/fa146612-art/kingdog-system-sub000/internal/application/billing"
	"github.com/fa146612-art/kingdog-system-sub000/internal/application/dto"
	"github.com/fa146612-art/kingdog-system-sub000/internal/domain"
	"github.com/fa146612-art/kingdog-system-sub000/internal/domain/repository"
)

// TransactionHandler maneja las peticiones HTTP de transacciones (protegido).
type TransactionHandler struct {
	uc        *billing.TransactionUseCase
	analytics *billing.AnalyticsUseCase
}

// NewTransactionHandler construye el handler.
func NewTransactionHandler(uc *billing.TransactionUseCase, analytics *billing.AnalyticsUseCase) *TransactionHandler {
	return &TransactionHandler{uc: uc, analytics: analytics}
}

// Create godoc
// @Summary      Registrar transacción
// @Description  Guarda la transacción y ajusta el balance del cliente en una sola unidad atómica.
// @Tags         transactions
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body      dto.TransactionRequest  true  "transacción"
// @Success      201   {object}  dto.TransactionResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/transactions [post]
func (h *TransactionHandler) Create(c *fiber.Ctx) error {
	var in dto.TransactionRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	resp, err := h.uc.Create(c.Context(), in)
	if err != nil {
		return transactionError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(resp)
}

// Update PUT /api/transactions/:id
func (h *TransactionHandler) Update(c *fiber.Ctx) error {
	var in dto.TransactionRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	resp, err := h.uc.Update(c.Context(), c.Params("id"), in)
	if err != nil {
		return transactionError(c, err)
	}
	return c.JSON(resp)
}

// UpdatePaidAmount PATCH /api/transactions/:id/paid-amount
func (h *TransactionHandler) UpdatePaidAmount(c *fiber.Ctx) error {
	var in dto.UpdatePaidAmountRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	resp, err := h.uc.UpdatePaidAmount(c.Context(), c.Params("id"), in.PaidAmount)
	if err != nil {
		return transactionError(c, err)
	}
	return c.JSON(resp)
}

// Delete godoc
// @Summary      Borrar transacción
// @Description  Exige confirm=true (confirmación en dos pasos); revierte el efecto sobre el balance.
// @Tags         transactions
// @Security     Bearer
// @Param        id       path   string  true   "id de la transacción"
// @Param        confirm  query  bool    false  "confirmación destructiva"
// @Success      204
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/transactions/{id} [delete]
func (h *TransactionHandler) Delete(c *fiber.Ctx) error {
	confirm := c.Query("confirm") == "true"
	if err := h.uc.Delete(c.Context(), c.Params("id"), confirm); err != nil {
		return transactionError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// BatchDelete POST /api/transactions/batch-delete
func (h *TransactionHandler) BatchDelete(c *fiber.Ctx) error {
	var in dto.BatchDeleteRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if err := h.uc.BatchDelete(c.Context(), in.IDs, in.Confirm); err != nil {
		return transactionError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Import POST /api/transactions/import
func (h *TransactionHandler) Import(c *fiber.Ctx) error {
	var in dto.ImportRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	resp, err := h.uc.Import(c.Context(), in)
	if err != nil {
		return transactionError(c, err)
	}
	return c.JSON(resp)
}

// List GET /api/transactions?from=...&to=...&customerId=...&type=...&limit=...&offset=...
func (h *TransactionHandler) List(c *fiber.Ctx) error {
	filter := repository.TransactionFilter{
		CustomerID: c.Query("customerId"),
		Type:       c.Query("type"),
	}
	if from, err := time.Parse("2006-01-02", c.Query("from")); err == nil {
		filter.From = &from
	}
	if to, err := time.Parse("2006-01-02", c.Query("to")); err == nil {
		filter.To = &to
	}
	filter.Limit, _ = strconv.Atoi(c.Query("limit", "100"))
	filter.Offset, _ = strconv.Atoi(c.Query("offset", "0"))

	list, err := h.uc.List(filter)
	if err != nil {
		return transactionError(c, err)
	}
	return c.JSON(list)
}

// GetByID GET /api/transactions/:id
func (h *TransactionHandler) GetByID(c *fiber.Ctx) error {
	resp, err := h.uc.GetByID(c.Params("id"))
	if err != nil {
		return transactionError(c, err)
	}
	return c.JSON(resp)
}

// Summary GET /api/transactions/summary?from=...&to=...
func (h *TransactionHandler) Summary(c *fiber.Ctx) error {
	from, err := time.Parse("2006-01-02", c.Query("from"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "from requerido (YYYY-MM-DD)"})
	}
	to, err := time.Parse("2006-01-02", c.Query("to", from.Format("2006-01-02")))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "to inválido (YYYY-MM-DD)"})
	}
	resp, err := h.analytics.RevenueSummary(c.Context(), from, to.Add(24*time.Hour-time.Nanosecond))
	if err != nil {
		return transactionError(c, err)
	}
	return c.JSON(resp)
}

// transactionError mapea errores de dominio a respuestas HTTP.
func transactionError(c *fiber.Ctx, err error) error {
	switch err {
	case domain.ErrInvalidInput:
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "datos inválidos"})
	case domain.ErrNotFound:
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "transacción no encontrada"})
	case domain.ErrCustomerNotFound:
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "CUSTOMER_NOT_FOUND", Message: "cliente no encontrado"})
	case domain.ErrConfirmFlagMissing:
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "CONFIRM_REQUIRED", Message: "acción destructiva: repita con confirm=true"})
	case domain.ErrDuplicate:
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "DUPLICATE", Message: "id duplicado"})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
}
