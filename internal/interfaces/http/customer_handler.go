package http

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/fa146612-art/kingdog-system-sub000/internal/application/attendance"
	"github.com/fa146612-art/kingdog-system-sub000/internal/application/billing"
	"github.com/fa146612-art/kingdog-system-sub000/internal/application/dto"
	"github.com/fa146612-art/kingdog-system-sub000/internal/domain"
)

// CustomerHandler maneja las peticiones HTTP de clientes, balance y tiquete
// (protegido).
type CustomerHandler struct {
	uc        *billing.CustomerUseCase
	reconcile *billing.ReconcileUseCase
	ticket    *attendance.TicketUseCase
}

// NewCustomerHandler construye el handler.
func NewCustomerHandler(uc *billing.CustomerUseCase, reconcile *billing.ReconcileUseCase, ticket *attendance.TicketUseCase) *CustomerHandler {
	return &CustomerHandler{uc: uc, reconcile: reconcile, ticket: ticket}
}

// Create POST /api/customers
func (h *CustomerHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateCustomerRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	customer, err := h.uc.Create(in)
	if err != nil {
		if err == domain.ErrInvalidInput {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "ownerName y dogName son requeridos"})
		}
		if err == domain.ErrDuplicate {
			return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "DUPLICATE", Message: "ya existe un cliente con ese perro y teléfono"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.Status(fiber.StatusCreated).JSON(customer)
}

// List GET /api/customers?limit=20&offset=0
func (h *CustomerHandler) List(c *fiber.Ctx) error {
	limit, _ := strconv.Atoi(c.Query("limit", "20"))
	offset, _ := strconv.Atoi(c.Query("offset", "0"))
	list, err := h.uc.List(limit, offset)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(list)
}

// GetByID GET /api/customers/:id
func (h *CustomerHandler) GetByID(c *fiber.Ctx) error {
	customer, err := h.uc.GetByID(c.Params("id"))
	if err != nil {
		return customerError(c, err)
	}
	return c.JSON(customer)
}

// Update PUT /api/customers/:id
func (h *CustomerHandler) Update(c *fiber.Ctx) error {
	var in dto.UpdateCustomerRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	customer, err := h.uc.Update(c.Params("id"), in)
	if err != nil {
		return customerError(c, err)
	}
	return c.JSON(customer)
}

// Balance godoc
// @Summary      Consultar balance
// @Description  Convención de signo: negativo = el cliente debe, positivo = crédito prepagado.
// @Tags         customers
// @Security     Bearer
// @Produce      json
// @Param        id   path      string  true  "id del cliente"
// @Success      200  {object}  dto.BalanceResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/customers/{id}/balance [get]
func (h *CustomerHandler) Balance(c *fiber.Ctx) error {
	balance, err := h.uc.Balance(c.Params("id"))
	if err != nil {
		return customerError(c, err)
	}
	return c.JSON(balance)
}

// Reconcile godoc
// @Summary      Reconciliar balance
// @Description  Recomputa el balance desde las transacciones (unión de los tres emparejadores) y lo sobrescribe. Manual, por cliente.
// @Tags         customers
// @Security     Bearer
// @Produce      json
// @Param        id   path      string  true  "id del cliente"
// @Success      200  {object}  dto.ReconcileResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/customers/{id}/reconcile [post]
func (h *CustomerHandler) Reconcile(c *fiber.Ctx) error {
	resp, err := h.reconcile.Reconcile(c.Context(), c.Params("id"))
	if err != nil {
		return customerError(c, err)
	}
	return c.JSON(resp)
}

// ChargeTicket POST /api/customers/:id/ticket/charge
func (h *CustomerHandler) ChargeTicket(c *fiber.Ctx) error {
	var in dto.ChargeTicketRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if in.StaffName == "" {
		in.StaffName = GetUserName(c)
	}
	customer, err := h.ticket.Charge(c.Context(), c.Params("id"), in)
	if err != nil {
		if err == domain.ErrInvalidInput {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "count debe ser mayor que 0"})
		}
		return customerError(c, err)
	}
	return c.JSON(customer)
}

// Ticket GET /api/customers/:id/ticket
func (h *CustomerHandler) Ticket(c *fiber.Ctx) error {
	limit, _ := strconv.Atoi(c.Query("limit", "50"))
	offset, _ := strconv.Atoi(c.Query("offset", "0"))
	resp, err := h.ticket.Ticket(c.Params("id"), limit, offset)
	if err != nil {
		return customerError(c, err)
	}
	return c.JSON(resp)
}

func customerError(c *fiber.Ctx, err error) error {
	switch err {
	case domain.ErrInvalidInput:
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "datos inválidos"})
	case domain.ErrCustomerNotFound, domain.ErrNotFound:
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "cliente no encontrado"})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
}
