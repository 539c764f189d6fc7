package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/jcastell/cafeteria-api/internal/application/dto"
	"github.com/jcastell/cafeteria-api/internal/application/order"
	"github.com/jcastell/cafeteria-api/internal/domain"
)

// OrderHandler expone el ciclo de vida de pedidos. Cada transición delega en
// LifecycleUseCase; aquí solo se traduce el error de dominio a código HTTP.
type OrderHandler struct {
	uc *order.LifecycleUseCase
}

// NewOrderHandler construye el handler.
func NewOrderHandler(uc *order.LifecycleUseCase) *OrderHandler {
	return &OrderHandler{uc: uc}
}

// Submit godoc
// @Summary      Enviar pedido (estudiante)
// @Tags         orders
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.SubmitOrderRequest  true  "Líneas del carrito"
// @Success      201   {object}  dto.OrderResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/orders [post]
func (h *OrderHandler) Submit(c *fiber.Ctx) error {
	var in dto.SubmitOrderRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	out, err := h.uc.Submit(c.Context(), GetUserID(c), in)
	if err != nil {
		return orderError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Mine godoc
// @Summary      Mis pedidos (estudiante autenticado)
// @Tags         orders
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.OrderListResponse
// @Router       /api/orders/mine [get]
func (h *OrderHandler) Mine(c *fiber.Ctx) error {
	out, err := h.uc.GetByStudent(c.Context(), GetUserID(c))
	if err != nil {
		return orderError(c, err)
	}
	return c.JSON(out)
}

// ListByStudent godoc
// @Summary      Pedidos de un estudiante
// @Tags         orders
// @Security     Bearer
// @Produce      json
// @Param        studentId  path  string  true  "ID del estudiante"
// @Success      200  {object}  dto.OrderListResponse
// @Router       /api/orders/student/{studentId} [get]
func (h *OrderHandler) ListByStudent(c *fiber.Ctx) error {
	out, err := h.uc.GetByStudent(c.Context(), c.Params("studentId"))
	if err != nil {
		return orderError(c, err)
	}
	return c.JSON(out)
}

// ListAll godoc
// @Summary      Panel de pedidos (cafetería)
// @Tags         orders
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.OrderListResponse
// @Router       /api/orders [get]
func (h *OrderHandler) ListAll(c *fiber.Ctx) error {
	out, err := h.uc.GetByCafeteria(c.Context())
	if err != nil {
		return orderError(c, err)
	}
	return c.JSON(out)
}

// GetByID godoc
// @Summary      Obtener pedido
// @Tags         orders
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID del pedido"
// @Success      200  {object}  dto.OrderResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/orders/{id} [get]
func (h *OrderHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.uc.GetByID(c.Context(), c.Params("id"), GetUserID(c))
	if err != nil {
		return orderError(c, err)
	}
	return c.JSON(out)
}

// Approve godoc
// @Summary      Aprobar pedido (representante vinculado)
// @Tags         orders
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID del pedido"
// @Success      200  {object}  dto.OrderResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/orders/{id}/approve [post]
func (h *OrderHandler) Approve(c *fiber.Ctx) error {
	out, err := h.uc.Approve(c.Context(), c.Params("id"), GetUserID(c))
	if err != nil {
		return orderError(c, err)
	}
	return c.JSON(out)
}

// Reject godoc
// @Summary      Rechazar pedido con nota (representante vinculado)
// @Tags         orders
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                 true  "ID del pedido"
// @Param        body  body  dto.RejectOrderRequest true  "Nota obligatoria"
// @Success      200   {object}  dto.OrderResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/orders/{id}/reject [post]
func (h *OrderHandler) Reject(c *fiber.Ctx) error {
	var in dto.RejectOrderRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	out, err := h.uc.Reject(c.Context(), c.Params("id"), GetUserID(c), in)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "la nota de rechazo es obligatoria"})
		}
		return orderError(c, err)
	}
	return c.JSON(out)
}

// Pay godoc
// @Summary      Registrar pago del pedido con tokens del monedero
// @Tags         orders
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID del pedido"
// @Success      200  {object}  dto.OrderResponse
// @Failure      402  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/orders/{id}/pay [post]
func (h *OrderHandler) Pay(c *fiber.Ctx) error {
	out, err := h.uc.RecordPayment(c.Context(), c.Params("id"), GetUserID(c))
	if err != nil {
		return orderError(c, err)
	}
	return c.JSON(out)
}

// Advance godoc
// @Summary      Avanzar preparación un paso (cafetería)
// @Tags         orders
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID del pedido"
// @Success      200  {object}  dto.OrderResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/orders/{id}/advance [post]
func (h *OrderHandler) Advance(c *fiber.Ctx) error {
	out, err := h.uc.Advance(c.Context(), c.Params("id"), GetUserID(c))
	if err != nil {
		return orderError(c, err)
	}
	return c.JSON(out)
}

// Cancel godoc
// @Summary      Cancelar pedido (cafetería); reembolsa si ya estaba debitado
// @Tags         orders
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                 true   "ID del pedido"
// @Param        body  body  dto.CancelOrderRequest false  "Motivo opcional"
// @Success      200   {object}  dto.OrderResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/orders/{id}/cancel [post]
func (h *OrderHandler) Cancel(c *fiber.Ctx) error {
	var in dto.CancelOrderRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&in); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
		}
	}
	out, err := h.uc.Cancel(c.Context(), c.Params("id"), GetUserID(c), in)
	if err != nil {
		return orderError(c, err)
	}
	return c.JSON(out)
}

// orderError traduce los errores de dominio del ciclo de vida a HTTP.
func orderError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "datos del pedido inválidos"})
	case errors.Is(err, domain.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "recurso no encontrado"})
	case errors.Is(err, domain.ErrUserNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "usuario no encontrado"})
	case errors.Is(err, domain.ErrForbidden):
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "FORBIDDEN", Message: "no autorizado para esta operación"})
	case errors.Is(err, domain.ErrInvalidTransition):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "INVALID_TRANSITION", Message: "transición de estado no permitida"})
	case errors.Is(err, domain.ErrInsufficientStock):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "INSUFFICIENT_STOCK", Message: "stock insuficiente"})
	case errors.Is(err, domain.ErrInsufficientFunds):
		return c.Status(fiber.StatusPaymentRequired).JSON(dto.ErrorResponse{Code: "INSUFFICIENT_FUNDS", Message: "saldo insuficiente"})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
}
