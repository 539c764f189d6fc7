package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/jcastell/cafeteria-api/internal/application/dto"
	"github.com/jcastell/cafeteria-api/internal/application/wallet"
	"github.com/jcastell/cafeteria-api/internal/domain"
)

// WalletHandler saldo, recargas, historial y estado de cuenta del monedero.
type WalletHandler struct {
	uc *wallet.UseCase
}

// NewWalletHandler construye el handler.
func NewWalletHandler(uc *wallet.UseCase) *WalletHandler {
	return &WalletHandler{uc: uc}
}

// Balance godoc
// @Summary      Saldo del monedero
// @Tags         wallet
// @Security     Bearer
// @Produce      json
// @Param        userId  path  string  true  "ID del usuario"
// @Success      200  {object}  dto.BalanceResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/wallet/{userId}/balance [get]
func (h *WalletHandler) Balance(c *fiber.Ctx) error {
	out, err := h.uc.Balance(c.Context(), c.Params("userId"), GetUserID(c))
	if err != nil {
		return walletError(c, err)
	}
	return c.JSON(out)
}

// Recharge godoc
// @Summary      Recargar tokens (propio usuario o representante vinculado)
// @Tags         wallet
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        userId  path  string              true  "ID del usuario"
// @Param        body    body  dto.RechargeRequest true  "Monto positivo"
// @Success      201  {object}  dto.TransactionResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Router       /api/wallet/{userId}/recharge [post]
func (h *WalletHandler) Recharge(c *fiber.Ctx) error {
	var in dto.RechargeRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	out, err := h.uc.Recharge(c.Context(), c.Params("userId"), GetUserID(c), in)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "el monto debe ser positivo"})
		}
		return walletError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Transactions godoc
// @Summary      Historial del monedero
// @Tags         wallet
// @Security     Bearer
// @Produce      json
// @Param        userId  path  string  true  "ID del usuario"
// @Success      200  {object}  dto.TransactionListResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/wallet/{userId}/transactions [get]
func (h *WalletHandler) Transactions(c *fiber.Ctx) error {
	out, err := h.uc.Transactions(c.Context(), c.Params("userId"), GetUserID(c))
	if err != nil {
		return walletError(c, err)
	}
	return c.JSON(out)
}

// Statement godoc
// @Summary      Estado de cuenta en PDF
// @Tags         wallet
// @Security     Bearer
// @Produce      application/pdf
// @Param        userId  path  string  true  "ID del usuario"
// @Success      200  {file}    binary
// @Failure      403  {object}  dto.ErrorResponse
// @Router       /api/wallet/{userId}/statement [get]
func (h *WalletHandler) Statement(c *fiber.Ctx) error {
	pdfBytes, err := h.uc.Statement(c.Context(), c.Params("userId"), GetUserID(c))
	if err != nil {
		return walletError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="estado-de-cuenta.pdf"`)
	return c.Send(pdfBytes)
}

func walletError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, domain.ErrUserNotFound), errors.Is(err, domain.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "usuario no encontrado"})
	case errors.Is(err, domain.ErrForbidden):
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "FORBIDDEN", Message: "no autorizado para esta operación"})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
}
