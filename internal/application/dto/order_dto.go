package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// SubmitOrderItem línea del carrito al enviar un pedido.
type SubmitOrderItem struct {
	ProductID string `json:"product_id" validate:"required"`
	Quantity  int    `json:"quantity" validate:"required,min=1"`
}

// SubmitOrderRequest entrada para crear un pedido desde el carrito.
type SubmitOrderRequest struct {
	Items []SubmitOrderItem `json:"items" validate:"required,min=1,dive"`
}

// RejectOrderRequest entrada para rechazar un pedido; la nota es obligatoria.
type RejectOrderRequest struct {
	Note string `json:"note" validate:"required,min=1"`
}

// CancelOrderRequest entrada para cancelar un pedido desde la cafetería.
type CancelOrderRequest struct {
	Reason string `json:"reason"`
}

// OrderItemResponse línea de pedido con el snapshot del producto.
type OrderItemResponse struct {
	ProductID   string          `json:"product_id"`
	ProductName string          `json:"product_name"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Quantity    int             `json:"quantity"`
	Subtotal    decimal.Decimal `json:"subtotal"`
}

// OrderResponse salida de un pedido.
type OrderResponse struct {
	ID            string              `json:"id"`
	StudentID     string              `json:"student_id"`
	Items         []OrderItemResponse `json:"items"`
	Total         decimal.Decimal     `json:"total"`
	Status        string              `json:"status"`
	RejectionNote string              `json:"rejection_note,omitempty"`
	CancelReason  string              `json:"cancel_reason,omitempty"`
	CreatedAt     time.Time           `json:"created_at"`
	UpdatedAt     time.Time           `json:"updated_at"`
}

// OrderListResponse lista de pedidos.
type OrderListResponse struct {
	Items []OrderResponse `json:"items"`
}
