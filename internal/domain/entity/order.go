package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus es el estado del ciclo de vida de un pedido. El conjunto es
// cerrado y las transiciones legales viven en validNext; ningún otro código
// debe decidir transiciones por su cuenta.
type OrderStatus string

const (
	StatusPendingApproval      OrderStatus = "pending_approval"
	StatusPendingPayment       OrderStatus = "pending_payment"
	StatusApproved             OrderStatus = "approved"
	StatusPreparing            OrderStatus = "preparing"
	StatusReadyForPickup       OrderStatus = "ready_for_pickup"
	StatusCompleted            OrderStatus = "completed"
	StatusRejectedByParent     OrderStatus = "rejected_by_parent"
	StatusCancelledByCafeteria OrderStatus = "cancelled_by_cafeteria"
)

// validNext tabla central de transiciones. Todo estado no terminal admite
// además cancelled_by_cafeteria.
var validNext = map[OrderStatus]map[OrderStatus]bool{
	StatusPendingApproval: {
		StatusPendingPayment:       true,
		StatusRejectedByParent:     true,
		StatusCancelledByCafeteria: true,
	},
	StatusPendingPayment: {
		StatusApproved:             true,
		StatusCancelledByCafeteria: true,
	},
	StatusApproved: {
		StatusPreparing:            true,
		StatusCancelledByCafeteria: true,
	},
	StatusPreparing: {
		StatusReadyForPickup:       true,
		StatusCancelledByCafeteria: true,
	},
	StatusReadyForPickup: {
		StatusCompleted:            true,
		StatusCancelledByCafeteria: true,
	},
	StatusCompleted:            {},
	StatusRejectedByParent:     {},
	StatusCancelledByCafeteria: {},
}

// advanceNext progresión monótona que ejecuta la cafetería, un paso por llamada.
var advanceNext = map[OrderStatus]OrderStatus{
	StatusApproved:       StatusPreparing,
	StatusPreparing:      StatusReadyForPickup,
	StatusReadyForPickup: StatusCompleted,
}

// IsValid indica si s pertenece al conjunto cerrado de estados.
func (s OrderStatus) IsValid() bool {
	_, ok := validNext[s]
	return ok
}

// CanTransition indica si la transición s → to es legal.
func (s OrderStatus) CanTransition(to OrderStatus) bool {
	return validNext[s][to]
}

// IsTerminal indica si no existe ninguna transición legal desde s.
func (s OrderStatus) IsTerminal() bool {
	next, ok := validNext[s]
	return ok && len(next) == 0
}

// AdvanceNext devuelve el siguiente paso de preparación (approved → preparing →
// ready_for_pickup → completed) o false si desde s no se puede avanzar.
func (s OrderStatus) AdvanceNext() (OrderStatus, bool) {
	next, ok := advanceNext[s]
	return next, ok
}

// Debited indica si un pedido en estado s ya tuvo el débito de pago
// (approved o posterior en la rama de preparación). Se usa para decidir el
// reembolso al cancelar.
func (s OrderStatus) Debited() bool {
	switch s {
	case StatusApproved, StatusPreparing, StatusReadyForPickup, StatusCompleted:
		return true
	}
	return false
}

// OrderItem es una línea del pedido con snapshot del producto al momento de
// crear el pedido: cambios posteriores de precio o nombre no alteran pedidos ya hechos.
type OrderItem struct {
	ProductID   string
	ProductName string
	UnitPrice   decimal.Decimal
	Quantity    int
}

// Subtotal devuelve precio unitario × cantidad.
func (i OrderItem) Subtotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Order representa un pedido de un estudiante. Total es inmutable una vez
// creado y debe igualar la suma de subtotales. RejectionNote solo existe en
// rejected_by_parent y CancelReason solo en cancelled_by_cafeteria.
type Order struct {
	ID            string
	StudentID     string
	Items         []OrderItem
	Total         decimal.Decimal
	Status        OrderStatus
	RejectionNote string
	CancelReason  string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
