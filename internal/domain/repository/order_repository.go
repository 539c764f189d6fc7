package repository

import (
	"context"
	"time"

	"github.com/jcastell/cafeteria-api/internal/domain/entity"
)

// OrderRepository define el puerto de persistencia para Order (DIP).
//
// Las operaciones Update* son compare-and-swap sobre (id, from): solo escriben
// si el pedido sigue en el estado esperado y devuelven ErrInvalidTransition si
// otra llamada ganó la carrera. Los pedidos nunca se borran físicamente.
type OrderRepository interface {
	Create(ctx context.Context, order *entity.Order) error
	GetByID(ctx context.Context, id string) (*entity.Order, error)
	GetByStudent(ctx context.Context, studentID string) ([]*entity.Order, error)
	GetByCafeteria(ctx context.Context) ([]*entity.Order, error)
	UpdateStatus(ctx context.Context, id string, from, to entity.OrderStatus, updatedAt time.Time) error
	UpdateWithRejection(ctx context.Context, id string, from entity.OrderStatus, note string, updatedAt time.Time) error
	UpdateWithCancellation(ctx context.Context, id string, from entity.OrderStatus, reason string, updatedAt time.Time) error
}
