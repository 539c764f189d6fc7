package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jcastell/cafeteria-api/internal/domain"
	"github.com/jcastell/cafeteria-api/internal/domain/entity"
	"github.com/jcastell/cafeteria-api/internal/domain/repository"
)

var _ repository.OrderRepository = (*OrderRepo)(nil)

// OrderRepo implementación del puerto OrderRepository sobre PostgreSQL (usable con pool o tx).
// Los Update* son UPDATE ... WHERE id AND status = esperado: cero filas
// afectadas significa que otra llamada cambió el estado primero.
type OrderRepo struct {
	q Querier
}

// NewOrderRepository construye el adaptador de persistencia para pedidos. Pasar pool o tx (Querier).
func NewOrderRepository(q Querier) *OrderRepo {
	return &OrderRepo{q: q}
}

// Create persiste el pedido y sus líneas. Llamar dentro de una transacción
// para que pedido y líneas queden como una sola escritura.
func (r *OrderRepo) Create(ctx context.Context, order *entity.Order) error {
	query := `
		INSERT INTO orders (id, student_id, total, status, rejection_note, cancel_reason, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NULLIF($5, ''), NULLIF($6, ''), $7, $8)`
	_, err := r.q.Exec(ctx, query,
		order.ID, order.StudentID, order.Total, string(order.Status),
		order.RejectionNote, order.CancelReason, order.CreatedAt, order.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}
	for i, item := range order.Items {
		_, err := r.q.Exec(ctx, `
			INSERT INTO order_items (order_id, position, product_id, product_name, unit_price, quantity)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			order.ID, i, item.ProductID, item.ProductName, item.UnitPrice, item.Quantity,
		)
		if err != nil {
			return fmt.Errorf("insert order item: %w", err)
		}
	}
	return nil
}

// GetByID obtiene un pedido con sus líneas.
func (r *OrderRepo) GetByID(ctx context.Context, id string) (*entity.Order, error) {
	query := `
		SELECT id, student_id, total, status, COALESCE(rejection_note, ''), COALESCE(cancel_reason, ''), created_at, updated_at
		FROM orders WHERE id = $1`
	var o entity.Order
	var status string
	err := r.q.QueryRow(ctx, query, id).Scan(
		&o.ID, &o.StudentID, &o.Total, &status, &o.RejectionNote, &o.CancelReason, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get order: %w", err)
	}
	o.Status = entity.OrderStatus(status)
	if err := r.loadItems(ctx, &o); err != nil {
		return nil, err
	}
	return &o, nil
}

// GetByStudent lista los pedidos de un estudiante, más recientes primero.
func (r *OrderRepo) GetByStudent(ctx context.Context, studentID string) ([]*entity.Order, error) {
	return r.list(ctx, `
		SELECT id, student_id, total, status, COALESCE(rejection_note, ''), COALESCE(cancel_reason, ''), created_at, updated_at
		FROM orders WHERE student_id = $1 ORDER BY created_at DESC`, studentID)
}

// GetByCafeteria lista todos los pedidos para el panel de la cafetería, más recientes primero.
func (r *OrderRepo) GetByCafeteria(ctx context.Context) ([]*entity.Order, error) {
	return r.list(ctx, `
		SELECT id, student_id, total, status, COALESCE(rejection_note, ''), COALESCE(cancel_reason, ''), created_at, updated_at
		FROM orders ORDER BY created_at DESC`)
}

// UpdateStatus cambia el estado solo si el pedido sigue en from (compare-and-swap).
func (r *OrderRepo) UpdateStatus(ctx context.Context, id string, from, to entity.OrderStatus, updatedAt time.Time) error {
	cmd, err := r.q.Exec(ctx,
		`UPDATE orders SET status = $3, updated_at = $4 WHERE id = $1 AND status = $2`,
		id, string(from), string(to), updatedAt,
	)
	if err != nil {
		return fmt.Errorf("update order status: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrInvalidTransition
	}
	return nil
}

// UpdateWithRejection pasa el pedido a rejected_by_parent y guarda la nota (compare-and-swap sobre from).
func (r *OrderRepo) UpdateWithRejection(ctx context.Context, id string, from entity.OrderStatus, note string, updatedAt time.Time) error {
	cmd, err := r.q.Exec(ctx,
		`UPDATE orders SET status = $3, rejection_note = $4, updated_at = $5 WHERE id = $1 AND status = $2`,
		id, string(from), string(entity.StatusRejectedByParent), note, updatedAt,
	)
	if err != nil {
		return fmt.Errorf("update order rejection: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrInvalidTransition
	}
	return nil
}

// UpdateWithCancellation pasa el pedido a cancelled_by_cafeteria y guarda el motivo (compare-and-swap sobre from).
func (r *OrderRepo) UpdateWithCancellation(ctx context.Context, id string, from entity.OrderStatus, reason string, updatedAt time.Time) error {
	cmd, err := r.q.Exec(ctx,
		`UPDATE orders SET status = $3, cancel_reason = NULLIF($4, ''), updated_at = $5 WHERE id = $1 AND status = $2`,
		id, string(from), string(entity.StatusCancelledByCafeteria), reason, updatedAt,
	)
	if err != nil {
		return fmt.Errorf("update order cancellation: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrInvalidTransition
	}
	return nil
}

func (r *OrderRepo) list(ctx context.Context, query string, args ...any) ([]*entity.Order, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()
	var list []*entity.Order
	for rows.Next() {
		var o entity.Order
		var status string
		if err := rows.Scan(&o.ID, &o.StudentID, &o.Total, &status, &o.RejectionNote, &o.CancelReason, &o.CreatedAt, &o.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		o.Status = entity.OrderStatus(status)
		list = append(list, &o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for _, o := range list {
		if err := r.loadItems(ctx, o); err != nil {
			return nil, err
		}
	}
	return list, nil
}

func (r *OrderRepo) loadItems(ctx context.Context, o *entity.Order) error {
	rows, err := r.q.Query(ctx, `
		SELECT product_id, product_name, unit_price, quantity
		FROM order_items WHERE order_id = $1 ORDER BY position ASC`, o.ID)
	if err != nil {
		return fmt.Errorf("list order items: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var item entity.OrderItem
		if err := rows.Scan(&item.ProductID, &item.ProductName, &item.UnitPrice, &item.Quantity); err != nil {
			return fmt.Errorf("scan order item: %w", err)
		}
		o.Items = append(o.Items, item)
	}
	return rows.Err()
}
