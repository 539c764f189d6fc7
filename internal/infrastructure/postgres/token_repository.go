package postgres

import (
	"context"
	"fmt"

	"github.com/jcastell/cafeteria-api/internal/domain"
	"github.com/jcastell/cafeteria-api/internal/domain/entity"
	"github.com/jcastell/cafeteria-api/internal/domain/repository"
	"github.com/shopspring/decimal"
)

var _ repository.TokenRepository = (*TokenRepo)(nil)

// TokenRepo implementación del puerto TokenRepository sobre PostgreSQL (usable con pool o tx).
// La tabla token_transactions es solo-inserción: no hay UPDATE ni DELETE.
type TokenRepo struct {
	q Querier
}

// NewTokenRepository construye el adaptador de persistencia del libro de movimientos. Pasar pool o tx (Querier).
func NewTokenRepository(q Querier) *TokenRepo {
	return &TokenRepo{q: q}
}

// Append inserta una transacción. Es la única mutación del libro.
func (r *TokenRepo) Append(ctx context.Context, tx *entity.TokenTransaction) error {
	query := `
		INSERT INTO token_transactions (id, user_id, type, amount, created_at)
		VALUES ($1, $2, $3, $4, $5)`
	_, err := r.q.Exec(ctx, query, tx.ID, tx.UserID, tx.Type, tx.Amount, tx.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert token transaction: %w", err)
	}
	return nil
}

// GetBalance deriva el saldo sumando amount sobre las transacciones del usuario.
func (r *TokenRepo) GetBalance(ctx context.Context, userID string) (decimal.Decimal, error) {
	var balance decimal.Decimal
	err := r.q.QueryRow(ctx,
		`SELECT COALESCE(SUM(amount), 0) FROM token_transactions WHERE user_id = $1`,
		userID,
	).Scan(&balance)
	if err != nil {
		return decimal.Zero, fmt.Errorf("sum token transactions: %w", err)
	}
	return balance, nil
}

// ListByUser devuelve el historial ordenado por created_at ascendente.
func (r *TokenRepo) ListByUser(ctx context.Context, userID string) ([]*entity.TokenTransaction, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, user_id, type, amount, created_at
		FROM token_transactions WHERE user_id = $1 ORDER BY created_at ASC, id ASC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list token transactions: %w", err)
	}
	defer rows.Close()
	var list []*entity.TokenTransaction
	for rows.Next() {
		var tx entity.TokenTransaction
		if err := rows.Scan(&tx.ID, &tx.UserID, &tx.Type, &tx.Amount, &tx.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan token transaction: %w", err)
		}
		list = append(list, &tx)
	}
	return list, rows.Err()
}
