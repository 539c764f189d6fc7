package repository

import (
	"context"

	"github.com/jcastell/cafeteria-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// TokenRepository define el puerto de persistencia del libro de movimientos.
// Append es la única mutación: las transacciones jamás se editan ni se borran.
// GetBalance deriva el saldo sumando amount sobre las entradas del usuario.
type TokenRepository interface {
	Append(ctx context.Context, tx *entity.TokenTransaction) error
	GetBalance(ctx context.Context, userID string) (decimal.Decimal, error)
	ListByUser(ctx context.Context, userID string) ([]*entity.TokenTransaction, error)
}
