package order

import (
	"context"

	"github.com/jcastell/cafeteria-api/internal/domain/entity"
	"github.com/jcastell/cafeteria-api/internal/domain/repository"
	"github.com/shopspring/decimal"
)

// TxRunner ejecuta callbacks dentro de una transacción, con repositorios
// atados a la tx. Toda transición que toca el libro de movimientos (débito al
// pagar, reembolso al cancelar) pasa por aquí: o se confirman el cambio de
// estado y el asiento juntos, o ninguno.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		orderRepo repository.OrderRepository,
		tokenRepo repository.TokenRepository,
		userRepo repository.UserRepository,
	) error) error
}

// WalletService operaciones de monedero que el ciclo de vida invoca dentro de
// su propia transacción. Implementado por wallet.UseCase.
type WalletService interface {
	DebitInTx(ctx context.Context, userRepo repository.UserRepository, tokenRepo repository.TokenRepository, userID string, amount decimal.Decimal) (*entity.TokenTransaction, error)
	CreditInTx(ctx context.Context, userRepo repository.UserRepository, tokenRepo repository.TokenRepository, userID string, amount decimal.Decimal) (*entity.TokenTransaction, error)
}
