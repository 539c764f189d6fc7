package wallet

import (
	"context"

	"github.com/jcastell/cafeteria-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// StatementGenerator genera el estado de cuenta del monedero en PDF.
// Implementado en infrastructure/pdf con Maroto.
type StatementGenerator interface {
	GenerateStatementPDF(ctx context.Context, user *entity.User, transactions []*entity.TokenTransaction, balance decimal.Decimal) ([]byte, error)
}
