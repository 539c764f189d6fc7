package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// RechargeRequest entrada para recargar el monedero de un estudiante.
type RechargeRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

// BalanceResponse saldo derivado del libro de movimientos.
type BalanceResponse struct {
	UserID  string          `json:"user_id"`
	Balance decimal.Decimal `json:"balance"`
}

// TransactionResponse salida de una transacción del monedero.
type TransactionResponse struct {
	ID        string          `json:"id"`
	UserID    string          `json:"user_id"`
	Type      string          `json:"type"`
	Amount    decimal.Decimal `json:"amount"`
	CreatedAt time.Time       `json:"created_at"`
}

// TransactionListResponse historial ordenado por fecha ascendente.
type TransactionListResponse struct {
	Items []TransactionResponse `json:"items"`
}
