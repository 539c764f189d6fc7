package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de transacción del monedero.
const (
	TransactionRecharge = "recharge" // monto positivo
	TransactionPurchase = "purchase" // monto negativo
)

// TokenTransaction es una entrada inmutable del libro de movimientos del
// monedero. UserID es siempre el estudiante dueño del saldo. El saldo nunca se
// almacena: se deriva sumando Amount sobre todas las entradas del usuario.
type TokenTransaction struct {
	ID        string
	UserID    string
	Type      string          // recharge, purchase
	Amount    decimal.Decimal // con signo: positivo recarga, negativo compra
	CreatedAt time.Time
}
