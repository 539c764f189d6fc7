package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product representa un producto del menú de la cafetería.
// Price y Cost son no negativos; cost <= price no se valida.
type Product struct {
	ID          string
	Name        string
	Description string
	Price       decimal.Decimal // precio de venta unitario
	Cost        decimal.Decimal // costo unitario
	Stock       int
	ImageURL    string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
