package repository

import (
	"context"

	"github.com/jcastell/cafeteria-api/internal/domain/entity"
)

// ProductRepository define el puerto de persistencia para Product (DIP).
// El núcleo de pedidos solo lo usa en lectura (validación de stock y precio al crear).
type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	GetByID(ctx context.Context, id string) (*entity.Product, error)
	List(ctx context.Context, limit, offset int) ([]*entity.Product, error)
	Update(ctx context.Context, product *entity.Product) error
	Delete(ctx context.Context, id string) error
}
