package repository

import (
	"context"

	"github.com/jcastell/cafeteria-api/internal/domain/entity"
)

// UserRepository define el puerto de persistencia para User (DIP).
// GetForUpdate bloquea la fila del usuario dentro de la transacción activa;
// serializa débitos y recargas concurrentes sobre el mismo monedero.
type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	GetForUpdate(ctx context.Context, id string) (*entity.User, error)
	Update(ctx context.Context, user *entity.User) error
}
