package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jcastell/cafeteria-api/internal/domain"
	"github.com/jcastell/cafeteria-api/internal/domain/entity"
	"github.com/jcastell/cafeteria-api/internal/domain/repository"
)

var _ repository.UserRepository = (*UserRepo)(nil)

const userColumns = `id, email, password_hash, role, first_name, last_name, COALESCE(parent_id, ''), COALESCE(child_id, ''), created_at, updated_at`

// UserRepo implementación del puerto UserRepository sobre PostgreSQL (usable con pool o tx).
type UserRepo struct {
	q Querier
}

// NewUserRepository construye el adaptador de persistencia para usuarios. Pasar pool o tx (Querier).
func NewUserRepository(q Querier) *UserRepo {
	return &UserRepo{q: q}
}

// Create persiste un nuevo usuario.
func (r *UserRepo) Create(ctx context.Context, user *entity.User) error {
	query := `
		INSERT INTO users (id, email, password_hash, role, first_name, last_name, parent_id, child_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7, ''), NULLIF($8, ''), $9, $10)`
	_, err := r.q.Exec(ctx, query,
		user.ID, user.Email, user.PasswordHash, user.Role, user.FirstName, user.LastName,
		user.ParentID, user.ChildID, user.CreatedAt, user.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrEmailAlreadyExists
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

// GetByID obtiene un usuario por ID.
func (r *UserRepo) GetByID(ctx context.Context, id string) (*entity.User, error) {
	return r.scanOne(r.q.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id), "get user")
}

// GetByEmail obtiene un usuario por email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	return r.scanOne(r.q.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = $1`, email), "get user by email")
}

// GetForUpdate obtiene un usuario bloqueando su fila (SELECT FOR UPDATE).
// Solo tiene sentido dentro de una transacción; serializa los movimientos
// concurrentes del monedero de ese usuario.
func (r *UserRepo) GetForUpdate(ctx context.Context, id string) (*entity.User, error) {
	return r.scanOne(r.q.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1 FOR UPDATE`, id), "get user for update")
}

// Update actualiza los campos editables del usuario (perfil y vínculo padre↔hijo).
func (r *UserRepo) Update(ctx context.Context, user *entity.User) error {
	query := `
		UPDATE users SET first_name = $2, last_name = $3, parent_id = NULLIF($4, ''), child_id = NULLIF($5, ''), updated_at = $6
		WHERE id = $1`
	_, err := r.q.Exec(ctx, query,
		user.ID, user.FirstName, user.LastName, user.ParentID, user.ChildID, user.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	return nil
}

func (r *UserRepo) scanOne(row pgx.Row, op string) (*entity.User, error) {
	var u entity.User
	err := row.Scan(
		&u.ID, &u.Email, &u.PasswordHash, &u.Role, &u.FirstName, &u.LastName,
		&u.ParentID, &u.ChildID, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &u, nil
}
