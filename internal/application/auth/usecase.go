package auth

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jcastell/cafeteria-api/internal/application/dto"
	"github.com/jcastell/cafeteria-api/internal/domain"
	"github.com/jcastell/cafeteria-api/internal/domain/entity"
	"github.com/jcastell/cafeteria-api/internal/domain/repository"
	"github.com/jcastell/cafeteria-api/pkg/jwt"
	"golang.org/x/crypto/bcrypt"
)

// JWTConfig configuración para generación de tokens.
type JWTConfig struct {
	Secret     string
	ExpMinutes int
	Issuer     string
}

// UseCase casos de uso de autenticación: registro, login y usuario actual.
// El logout es descarte del token en el cliente (JWT sin estado).
type UseCase struct {
	userRepo repository.UserRepository
	jwtCfg   JWTConfig
}

// NewUseCase construye el caso de uso de auth.
func NewUseCase(userRepo repository.UserRepository, jwtCfg JWTConfig) *UseCase {
	return &UseCase{userRepo: userRepo, jwtCfg: jwtCfg}
}

// Register crea un usuario: hashea password con bcrypt y persiste. Si un
// estudiante llega con ParentID, deja el vínculo padre↔hijo consistente en
// ambas direcciones. Devuelve ErrEmailAlreadyExists si el email ya existe.
func (uc *UseCase) Register(ctx context.Context, in dto.RegisterRequest) (*dto.UserResponse, error) {
	switch in.Role {
	case entity.RoleStudent, entity.RoleParent, entity.RoleCafeteria:
	default:
		return nil, domain.ErrInvalidInput
	}
	if in.Email == "" || in.Password == "" {
		return nil, domain.ErrInvalidInput
	}
	existing, _ := uc.userRepo.GetByEmail(ctx, in.Email)
	if existing != nil {
		return nil, domain.ErrEmailAlreadyExists
	}

	var parent *entity.User
	if in.Role == entity.RoleStudent && in.ParentID != "" {
		var err error
		parent, err = uc.userRepo.GetByID(ctx, in.ParentID)
		if err != nil {
			return nil, err
		}
		if parent == nil || parent.Role != entity.RoleParent {
			return nil, domain.ErrNotFound
		}
		// Un representante vincula a un solo estudiante: re-apuntar su ChildID
		// dejaría al estudiante anterior con un vínculo roto.
		if parent.ChildID != "" {
			return nil, domain.ErrParentAlreadyLinked
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	user := &entity.User{
		ID:           uuid.New().String(),
		Email:        in.Email,
		PasswordHash: string(hash),
		Role:         in.Role,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if parent != nil {
		user.ParentID = parent.ID
	}
	if err := uc.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	if parent != nil {
		// Cierra el vínculo del lado del representante.
		parent.ChildID = user.ID
		parent.UpdatedAt = now
		if err := uc.userRepo.Update(ctx, parent); err != nil {
			return nil, err
		}
	}
	return toUserResponse(user), nil
}

// Login verifica email/password, genera JWT con el rol y retorna token + usuario.
func (uc *UseCase) Login(ctx context.Context, in dto.LoginRequest) (*dto.LoginResponse, error) {
	user, err := uc.userRepo.GetByEmail(ctx, in.Email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)); err != nil {
		return nil, domain.ErrUnauthorized
	}
	token, err := jwt.Generate(uc.jwtCfg.Secret, user.ID, user.Role, uc.jwtCfg.Issuer, uc.jwtCfg.ExpMinutes)
	if err != nil {
		return nil, err
	}
	return &dto.LoginResponse{
		Token: token,
		User:  *toUserResponse(user),
	}, nil
}

// Me devuelve el usuario actual a partir del subject del token.
func (uc *UseCase) Me(ctx context.Context, userID string) (*dto.UserResponse, error) {
	user, err := uc.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}
	return toUserResponse(user), nil
}

func toUserResponse(u *entity.User) *dto.UserResponse {
	if u == nil {
		return nil
	}
	return &dto.UserResponse{
		ID:        u.ID,
		Email:     u.Email,
		Role:      u.Role,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		ParentID:  u.ParentID,
		ChildID:   u.ChildID,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}
