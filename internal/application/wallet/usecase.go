package wallet

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jcastell/cafeteria-api/internal/application/dto"
	"github.com/jcastell/cafeteria-api/internal/domain"
	"github.com/jcastell/cafeteria-api/internal/domain/entity"
	"github.com/jcastell/cafeteria-api/internal/domain/repository"
	"github.com/shopspring/decimal"
)

// UseCase casos de uso del monedero: saldo, recargas, historial y los
// movimientos transaccionales que consume el ciclo de vida de pedidos.
// El saldo siempre se deriva del libro de movimientos, nunca se almacena.
type UseCase struct {
	userRepo  repository.UserRepository
	tokenRepo repository.TokenRepository
	statement StatementGenerator
}

// NewUseCase construye el caso de uso. statement puede ser nil si no se expone
// la descarga de estado de cuenta.
func NewUseCase(userRepo repository.UserRepository, tokenRepo repository.TokenRepository, statement StatementGenerator) *UseCase {
	return &UseCase{userRepo: userRepo, tokenRepo: tokenRepo, statement: statement}
}

// Balance devuelve el saldo del usuario: suma de amount sobre sus
// transacciones. Solo el propio usuario, su representante vinculado o la
// cafetería pueden consultarlo.
func (uc *UseCase) Balance(ctx context.Context, userID, requesterID string) (*dto.BalanceResponse, error) {
	if _, err := uc.requireWalletAccess(ctx, userID, requesterID); err != nil {
		return nil, err
	}
	balance, err := uc.tokenRepo.GetBalance(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &dto.BalanceResponse{UserID: userID, Balance: balance}, nil
}

// Recharge abona tokens al monedero del usuario. Solo el propio usuario o su
// representante vinculado pueden iniciar la recarga; el monto debe ser positivo.
func (uc *UseCase) Recharge(ctx context.Context, userID, initiatedByID string, in dto.RechargeRequest) (*dto.TransactionResponse, error) {
	if !in.Amount.GreaterThan(decimal.Zero) {
		return nil, domain.ErrInvalidInput
	}
	user, err := uc.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}
	if initiatedByID != userID {
		initiator, err := uc.userRepo.GetByID(ctx, initiatedByID)
		if err != nil {
			return nil, err
		}
		if initiator == nil {
			return nil, domain.ErrUserNotFound
		}
		if !initiator.IsParentOf(userID) {
			return nil, domain.ErrForbidden
		}
	}
	tx := &entity.TokenTransaction{
		ID:        uuid.New().String(),
		UserID:    userID,
		Type:      entity.TransactionRecharge,
		Amount:    in.Amount,
		CreatedAt: time.Now(),
	}
	if err := uc.tokenRepo.Append(ctx, tx); err != nil {
		return nil, err
	}
	return toTransactionResponse(tx), nil
}

// Transactions devuelve el historial del usuario ordenado por fecha
// ascendente. Mismas reglas de acceso que Balance.
func (uc *UseCase) Transactions(ctx context.Context, userID, requesterID string) (*dto.TransactionListResponse, error) {
	if _, err := uc.requireWalletAccess(ctx, userID, requesterID); err != nil {
		return nil, err
	}
	list, err := uc.tokenRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	items := make([]dto.TransactionResponse, 0, len(list))
	for _, tx := range list {
		items = append(items, *toTransactionResponse(tx))
	}
	return &dto.TransactionListResponse{Items: items}, nil
}

// DebitInTx descuenta amount del monedero usando los repositorios
// proporcionados (misma transacción del caller). Bloquea la fila del usuario,
// verifica saldo suficiente y registra una transacción purchase con monto
// negativo. Jamás registra nada si el saldo no alcanza.
func (uc *UseCase) DebitInTx(
	ctx context.Context,
	userRepo repository.UserRepository,
	tokenRepo repository.TokenRepository,
	userID string,
	amount decimal.Decimal,
) (*entity.TokenTransaction, error) {
	if !amount.GreaterThan(decimal.Zero) {
		return nil, domain.ErrInvalidInput
	}
	// Bloquea la fila del usuario: serializa débitos/recargas concurrentes
	// sobre el mismo monedero y evita sobregiros por carrera.
	user, err := userRepo.GetForUpdate(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}
	balance, err := tokenRepo.GetBalance(ctx, userID)
	if err != nil {
		return nil, err
	}
	if balance.LessThan(amount) {
		return nil, domain.ErrInsufficientFunds
	}
	tx := &entity.TokenTransaction{
		ID:        uuid.New().String(),
		UserID:    userID,
		Type:      entity.TransactionPurchase,
		Amount:    amount.Neg(),
		CreatedAt: time.Now(),
	}
	if err := tokenRepo.Append(ctx, tx); err != nil {
		return nil, err
	}
	return tx, nil
}

// CreditInTx abona amount como recarga compensatoria usando los repositorios
// proporcionados (misma transacción del caller). Lo usa la cancelación de
// pedidos ya debitados: el reembolso y el cambio de estado son una sola unidad.
func (uc *UseCase) CreditInTx(
	ctx context.Context,
	userRepo repository.UserRepository,
	tokenRepo repository.TokenRepository,
	userID string,
	amount decimal.Decimal,
) (*entity.TokenTransaction, error) {
	if !amount.GreaterThan(decimal.Zero) {
		return nil, domain.ErrInvalidInput
	}
	user, err := userRepo.GetForUpdate(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}
	tx := &entity.TokenTransaction{
		ID:        uuid.New().String(),
		UserID:    userID,
		Type:      entity.TransactionRecharge,
		Amount:    amount,
		CreatedAt: time.Now(),
	}
	if err := tokenRepo.Append(ctx, tx); err != nil {
		return nil, err
	}
	return tx, nil
}

// Statement genera el estado de cuenta en PDF. Puede solicitarlo el propio
// usuario, su representante vinculado o la cafetería.
func (uc *UseCase) Statement(ctx context.Context, userID, requesterID string) ([]byte, error) {
	if uc.statement == nil {
		return nil, domain.ErrNotFound
	}
	user, err := uc.requireWalletAccess(ctx, userID, requesterID)
	if err != nil {
		return nil, err
	}
	list, err := uc.tokenRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	balance, err := uc.tokenRepo.GetBalance(ctx, userID)
	if err != nil {
		return nil, err
	}
	return uc.statement.GenerateStatementPDF(ctx, user, list, balance)
}

// requireWalletAccess autoriza la lectura del monedero de userID: el propio
// usuario, su representante vinculado o la cafetería. Devuelve el dueño.
func (uc *UseCase) requireWalletAccess(ctx context.Context, userID, requesterID string) (*entity.User, error) {
	user, err := uc.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}
	if requesterID == userID {
		return user, nil
	}
	requester, err := uc.userRepo.GetByID(ctx, requesterID)
	if err != nil {
		return nil, err
	}
	if requester == nil {
		return nil, domain.ErrUserNotFound
	}
	if !requester.IsParentOf(userID) && requester.Role != entity.RoleCafeteria {
		return nil, domain.ErrForbidden
	}
	return user, nil
}

func toTransactionResponse(tx *entity.TokenTransaction) *dto.TransactionResponse {
	if tx == nil {
		return nil
	}
	return &dto.TransactionResponse{
		ID:        tx.ID,
		UserID:    tx.UserID,
		Type:      tx.Type,
		Amount:    tx.Amount,
		CreatedAt: tx.CreatedAt,
	}
}
