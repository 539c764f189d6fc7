package order

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jcastell/cafeteria-api/internal/application/dto"
	"github.com/jcastell/cafeteria-api/internal/domain"
	"github.com/jcastell/cafeteria-api/internal/domain/entity"
	"github.com/jcastell/cafeteria-api/internal/domain/repository"
	"github.com/shopspring/decimal"
)

// LifecycleUseCase es el único componente que cambia el estado de un pedido.
// Cada transición valida quién la ejecuta, consulta la tabla central de
// transiciones y escribe con compare-and-swap sobre el estado esperado, de modo
// que dos llamadas en carrera sobre el mismo pedido nunca tienen éxito ambas.
type LifecycleUseCase struct {
	txRunner    TxRunner
	orderRepo   repository.OrderRepository
	productRepo repository.ProductRepository
	userRepo    repository.UserRepository
	wallet      WalletService
}

// NewLifecycleUseCase construye el caso de uso.
func NewLifecycleUseCase(
	txRunner TxRunner,
	orderRepo repository.OrderRepository,
	productRepo repository.ProductRepository,
	userRepo repository.UserRepository,
	wallet WalletService,
) *LifecycleUseCase {
	return &LifecycleUseCase{
		txRunner:    txRunner,
		orderRepo:   orderRepo,
		productRepo: productRepo,
		userRepo:    userRepo,
		wallet:      wallet,
	}
}

// Submit crea un pedido en pending_approval a partir del carrito del
// estudiante. Valida que haya líneas, que cada producto exista y que la
// cantidad no supere el stock; congela nombre y precio en el snapshot y calcula
// el total como suma de subtotales.
func (uc *LifecycleUseCase) Submit(ctx context.Context, studentID string, in dto.SubmitOrderRequest) (*dto.OrderResponse, error) {
	if len(in.Items) == 0 {
		return nil, domain.ErrInvalidInput
	}
	student, err := uc.userRepo.GetByID(ctx, studentID)
	if err != nil {
		return nil, err
	}
	if student == nil {
		return nil, domain.ErrUserNotFound
	}
	if student.Role != entity.RoleStudent {
		return nil, domain.ErrForbidden
	}

	items := make([]entity.OrderItem, 0, len(in.Items))
	total := decimal.Zero
	for _, line := range in.Items {
		if line.Quantity < 1 {
			return nil, domain.ErrInvalidInput
		}
		product, err := uc.productRepo.GetByID(ctx, line.ProductID)
		if err != nil {
			return nil, err
		}
		if product == nil {
			return nil, domain.ErrNotFound
		}
		if line.Quantity > product.Stock {
			return nil, domain.ErrInsufficientStock
		}
		item := entity.OrderItem{
			ProductID:   product.ID,
			ProductName: product.Name,
			UnitPrice:   product.Price,
			Quantity:    line.Quantity,
		}
		items = append(items, item)
		total = total.Add(item.Subtotal())
	}

	now := time.Now()
	o := &entity.Order{
		ID:        uuid.New().String(),
		StudentID: studentID,
		Items:     items,
		Total:     total,
		Status:    entity.StatusPendingApproval,
		CreatedAt: now,
		UpdatedAt: now,
	}
	// Pedido y líneas se insertan en la misma transacción.
	err = uc.txRunner.Run(ctx, func(orderRepo repository.OrderRepository, _ repository.TokenRepository, _ repository.UserRepository) error {
		return orderRepo.Create(ctx, o)
	})
	if err != nil {
		return nil, err
	}
	return toOrderResponse(o), nil
}

// Approve pasa un pedido de pending_approval a pending_payment. Solo el
// representante vinculado del estudiante puede aprobarlo; repetir la llamada
// sobre un pedido ya aprobado falla con ErrInvalidTransition.
func (uc *LifecycleUseCase) Approve(ctx context.Context, orderID, parentID string) (*dto.OrderResponse, error) {
	o, err := uc.getOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if err := uc.requireLinkedParent(ctx, parentID, o.StudentID); err != nil {
		return nil, err
	}
	if !o.Status.CanTransition(entity.StatusPendingPayment) {
		return nil, domain.ErrInvalidTransition
	}
	now := time.Now()
	if err := uc.orderRepo.UpdateStatus(ctx, o.ID, entity.StatusPendingApproval, entity.StatusPendingPayment, now); err != nil {
		return nil, err
	}
	o.Status = entity.StatusPendingPayment
	o.UpdatedAt = now
	return toOrderResponse(o), nil
}

// Reject pasa un pedido de pending_approval a rejected_by_parent (terminal) y
// guarda la nota, que es obligatoria. Mismas precondiciones que Approve.
func (uc *LifecycleUseCase) Reject(ctx context.Context, orderID, parentID string, in dto.RejectOrderRequest) (*dto.OrderResponse, error) {
	if strings.TrimSpace(in.Note) == "" {
		return nil, domain.ErrInvalidInput
	}
	o, err := uc.getOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if err := uc.requireLinkedParent(ctx, parentID, o.StudentID); err != nil {
		return nil, err
	}
	if !o.Status.CanTransition(entity.StatusRejectedByParent) {
		return nil, domain.ErrInvalidTransition
	}
	now := time.Now()
	if err := uc.orderRepo.UpdateWithRejection(ctx, o.ID, entity.StatusPendingApproval, in.Note, now); err != nil {
		return nil, err
	}
	o.Status = entity.StatusRejectedByParent
	o.RejectionNote = in.Note
	o.UpdatedAt = now
	return toOrderResponse(o), nil
}

// RecordPayment debita el total del monedero del estudiante y pasa el pedido
// de pending_payment a approved en una sola transacción: con saldo
// insuficiente no se registra nada y el pedido queda en pending_payment.
// Puede iniciarlo el estudiante dueño del pedido o su representante vinculado.
func (uc *LifecycleUseCase) RecordPayment(ctx context.Context, orderID, actorID string) (*dto.OrderResponse, error) {
	o, err := uc.getOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if actorID != o.StudentID {
		actor, err := uc.userRepo.GetByID(ctx, actorID)
		if err != nil {
			return nil, err
		}
		if actor == nil {
			return nil, domain.ErrUserNotFound
		}
		if !actor.IsParentOf(o.StudentID) {
			return nil, domain.ErrForbidden
		}
	}
	if !o.Status.CanTransition(entity.StatusApproved) {
		return nil, domain.ErrInvalidTransition
	}
	now := time.Now()
	err = uc.txRunner.Run(ctx, func(orderRepo repository.OrderRepository, tokenRepo repository.TokenRepository, userRepo repository.UserRepository) error {
		// El CAS va primero: si otra llamada ya pagó este pedido la
		// transacción falla aquí y no se debita dos veces.
		if err := orderRepo.UpdateStatus(ctx, o.ID, entity.StatusPendingPayment, entity.StatusApproved, now); err != nil {
			return err
		}
		_, err := uc.wallet.DebitInTx(ctx, userRepo, tokenRepo, o.StudentID, o.Total)
		return err
	})
	if err != nil {
		return nil, err
	}
	o.Status = entity.StatusApproved
	o.UpdatedAt = now
	return toOrderResponse(o), nil
}

// Advance hace avanzar la preparación un paso por llamada:
// approved → preparing → ready_for_pickup → completed. Solo la cafetería.
func (uc *LifecycleUseCase) Advance(ctx context.Context, orderID, cafeteriaID string) (*dto.OrderResponse, error) {
	if err := uc.requireCafeteria(ctx, cafeteriaID); err != nil {
		return nil, err
	}
	o, err := uc.getOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	next, ok := o.Status.AdvanceNext()
	if !ok {
		return nil, domain.ErrInvalidTransition
	}
	now := time.Now()
	if err := uc.orderRepo.UpdateStatus(ctx, o.ID, o.Status, next, now); err != nil {
		return nil, err
	}
	o.Status = next
	o.UpdatedAt = now
	return toOrderResponse(o), nil
}

// Cancel termina un pedido no terminal en cancelled_by_cafeteria. Si el pedido
// ya había sido debitado (approved o posterior), el reembolso se registra como
// recarga compensatoria en la misma transacción que el cambio de estado.
func (uc *LifecycleUseCase) Cancel(ctx context.Context, orderID, cafeteriaID string, in dto.CancelOrderRequest) (*dto.OrderResponse, error) {
	if err := uc.requireCafeteria(ctx, cafeteriaID); err != nil {
		return nil, err
	}
	o, err := uc.getOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !o.Status.CanTransition(entity.StatusCancelledByCafeteria) {
		return nil, domain.ErrInvalidTransition
	}
	now := time.Now()
	refund := o.Status.Debited()
	err = uc.txRunner.Run(ctx, func(orderRepo repository.OrderRepository, tokenRepo repository.TokenRepository, userRepo repository.UserRepository) error {
		if err := orderRepo.UpdateWithCancellation(ctx, o.ID, o.Status, in.Reason, now); err != nil {
			return err
		}
		if refund {
			_, err := uc.wallet.CreditInTx(ctx, userRepo, tokenRepo, o.StudentID, o.Total)
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	o.Status = entity.StatusCancelledByCafeteria
	o.CancelReason = in.Reason
	o.UpdatedAt = now
	return toOrderResponse(o), nil
}

// GetByID obtiene un pedido por ID. Solo pueden verlo el estudiante dueño,
// su representante vinculado o la cafetería.
func (uc *LifecycleUseCase) GetByID(ctx context.Context, orderID, requesterID string) (*dto.OrderResponse, error) {
	o, err := uc.getOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if requesterID != o.StudentID {
		requester, err := uc.userRepo.GetByID(ctx, requesterID)
		if err != nil {
			return nil, err
		}
		if requester == nil {
			return nil, domain.ErrUserNotFound
		}
		if !requester.IsParentOf(o.StudentID) && requester.Role != entity.RoleCafeteria {
			return nil, domain.ErrForbidden
		}
	}
	return toOrderResponse(o), nil
}

// GetByStudent lista los pedidos de un estudiante.
func (uc *LifecycleUseCase) GetByStudent(ctx context.Context, studentID string) (*dto.OrderListResponse, error) {
	list, err := uc.orderRepo.GetByStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}
	return toOrderListResponse(list), nil
}

// GetByCafeteria lista todos los pedidos para el panel de la cafetería.
func (uc *LifecycleUseCase) GetByCafeteria(ctx context.Context) (*dto.OrderListResponse, error) {
	list, err := uc.orderRepo.GetByCafeteria(ctx)
	if err != nil {
		return nil, err
	}
	return toOrderListResponse(list), nil
}

func (uc *LifecycleUseCase) getOrder(ctx context.Context, orderID string) (*entity.Order, error) {
	o, err := uc.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, domain.ErrNotFound
	}
	return o, nil
}

// requireLinkedParent verifica que parentID sea el representante vinculado del
// estudiante: solo el padre del dueño del pedido puede aprobarlo o rechazarlo.
func (uc *LifecycleUseCase) requireLinkedParent(ctx context.Context, parentID, studentID string) error {
	parent, err := uc.userRepo.GetByID(ctx, parentID)
	if err != nil {
		return err
	}
	if parent == nil {
		return domain.ErrUserNotFound
	}
	if !parent.IsParentOf(studentID) {
		return domain.ErrForbidden
	}
	return nil
}

func (uc *LifecycleUseCase) requireCafeteria(ctx context.Context, userID string) error {
	user, err := uc.userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if user == nil {
		return domain.ErrUserNotFound
	}
	if user.Role != entity.RoleCafeteria {
		return domain.ErrForbidden
	}
	return nil
}

func toOrderResponse(o *entity.Order) *dto.OrderResponse {
	if o == nil {
		return nil
	}
	items := make([]dto.OrderItemResponse, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, dto.OrderItemResponse{
			ProductID:   it.ProductID,
			ProductName: it.ProductName,
			UnitPrice:   it.UnitPrice,
			Quantity:    it.Quantity,
			Subtotal:    it.Subtotal(),
		})
	}
	return &dto.OrderResponse{
		ID:            o.ID,
		StudentID:     o.StudentID,
		Items:         items,
		Total:         o.Total,
		Status:        string(o.Status),
		RejectionNote: o.RejectionNote,
		CancelReason:  o.CancelReason,
		CreatedAt:     o.CreatedAt,
		UpdatedAt:     o.UpdatedAt,
	}
}

func toOrderListResponse(list []*entity.Order) *dto.OrderListResponse {
	items := make([]dto.OrderResponse, 0, len(list))
	for _, o := range list {
		items = append(items, *toOrderResponse(o))
	}
	return &dto.OrderListResponse{Items: items}
}
