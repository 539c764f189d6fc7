package order_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jcastell/cafeteria-api/internal/application/dto"
	"github.com/jcastell/cafeteria-api/internal/application/order"
	"github.com/jcastell/cafeteria-api/internal/application/wallet"
	"github.com/jcastell/cafeteria-api/internal/domain"
	"github.com/jcastell/cafeteria-api/internal/domain/entity"
	"github.com/jcastell/cafeteria-api/internal/domain/repository"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fakes en memoria
// ──────────────────────────────────────────────────────────────────────────────

type memUserRepo struct {
	users map[string]*entity.User
}

func (r *memUserRepo) Create(_ context.Context, u *entity.User) error {
	r.users[u.ID] = u
	return nil
}
func (r *memUserRepo) GetByID(_ context.Context, id string) (*entity.User, error) {
	return r.users[id], nil
}
func (r *memUserRepo) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, nil
}
func (r *memUserRepo) GetForUpdate(_ context.Context, id string) (*entity.User, error) {
	return r.users[id], nil
}
func (r *memUserRepo) Update(_ context.Context, u *entity.User) error {
	r.users[u.ID] = u
	return nil
}

type memProductRepo struct {
	products map[string]*entity.Product
}

func (r *memProductRepo) Create(_ context.Context, p *entity.Product) error {
	r.products[p.ID] = p
	return nil
}
func (r *memProductRepo) GetByID(_ context.Context, id string) (*entity.Product, error) {
	return r.products[id], nil
}
func (r *memProductRepo) List(_ context.Context, _, _ int) ([]*entity.Product, error) {
	var list []*entity.Product
	for _, p := range r.products {
		list = append(list, p)
	}
	return list, nil
}
func (r *memProductRepo) Update(_ context.Context, p *entity.Product) error {
	r.products[p.ID] = p
	return nil
}
func (r *memProductRepo) Delete(_ context.Context, id string) error {
	delete(r.products, id)
	return nil
}

// memOrderRepo replica la semántica compare-and-swap del adaptador real: los
// Update* solo escriben si el pedido sigue en el estado esperado.
type memOrderRepo struct {
	orders map[string]*entity.Order
}

func (r *memOrderRepo) Create(_ context.Context, o *entity.Order) error {
	cp := *o
	r.orders[o.ID] = &cp
	return nil
}
func (r *memOrderRepo) GetByID(_ context.Context, id string) (*entity.Order, error) {
	o, ok := r.orders[id]
	if !ok {
		return nil, nil
	}
	cp := *o
	return &cp, nil
}
func (r *memOrderRepo) GetByStudent(_ context.Context, studentID string) ([]*entity.Order, error) {
	var list []*entity.Order
	for _, o := range r.orders {
		if o.StudentID == studentID {
			cp := *o
			list = append(list, &cp)
		}
	}
	return list, nil
}
func (r *memOrderRepo) GetByCafeteria(_ context.Context) ([]*entity.Order, error) {
	var list []*entity.Order
	for _, o := range r.orders {
		cp := *o
		list = append(list, &cp)
	}
	return list, nil
}
func (r *memOrderRepo) UpdateStatus(_ context.Context, id string, from, to entity.OrderStatus, updatedAt time.Time) error {
	o, ok := r.orders[id]
	if !ok || o.Status != from {
		return domain.ErrInvalidTransition
	}
	o.Status = to
	o.UpdatedAt = updatedAt
	return nil
}
func (r *memOrderRepo) UpdateWithRejection(_ context.Context, id string, from entity.OrderStatus, note string, updatedAt time.Time) error {
	o, ok := r.orders[id]
	if !ok || o.Status != from {
		return domain.ErrInvalidTransition
	}
	o.Status = entity.StatusRejectedByParent
	o.RejectionNote = note
	o.UpdatedAt = updatedAt
	return nil
}
func (r *memOrderRepo) UpdateWithCancellation(_ context.Context, id string, from entity.OrderStatus, reason string, updatedAt time.Time) error {
	o, ok := r.orders[id]
	if !ok || o.Status != from {
		return domain.ErrInvalidTransition
	}
	o.Status = entity.StatusCancelledByCafeteria
	o.CancelReason = reason
	o.UpdatedAt = updatedAt
	return nil
}

type memTokenRepo struct {
	txs []*entity.TokenTransaction
}

func (r *memTokenRepo) Append(_ context.Context, tx *entity.TokenTransaction) error {
	cp := *tx
	r.txs = append(r.txs, &cp)
	return nil
}
func (r *memTokenRepo) GetBalance(_ context.Context, userID string) (decimal.Decimal, error) {
	sum := decimal.Zero
	for _, tx := range r.txs {
		if tx.UserID == userID {
			sum = sum.Add(tx.Amount)
		}
	}
	return sum, nil
}
func (r *memTokenRepo) ListByUser(_ context.Context, userID string) ([]*entity.TokenTransaction, error) {
	var list []*entity.TokenTransaction
	for _, tx := range r.txs {
		if tx.UserID == userID {
			list = append(list, tx)
		}
	}
	return list, nil
}

// memTxRunner simula la atomicidad de la transacción: toma un snapshot de
// pedidos y libro antes del callback y lo restaura si falla, de modo que un
// débito fallido no deja ni cambio de estado ni asiento a medias.
type memTxRunner struct {
	orders *memOrderRepo
	tokens *memTokenRepo
	users  *memUserRepo
}

func (t *memTxRunner) Run(ctx context.Context, fn func(repository.OrderRepository, repository.TokenRepository, repository.UserRepository) error) error {
	ordersSnap := make(map[string]*entity.Order, len(t.orders.orders))
	for id, o := range t.orders.orders {
		cp := *o
		ordersSnap[id] = &cp
	}
	tokensSnap := append([]*entity.TokenTransaction(nil), t.tokens.txs...)

	if err := fn(t.orders, t.tokens, t.users); err != nil {
		t.orders.orders = ordersSnap
		t.tokens.txs = tokensSnap
		return err
	}
	return nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Fixture
// ──────────────────────────────────────────────────────────────────────────────

const (
	studentID   = "student-1"
	parentID    = "parent-1"
	cafeteriaID = "cafeteria-1"
	otherParent = "parent-2"
)

type fixture struct {
	uc     *order.LifecycleUseCase
	wallet *wallet.UseCase
	users  *memUserRepo
	orders *memOrderRepo
	tokens *memTokenRepo
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	users := &memUserRepo{users: map[string]*entity.User{
		studentID:   {ID: studentID, Email: "student@test.com", Role: entity.RoleStudent, ParentID: parentID},
		parentID:    {ID: parentID, Email: "parent@test.com", Role: entity.RoleParent, ChildID: studentID},
		cafeteriaID: {ID: cafeteriaID, Email: "cafeteria@test.com", Role: entity.RoleCafeteria},
		otherParent: {ID: otherParent, Email: "otro@test.com", Role: entity.RoleParent, ChildID: "otro-hijo"},
	}}
	products := &memProductRepo{products: map[string]*entity.Product{
		"hamburguesa": {ID: "hamburguesa", Name: "Hamburguesa", Price: dec("25.00"), Stock: 10},
		"papas":       {ID: "papas", Name: "Papas fritas", Price: dec("10.00"), Stock: 5},
	}}
	orders := &memOrderRepo{orders: map[string]*entity.Order{}}
	tokens := &memTokenRepo{}
	txRunner := &memTxRunner{orders: orders, tokens: tokens, users: users}
	walletUC := wallet.NewUseCase(users, tokens, nil)
	uc := order.NewLifecycleUseCase(txRunner, orders, products, users, walletUC)
	return &fixture{uc: uc, wallet: walletUC, users: users, orders: orders, tokens: tokens}
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// submitCart envía el carrito estándar: 2 hamburguesas + 1 papas = 60.00.
func submitCart(t *testing.T, fx *fixture) *dto.OrderResponse {
	t.Helper()
	out, err := fx.uc.Submit(context.Background(), studentID, dto.SubmitOrderRequest{
		Items: []dto.SubmitOrderItem{
			{ProductID: "hamburguesa", Quantity: 2},
			{ProductID: "papas", Quantity: 1},
		},
	})
	require.NoError(t, err)
	return out
}

// recharge abona saldo al estudiante vía el caso de uso del monedero.
func recharge(t *testing.T, fx *fixture, amount string) {
	t.Helper()
	_, err := fx.wallet.Recharge(context.Background(), studentID, studentID, dto.RechargeRequest{Amount: dec(amount)})
	require.NoError(t, err)
}

func balance(t *testing.T, fx *fixture) decimal.Decimal {
	t.Helper()
	b, err := fx.tokens.GetBalance(context.Background(), studentID)
	require.NoError(t, err)
	return b
}

// ──────────────────────────────────────────────────────────────────────────────
// Submit
// ──────────────────────────────────────────────────────────────────────────────

func TestSubmit_CalculaTotalYEstadoInicial(t *testing.T) {
	fx := newFixture(t)
	out := submitCart(t, fx)

	assert.Equal(t, string(entity.StatusPendingApproval), out.Status)
	assert.True(t, out.Total.Equal(dec("60.00")), "2×25 + 1×10 = 60, total %s", out.Total)
	require.Len(t, out.Items, 2)
	assert.Equal(t, "Hamburguesa", out.Items[0].ProductName, "debe congelar el nombre del producto")
	assert.True(t, out.Items[0].Subtotal.Equal(dec("50.00")))
}

func TestSubmit_CarritoVacio(t *testing.T) {
	fx := newFixture(t)
	_, err := fx.uc.Submit(context.Background(), studentID, dto.SubmitOrderRequest{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestSubmit_ProductoInexistente(t *testing.T) {
	fx := newFixture(t)
	_, err := fx.uc.Submit(context.Background(), studentID, dto.SubmitOrderRequest{
		Items: []dto.SubmitOrderItem{{ProductID: "no-existe", Quantity: 1}},
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSubmit_StockInsuficiente(t *testing.T) {
	fx := newFixture(t)
	_, err := fx.uc.Submit(context.Background(), studentID, dto.SubmitOrderRequest{
		Items: []dto.SubmitOrderItem{{ProductID: "papas", Quantity: 6}},
	})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
}

func TestSubmit_SoloEstudiantes(t *testing.T) {
	fx := newFixture(t)
	_, err := fx.uc.Submit(context.Background(), parentID, dto.SubmitOrderRequest{
		Items: []dto.SubmitOrderItem{{ProductID: "papas", Quantity: 1}},
	})
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

// ──────────────────────────────────────────────────────────────────────────────
// Approve / Reject
// ──────────────────────────────────────────────────────────────────────────────

func TestApprove_RepresentanteVinculado(t *testing.T) {
	fx := newFixture(t)
	o := submitCart(t, fx)

	out, err := fx.uc.Approve(context.Background(), o.ID, parentID)
	require.NoError(t, err)
	assert.Equal(t, string(entity.StatusPendingPayment), out.Status)
}

func TestApprove_OtroRepresentanteNoPuede(t *testing.T) {
	fx := newFixture(t)
	o := submitCart(t, fx)

	_, err := fx.uc.Approve(context.Background(), o.ID, otherParent)
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestApprove_DobleAprobacionFalla(t *testing.T) {
	fx := newFixture(t)
	o := submitCart(t, fx)

	_, err := fx.uc.Approve(context.Background(), o.ID, parentID)
	require.NoError(t, err)
	_, err = fx.uc.Approve(context.Background(), o.ID, parentID)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestReject_NotaObligatoria(t *testing.T) {
	fx := newFixture(t)
	o := submitCart(t, fx)

	_, err := fx.uc.Reject(context.Background(), o.ID, parentID, dto.RejectOrderRequest{Note: "   "})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestReject_GuardaNotaYEsTerminal(t *testing.T) {
	fx := newFixture(t)
	o := submitCart(t, fx)

	out, err := fx.uc.Reject(context.Background(), o.ID, parentID, dto.RejectOrderRequest{Note: "no hay saldo"})
	require.NoError(t, err)
	assert.Equal(t, string(entity.StatusRejectedByParent), out.Status)
	assert.Equal(t, "no hay saldo", out.RejectionNote)

	// Terminal: no se puede aprobar después del rechazo.
	_, err = fx.uc.Approve(context.Background(), o.ID, parentID)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

// ──────────────────────────────────────────────────────────────────────────────
// RecordPayment
// ──────────────────────────────────────────────────────────────────────────────

func TestRecordPayment_DebitaYAprueba(t *testing.T) {
	fx := newFixture(t)
	recharge(t, fx, "100.00")
	o := submitCart(t, fx)
	_, err := fx.uc.Approve(context.Background(), o.ID, parentID)
	require.NoError(t, err)

	out, err := fx.uc.RecordPayment(context.Background(), o.ID, studentID)
	require.NoError(t, err)
	assert.Equal(t, string(entity.StatusApproved), out.Status)
	assert.True(t, balance(t, fx).Equal(dec("40.00")), "100 - 60 = 40, saldo %s", balance(t, fx))

	// El débito queda como compra con monto negativo en el libro.
	txs, err := fx.tokens.ListByUser(context.Background(), studentID)
	require.NoError(t, err)
	require.Len(t, txs, 2)
	assert.Equal(t, entity.TransactionPurchase, txs[1].Type)
	assert.True(t, txs[1].Amount.Equal(dec("-60.00")))
}

func TestRecordPayment_SaldoInsuficienteNoCambiaNada(t *testing.T) {
	fx := newFixture(t)
	recharge(t, fx, "10.00")
	o := submitCart(t, fx)
	_, err := fx.uc.Approve(context.Background(), o.ID, parentID)
	require.NoError(t, err)

	_, err = fx.uc.RecordPayment(context.Background(), o.ID, studentID)
	assert.ErrorIs(t, err, domain.ErrInsufficientFunds)

	// Ni asiento ni cambio de estado: el pedido sigue esperando pago.
	assert.True(t, balance(t, fx).Equal(dec("10.00")))
	got, err := fx.orders.GetByID(context.Background(), o.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusPendingPayment, got.Status)
}

func TestRecordPayment_NoDebitaDosVeces(t *testing.T) {
	fx := newFixture(t)
	recharge(t, fx, "200.00")
	o := submitCart(t, fx)
	_, err := fx.uc.Approve(context.Background(), o.ID, parentID)
	require.NoError(t, err)

	_, err = fx.uc.RecordPayment(context.Background(), o.ID, studentID)
	require.NoError(t, err)
	_, err = fx.uc.RecordPayment(context.Background(), o.ID, studentID)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	assert.True(t, balance(t, fx).Equal(dec("140.00")), "el segundo pago no debe debitar")
}

func TestRecordPayment_SinAprobacionFalla(t *testing.T) {
	fx := newFixture(t)
	recharge(t, fx, "100.00")
	o := submitCart(t, fx)

	_, err := fx.uc.RecordPayment(context.Background(), o.ID, studentID)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestRecordPayment_ActorAjenoNoPuede(t *testing.T) {
	fx := newFixture(t)
	recharge(t, fx, "100.00")
	o := submitCart(t, fx)
	_, err := fx.uc.Approve(context.Background(), o.ID, parentID)
	require.NoError(t, err)

	_, err = fx.uc.RecordPayment(context.Background(), o.ID, otherParent)
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

// ──────────────────────────────────────────────────────────────────────────────
// Advance / Cancel
// ──────────────────────────────────────────────────────────────────────────────

func payOrder(t *testing.T, fx *fixture) *dto.OrderResponse {
	t.Helper()
	recharge(t, fx, "100.00")
	o := submitCart(t, fx)
	_, err := fx.uc.Approve(context.Background(), o.ID, parentID)
	require.NoError(t, err)
	out, err := fx.uc.RecordPayment(context.Background(), o.ID, studentID)
	require.NoError(t, err)
	return out
}

func TestAdvance_UnPasoPorLlamada(t *testing.T) {
	fx := newFixture(t)
	o := payOrder(t, fx)

	for _, want := range []entity.OrderStatus{
		entity.StatusPreparing, entity.StatusReadyForPickup, entity.StatusCompleted,
	} {
		out, err := fx.uc.Advance(context.Background(), o.ID, cafeteriaID)
		require.NoError(t, err)
		assert.Equal(t, string(want), out.Status)
	}

	// completed es terminal.
	_, err := fx.uc.Advance(context.Background(), o.ID, cafeteriaID)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestAdvance_SoloCafeteria(t *testing.T) {
	fx := newFixture(t)
	o := payOrder(t, fx)

	_, err := fx.uc.Advance(context.Background(), o.ID, studentID)
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestCancel_DespuesDelPagoReembolsa(t *testing.T) {
	fx := newFixture(t)
	o := payOrder(t, fx)
	require.True(t, balance(t, fx).Equal(dec("40.00")))

	out, err := fx.uc.Cancel(context.Background(), o.ID, cafeteriaID, dto.CancelOrderRequest{Reason: "sin ingredientes"})
	require.NoError(t, err)
	assert.Equal(t, string(entity.StatusCancelledByCafeteria), out.Status)
	assert.Equal(t, "sin ingredientes", out.CancelReason)

	// Reembolso como recarga compensatoria: 100 → 40 → 100.
	assert.True(t, balance(t, fx).Equal(dec("100.00")))
	txs, err := fx.tokens.ListByUser(context.Background(), studentID)
	require.NoError(t, err)
	require.Len(t, txs, 3)
	assert.Equal(t, entity.TransactionRecharge, txs[2].Type)
	assert.True(t, txs[2].Amount.Equal(dec("60.00")))
}

func TestCancel_AntesDelPagoNoReembolsa(t *testing.T) {
	fx := newFixture(t)
	recharge(t, fx, "100.00")
	o := submitCart(t, fx)

	_, err := fx.uc.Cancel(context.Background(), o.ID, cafeteriaID, dto.CancelOrderRequest{})
	require.NoError(t, err)
	assert.True(t, balance(t, fx).Equal(dec("100.00")), "sin débito previo no hay reembolso")

	txs, err := fx.tokens.ListByUser(context.Background(), studentID)
	require.NoError(t, err)
	assert.Len(t, txs, 1, "solo la recarga inicial")
}

func TestCancel_EstadoTerminalFalla(t *testing.T) {
	fx := newFixture(t)
	o := submitCart(t, fx)
	_, err := fx.uc.Reject(context.Background(), o.ID, parentID, dto.RejectOrderRequest{Note: "no"})
	require.NoError(t, err)

	_, err = fx.uc.Cancel(context.Background(), o.ID, cafeteriaID, dto.CancelOrderRequest{})
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

// Un pedido no es público: solo el dueño, su representante vinculado o la
// cafetería pueden consultarlo por ID.
func TestGetByID_SoloInvolucrados(t *testing.T) {
	fx := newFixture(t)
	o := submitCart(t, fx)

	for _, requester := range []string{studentID, parentID, cafeteriaID} {
		_, err := fx.uc.GetByID(context.Background(), o.ID, requester)
		assert.NoError(t, err, "requester %s", requester)
	}

	_, err := fx.uc.GetByID(context.Background(), o.ID, otherParent)
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestCancel_SoloCafeteria(t *testing.T) {
	fx := newFixture(t)
	o := submitCart(t, fx)

	_, err := fx.uc.Cancel(context.Background(), o.ID, parentID, dto.CancelOrderRequest{})
	assert.ErrorIs(t, err, domain.ErrForbidden)
}
