package wallet_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jcastell/cafeteria-api/internal/application/dto"
	"github.com/jcastell/cafeteria-api/internal/application/wallet"
	"github.com/jcastell/cafeteria-api/internal/domain"
	"github.com/jcastell/cafeteria-api/internal/domain/entity"
)

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

// fakeStatementGen evita Maroto en tests unitarios.
type fakeStatementGen struct{ calls int }

func (g *fakeStatementGen) GenerateStatementPDF(_ context.Context, _ *entity.User, _ []*entity.TokenTransaction, _ decimal.Decimal) ([]byte, error) {
	g.calls++
	return []byte("%PDF-fake"), nil
}

const (
	studentID = "student-1"
	parentID  = "parent-1"
	cafID     = "cafeteria-1"
	otherID   = "parent-2"
)

func newWallet(t *testing.T) (*wallet.UseCase, *memUserRepo, *memTokenRepo, *fakeStatementGen) {
	t.Helper()
	users := &memUserRepo{users: map[string]*entity.User{
		studentID: {ID: studentID, Role: entity.RoleStudent, ParentID: parentID, FirstName: "Juan", LastName: "García"},
		parentID:  {ID: parentID, Role: entity.RoleParent, ChildID: studentID},
		cafID:     {ID: cafID, Role: entity.RoleCafeteria},
		otherID:   {ID: otherID, Role: entity.RoleParent, ChildID: "otro-hijo"},
	}}
	tokens := &memTokenRepo{}
	gen := &fakeStatementGen{}
	return wallet.NewUseCase(users, tokens, gen), users, tokens, gen
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestBalance_EmpiezaEnCero(t *testing.T) {
	uc, _, _, _ := newWallet(t)
	out, err := uc.Balance(context.Background(), studentID, studentID)
	require.NoError(t, err)
	assert.True(t, out.Balance.IsZero())
}

func TestBalance_UsuarioInexistente(t *testing.T) {
	uc, _, _, _ := newWallet(t)
	_, err := uc.Balance(context.Background(), "no-existe", "no-existe")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

// El saldo y el historial no son públicos: solo el propio usuario, su
// representante vinculado o la cafetería pueden leerlos.
func TestBalance_AutorizacionDeLectura(t *testing.T) {
	uc, _, _, _ := newWallet(t)
	ctx := context.Background()

	for _, requester := range []string{studentID, parentID, cafID} {
		_, err := uc.Balance(ctx, studentID, requester)
		assert.NoError(t, err, "requester %s", requester)
	}
	_, err := uc.Balance(ctx, studentID, otherID)
	assert.ErrorIs(t, err, domain.ErrForbidden, "un representante ajeno no puede leer el saldo")
}

func TestTransactions_AjenoNoPuedeLeerHistorial(t *testing.T) {
	uc, _, _, _ := newWallet(t)
	ctx := context.Background()

	_, err := uc.Transactions(ctx, studentID, otherID)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = uc.Transactions(ctx, studentID, parentID)
	assert.NoError(t, err, "el representante vinculado sí puede")
}

func TestRecharge_PropioUsuario(t *testing.T) {
	uc, _, _, _ := newWallet(t)
	out, err := uc.Recharge(context.Background(), studentID, studentID, dto.RechargeRequest{Amount: dec("100.00")})
	require.NoError(t, err)
	assert.Equal(t, entity.TransactionRecharge, out.Type)
	assert.True(t, out.Amount.Equal(dec("100.00")))
}

func TestRecharge_RepresentanteVinculado(t *testing.T) {
	uc, _, _, _ := newWallet(t)
	_, err := uc.Recharge(context.Background(), studentID, parentID, dto.RechargeRequest{Amount: dec("50.00")})
	assert.NoError(t, err)
}

func TestRecharge_AjenoNoPuede(t *testing.T) {
	uc, _, _, _ := newWallet(t)
	_, err := uc.Recharge(context.Background(), studentID, otherID, dto.RechargeRequest{Amount: dec("50.00")})
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestRecharge_MontoNoPositivo(t *testing.T) {
	uc, _, _, _ := newWallet(t)
	for _, amount := range []string{"0", "-10.00"} {
		_, err := uc.Recharge(context.Background(), studentID, studentID, dto.RechargeRequest{Amount: dec(amount)})
		assert.ErrorIs(t, err, domain.ErrInvalidInput, "monto %s", amount)
	}
}

// Escenario del libro completo: 0 → recarga 100 → compra 60 → reembolso 60.
// El saldo siempre es la suma de los asientos, nunca un valor almacenado.
func TestLibro_SaldoDerivado(t *testing.T) {
	uc, users, tokens, _ := newWallet(t)
	ctx := context.Background()

	_, err := uc.Recharge(ctx, studentID, studentID, dto.RechargeRequest{Amount: dec("100.00")})
	require.NoError(t, err)

	_, err = uc.DebitInTx(ctx, users, tokens, studentID, dec("60.00"))
	require.NoError(t, err)
	b, _ := tokens.GetBalance(ctx, studentID)
	assert.True(t, b.Equal(dec("40.00")))

	_, err = uc.CreditInTx(ctx, users, tokens, studentID, dec("60.00"))
	require.NoError(t, err)
	b, _ = tokens.GetBalance(ctx, studentID)
	assert.True(t, b.Equal(dec("100.00")))

	list, err := uc.Transactions(ctx, studentID, studentID)
	require.NoError(t, err)
	require.Len(t, list.Items, 3)
	assert.True(t, list.Items[1].Amount.Equal(dec("-60.00")), "la compra se asienta con signo negativo")
}

func TestDebitInTx_SaldoInsuficienteNoAsienta(t *testing.T) {
	uc, users, tokens, _ := newWallet(t)
	ctx := context.Background()

	_, err := uc.Recharge(ctx, studentID, studentID, dto.RechargeRequest{Amount: dec("10.00")})
	require.NoError(t, err)

	_, err = uc.DebitInTx(ctx, users, tokens, studentID, dec("60.00"))
	assert.ErrorIs(t, err, domain.ErrInsufficientFunds)

	list, err := tokens.ListByUser(ctx, studentID)
	require.NoError(t, err)
	assert.Len(t, list, 1, "el débito fallido no debe dejar asiento")
}

func TestStatement_Autorizacion(t *testing.T) {
	uc, _, _, gen := newWallet(t)
	ctx := context.Background()

	// Propio usuario, representante vinculado y cafetería pueden.
	for _, requester := range []string{studentID, parentID, cafID} {
		pdf, err := uc.Statement(ctx, studentID, requester)
		require.NoError(t, err, "requester %s", requester)
		assert.NotEmpty(t, pdf)
	}
	assert.Equal(t, 3, gen.calls)

	// Un representante de otro estudiante no.
	_, err := uc.Statement(ctx, studentID, otherID)
	assert.ErrorIs(t, err, domain.ErrForbidden)
}
