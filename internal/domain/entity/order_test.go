package entity_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/jcastell/cafeteria-api/internal/domain/entity"
)

func TestOrderStatus_Transiciones(t *testing.T) {
	cases := []struct {
		from, to entity.OrderStatus
		ok       bool
	}{
		{entity.StatusPendingApproval, entity.StatusPendingPayment, true},
		{entity.StatusPendingApproval, entity.StatusRejectedByParent, true},
		{entity.StatusPendingApproval, entity.StatusApproved, false},
		{entity.StatusPendingPayment, entity.StatusApproved, true},
		{entity.StatusPendingPayment, entity.StatusPendingApproval, false},
		{entity.StatusApproved, entity.StatusPreparing, true},
		{entity.StatusApproved, entity.StatusReadyForPickup, false},
		{entity.StatusPreparing, entity.StatusReadyForPickup, true},
		{entity.StatusReadyForPickup, entity.StatusCompleted, true},
		{entity.StatusCompleted, entity.StatusCancelledByCafeteria, false},
		{entity.StatusRejectedByParent, entity.StatusPendingApproval, false},
		{entity.StatusCancelledByCafeteria, entity.StatusPendingApproval, false},
	}
	for _, c := range cases {
		assert.Equal(t, c.ok, c.from.CanTransition(c.to), "%s → %s", c.from, c.to)
	}
}

// Todo estado no terminal admite cancelación por la cafetería.
func TestOrderStatus_CancelacionDesdeNoTerminales(t *testing.T) {
	nonTerminal := []entity.OrderStatus{
		entity.StatusPendingApproval, entity.StatusPendingPayment,
		entity.StatusApproved, entity.StatusPreparing, entity.StatusReadyForPickup,
	}
	for _, s := range nonTerminal {
		assert.True(t, s.CanTransition(entity.StatusCancelledByCafeteria), "desde %s", s)
	}
}

func TestOrderStatus_Terminales(t *testing.T) {
	terminal := []entity.OrderStatus{
		entity.StatusCompleted, entity.StatusRejectedByParent, entity.StatusCancelledByCafeteria,
	}
	for _, s := range terminal {
		assert.True(t, s.IsTerminal(), "%s debe ser terminal", s)
	}
	assert.False(t, entity.StatusPendingApproval.IsTerminal())
}

func TestOrderStatus_AdvanceNext(t *testing.T) {
	next, ok := entity.StatusApproved.AdvanceNext()
	assert.True(t, ok)
	assert.Equal(t, entity.StatusPreparing, next)

	_, ok = entity.StatusPendingPayment.AdvanceNext()
	assert.False(t, ok, "el avance de preparación empieza en approved")

	_, ok = entity.StatusCompleted.AdvanceNext()
	assert.False(t, ok)
}

func TestOrderStatus_Debited(t *testing.T) {
	assert.True(t, entity.StatusApproved.Debited())
	assert.True(t, entity.StatusCompleted.Debited())
	assert.False(t, entity.StatusPendingPayment.Debited())
	assert.False(t, entity.StatusRejectedByParent.Debited())
}

func TestOrderItem_Subtotal(t *testing.T) {
	item := entity.OrderItem{UnitPrice: decimal.RequireFromString("25.00"), Quantity: 2}
	assert.True(t, item.Subtotal().Equal(decimal.RequireFromString("50.00")))
}

func TestUser_IsParentOf(t *testing.T) {
	parent := &entity.User{Role: entity.RoleParent, ChildID: "s1"}
	assert.True(t, parent.IsParentOf("s1"))
	assert.False(t, parent.IsParentOf("s2"))

	student := &entity.User{Role: entity.RoleStudent, ChildID: "s1"}
	assert.False(t, student.IsParentOf("s1"), "solo el rol parent vincula")

	unlinked := &entity.User{Role: entity.RoleParent}
	assert.False(t, unlinked.IsParentOf(""))
}
