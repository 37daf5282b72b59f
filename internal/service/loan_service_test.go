package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tooltrack/internal/model"
	"tooltrack/internal/repository"
)

func TestCheckout_ToolStaysActive(t *testing.T) {
	e := newEnv(t)
	p := e.seedProduct(t, "DRILL-1", "D1", 2, model.CategoryTool)
	emp := e.seedEmployee(t, "JUAN PEREZ")

	loan, err := e.loan.Checkout(testCtx(), CheckoutRequest{ProductCode: "d1", EmployeeID: emp.ID})
	require.NoError(t, err)

	assert.Equal(t, model.LoanActive, loan.Status)
	assert.Nil(t, loan.ReturnedAt)
	assert.Equal(t, "DRILL-1", loan.ProductCode)
	assert.Equal(t, "JUAN PEREZ", loan.HolderName)
	assert.Equal(t, 1, e.stockOf(t, p.ID))

	entries, _, err := e.ledger.History(context.Background(), historyFilter(&p.ID, "", 0))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, model.ActionLoanCheckout, entries[0].Action)
}

func TestCheckout_ConsumableIsConsumed(t *testing.T) {
	e := newEnv(t)
	p := e.seedProduct(t, "GLOVE", "", 3, model.CategoryConsumable)
	emp := e.seedEmployee(t, "ANA")

	loan, err := e.loan.Checkout(testCtx(), CheckoutRequest{ProductID: &p.ID, EmployeeID: emp.ID})
	require.NoError(t, err)
	assert.Equal(t, model.LoanConsumed, loan.Status)
	assert.NotNil(t, loan.ReturnedAt)
	assert.Equal(t, 2, e.stockOf(t, p.ID))

	_, err = e.loan.Return(testCtx(), loan.ID)
	assert.ErrorIs(t, err, ErrInvalidState)
	assert.Equal(t, 2, e.stockOf(t, p.ID))
}

func TestCheckout_Rejections(t *testing.T) {
	e := newEnv(t)
	empty := e.seedProduct(t, "EMPTY", "", 0, model.CategoryTool)
	stocked := e.seedProduct(t, "STOCKED", "", 1, model.CategoryTool)
	emp := e.seedEmployee(t, "ANA")

	_, err := e.loan.Checkout(testCtx(), CheckoutRequest{ProductID: &empty.ID, EmployeeID: emp.ID})
	assert.ErrorIs(t, err, ErrInsufficientStock)
	assert.Equal(t, 0, e.stockOf(t, empty.ID))

	_, err = e.loan.Checkout(testCtx(), CheckoutRequest{ProductCode: "UNKNOWN", EmployeeID: emp.ID})
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = e.loan.Checkout(testCtx(), CheckoutRequest{ProductID: &stocked.ID, EmployeeID: uuid.New()})
	assert.ErrorIs(t, err, ErrUnknownHolder)
	assert.Equal(t, 1, e.stockOf(t, stocked.ID))

	_, err = e.loan.Checkout(testCtx(), CheckoutRequest{EmployeeID: emp.ID})
	assert.ErrorIs(t, err, ErrValidation)

	loans, err := e.loan.List(context.Background(), repository.LoanFilter{})
	require.NoError(t, err)
	assert.Empty(t, loans)
	assert.Zero(t, e.ledgerCount(t, empty.ID))
	assert.Zero(t, e.ledgerCount(t, stocked.ID))
}

func TestReturn_OnceOnly(t *testing.T) {
	e := newEnv(t)
	p := e.seedProduct(t, "DRILL-1", "", 1, model.CategoryTool)
	emp := e.seedEmployee(t, "ANA")
	loan, err := e.loan.Checkout(testCtx(), CheckoutRequest{ProductID: &p.ID, EmployeeID: emp.ID})
	require.NoError(t, err)
	assert.Equal(t, 0, e.stockOf(t, p.ID))

	returned, err := e.loan.Return(testCtx(), loan.ID)
	require.NoError(t, err)
	assert.Equal(t, model.LoanReturned, returned.Status)
	assert.NotNil(t, returned.ReturnedAt)
	assert.Equal(t, 1, e.stockOf(t, p.ID))

	_, err = e.loan.Return(testCtx(), loan.ID)
	assert.ErrorIs(t, err, ErrInvalidState)
	assert.Equal(t, 1, e.stockOf(t, p.ID))

	_, err = e.loan.Return(testCtx(), uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestReturn_AfterProductDeleted(t *testing.T) {
	e := newEnv(t)
	p := e.seedProduct(t, "DRILL-1", "", 1, model.CategoryTool)
	emp := e.seedEmployee(t, "ANA")
	loan, err := e.loan.Checkout(testCtx(), CheckoutRequest{ProductID: &p.ID, EmployeeID: emp.ID})
	require.NoError(t, err)

	require.NoError(t, e.inventory.DeleteProduct(testCtx(), p.ID))

	returned, err := e.loan.Return(testCtx(), loan.ID)
	require.NoError(t, err)
	assert.Equal(t, model.LoanReturned, returned.Status)
	assert.Equal(t, "DRILL-1", returned.ProductCode)

	active, err := e.loan.List(context.Background(), repository.LoanFilter{Status: model.LoanActive})
	require.NoError(t, err)
	assert.Empty(t, active)
}
