package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tooltrack/internal/model"
)

func TestEmployeeLifecycle(t *testing.T) {
	e := newEnv(t)
	ctx := testCtx()

	emp, err := e.employee.CreateEmployee(ctx, EmployeeRequest{Name: "  juan perez ", EmployeeNumber: "E-7"})
	require.NoError(t, err)
	assert.Equal(t, "JUAN PEREZ", emp.Name)

	_, err = e.employee.CreateEmployee(ctx, EmployeeRequest{Name: ""})
	assert.ErrorIs(t, err, ErrValidation)

	updated, err := e.employee.UpdateEmployee(ctx, emp.ID, EmployeeRequest{Name: "juan p"})
	require.NoError(t, err)
	assert.Equal(t, "JUAN P", updated.Name)

	all, err := e.employee.GetAllEmployees(context.Background())
	require.NoError(t, err)
	assert.Len(t, all, 1)

	require.NoError(t, e.employee.DeleteEmployee(ctx, emp.ID))
	assert.ErrorIs(t, e.employee.DeleteEmployee(ctx, emp.ID), ErrNotFound)
	_, err = e.employee.UpdateEmployee(ctx, uuid.New(), EmployeeRequest{Name: "x"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestEmployeeProfileCounts(t *testing.T) {
	e := newEnv(t)
	emp := e.seedEmployee(t, "ANA")
	drill := e.seedProduct(t, "DRILL", "", 2, model.CategoryTool)
	glove := e.seedProduct(t, "GLOVE", "", 2, model.CategoryConsumable)

	first, err := e.loan.Checkout(testCtx(), CheckoutRequest{ProductID: &drill.ID, EmployeeID: emp.ID})
	require.NoError(t, err)
	_, err = e.loan.Checkout(testCtx(), CheckoutRequest{ProductID: &drill.ID, EmployeeID: emp.ID})
	require.NoError(t, err)
	_, err = e.loan.Checkout(testCtx(), CheckoutRequest{ProductID: &glove.ID, EmployeeID: emp.ID})
	require.NoError(t, err)
	_, err = e.loan.Return(testCtx(), first.ID)
	require.NoError(t, err)

	profile, err := e.employee.GetProfile(context.Background(), emp.ID)
	require.NoError(t, err)
	assert.Equal(t, "ANA", profile.Employee.Name)
	assert.Len(t, profile.Loans, 3)
	assert.Equal(t, int64(1), profile.Active)
	assert.Equal(t, int64(1), profile.Returned)
	assert.Equal(t, int64(3), profile.Total)

	_, err = e.employee.GetProfile(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}
