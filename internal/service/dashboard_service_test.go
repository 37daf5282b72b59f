package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tooltrack/internal/model"
)

func TestDashboardStats(t *testing.T) {
	e := newEnv(t)
	dash := NewDashboardService(e.ledgerRep, 5)
	drill := e.seedProduct(t, "DRILL", "", 10, model.CategoryTool)
	e.seedProduct(t, "GLOVE", "", 2, model.CategoryConsumable)
	emp := e.seedEmployee(t, "ANA")

	_, err := e.loan.Checkout(testCtx(), CheckoutRequest{ProductID: &drill.ID, EmployeeID: emp.ID})
	require.NoError(t, err)
	_, err = e.damage.Report(testCtx(), DamageRequest{ProductID: drill.ID, Quantity: 3, Reason: "burnt"})
	require.NoError(t, err)

	stats, err := dash.GetDashboardStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.TotalProducts)
	assert.Equal(t, int64(1), stats.ToolCount)
	assert.Equal(t, int64(1), stats.ConsumableCount)
	assert.Equal(t, int64(1), stats.LowStockCount)
	assert.Equal(t, int64(8), stats.TotalUnits)
	assert.Equal(t, int64(1), stats.ActiveLoans)
	assert.Equal(t, int64(1), stats.EmployeeCount)
	assert.Equal(t, int64(3), stats.DamagedLast30d)
	assert.Equal(t, int64(2), stats.MovementsLast24h)

	_, err = dash.GetStockMovement(context.Background(), 0)
	assert.NoError(t, err)
}
