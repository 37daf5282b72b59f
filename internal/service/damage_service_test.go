package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tooltrack/internal/model"
)

func TestDamageReport(t *testing.T) {
	e := newEnv(t)
	p := e.seedProduct(t, "SAW-1", "", 3, model.CategoryTool)

	d, err := e.damage.Report(testCtx(), DamageRequest{ProductID: p.ID, Quantity: 2, Reason: "teeth broken", SpecificCode: "saw'1a"})
	require.NoError(t, err)
	assert.Equal(t, "SAW-1", d.ProductCode)
	assert.Equal(t, "SAW-1A", d.SpecificCode)
	assert.Equal(t, "Tester", d.ReportedBy)
	assert.Equal(t, 1, e.stockOf(t, p.ID))

	entries, _, err := e.ledger.History(context.Background(), historyFilter(&p.ID, model.ActionDamageReport, 0))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, -2, entries[0].Delta)
	assert.Contains(t, entries[0].Description, "SAW-1A")
}

func TestDamageReport_Rejections(t *testing.T) {
	e := newEnv(t)
	p := e.seedProduct(t, "SAW-1", "", 1, model.CategoryTool)

	_, err := e.damage.Report(testCtx(), DamageRequest{ProductID: p.ID, Quantity: 2, Reason: "x"})
	assert.ErrorIs(t, err, ErrInsufficientStock)

	_, err = e.damage.Report(testCtx(), DamageRequest{ProductID: p.ID, Quantity: 0, Reason: "x"})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = e.damage.Report(testCtx(), DamageRequest{ProductID: p.ID, Quantity: 1})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = e.damage.Report(testCtx(), DamageRequest{ProductID: uuid.New(), Quantity: 1, Reason: "x"})
	assert.ErrorIs(t, err, ErrNotFound)

	logs, total, err := e.damage.List(context.Background(), 10, 0)
	require.NoError(t, err)
	assert.Empty(t, logs)
	assert.Zero(t, total)
	assert.Equal(t, 1, e.stockOf(t, p.ID))
}
