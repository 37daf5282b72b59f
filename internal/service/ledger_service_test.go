package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tooltrack/internal/model"
)

func TestApplyDelta_WritesStockAndEntryTogether(t *testing.T) {
	e := newEnv(t)
	p := e.seedProduct(t, "ABC-1", "", 5, model.CategoryConsumable)

	entry, err := e.ledger.ApplyDelta(testCtx(), DeltaRequest{ProductID: p.ID, Delta: 3, Action: model.ActionManualAdjust})
	require.NoError(t, err)

	assert.Equal(t, 8, e.stockOf(t, p.ID))
	assert.Equal(t, 5, entry.StockBefore)
	assert.Equal(t, 8, entry.StockAfter)
	assert.Equal(t, 3, entry.Delta)
	assert.Equal(t, "Tester", entry.Actor)
	assert.Equal(t, "ABC-1", entry.ProductCode)
	assert.Equal(t, int64(1), e.ledgerCount(t, p.ID))
	assert.Equal(t, 1, e.notifier.Count())
}

func TestApplyDelta_RejectsNegativeStock(t *testing.T) {
	e := newEnv(t)
	p := e.seedProduct(t, "ABC-1", "", 2, model.CategoryConsumable)

	_, err := e.ledger.ApplyDelta(testCtx(), DeltaRequest{ProductID: p.ID, Delta: -3, Action: model.ActionManualAdjust})
	assert.ErrorIs(t, err, ErrInsufficientStock)

	assert.Equal(t, 2, e.stockOf(t, p.ID))
	assert.Zero(t, e.ledgerCount(t, p.ID))
	assert.Zero(t, e.notifier.Count())
}

func TestApplyDelta_DownToZeroIsAllowed(t *testing.T) {
	e := newEnv(t)
	p := e.seedProduct(t, "ABC-1", "", 2, model.CategoryConsumable)

	_, err := e.ledger.ApplyDelta(testCtx(), DeltaRequest{ProductID: p.ID, Delta: -2, Action: model.ActionManualAdjust})
	require.NoError(t, err)
	assert.Equal(t, 0, e.stockOf(t, p.ID))
}

func TestApplyDelta_UnknownProductAndBadInput(t *testing.T) {
	e := newEnv(t)

	_, err := e.ledger.ApplyDelta(testCtx(), DeltaRequest{ProductID: uuid.New(), Delta: 1, Action: model.ActionManualAdjust})
	assert.ErrorIs(t, err, ErrNotFound)

	p := e.seedProduct(t, "ABC-1", "", 2, model.CategoryConsumable)
	_, err = e.ledger.ApplyDelta(testCtx(), DeltaRequest{ProductID: p.ID, Delta: 0, Action: model.ActionManualAdjust})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = e.ledger.ApplyDelta(testCtx(), DeltaRequest{ProductID: p.ID, Delta: 1})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestApplyDelta_DefaultActor(t *testing.T) {
	e := newEnv(t)
	p := e.seedProduct(t, "ABC-1", "", 0, model.CategoryConsumable)

	entry, err := e.ledger.ApplyDelta(context.Background(), DeltaRequest{ProductID: p.ID, Delta: 1, Action: model.ActionManualAdjust})
	require.NoError(t, err)
	assert.Equal(t, DefaultActorName, entry.Actor)
}

func TestLedgerEntriesAreImmutable(t *testing.T) {
	e := newEnv(t)
	p := e.seedProduct(t, "ABC-1", "", 0, model.CategoryConsumable)
	entry, err := e.ledger.ApplyDelta(testCtx(), DeltaRequest{ProductID: p.ID, Delta: 1, Action: model.ActionManualAdjust})
	require.NoError(t, err)

	err = e.db.Model(entry).Update("delta", 99).Error
	assert.ErrorIs(t, err, model.ErrLedgerImmutable)

	err = e.db.Delete(entry).Error
	assert.ErrorIs(t, err, model.ErrLedgerImmutable)

	assert.Equal(t, int64(1), e.ledgerCount(t, p.ID))
}

func TestHistoryFilters(t *testing.T) {
	e := newEnv(t)
	a := e.seedProduct(t, "A", "", 0, model.CategoryConsumable)
	b := e.seedProduct(t, "B", "", 0, model.CategoryConsumable)
	for i := 0; i < 3; i++ {
		_, err := e.ledger.ApplyDelta(testCtx(), DeltaRequest{ProductID: a.ID, Delta: 1, Action: model.ActionManualAdjust})
		require.NoError(t, err)
	}
	_, err := e.ledger.ApplyDelta(testCtx(), DeltaRequest{ProductID: b.ID, Delta: 1, Action: model.ActionBulkAudit})
	require.NoError(t, err)

	entries, total, err := e.ledger.History(context.Background(), historyFilter(&a.ID, "", 2))
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, entries, 2)

	_, total, err = e.ledger.History(context.Background(), historyFilter(nil, model.ActionBulkAudit, 0))
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
}

// Any sequence of deltas leaves stock >= 0, and the ledger has exactly one
// entry per accepted delta whose sum equals the final stock.
func TestProperty_StockNeverNegative(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("stock stays non-negative and ledger sums to stock", prop.ForAll(
		func(start int, deltas []int) bool {
			e := newEnv(t)
			p := e.seedProduct(t, "P", "", start, model.CategoryConsumable)

			accepted := 0
			for _, d := range deltas {
				if d == 0 {
					continue
				}
				_, err := e.ledger.ApplyDelta(testCtx(), DeltaRequest{ProductID: p.ID, Delta: d, Action: model.ActionManualAdjust})
				if err == nil {
					accepted++
				}
			}

			stock := e.stockOf(t, p.ID)
			var sum int
			e.db.Model(&model.LedgerEntry{}).Where("product_id = ?", p.ID).Select("COALESCE(SUM(delta), 0)").Scan(&sum)
			return stock >= 0 && start+sum == stock && e.ledgerCount(t, p.ID) == int64(accepted)
		},
		gen.IntRange(0, 10),
		gen.SliceOf(gen.IntRange(-6, 6)),
	))

	properties.TestingRun(t)
}
