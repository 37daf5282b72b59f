//go:build integration

package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"tooltrack/internal/model"
	"tooltrack/internal/testutil"
	"tooltrack/pkg/database"
)

func newPostgresEnv(t *testing.T) *env {
	t.Helper()
	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:15",
		postgres.WithDatabase("tooltrack"),
		postgres.WithUsername("user"),
		postgres.WithPassword("password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := database.Open(database.Options{Driver: "postgres", DSN: dsn, LogLevel: logger.Silent})
	require.NoError(t, err)
	require.NoError(t, database.RunMigrations(db, testutil.Logger()))
	return newEnvOn(db, QuantityReject)
}

func TestPostgres_ConcurrentDeltasNeverOversell(t *testing.T) {
	e := newPostgresEnv(t)
	p := e.seedProduct(t, "DRILL-1", "", 10, model.CategoryTool)

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
	)
	for i := 0; i < 25; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := e.ledger.ApplyDelta(testCtx(), DeltaRequest{ProductID: p.ID, Delta: -1, Action: model.ActionManualAdjust})
			if err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
				return
			}
			assert.ErrorIs(t, err, ErrInsufficientStock)
		}()
	}
	wg.Wait()

	assert.Equal(t, 10, succeeded)
	assert.Equal(t, 0, e.stockOf(t, p.ID))
	assert.Equal(t, int64(10), e.ledgerCount(t, p.ID))
}

func TestPostgres_StockCheckConstraint(t *testing.T) {
	e := newPostgresEnv(t)
	p := e.seedProduct(t, "GLOVE", "", 1, model.CategoryConsumable)

	err := e.db.Model(&model.Product{}).Where("id = ?", p.ID).Update("stock", -1).Error
	assert.Error(t, err)
	assert.Equal(t, 1, e.stockOf(t, p.ID))
}

func TestPostgres_ConcurrentResolveMapsOnce(t *testing.T) {
	e := newPostgresEnv(t)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := e.invoice.ResolveUnmatched(testCtx(), []MappingDecision{{
				Action:     DecisionCreate,
				SupplierID: "ACME",
				Code:       "NEW-1",
				Quantity:   2,
				NewProduct: &NewProductInput{Description: "Broca 1/4"},
			}})
			if assert.NoError(t, err) {
				assert.Empty(t, res.Failed)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(1), e.mappingCount(t, "ACME", "NEW-1"))
	var products []model.Product
	require.NoError(t, e.db.Where("code = ?", "NEW-1").Find(&products).Error)
	require.Len(t, products, 1)
	assert.Equal(t, 16, products[0].Stock)
}

func TestPostgres_InvoiceImportResolvesPerSupplier(t *testing.T) {
	e := newPostgresEnv(t)
	p := e.seedProduct(t, "HAM-01", "H1", 0, model.CategoryTool)

	res, err := e.invoice.Import(testCtx(), InvoiceInput{
		SupplierID: "acme",
		Lines: []InvoiceLine{
			{Code: "h1", Quantity: decimal.NewFromInt(3)},
			{Code: "zz-9", Quantity: decimal.NewFromInt(1)},
		},
	})
	require.NoError(t, err)
	assert.Len(t, res.Applied, 1)
	assert.Len(t, res.Unresolved, 1)
	assert.Equal(t, 3, e.stockOf(t, p.ID))
	assert.Equal(t, int64(1), e.mappingCount(t, "ACME", "H1"))

	var n int64
	require.NoError(t, e.db.Session(&gorm.Session{}).Model(&model.LedgerEntry{}).Count(&n).Error)
	assert.Equal(t, int64(1), n)
}
