package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tooltrack/internal/model"
)

func strptr(s string) *string { return &s }

func TestResolve_OrderOfPrecedence(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	// "X1" is the short code of one product and the primary code of another.
	byShort := e.seedProduct(t, "PRIM-A", "X1", 0, model.CategoryTool)
	byPrimary := e.seedProduct(t, "X1", "", 0, model.CategoryTool)
	mapped := e.seedProduct(t, "PRIM-C", "", 0, model.CategoryTool)
	_, err := e.mapping.Create(ctx, CreateMappingRequest{SupplierID: "SUP1", Code: "X1", ProductID: mapped.ID})
	require.NoError(t, err)

	res, err := e.resolver.Resolve(ctx, "x1", strptr("SUP1"))
	require.NoError(t, err)
	assert.Equal(t, mapped.ID, res.Product.ID)
	assert.Equal(t, StrategySupplierMapping, res.Via)

	res, err = e.resolver.Resolve(ctx, "x1", nil)
	require.NoError(t, err)
	assert.Equal(t, byShort.ID, res.Product.ID)
	assert.Equal(t, StrategyShortCode, res.Via)

	res, err = e.resolver.Resolve(ctx, "prim-a", nil)
	require.NoError(t, err)
	assert.Equal(t, byShort.ID, res.Product.ID)
	assert.Equal(t, StrategyPrimaryCode, res.Via)

	assert.NotEqual(t, byPrimary.ID, byShort.ID)
}

func TestResolve_UnresolvedIsNotAnError(t *testing.T) {
	e := newEnv(t)

	res, err := e.resolver.Resolve(context.Background(), "NOPE", nil)
	require.NoError(t, err)
	assert.False(t, res.Resolved())
	assert.Equal(t, "NOPE", res.Code)
}

func TestResolve_EmptyCode(t *testing.T) {
	e := newEnv(t)

	_, err := e.resolver.Resolve(context.Background(), "  ", nil)
	assert.ErrorIs(t, err, ErrValidation)

	_, err = e.resolver.Resolve(context.Background(), "A1", strptr(" "))
	assert.ErrorIs(t, err, ErrValidation)
}

func TestResolve_SupplierScopedHitPersistsMappingOnce(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	p := e.seedProduct(t, "DRILL-001", "P100", 0, model.CategoryTool)

	first, err := e.resolver.Resolve(ctx, "p100", strptr("sup1"))
	require.NoError(t, err)
	assert.Equal(t, StrategyShortCode, first.Via)
	assert.True(t, first.MappingCreated)

	second, err := e.resolver.Resolve(ctx, "P100", strptr("SUP1"))
	require.NoError(t, err)
	assert.Equal(t, p.ID, second.Product.ID)
	assert.Equal(t, StrategySupplierMapping, second.Via)
	assert.False(t, second.MappingCreated)

	assert.Equal(t, int64(1), e.mappingCount(t, "SUP1", "P100"))
}

func TestResolve_UnscopedNeverWrites(t *testing.T) {
	e := newEnv(t)
	e.seedProduct(t, "DRILL-001", "P100", 0, model.CategoryTool)

	_, err := e.resolver.Resolve(context.Background(), "P100", nil)
	require.NoError(t, err)

	var n int64
	require.NoError(t, e.db.Model(&model.SupplierCode{}).Count(&n).Error)
	assert.Zero(t, n)
}

func TestResolve_ExistingMappingBeatsShortCode(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	shortHit := e.seedProduct(t, "A", "P100", 0, model.CategoryTool)
	other := e.seedProduct(t, "B", "", 0, model.CategoryTool)

	// Pair already mapped by an earlier writer.
	require.NoError(t, e.db.Create(&model.SupplierCode{SupplierID: "SUP1", Code: "P100", ProductID: other.ID}).Error)

	res, err := e.resolver.Resolve(ctx, "P100", strptr("SUP1"))
	require.NoError(t, err)
	assert.Equal(t, other.ID, res.Product.ID)
	assert.NotEqual(t, shortHit.ID, res.Product.ID)
	assert.Equal(t, int64(1), e.mappingCount(t, "SUP1", "P100"))
}
