package models

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stockflow/inventory_backend/config"
	"github.com/stockflow/inventory_backend/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTenantGuardScopesQueries(t *testing.T) {
	ctxA := setupTestDB(t)
	ctxB := utils.SetBusinessIdInContext(context.Background(), uuid.NewString())

	_, err := CreateSale(ctxA, newSaleInput("A Trading", "100"))
	require.NoError(t, err)
	_, err = CreateSale(ctxB, newSaleInput("B Trading", "200"))
	require.NoError(t, err)

	// no explicit tenant filter: the guard injects one from the context
	db := config.GetDB()
	var sales []Sale
	require.NoError(t, db.WithContext(ctxA).Find(&sales).Error)
	require.Len(t, sales, 1)
	assert.True(t, dec("100").Equal(sales[0].TotalAmount))
}

func TestTenantGuardBypassSeesAllTenants(t *testing.T) {
	ctxA := setupTestDB(t)
	ctxB := utils.SetBusinessIdInContext(context.Background(), uuid.NewString())

	_, err := CreateSale(ctxA, newSaleInput("A Trading", "100"))
	require.NoError(t, err)
	_, err = CreateSale(ctxB, newSaleInput("B Trading", "200"))
	require.NoError(t, err)

	skipCtx := utils.SetSkipTenantScopeInContext(ctxA, true)
	db := config.GetDB()
	var sales []Sale
	require.NoError(t, db.WithContext(skipCtx).Find(&sales).Error)
	assert.Len(t, sales, 2)
}
