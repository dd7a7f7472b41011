package models

import (
	"testing"
	"time"

	"github.com/stockflow/inventory_backend/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecomputeClientBalances(t *testing.T) {
	ctx := setupTestDB(t)

	sale, err := CreateSale(ctx, newSaleInput("Aung Trading", "5000"))
	require.NoError(t, err)
	_, err = CreateSale(ctx, newSaleInput("Aung Trading", "3000"))
	require.NoError(t, err)
	_, err = ApplySalePayment(ctx, sale.ID, &NewPayment{Amount: dec("5000")})
	require.NoError(t, err)

	client, err := RecomputeClientBalances(ctx, sale.ClientId)
	require.NoError(t, err)
	assert.True(t, dec("3000").Equal(client.CurrentCredit), "current credit: got %s", client.CurrentCredit)
	assert.True(t, client.OverdueAmount.IsZero())
	assert.NotNil(t, client.LastReconciledAt)
}

func TestRecomputeIsIdempotent(t *testing.T) {
	ctx := setupTestDB(t)

	sale, err := CreateSale(ctx, newSaleInput("Aung Trading", "5000"))
	require.NoError(t, err)
	_, err = ApplySalePayment(ctx, sale.ID, &NewPayment{Amount: dec("2000")})
	require.NoError(t, err)

	first, err := RecomputeClientBalances(ctx, sale.ClientId)
	require.NoError(t, err)
	second, err := RecomputeClientBalances(ctx, sale.ClientId)
	require.NoError(t, err)

	assert.True(t, first.CurrentCredit.Equal(second.CurrentCredit))
	assert.True(t, first.OverdueAmount.Equal(second.OverdueAmount))
}

func TestRecomputeCountsOverdueLazily(t *testing.T) {
	ctx := setupTestDB(t)

	input := newSaleInput("Aung Trading", "1000")
	past := time.Now().UTC().Add(-48 * time.Hour)
	input.SaleDate = past
	input.DueDate = &past
	sale, err := CreateSale(ctx, input)
	require.NoError(t, err)

	client, err := RecomputeClientBalances(ctx, sale.ClientId)
	require.NoError(t, err)
	assert.True(t, dec("1000").Equal(client.CurrentCredit))
	assert.True(t, dec("1000").Equal(client.OverdueAmount), "overdue: got %s", client.OverdueAmount)
}

func TestRecomputeRepairsInconsistentAggregate(t *testing.T) {
	ctx := setupTestDB(t)

	sale, err := CreateSale(ctx, newSaleInput("Aung Trading", "5000"))
	require.NoError(t, err)

	// simulate a drifted aggregate left behind by a partial write
	db := config.GetDB()
	require.NoError(t, db.Model(&Client{}).
		Where("id = ?", sale.ClientId).
		Update("current_credit", "999999").Error)

	client, err := RecomputeClientBalances(ctx, sale.ClientId)
	require.NoError(t, err)
	assert.True(t, dec("5000").Equal(client.CurrentCredit), "repaired credit: got %s", client.CurrentCredit)
}

func TestRecomputeUpdatesCreditStatus(t *testing.T) {
	ctx := setupTestDB(t)

	_, err := CreateClient(ctx, &NewClient{Name: "Limited Co", CreditLimit: dec("1000")})
	require.NoError(t, err)

	_, err = CreateSale(ctx, newSaleInput("Limited Co", "900"))
	require.NoError(t, err)

	client, err := RecomputeClientBalances(ctx, mustClientId(t, ctx, "Limited Co"))
	require.NoError(t, err)
	assert.Equal(t, CreditStatusWarning, client.CreditStatus)
}

func TestReconcileAllCounterparties(t *testing.T) {
	ctx := setupTestDB(t)

	_, err := CreateSale(ctx, newSaleInput("Aung Trading", "5000"))
	require.NoError(t, err)
	_, err = CreatePurchase(ctx, &NewPurchase{
		SupplierName: "Golden Mills",
		Kind:         TransactionKindOrder,
		PaymentType:  PaymentTypeCredit,
		PurchaseDate: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		TotalAmount:  dec("7000"),
	})
	require.NoError(t, err)

	summary, err := ReconcileAllCounterparties(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.ClientsProcessed)
	assert.Equal(t, 1, summary.SuppliersProcessed)
	assert.Equal(t, 0, summary.Errors)

	suppliers, err := GetSuppliers(ctx, nil)
	require.NoError(t, err)
	require.Len(t, suppliers, 1)
	assert.True(t, dec("7000").Equal(suppliers[0].CurrentPayable), "payable: got %s", suppliers[0].CurrentPayable)
}

func TestRefreshOverdueFlags(t *testing.T) {
	ctx := setupTestDB(t)

	input := newSaleInput("Aung Trading", "1000")
	future := time.Now().UTC().Add(time.Hour)
	input.DueDate = &future
	sale, err := CreateSale(ctx, input)
	require.NoError(t, err)
	require.NotNil(t, sale.IsOverdue)
	require.False(t, *sale.IsOverdue)

	// move the due date into the past behind the stored flag's back
	db := config.GetDB()
	past := time.Now().UTC().Add(-time.Hour)
	require.NoError(t, db.Model(&Sale{}).
		Where("id = ?", sale.ID).
		UpdateColumn("due_date", past).Error)

	updated, err := RefreshOverdueFlags(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, updated)

	sale, err = GetSale(ctx, sale.ID)
	require.NoError(t, err)
	require.NotNil(t, sale.IsOverdue)
	assert.True(t, *sale.IsOverdue)
}
