package reports

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stockflow/inventory_backend/config"
	"github.com/stockflow/inventory_backend/models"
	"github.com/stockflow/inventory_backend/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) context.Context {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.Use(config.NewTenantGuardPlugin()))

	config.SetDB(db)
	require.NoError(t, models.MigrateTable())

	return utils.SetBusinessIdInContext(context.Background(), uuid.NewString())
}

func dec(s string) decimal.Decimal {
	d, _ := decimal.NewFromString(s)
	return d
}

func saleInput(name string, kind models.TransactionKind, paymentType models.PaymentType, total string) *models.NewSale {
	return &models.NewSale{
		ClientName:  name,
		Kind:        kind,
		PaymentType: paymentType,
		SaleDate:    time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		TotalAmount: dec(total),
	}
}

func TestDashboardReceivablesExcludeCashDirectSales(t *testing.T) {
	ctx := setupTestDB(t)

	// order transaction with outstanding balance
	_, err := models.CreateSale(ctx, saleInput("Aung Trading", models.TransactionKindOrder, models.PaymentTypeCredit, "1000"))
	require.NoError(t, err)

	// cash direct sale with an unpaid balance never counts
	_, err = models.CreateSale(ctx, saleInput("Walk-in", models.TransactionKindDirect, models.PaymentTypeCash, "500"))
	require.NoError(t, err)

	// opening balance sits on top
	_, err = models.CreateClient(ctx, &models.NewClient{
		Name:           "Opening Co",
		OpeningBalance: dec("200"),
	})
	require.NoError(t, err)

	report, err := GetDashboardReport(ctx)
	require.NoError(t, err)
	assert.True(t, dec("1200").Equal(report.TotalReceivables), "receivables: want 1200 got %s", report.TotalReceivables)
}

func TestDashboardIncludesCreditDirectSales(t *testing.T) {
	ctx := setupTestDB(t)

	_, err := models.CreateSale(ctx, saleInput("Aung Trading", models.TransactionKindDirect, models.PaymentTypeCredit, "800"))
	require.NoError(t, err)

	report, err := GetDashboardReport(ctx)
	require.NoError(t, err)
	assert.True(t, dec("800").Equal(report.TotalReceivables), "receivables: got %s", report.TotalReceivables)
}

func TestDashboardPayablesMirrorRule(t *testing.T) {
	ctx := setupTestDB(t)

	_, err := models.CreatePurchase(ctx, &models.NewPurchase{
		SupplierName: "Golden Mills",
		Kind:         models.TransactionKindOrder,
		PaymentType:  models.PaymentTypeCredit,
		PurchaseDate: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		TotalAmount:  dec("3000"),
	})
	require.NoError(t, err)
	_, err = models.CreatePurchase(ctx, &models.NewPurchase{
		SupplierName: "Cash Vendor",
		Kind:         models.TransactionKindDirect,
		PaymentType:  models.PaymentTypeCash,
		PurchaseDate: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		TotalAmount:  dec("999"),
	})
	require.NoError(t, err)

	report, err := GetDashboardReport(ctx)
	require.NoError(t, err)
	assert.True(t, dec("3000").Equal(report.TotalPayables), "payables: got %s", report.TotalPayables)
}

func TestDashboardOverdueEvaluatedAgainstClock(t *testing.T) {
	ctx := setupTestDB(t)

	input := saleInput("Aung Trading", models.TransactionKindOrder, models.PaymentTypeCredit, "1000")
	past := time.Now().UTC().Add(-24 * time.Hour)
	input.DueDate = &past
	_, err := models.CreateSale(ctx, input)
	require.NoError(t, err)

	report, err := GetDashboardReport(ctx)
	require.NoError(t, err)
	assert.True(t, dec("1000").Equal(report.OverdueReceivables), "overdue: got %s", report.OverdueReceivables)
}

func TestDashboardLowStockCount(t *testing.T) {
	ctx := setupTestDB(t)

	_, err := models.CreateProduct(ctx, &models.NewProduct{
		Name:         "Low Item",
		StockQty:     dec("2"),
		ReorderLevel: dec("5"),
	})
	require.NoError(t, err)
	_, err = models.CreateProduct(ctx, &models.NewProduct{
		Name:         "Healthy Item",
		StockQty:     dec("50"),
		ReorderLevel: dec("5"),
	})
	require.NoError(t, err)

	report, err := GetDashboardReport(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), report.LowStockCount)
	assert.Equal(t, int64(2), report.ProductCount)
}

func TestSalesSummaryRollup(t *testing.T) {
	ctx := setupTestDB(t)

	s1, err := models.CreateSale(ctx, saleInput("Aung Trading", models.TransactionKindOrder, models.PaymentTypeCredit, "1000"))
	require.NoError(t, err)
	_, err = models.CreateSale(ctx, saleInput("Aung Trading", models.TransactionKindOrder, models.PaymentTypeCredit, "2000"))
	require.NoError(t, err)
	_, err = models.ApplySalePayment(ctx, s1.ID, &models.NewPayment{Amount: dec("400")})
	require.NoError(t, err)

	summary, err := GetSalesSummary(ctx)
	require.NoError(t, err)
	require.Len(t, summary, 3)

	byStatus := map[models.PaymentStatus]StatusRollup{}
	for _, r := range summary {
		byStatus[r.Status] = r
	}
	assert.Equal(t, 1, byStatus[models.PaymentStatusPending].Count)
	assert.True(t, dec("2000").Equal(byStatus[models.PaymentStatusPending].AmountDue))
	assert.Equal(t, 1, byStatus[models.PaymentStatusPartial].Count)
	assert.True(t, dec("600").Equal(byStatus[models.PaymentStatusPartial].AmountDue))
	assert.Equal(t, 0, byStatus[models.PaymentStatusPaid].Count)
}
