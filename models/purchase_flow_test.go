package models

import (
	"testing"
	"time"

	"github.com/stockflow/inventory_backend/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPurchaseInput(supplierName string, total string) *NewPurchase {
	return &NewPurchase{
		SupplierName: supplierName,
		Kind:         TransactionKindOrder,
		PaymentType:  PaymentTypeCredit,
		PurchaseDate: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		TotalAmount:  dec(total),
	}
}

func TestPurchaseLifecycle(t *testing.T) {
	ctx := setupTestDB(t)

	purchase, err := CreatePurchase(ctx, newPurchaseInput("Golden Mills", "5000"))
	require.NoError(t, err)
	assert.Equal(t, PaymentStatusPending, purchase.PaymentStatus)
	assert.True(t, dec("5000").Equal(purchase.AmountDue))
	assert.NotEmpty(t, purchase.BillNumber)

	payment, err := ApplyPurchasePayment(ctx, purchase.ID, &NewPayment{Amount: dec("2000")})
	require.NoError(t, err)
	assert.Equal(t, PaymentSidePayable, payment.Side)

	purchase, err = GetPurchase(ctx, purchase.ID)
	require.NoError(t, err)
	assert.Equal(t, PaymentStatusPartial, purchase.PaymentStatus)
	assert.True(t, dec("3000").Equal(purchase.AmountDue), "amount due: got %s", purchase.AmountDue)

	_, err = ApplyPurchasePayment(ctx, purchase.ID, &NewPayment{Amount: dec("3000")})
	require.NoError(t, err)

	purchase, err = GetPurchase(ctx, purchase.ID)
	require.NoError(t, err)
	assert.Equal(t, PaymentStatusPaid, purchase.PaymentStatus)
	assert.True(t, purchase.AmountDue.IsZero())
	assert.Len(t, purchase.PaymentHistory, 2)
}

func TestPurchasePaymentCannotOverpay(t *testing.T) {
	ctx := setupTestDB(t)

	purchase, err := CreatePurchase(ctx, newPurchaseInput("Golden Mills", "1000"))
	require.NoError(t, err)

	_, err = ApplyPurchasePayment(ctx, purchase.ID, &NewPayment{Amount: dec("1500")})
	assert.Error(t, err)

	purchase, err = GetPurchase(ctx, purchase.ID)
	require.NoError(t, err)
	assert.Equal(t, PaymentStatusPending, purchase.PaymentStatus)
	assert.True(t, dec("1000").Equal(purchase.AmountDue))
}

func TestCreatePurchaseUpsertsSupplier(t *testing.T) {
	ctx := setupTestDB(t)

	_, err := CreatePurchase(ctx, newPurchaseInput("Golden Mills", "3000"))
	require.NoError(t, err)
	_, err = CreatePurchase(ctx, newPurchaseInput("Golden Mills", "5000"))
	require.NoError(t, err)

	suppliers, err := GetSuppliers(ctx, nil)
	require.NoError(t, err)
	require.Len(t, suppliers, 1)
	assert.Equal(t, 2, suppliers[0].PurchaseCount)
	assert.True(t, dec("8000").Equal(suppliers[0].TotalPurchases))
}

func TestDeletePurchaseRollsBackSupplierCounters(t *testing.T) {
	ctx := setupTestDB(t)

	product, err := CreateProduct(ctx, &NewProduct{
		Name:     "Rice Bag",
		StockQty: dec("50"),
	})
	require.NoError(t, err)

	input := newPurchaseInput("Golden Mills", "0")
	input.Details = []NewPurchaseDetail{
		{ProductId: product.ID, ProductName: product.Name, Qty: dec("10"), UnitPrice: dec("25")},
	}
	purchase, err := CreatePurchase(ctx, input)
	require.NoError(t, err)
	assert.True(t, dec("250").Equal(purchase.TotalAmount))

	product, err = GetProduct(ctx, product.ID)
	require.NoError(t, err)
	assert.True(t, dec("60").Equal(product.StockQty), "stock after purchase: got %s", product.StockQty)

	_, err = CreatePurchase(ctx, newPurchaseInput("Golden Mills", "1000"))
	require.NoError(t, err)

	_, err = DeletePurchase(ctx, purchase.ID)
	require.NoError(t, err)

	product, err = GetProduct(ctx, product.ID)
	require.NoError(t, err)
	assert.True(t, dec("50").Equal(product.StockQty), "stock restored: got %s", product.StockQty)

	suppliers, err := GetSuppliers(ctx, nil)
	require.NoError(t, err)
	require.Len(t, suppliers, 1)
	assert.Equal(t, 1, suppliers[0].PurchaseCount)
	assert.True(t, dec("1000").Equal(suppliers[0].TotalPurchases))

	_, err = GetPurchase(ctx, purchase.ID)
	assert.Error(t, err)
}

func TestUpdatePurchaseTotalCorrection(t *testing.T) {
	ctx := setupTestDB(t)

	purchase, err := CreatePurchase(ctx, newPurchaseInput("Golden Mills", "5000"))
	require.NoError(t, err)
	_, err = ApplyPurchasePayment(ctx, purchase.ID, &NewPayment{Amount: dec("2000")})
	require.NoError(t, err)

	// a correction cannot move the total below what was already paid
	below := dec("1000")
	_, err = UpdatePurchase(ctx, purchase.ID, &UpdatePurchaseInput{TotalAmount: &below})
	assert.Error(t, err)

	corrected := dec("6000")
	purchase, err = UpdatePurchase(ctx, purchase.ID, &UpdatePurchaseInput{TotalAmount: &corrected})
	require.NoError(t, err)
	assert.Equal(t, PaymentStatusPartial, purchase.PaymentStatus)
	assert.True(t, dec("4000").Equal(purchase.AmountDue))

	db := config.GetDB()
	var supplier Supplier
	require.NoError(t, db.WithContext(ctx).First(&supplier, purchase.SupplierId).Error)
	assert.True(t, dec("6000").Equal(supplier.TotalPurchases), "lifetime purchases: got %s", supplier.TotalPurchases)
}
