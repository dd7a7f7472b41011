package models

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stockflow/inventory_backend/config"
	"github.com/stockflow/inventory_backend/utils"
)

// The recompute pass is the repair mechanism for the non-atomic
// per-request writes: it rebuilds a counterparty's outstanding-balance
// fields from its unpaid transaction records and stamps
// LastReconciledAt. Running it twice with no intervening writes is a
// no-op the second time.

type reconcileTotals struct {
	outstanding decimal.Decimal
	overdue     decimal.Decimal
}

// overdue is evaluated against the wall clock here, not read from the
// stored IsOverdue column, so a record whose due date passed since its
// last save still counts.
func sumSaleBalances(sales []Sale, now time.Time) reconcileTotals {
	t := reconcileTotals{outstanding: decimal.Zero, overdue: decimal.Zero}
	for _, s := range sales {
		t.outstanding = t.outstanding.Add(s.AmountDue)
		if isOverdueAt(s.DueDate, s.AmountDue, now) {
			t.overdue = t.overdue.Add(s.AmountDue)
		}
	}
	return t
}

func sumPurchaseBalances(purchases []Purchase, now time.Time) reconcileTotals {
	t := reconcileTotals{outstanding: decimal.Zero, overdue: decimal.Zero}
	for _, p := range purchases {
		t.outstanding = t.outstanding.Add(p.AmountDue)
		if isOverdueAt(p.DueDate, p.AmountDue, now) {
			t.overdue = t.overdue.Add(p.AmountDue)
		}
	}
	return t
}

// RecomputeClientBalances rebuilds CurrentCredit, OverdueAmount and
// CreditStatus for one client from its pending and partial sales.
func RecomputeClientBalances(ctx context.Context, clientId int) (*Client, error) {
	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}

	db := config.GetDB()
	client, err := utils.FetchModel[Client](ctx, businessId, clientId)
	if err != nil {
		return nil, err
	}

	var unpaid []Sale
	if err := db.WithContext(ctx).
		Where("business_id = ? AND client_id = ? AND payment_status IN ?", businessId, clientId, unpaidStatuses).
		Find(&unpaid).Error; err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	totals := sumSaleBalances(unpaid, now)

	status := client.CreditStatus
	if status != CreditStatusBlocked {
		status = creditStatusFor(totals.outstanding, client.CreditLimit)
	}
	if client.CurrentCredit.Equal(totals.outstanding) &&
		client.OverdueAmount.Equal(totals.overdue) &&
		client.CreditStatus == status &&
		client.LastReconciledAt != nil {
		return client, nil
	}

	client.CurrentCredit = totals.outstanding
	client.OverdueAmount = totals.overdue
	client.CreditStatus = status
	client.LastReconciledAt = &now

	if err := db.WithContext(ctx).Save(&client).Error; err != nil {
		return nil, err
	}
	return client, nil
}

// RecomputeSupplierBalances is the payable-side counterpart.
func RecomputeSupplierBalances(ctx context.Context, supplierId int) (*Supplier, error) {
	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}

	db := config.GetDB()
	supplier, err := utils.FetchModel[Supplier](ctx, businessId, supplierId)
	if err != nil {
		return nil, err
	}

	var unpaid []Purchase
	if err := db.WithContext(ctx).
		Where("business_id = ? AND supplier_id = ? AND payment_status IN ?", businessId, supplierId, unpaidStatuses).
		Find(&unpaid).Error; err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	totals := sumPurchaseBalances(unpaid, now)

	if supplier.CurrentPayable.Equal(totals.outstanding) &&
		supplier.OverduePayable.Equal(totals.overdue) &&
		supplier.LastReconciledAt != nil {
		return supplier, nil
	}

	supplier.CurrentPayable = totals.outstanding
	supplier.OverduePayable = totals.overdue
	supplier.LastReconciledAt = &now

	if err := db.WithContext(ctx).Save(&supplier).Error; err != nil {
		return nil, err
	}
	return supplier, nil
}

type ReconcileSummary struct {
	ClientsProcessed   int `json:"clients_processed"`
	SuppliersProcessed int `json:"suppliers_processed"`
	Errors             int `json:"errors"`
}

// ReconcileAllCounterparties runs the recompute pass over every client
// and supplier of the business. Used both as the backfill job and as
// the on-demand repair endpoint. Individual failures are logged and
// counted, not fatal.
func ReconcileAllCounterparties(ctx context.Context) (*ReconcileSummary, error) {
	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}

	db := config.GetDB()
	summary := &ReconcileSummary{}

	var clientIds []int
	if err := db.WithContext(ctx).Model(&Client{}).
		Where("business_id = ?", businessId).Pluck("id", &clientIds).Error; err != nil {
		return nil, err
	}
	for _, id := range clientIds {
		if _, err := RecomputeClientBalances(ctx, id); err != nil {
			config.LogError(config.GetLogger(), "models", "ReconcileAllCounterparties",
				businessId, map[string]interface{}{"clientId": id}, err)
			summary.Errors++
			continue
		}
		summary.ClientsProcessed++
	}

	var supplierIds []int
	if err := db.WithContext(ctx).Model(&Supplier{}).
		Where("business_id = ?", businessId).Pluck("id", &supplierIds).Error; err != nil {
		return nil, err
	}
	for _, id := range supplierIds {
		if _, err := RecomputeSupplierBalances(ctx, id); err != nil {
			config.LogError(config.GetLogger(), "models", "ReconcileAllCounterparties",
				businessId, map[string]interface{}{"supplierId": id}, err)
			summary.Errors++
			continue
		}
		summary.SuppliersProcessed++
	}

	return summary, nil
}

// RefreshOverdueFlags re-saves unpaid records whose stored IsOverdue
// flag no longer matches the wall clock, so list views reflect due
// dates that passed since the last write.
func RefreshOverdueFlags(ctx context.Context) (int, error) {
	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return 0, errors.New("business id is required")
	}

	db := config.GetDB()
	now := time.Now().UTC()
	updated := 0

	var sales []Sale
	if err := db.WithContext(ctx).
		Where("business_id = ? AND payment_status IN ?", businessId, unpaidStatuses).
		Find(&sales).Error; err != nil {
		return 0, err
	}
	for i := range sales {
		current := isOverdueAt(sales[i].DueDate, sales[i].AmountDue, now)
		if sales[i].IsOverdue == nil || *sales[i].IsOverdue != current {
			if err := db.WithContext(ctx).Save(&sales[i]).Error; err != nil {
				return updated, err
			}
			updated++
		}
	}

	var purchases []Purchase
	if err := db.WithContext(ctx).
		Where("business_id = ? AND payment_status IN ?", businessId, unpaidStatuses).
		Find(&purchases).Error; err != nil {
		return updated, err
	}
	for i := range purchases {
		current := isOverdueAt(purchases[i].DueDate, purchases[i].AmountDue, now)
		if purchases[i].IsOverdue == nil || *purchases[i].IsOverdue != current {
			if err := db.WithContext(ctx).Save(&purchases[i]).Error; err != nil {
				return updated, err
			}
			updated++
		}
	}

	return updated, nil
}
