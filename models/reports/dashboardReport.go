package reports

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stockflow/inventory_backend/config"
	"github.com/stockflow/inventory_backend/models"
	"github.com/stockflow/inventory_backend/utils"
)

// DashboardReport is a stateless projection recomputed from stored
// state. Nothing here is written back.
type DashboardReport struct {
	TotalReceivables   decimal.Decimal `json:"total_receivables"`
	TotalPayables      decimal.Decimal `json:"total_payables"`
	OverdueReceivables decimal.Decimal `json:"overdue_receivables"`
	OverduePayables    decimal.Decimal `json:"overdue_payables"`
	LowStockCount      int64           `json:"low_stock_count"`
	ClientCount        int64           `json:"client_count"`
	SupplierCount      int64           `json:"supplier_count"`
	ProductCount       int64           `json:"product_count"`
	SalesCount         int64           `json:"sales_count"`
	PurchasesCount     int64           `json:"purchases_count"`
	TotalRevenue       decimal.Decimal `json:"total_revenue"`
	TotalPurchases     decimal.Decimal `json:"total_purchases"`
}

// countsTowardOutstanding applies the dashboard inclusion rule: order
// transactions always count; direct transactions count only when
// settled on credit. A cash direct record with an unpaid balance never
// contributes.
func countsTowardOutstanding(kind models.TransactionKind, paymentType models.PaymentType) bool {
	if kind == models.TransactionKindOrder {
		return true
	}
	return paymentType == models.PaymentTypeCredit
}

// dashboardCacheTTL bounds how stale the cached projection can get.
const dashboardCacheTTL = 30 * time.Second

func dashboardCacheKey(businessId string) string {
	return businessId + "-dashboard"
}

// GetDashboardReport assembles the tenant's headline totals. Sums are
// computed in decimal on the application side; overdue is evaluated
// against the wall clock, not the stored flag. The result is cached in
// redis for a short window when redis is available.
func GetDashboardReport(ctx context.Context) (*DashboardReport, error) {
	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}

	var cached DashboardReport
	if hit, err := config.GetRedisObject(dashboardCacheKey(businessId), &cached); err == nil && hit {
		return &cached, nil
	}

	db := config.GetDB()
	now := time.Now().UTC()
	report := &DashboardReport{
		TotalReceivables:   decimal.Zero,
		TotalPayables:      decimal.Zero,
		OverdueReceivables: decimal.Zero,
		OverduePayables:    decimal.Zero,
		TotalRevenue:       decimal.Zero,
		TotalPurchases:     decimal.Zero,
	}

	var unpaidSales []models.Sale
	if err := db.WithContext(ctx).
		Where("business_id = ? AND payment_status IN ?", businessId, models.UnpaidStatuses()).
		Find(&unpaidSales).Error; err != nil {
		return nil, err
	}
	for _, s := range unpaidSales {
		if !countsTowardOutstanding(s.Kind, s.PaymentType) {
			continue
		}
		report.TotalReceivables = report.TotalReceivables.Add(s.AmountDue)
		if models.IsOverdueAt(s.DueDate, s.AmountDue, now) {
			report.OverdueReceivables = report.OverdueReceivables.Add(s.AmountDue)
		}
	}

	var unpaidPurchases []models.Purchase
	if err := db.WithContext(ctx).
		Where("business_id = ? AND payment_status IN ?", businessId, models.UnpaidStatuses()).
		Find(&unpaidPurchases).Error; err != nil {
		return nil, err
	}
	for _, p := range unpaidPurchases {
		if !countsTowardOutstanding(p.Kind, p.PaymentType) {
			continue
		}
		report.TotalPayables = report.TotalPayables.Add(p.AmountDue)
		if models.IsOverdueAt(p.DueDate, p.AmountDue, now) {
			report.OverduePayables = report.OverduePayables.Add(p.AmountDue)
		}
	}

	// opening balances sit on top of the computed outstanding totals
	// and are never folded into the stored aggregates
	var clients []models.Client
	if err := db.WithContext(ctx).Where("business_id = ?", businessId).Find(&clients).Error; err != nil {
		return nil, err
	}
	for _, c := range clients {
		report.TotalReceivables = report.TotalReceivables.Add(c.OpeningBalance)
		report.TotalRevenue = report.TotalRevenue.Add(c.TotalRevenue)
	}
	report.ClientCount = int64(len(clients))

	var suppliers []models.Supplier
	if err := db.WithContext(ctx).Where("business_id = ?", businessId).Find(&suppliers).Error; err != nil {
		return nil, err
	}
	for _, s := range suppliers {
		report.TotalPayables = report.TotalPayables.Add(s.OpeningBalance)
		report.TotalPurchases = report.TotalPurchases.Add(s.TotalPurchases)
	}
	report.SupplierCount = int64(len(suppliers))

	if err := db.WithContext(ctx).Model(&models.Product{}).
		Where("business_id = ?", businessId).Count(&report.ProductCount).Error; err != nil {
		return nil, err
	}
	if err := db.WithContext(ctx).Model(&models.Product{}).
		Where("business_id = ? AND is_active = ? AND stock_qty <= reorder_level", businessId, true).
		Count(&report.LowStockCount).Error; err != nil {
		return nil, err
	}
	if err := db.WithContext(ctx).Model(&models.Sale{}).
		Where("business_id = ?", businessId).Count(&report.SalesCount).Error; err != nil {
		return nil, err
	}
	if err := db.WithContext(ctx).Model(&models.Purchase{}).
		Where("business_id = ?", businessId).Count(&report.PurchasesCount).Error; err != nil {
		return nil, err
	}

	// best effort; a miss just recomputes
	_ = config.SetRedisObject(dashboardCacheKey(businessId), report, dashboardCacheTTL)

	return report, nil
}
