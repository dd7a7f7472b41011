package reports

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/shopspring/decimal"
	"github.com/stockflow/inventory_backend/config"
	"github.com/stockflow/inventory_backend/models"
	"github.com/stockflow/inventory_backend/utils"
	"github.com/xuri/excelize/v2"
)

// StatusRollup is one line of the by-status summary: how many records
// sit in a payment status and what they add up to.
type StatusRollup struct {
	Status      models.PaymentStatus `json:"status"`
	Count       int                  `json:"count"`
	TotalAmount decimal.Decimal      `json:"total_amount"`
	AmountPaid  decimal.Decimal      `json:"amount_paid"`
	AmountDue   decimal.Decimal      `json:"amount_due"`
}

var rollupOrder = []models.PaymentStatus{
	models.PaymentStatusPending,
	models.PaymentStatusPartial,
	models.PaymentStatusPaid,
}

// GetSalesSummary rolls up the tenant's sales by payment status.
func GetSalesSummary(ctx context.Context) ([]StatusRollup, error) {
	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}

	db := config.GetDB()
	var sales []models.Sale
	if err := db.WithContext(ctx).Where("business_id = ?", businessId).Find(&sales).Error; err != nil {
		return nil, err
	}

	byStatus := map[models.PaymentStatus]*StatusRollup{}
	for _, status := range rollupOrder {
		byStatus[status] = &StatusRollup{
			Status:      status,
			TotalAmount: decimal.Zero,
			AmountPaid:  decimal.Zero,
			AmountDue:   decimal.Zero,
		}
	}
	for _, s := range sales {
		r, ok := byStatus[s.PaymentStatus]
		if !ok {
			continue
		}
		r.Count++
		r.TotalAmount = r.TotalAmount.Add(s.TotalAmount)
		r.AmountPaid = r.AmountPaid.Add(s.AmountPaid)
		r.AmountDue = r.AmountDue.Add(s.AmountDue)
	}

	result := make([]StatusRollup, 0, len(rollupOrder))
	for _, status := range rollupOrder {
		result = append(result, *byStatus[status])
	}
	return result, nil
}

// GetPurchasesSummary is the payable-side rollup.
func GetPurchasesSummary(ctx context.Context) ([]StatusRollup, error) {
	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}

	db := config.GetDB()
	var purchases []models.Purchase
	if err := db.WithContext(ctx).Where("business_id = ?", businessId).Find(&purchases).Error; err != nil {
		return nil, err
	}

	byStatus := map[models.PaymentStatus]*StatusRollup{}
	for _, status := range rollupOrder {
		byStatus[status] = &StatusRollup{
			Status:      status,
			TotalAmount: decimal.Zero,
			AmountPaid:  decimal.Zero,
			AmountDue:   decimal.Zero,
		}
	}
	for _, p := range purchases {
		r, ok := byStatus[p.PaymentStatus]
		if !ok {
			continue
		}
		r.Count++
		r.TotalAmount = r.TotalAmount.Add(p.TotalAmount)
		r.AmountPaid = r.AmountPaid.Add(p.AmountPaid)
		r.AmountDue = r.AmountDue.Add(p.AmountDue)
	}

	result := make([]StatusRollup, 0, len(rollupOrder))
	for _, status := range rollupOrder {
		result = append(result, *byStatus[status])
	}
	return result, nil
}

// ExportSalesExcel writes a two-sheet workbook: the by-status summary
// and the full transaction list.
func ExportSalesExcel(ctx context.Context, w io.Writer) error {
	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return errors.New("business id is required")
	}

	summary, err := GetSalesSummary(ctx)
	if err != nil {
		return err
	}

	db := config.GetDB()
	var sales []models.Sale
	if err := db.WithContext(ctx).
		Where("business_id = ?", businessId).
		Order("sale_date DESC, id DESC").
		Find(&sales).Error; err != nil {
		return err
	}

	f := excelize.NewFile()
	summarySheet := "Summary"
	f.SetSheetName("Sheet1", summarySheet)

	f.SetCellValue(summarySheet, "A1", "Status")
	f.SetCellValue(summarySheet, "B1", "Count")
	f.SetCellValue(summarySheet, "C1", "TotalAmount")
	f.SetCellValue(summarySheet, "D1", "AmountPaid")
	f.SetCellValue(summarySheet, "E1", "AmountDue")
	for i, r := range summary {
		row := fmt.Sprint(i + 2)
		f.SetCellValue(summarySheet, "A"+row, string(r.Status))
		f.SetCellValue(summarySheet, "B"+row, r.Count)
		f.SetCellValue(summarySheet, "C"+row, r.TotalAmount.String())
		f.SetCellValue(summarySheet, "D"+row, r.AmountPaid.String())
		f.SetCellValue(summarySheet, "E"+row, r.AmountDue.String())
	}

	detailSheet := "Sales"
	if _, err := f.NewSheet(detailSheet); err != nil {
		return err
	}
	f.SetCellValue(detailSheet, "A1", "SaleNumber")
	f.SetCellValue(detailSheet, "B1", "Date")
	f.SetCellValue(detailSheet, "C1", "Kind")
	f.SetCellValue(detailSheet, "D1", "PaymentType")
	f.SetCellValue(detailSheet, "E1", "TotalAmount")
	f.SetCellValue(detailSheet, "F1", "AmountPaid")
	f.SetCellValue(detailSheet, "G1", "AmountDue")
	f.SetCellValue(detailSheet, "H1", "Status")
	for i, s := range sales {
		row := fmt.Sprint(i + 2)
		f.SetCellValue(detailSheet, "A"+row, s.SaleNumber)
		f.SetCellValue(detailSheet, "B"+row, s.SaleDate.Format("2006-01-02"))
		f.SetCellValue(detailSheet, "C"+row, string(s.Kind))
		f.SetCellValue(detailSheet, "D"+row, string(s.PaymentType))
		f.SetCellValue(detailSheet, "E"+row, s.TotalAmount.String())
		f.SetCellValue(detailSheet, "F"+row, s.AmountPaid.String())
		f.SetCellValue(detailSheet, "G"+row, s.AmountDue.String())
		f.SetCellValue(detailSheet, "H"+row, string(s.PaymentStatus))
	}

	return f.Write(w)
}
