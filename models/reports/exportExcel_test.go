package reports

import (
	"bytes"
	"testing"

	"github.com/stockflow/inventory_backend/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestExportSalesExcelWorkbook(t *testing.T) {
	ctx := setupTestDB(t)

	_, err := models.CreateSale(ctx, saleInput("Aung Trading", models.TransactionKindOrder, models.PaymentTypeCredit, "2000"))
	require.NoError(t, err)
	sale, err := models.CreateSale(ctx, saleInput("Daw Mya", models.TransactionKindOrder, models.PaymentTypeCredit, "1000"))
	require.NoError(t, err)
	_, err = models.ApplySalePayment(ctx, sale.ID, &models.NewPayment{Amount: dec("400")})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, ExportSalesExcel(ctx, &buf))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.ElementsMatch(t, []string{"Summary", "Sales"}, f.GetSheetList())

	// summary rows follow the Pending/Partial/Paid order
	status, err := f.GetCellValue("Summary", "A2")
	require.NoError(t, err)
	assert.Equal(t, "Pending", status)
	pendingDue, err := f.GetCellValue("Summary", "E2")
	require.NoError(t, err)
	assert.Equal(t, "2000", pendingDue)
	partialDue, err := f.GetCellValue("Summary", "E3")
	require.NoError(t, err)
	assert.Equal(t, "600", partialDue)

	// one detail row per sale plus the header
	rows, err := f.GetRows("Sales")
	require.NoError(t, err)
	assert.Len(t, rows, 3)
}
