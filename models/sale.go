package models

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stockflow/inventory_backend/config"
	"github.com/stockflow/inventory_backend/utils"
	"gorm.io/gorm"
)

const saleNumberPrefix = "SL-"

// Sale is a transaction record on the receivable side. AmountDue,
// PaymentStatus and IsOverdue are derived in BeforeSave and must never
// be written directly.
type Sale struct {
	ID                     int             `gorm:"primary_key" json:"id"`
	BusinessId             string          `gorm:"index;not null;uniqueIndex:idx_sales_business_seq" json:"business_id"`
	ClientId               int             `gorm:"index;not null" json:"client_id"`
	WarehouseId            int             `gorm:"default:0" json:"warehouse_id"`
	SaleNumber             string          `gorm:"size:255;not null" json:"sale_number"`
	SequenceNo             int64           `gorm:"not null;uniqueIndex:idx_sales_business_seq" json:"sequence_no"`
	Kind                   TransactionKind `gorm:"size:10;not null;default:'Direct'" json:"kind"`
	PaymentType            PaymentType     `gorm:"size:10;not null;default:'Credit'" json:"payment_type"`
	SaleDate               time.Time       `gorm:"not null" json:"sale_date"`
	PaymentTerms           PaymentTerms    `gorm:"size:20;not null;default:'DueOnReceipt'" json:"payment_terms"`
	PaymentTermsCustomDays int             `gorm:"default:0" json:"payment_terms_custom_days"`
	DueDate                *time.Time      `json:"due_date"`
	TotalAmount            decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"total_amount"`
	AmountPaid             decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"amount_paid"`
	AmountDue              decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"amount_due"`
	PaymentStatus          PaymentStatus   `gorm:"size:20;not null;default:'Pending'" json:"payment_status"`
	IsOverdue              *bool           `gorm:"not null;default:false" json:"is_overdue"`
	Notes                  string          `gorm:"type:text" json:"notes"`
	Details                []SaleDetail    `gorm:"foreignKey:SaleId" json:"details"`
	PaymentHistory         []PaymentRecord `gorm:"foreignKey:SaleId" json:"payment_history"`
	CreatedAt              time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt              time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

type SaleDetail struct {
	ID          int             `gorm:"primary_key" json:"id"`
	SaleId      int             `gorm:"index;not null" json:"sale_id"`
	ProductId   int             `gorm:"default:0" json:"product_id"`
	ProductName string          `gorm:"size:100" json:"product_name"`
	Qty         decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"qty"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"unit_price"`
	Amount      decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"amount"`
}

type NewSale struct {
	ClientName             string          `json:"client_name" binding:"required"`
	ClientEmail            string          `json:"client_email"`
	ClientPhone            string          `json:"client_phone"`
	WarehouseId            int             `json:"warehouse_id"`
	Kind                   TransactionKind `json:"kind"`
	PaymentType            PaymentType     `json:"payment_type"`
	SaleDate               time.Time       `json:"sale_date" binding:"required"`
	PaymentTerms           PaymentTerms    `json:"payment_terms"`
	PaymentTermsCustomDays int             `json:"payment_terms_custom_days"`
	DueDate                *time.Time      `json:"due_date"`
	TotalAmount            decimal.Decimal `json:"total_amount"`
	AmountPaid             decimal.Decimal `json:"amount_paid"`
	Notes                  string          `json:"notes"`
	Details                []NewSaleDetail `json:"details"`
}

type NewSaleDetail struct {
	ProductId   int             `json:"product_id"`
	ProductName string          `json:"product_name"`
	Qty         decimal.Decimal `json:"qty" binding:"required"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
}

// BeforeSave runs the derivation rule synchronously with every persist
// of a sale, whatever the write path.
func (s *Sale) BeforeSave(tx *gorm.DB) error {
	if s.TotalAmount.IsNegative() {
		return errors.New("total amount cannot be negative")
	}
	if s.AmountPaid.IsNegative() {
		return errors.New("amount paid cannot be negative")
	}
	d := computePaymentDerivations(s.TotalAmount, s.AmountPaid, s.DueDate, time.Now().UTC())
	s.AmountDue = d.AmountDue
	s.PaymentStatus = d.PaymentStatus
	s.IsOverdue = &d.IsOverdue
	return nil
}

func (input *NewSale) validate(ctx context.Context, businessId string) error {
	if input.Kind == "" {
		input.Kind = TransactionKindDirect
	}
	if input.Kind != TransactionKindOrder && input.Kind != TransactionKindDirect {
		return errors.New("invalid transaction kind")
	}
	if input.PaymentType == "" {
		input.PaymentType = PaymentTypeCredit
	}
	if err := input.PaymentType.Parse(string(input.PaymentType)); err != nil {
		return err
	}
	if input.TotalAmount.IsNegative() {
		return errors.New("total amount cannot be negative")
	}
	if input.AmountPaid.IsNegative() {
		return errors.New("amount paid cannot be negative")
	}
	for _, d := range input.Details {
		if !d.Qty.IsPositive() {
			return errors.New("detail qty must be positive")
		}
		if d.UnitPrice.IsNegative() {
			return errors.New("detail unit price cannot be negative")
		}
	}
	if input.WarehouseId > 0 {
		if err := utils.ValidateResourceId[Warehouse](ctx, businessId, input.WarehouseId); err != nil {
			return errors.New("warehouse not found")
		}
	}
	return nil
}

// detail amounts and, when line details are present, the record total
// are derived from qty * unit price.
func (input *NewSale) mapDetails() ([]SaleDetail, decimal.Decimal) {
	details := make([]SaleDetail, 0, len(input.Details))
	total := decimal.Zero
	for _, d := range input.Details {
		amount := d.Qty.Mul(d.UnitPrice)
		details = append(details, SaleDetail{
			ProductId:   d.ProductId,
			ProductName: d.ProductName,
			Qty:         d.Qty,
			UnitPrice:   d.UnitPrice,
			Amount:      amount,
		})
		total = total.Add(amount)
	}
	return details, total
}

// CreateSale records a new sale. The client aggregate update and the
// sale insert are two separate writes: a failure between them leaves
// the aggregates stale until the next reconciliation (see reconcile.go).
// The credit-limit check runs against the stored CurrentCredit before
// anything is committed; it is advisory under concurrent writes.
func CreateSale(ctx context.Context, input *NewSale) (*Sale, error) {
	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}

	if err := input.validate(ctx, businessId); err != nil {
		return nil, err
	}

	details, detailTotal := input.mapDetails()
	totalAmount := input.TotalAmount
	if len(details) > 0 {
		totalAmount = detailTotal
	}
	if input.AmountPaid.GreaterThan(totalAmount) {
		return nil, errors.New("amount paid cannot exceed the total amount")
	}

	db := config.GetDB()

	// credit check against the existing client, before any write
	if input.PaymentType == PaymentTypeCredit {
		var existing Client
		err := db.WithContext(ctx).
			Where("business_id = ? AND name = ?", businessId, input.ClientName).
			First(&existing).Error
		if err == nil {
			decision := existing.CanExtendCredit(totalAmount)
			if !decision.Allowed {
				if decision.Available != nil {
					return nil, fmt.Errorf("%s (available: %s)", decision.Reason, decision.Available.String())
				}
				return nil, errors.New(decision.Reason)
			}
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}

	// write 1: counterparty lifetime counters
	input.TotalAmount = totalAmount
	client, err := upsertClientForSale(db, ctx, businessId, input, input.SaleDate)
	if err != nil {
		return nil, err
	}

	dueDate := input.DueDate
	if dueDate == nil && input.PaymentTerms != "" {
		dueDate = calculateDueDate(input.SaleDate, input.PaymentTerms, input.PaymentTermsCustomDays)
	}

	sale := Sale{
		BusinessId:             businessId,
		ClientId:               client.ID,
		WarehouseId:            input.WarehouseId,
		Kind:                   input.Kind,
		PaymentType:            input.PaymentType,
		SaleDate:               input.SaleDate,
		PaymentTerms:           input.PaymentTerms,
		PaymentTermsCustomDays: input.PaymentTermsCustomDays,
		DueDate:                dueDate,
		TotalAmount:            totalAmount,
		AmountPaid:             input.AmountPaid,
		Notes:                  input.Notes,
		Details:                details,
	}

	seqNo, err := utils.GetSequence[Sale](ctx, businessId)
	if err != nil {
		return nil, err
	}
	sale.SequenceNo = seqNo
	sale.SaleNumber = saleNumberPrefix + fmt.Sprint(seqNo)

	// write 2: sale record, line details and stock movement
	tx := db.Begin()
	if err := tx.WithContext(ctx).Create(&sale).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	for _, d := range sale.Details {
		if d.ProductId > 0 {
			if err := adjustProductStock(tx, ctx, businessId, d.ProductId, d.Qty.Neg()); err != nil {
				tx.Rollback()
				return nil, err
			}
		}
	}
	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	return &sale, nil
}

type UpdateSaleInput struct {
	SaleDate               *time.Time       `json:"sale_date"`
	PaymentTerms           *PaymentTerms    `json:"payment_terms"`
	PaymentTermsCustomDays *int             `json:"payment_terms_custom_days"`
	DueDate                *time.Time       `json:"due_date"`
	Notes                  *string          `json:"notes"`
	TotalAmount            *decimal.Decimal `json:"total_amount"`
}

// UpdateSale corrects header fields on an existing sale. Derived fields
// are recomputed by the save hook. A correction cannot move the total
// below what has already been paid.
func UpdateSale(ctx context.Context, id int, input *UpdateSaleInput) (*Sale, error) {
	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}

	sale, err := utils.FetchModel[Sale](ctx, businessId, id)
	if err != nil {
		return nil, err
	}

	oldTotal := sale.TotalAmount
	if input.SaleDate != nil {
		sale.SaleDate = *input.SaleDate
	}
	if input.PaymentTerms != nil {
		sale.PaymentTerms = *input.PaymentTerms
	}
	if input.PaymentTermsCustomDays != nil {
		sale.PaymentTermsCustomDays = *input.PaymentTermsCustomDays
	}
	if input.DueDate != nil {
		sale.DueDate = input.DueDate
	}
	if input.Notes != nil {
		sale.Notes = *input.Notes
	}
	if input.TotalAmount != nil {
		if input.TotalAmount.IsNegative() {
			return nil, errors.New("total amount cannot be negative")
		}
		if input.TotalAmount.LessThan(sale.AmountPaid) {
			return nil, errors.New("total amount cannot be less than the amount already paid")
		}
		sale.TotalAmount = *input.TotalAmount
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Save(&sale).Error; err != nil {
		return nil, err
	}

	// keep the lifetime revenue counter in step with the corrected total
	if input.TotalAmount != nil && !oldTotal.Equal(sale.TotalAmount) {
		var client Client
		if err := db.WithContext(ctx).Where("business_id = ?", businessId).First(&client, sale.ClientId).Error; err == nil {
			client.TotalRevenue = client.TotalRevenue.Sub(oldTotal).Add(sale.TotalAmount)
			if client.TotalRevenue.IsNegative() {
				client.TotalRevenue = decimal.Zero
			}
			if err := db.WithContext(ctx).Save(&client).Error; err != nil {
				return nil, err
			}
		}
	}

	return sale, nil
}

// DeleteSale voids a sale: the record, its details and its payment
// history go in one transaction, then the client lifetime counters are
// rolled back as a separate best-effort write.
func DeleteSale(ctx context.Context, id int) (*Sale, error) {
	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}

	result, err := utils.FetchModel[Sale](ctx, businessId, id, "Details", "PaymentHistory")
	if err != nil {
		return nil, err
	}

	db := config.GetDB()
	tx := db.Begin()
	if err := tx.WithContext(ctx).Where("sale_id = ?", result.ID).Delete(&PaymentRecord{}).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.WithContext(ctx).Where("sale_id = ?", result.ID).Delete(&SaleDetail{}).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.WithContext(ctx).Delete(&result).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	for _, d := range result.Details {
		if d.ProductId > 0 {
			if err := adjustProductStock(tx, ctx, businessId, d.ProductId, d.Qty); err != nil {
				tx.Rollback()
				return nil, err
			}
		}
	}
	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	if err := rollbackClientForSale(db, ctx, businessId, result.ClientId, result.TotalAmount); err != nil {
		return nil, err
	}
	return result, nil
}

func GetSale(ctx context.Context, id int) (*Sale, error) {
	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}
	return utils.FetchModel[Sale](ctx, businessId, id, "Details", "PaymentHistory")
}

func GetSales(ctx context.Context, clientId *int, status *PaymentStatus, kind *TransactionKind) ([]*Sale, error) {
	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}

	db := config.GetDB()
	var results []*Sale
	dbCtx := db.WithContext(ctx).Where("business_id = ?", businessId)
	if clientId != nil && *clientId > 0 {
		dbCtx = dbCtx.Where("client_id = ?", *clientId)
	}
	if status != nil && *status != "" {
		dbCtx = dbCtx.Where("payment_status = ?", *status)
	}
	if kind != nil && *kind != "" {
		dbCtx = dbCtx.Where("kind = ?", *kind)
	}
	if err := dbCtx.Order("sale_date DESC, id DESC").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
