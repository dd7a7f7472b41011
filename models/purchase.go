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

const billNumberPrefix = "PB-"

// Purchase is the payable-side transaction record. It carries the same
// derivation rule as Sale but settles against a Supplier.
type Purchase struct {
	ID                     int              `gorm:"primary_key" json:"id"`
	BusinessId             string           `gorm:"index;not null;uniqueIndex:idx_purchases_business_seq" json:"business_id"`
	SupplierId             int              `gorm:"index;not null" json:"supplier_id"`
	WarehouseId            int              `gorm:"default:0" json:"warehouse_id"`
	BillNumber             string           `gorm:"size:255;not null" json:"bill_number"`
	SequenceNo             int64            `gorm:"not null;uniqueIndex:idx_purchases_business_seq" json:"sequence_no"`
	Kind                   TransactionKind  `gorm:"size:10;not null;default:'Direct'" json:"kind"`
	PaymentType            PaymentType      `gorm:"size:10;not null;default:'Credit'" json:"payment_type"`
	PurchaseDate           time.Time        `gorm:"not null" json:"purchase_date"`
	PaymentTerms           PaymentTerms     `gorm:"size:20;not null;default:'DueOnReceipt'" json:"payment_terms"`
	PaymentTermsCustomDays int              `gorm:"default:0" json:"payment_terms_custom_days"`
	DueDate                *time.Time       `json:"due_date"`
	TotalAmount            decimal.Decimal  `gorm:"type:decimal(20,4);not null" json:"total_amount"`
	AmountPaid             decimal.Decimal  `gorm:"type:decimal(20,4);default:0" json:"amount_paid"`
	AmountDue              decimal.Decimal  `gorm:"type:decimal(20,4);default:0" json:"amount_due"`
	PaymentStatus          PaymentStatus    `gorm:"size:20;not null;default:'Pending'" json:"payment_status"`
	IsOverdue              *bool            `gorm:"not null;default:false" json:"is_overdue"`
	Notes                  string           `gorm:"type:text" json:"notes"`
	Details                []PurchaseDetail `gorm:"foreignKey:PurchaseId" json:"details"`
	PaymentHistory         []PaymentRecord  `gorm:"foreignKey:PurchaseId" json:"payment_history"`
	CreatedAt              time.Time        `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt              time.Time        `gorm:"autoUpdateTime" json:"updated_at"`
}

type PurchaseDetail struct {
	ID          int             `gorm:"primary_key" json:"id"`
	PurchaseId  int             `gorm:"index;not null" json:"purchase_id"`
	ProductId   int             `gorm:"default:0" json:"product_id"`
	ProductName string          `gorm:"size:100" json:"product_name"`
	Qty         decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"qty"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"unit_price"`
	Amount      decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"amount"`
}

type NewPurchase struct {
	SupplierName           string              `json:"supplier_name" binding:"required"`
	SupplierEmail          string              `json:"supplier_email"`
	SupplierPhone          string              `json:"supplier_phone"`
	WarehouseId            int                 `json:"warehouse_id"`
	Kind                   TransactionKind     `json:"kind"`
	PaymentType            PaymentType         `json:"payment_type"`
	PurchaseDate           time.Time           `json:"purchase_date" binding:"required"`
	PaymentTerms           PaymentTerms        `json:"payment_terms"`
	PaymentTermsCustomDays int                 `json:"payment_terms_custom_days"`
	DueDate                *time.Time          `json:"due_date"`
	TotalAmount            decimal.Decimal     `json:"total_amount"`
	AmountPaid             decimal.Decimal     `json:"amount_paid"`
	Notes                  string              `json:"notes"`
	Details                []NewPurchaseDetail `json:"details"`
}

type NewPurchaseDetail struct {
	ProductId   int             `json:"product_id"`
	ProductName string          `json:"product_name"`
	Qty         decimal.Decimal `json:"qty" binding:"required"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
}

func (p *Purchase) BeforeSave(tx *gorm.DB) error {
	if p.TotalAmount.IsNegative() {
		return errors.New("total amount cannot be negative")
	}
	if p.AmountPaid.IsNegative() {
		return errors.New("amount paid cannot be negative")
	}
	d := computePaymentDerivations(p.TotalAmount, p.AmountPaid, p.DueDate, time.Now().UTC())
	p.AmountDue = d.AmountDue
	p.PaymentStatus = d.PaymentStatus
	p.IsOverdue = &d.IsOverdue
	return nil
}

func (input *NewPurchase) validate(ctx context.Context, businessId string) error {
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

func (input *NewPurchase) mapDetails() ([]PurchaseDetail, decimal.Decimal) {
	details := make([]PurchaseDetail, 0, len(input.Details))
	total := decimal.Zero
	for _, d := range input.Details {
		amount := d.Qty.Mul(d.UnitPrice)
		details = append(details, PurchaseDetail{
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

// CreatePurchase records a new purchase bill. Mirrors CreateSale: the
// supplier counter update and the bill insert are separate writes, and
// there is no credit gate on the payable side.
func CreatePurchase(ctx context.Context, input *NewPurchase) (*Purchase, error) {
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

	input.TotalAmount = totalAmount
	supplier, err := upsertSupplierForPurchase(db, ctx, businessId, input, input.PurchaseDate)
	if err != nil {
		return nil, err
	}

	dueDate := input.DueDate
	if dueDate == nil && input.PaymentTerms != "" {
		dueDate = calculateDueDate(input.PurchaseDate, input.PaymentTerms, input.PaymentTermsCustomDays)
	}

	purchase := Purchase{
		BusinessId:             businessId,
		SupplierId:             supplier.ID,
		WarehouseId:            input.WarehouseId,
		Kind:                   input.Kind,
		PaymentType:            input.PaymentType,
		PurchaseDate:           input.PurchaseDate,
		PaymentTerms:           input.PaymentTerms,
		PaymentTermsCustomDays: input.PaymentTermsCustomDays,
		DueDate:                dueDate,
		TotalAmount:            totalAmount,
		AmountPaid:             input.AmountPaid,
		Notes:                  input.Notes,
		Details:                details,
	}

	seqNo, err := utils.GetSequence[Purchase](ctx, businessId)
	if err != nil {
		return nil, err
	}
	purchase.SequenceNo = seqNo
	purchase.BillNumber = billNumberPrefix + fmt.Sprint(seqNo)

	tx := db.Begin()
	if err := tx.WithContext(ctx).Create(&purchase).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	for _, d := range purchase.Details {
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

	return &purchase, nil
}

type UpdatePurchaseInput struct {
	PurchaseDate           *time.Time       `json:"purchase_date"`
	PaymentTerms           *PaymentTerms    `json:"payment_terms"`
	PaymentTermsCustomDays *int             `json:"payment_terms_custom_days"`
	DueDate                *time.Time       `json:"due_date"`
	Notes                  *string          `json:"notes"`
	TotalAmount            *decimal.Decimal `json:"total_amount"`
}

func UpdatePurchase(ctx context.Context, id int, input *UpdatePurchaseInput) (*Purchase, error) {
	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}

	purchase, err := utils.FetchModel[Purchase](ctx, businessId, id)
	if err != nil {
		return nil, err
	}

	oldTotal := purchase.TotalAmount
	if input.PurchaseDate != nil {
		purchase.PurchaseDate = *input.PurchaseDate
	}
	if input.PaymentTerms != nil {
		purchase.PaymentTerms = *input.PaymentTerms
	}
	if input.PaymentTermsCustomDays != nil {
		purchase.PaymentTermsCustomDays = *input.PaymentTermsCustomDays
	}
	if input.DueDate != nil {
		purchase.DueDate = input.DueDate
	}
	if input.Notes != nil {
		purchase.Notes = *input.Notes
	}
	if input.TotalAmount != nil {
		if input.TotalAmount.IsNegative() {
			return nil, errors.New("total amount cannot be negative")
		}
		if input.TotalAmount.LessThan(purchase.AmountPaid) {
			return nil, errors.New("total amount cannot be less than the amount already paid")
		}
		purchase.TotalAmount = *input.TotalAmount
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Save(&purchase).Error; err != nil {
		return nil, err
	}

	if input.TotalAmount != nil && !oldTotal.Equal(purchase.TotalAmount) {
		var supplier Supplier
		if err := db.WithContext(ctx).Where("business_id = ?", businessId).First(&supplier, purchase.SupplierId).Error; err == nil {
			supplier.TotalPurchases = supplier.TotalPurchases.Sub(oldTotal).Add(purchase.TotalAmount)
			if supplier.TotalPurchases.IsNegative() {
				supplier.TotalPurchases = decimal.Zero
			}
			if err := db.WithContext(ctx).Save(&supplier).Error; err != nil {
				return nil, err
			}
		}
	}

	return purchase, nil
}

func DeletePurchase(ctx context.Context, id int) (*Purchase, error) {
	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}

	result, err := utils.FetchModel[Purchase](ctx, businessId, id, "Details", "PaymentHistory")
	if err != nil {
		return nil, err
	}

	db := config.GetDB()
	tx := db.Begin()
	if err := tx.WithContext(ctx).Where("purchase_id = ?", result.ID).Delete(&PaymentRecord{}).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.WithContext(ctx).Where("purchase_id = ?", result.ID).Delete(&PurchaseDetail{}).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.WithContext(ctx).Delete(&result).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	for _, d := range result.Details {
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

	if err := rollbackSupplierForPurchase(db, ctx, businessId, result.SupplierId, result.TotalAmount); err != nil {
		return nil, err
	}
	return result, nil
}

func GetPurchase(ctx context.Context, id int) (*Purchase, error) {
	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}
	return utils.FetchModel[Purchase](ctx, businessId, id, "Details", "PaymentHistory")
}

func GetPurchases(ctx context.Context, supplierId *int, status *PaymentStatus, kind *TransactionKind) ([]*Purchase, error) {
	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}

	db := config.GetDB()
	var results []*Purchase
	dbCtx := db.WithContext(ctx).Where("business_id = ?", businessId)
	if supplierId != nil && *supplierId > 0 {
		dbCtx = dbCtx.Where("supplier_id = ?", *supplierId)
	}
	if status != nil && *status != "" {
		dbCtx = dbCtx.Where("payment_status = ?", *status)
	}
	if kind != nil && *kind != "" {
		dbCtx = dbCtx.Where("kind = ?", *kind)
	}
	if err := dbCtx.Order("purchase_date DESC, id DESC").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
