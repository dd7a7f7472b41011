package models

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stockflow/inventory_backend/config"
	"github.com/stockflow/inventory_backend/utils"
)

type PaymentSide string

const (
	PaymentSideReceivable PaymentSide = "Receivable"
	PaymentSidePayable    PaymentSide = "Payable"
)

// PaymentRecord is one settlement entry against a sale or a purchase.
// Exactly one of SaleId / PurchaseId is set.
type PaymentRecord struct {
	ID          int             `gorm:"primary_key" json:"id"`
	BusinessId  string          `gorm:"index;not null" json:"business_id"`
	Side        PaymentSide     `gorm:"size:15;not null" json:"side"`
	SaleId      int             `gorm:"index;default:0" json:"sale_id"`
	PurchaseId  int             `gorm:"index;default:0" json:"purchase_id"`
	Amount      decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"amount"`
	PaymentDate time.Time       `gorm:"not null" json:"payment_date"`
	Method      string          `gorm:"size:50" json:"method"`
	Reference   string          `gorm:"size:255" json:"reference"`
	Notes       string          `gorm:"type:text" json:"notes"`
	CreatedAt   time.Time       `gorm:"autoCreateTime" json:"created_at"`
}

type NewPayment struct {
	Amount      decimal.Decimal `json:"amount" binding:"required"`
	PaymentDate time.Time       `json:"payment_date"`
	Method      string          `json:"method"`
	Reference   string          `json:"reference"`
	Notes       string          `json:"notes"`
}

func (input *NewPayment) validate() error {
	if !input.Amount.IsPositive() {
		return errors.New("payment amount must be positive")
	}
	if input.PaymentDate.IsZero() {
		input.PaymentDate = time.Now().UTC()
	}
	return nil
}

// ApplySalePayment settles part or all of a sale's outstanding balance.
// The payment record and the sale's updated AmountPaid commit together;
// derived fields are recomputed by the sale's save hook.
func ApplySalePayment(ctx context.Context, saleId int, input *NewPayment) (*PaymentRecord, error) {
	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}
	if err := input.validate(); err != nil {
		return nil, err
	}

	sale, err := utils.FetchModel[Sale](ctx, businessId, saleId)
	if err != nil {
		return nil, err
	}

	newPaid := sale.AmountPaid.Add(input.Amount)
	if newPaid.GreaterThan(sale.TotalAmount) {
		return nil, errors.New("payment exceeds the outstanding balance")
	}

	payment := PaymentRecord{
		BusinessId:  businessId,
		Side:        PaymentSideReceivable,
		SaleId:      sale.ID,
		Amount:      input.Amount,
		PaymentDate: input.PaymentDate,
		Method:      input.Method,
		Reference:   input.Reference,
		Notes:       input.Notes,
	}

	db := config.GetDB()
	tx := db.Begin()
	if err := tx.WithContext(ctx).Create(&payment).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	sale.AmountPaid = newPaid
	if err := tx.WithContext(ctx).Save(&sale).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		return nil, err
	}
	return &payment, nil
}

// ApplyPurchasePayment settles part or all of a purchase bill.
func ApplyPurchasePayment(ctx context.Context, purchaseId int, input *NewPayment) (*PaymentRecord, error) {
	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}
	if err := input.validate(); err != nil {
		return nil, err
	}

	purchase, err := utils.FetchModel[Purchase](ctx, businessId, purchaseId)
	if err != nil {
		return nil, err
	}

	newPaid := purchase.AmountPaid.Add(input.Amount)
	if newPaid.GreaterThan(purchase.TotalAmount) {
		return nil, errors.New("payment exceeds the outstanding balance")
	}

	payment := PaymentRecord{
		BusinessId:  businessId,
		Side:        PaymentSidePayable,
		PurchaseId:  purchase.ID,
		Amount:      input.Amount,
		PaymentDate: input.PaymentDate,
		Method:      input.Method,
		Reference:   input.Reference,
		Notes:       input.Notes,
	}

	db := config.GetDB()
	tx := db.Begin()
	if err := tx.WithContext(ctx).Create(&payment).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	purchase.AmountPaid = newPaid
	if err := tx.WithContext(ctx).Save(&purchase).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		return nil, err
	}
	return &payment, nil
}

// DeletePayment reverses a settlement entry: the linked record's
// AmountPaid is reduced in the same transaction that removes the entry.
func DeletePayment(ctx context.Context, id int) (*PaymentRecord, error) {
	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}

	payment, err := utils.FetchModel[PaymentRecord](ctx, businessId, id)
	if err != nil {
		return nil, err
	}

	db := config.GetDB()
	tx := db.Begin()
	switch payment.Side {
	case PaymentSideReceivable:
		var sale Sale
		if err := tx.WithContext(ctx).Where("business_id = ?", businessId).First(&sale, payment.SaleId).Error; err != nil {
			tx.Rollback()
			return nil, err
		}
		sale.AmountPaid = sale.AmountPaid.Sub(payment.Amount)
		if sale.AmountPaid.IsNegative() {
			sale.AmountPaid = decimal.Zero
		}
		if err := tx.WithContext(ctx).Save(&sale).Error; err != nil {
			tx.Rollback()
			return nil, err
		}
	case PaymentSidePayable:
		var purchase Purchase
		if err := tx.WithContext(ctx).Where("business_id = ?", businessId).First(&purchase, payment.PurchaseId).Error; err != nil {
			tx.Rollback()
			return nil, err
		}
		purchase.AmountPaid = purchase.AmountPaid.Sub(payment.Amount)
		if purchase.AmountPaid.IsNegative() {
			purchase.AmountPaid = decimal.Zero
		}
		if err := tx.WithContext(ctx).Save(&purchase).Error; err != nil {
			tx.Rollback()
			return nil, err
		}
	default:
		tx.Rollback()
		return nil, errors.New("unknown payment side")
	}

	if err := tx.WithContext(ctx).Delete(&payment).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		return nil, err
	}
	return payment, nil
}

func GetPayments(ctx context.Context, side *PaymentSide) ([]*PaymentRecord, error) {
	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}

	db := config.GetDB()
	var results []*PaymentRecord
	dbCtx := db.WithContext(ctx).Where("business_id = ?", businessId)
	if side != nil && *side != "" {
		dbCtx = dbCtx.Where("side = ?", *side)
	}
	if err := dbCtx.Order("payment_date DESC, id DESC").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
