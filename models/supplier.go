package models

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stockflow/inventory_backend/config"
	"github.com/stockflow/inventory_backend/utils"
	"gorm.io/gorm"
)

// Supplier is the seller-side counterparty aggregate, the payable
// mirror of Client. No credit-limit policy applies on this side.
type Supplier struct {
	ID               int             `gorm:"primary_key" json:"id"`
	BusinessId       string          `gorm:"index;not null" json:"business_id"`
	Name             string          `gorm:"size:100;not null" json:"name"`
	Email            string          `gorm:"size:100" json:"email"`
	Phone            string          `gorm:"size:20" json:"phone"`
	Address          string          `gorm:"type:text" json:"address"`
	CurrentPayable   decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"current_payable"`
	OverduePayable   decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"overdue_payable"`
	OverpaidAmount   decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"overpaid_amount"`
	OpeningBalance   decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"opening_balance"`
	TotalPurchases   decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"total_purchases"`
	PurchaseCount    int             `gorm:"default:0" json:"purchase_count"`
	LastPurchaseDate *time.Time      `json:"last_purchase_date"`
	LastReconciledAt *time.Time      `json:"last_reconciled_at"`
	IsActive         *bool           `gorm:"not null;default:true" json:"is_active"`
	CreatedAt        time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewSupplier struct {
	Name           string          `json:"name" binding:"required"`
	Email          string          `json:"email"`
	Phone          string          `json:"phone"`
	Address        string          `json:"address"`
	OpeningBalance decimal.Decimal `json:"opening_balance"`
}

func (input *NewSupplier) validate(ctx context.Context, businessId string, id int) error {
	if id > 0 {
		if err := utils.ValidateResourceId[Supplier](ctx, businessId, id); err != nil {
			return err
		}
	}
	if err := utils.ValidateUnique[Supplier](ctx, businessId, "name", input.Name, id); err != nil {
		return err
	}
	if input.Email != "" && !utils.IsValidEmail(input.Email) {
		return errors.New("invalid email")
	}
	if input.Phone != "" {
		if err := utils.ValidatePhoneNumber(input.Phone, utils.CountryCode); err != nil {
			return errors.New("invalid phone number")
		}
	}
	return nil
}

func CreateSupplier(ctx context.Context, input *NewSupplier) (*Supplier, error) {
	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}

	if err := input.validate(ctx, businessId, 0); err != nil {
		return nil, err
	}

	supplier := Supplier{
		BusinessId:     businessId,
		Name:           input.Name,
		Email:          input.Email,
		Phone:          input.Phone,
		Address:        input.Address,
		OpeningBalance: input.OpeningBalance,
		IsActive:       utils.NewTrue(),
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&supplier).Error; err != nil {
		return nil, err
	}
	return &supplier, nil
}

func UpdateSupplier(ctx context.Context, id int, input *NewSupplier) (*Supplier, error) {
	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}

	if err := input.validate(ctx, businessId, id); err != nil {
		return nil, err
	}

	supplier, err := utils.FetchModel[Supplier](ctx, businessId, id)
	if err != nil {
		return nil, err
	}

	// OpeningBalance is fixed at creation and never mutated.
	db := config.GetDB()
	err = db.WithContext(ctx).Model(&supplier).Updates(map[string]interface{}{
		"Name":    input.Name,
		"Email":   input.Email,
		"Phone":   input.Phone,
		"Address": input.Address,
	}).Error
	if err != nil {
		return nil, err
	}
	return supplier, nil
}

func DeleteSupplier(ctx context.Context, id int) (*Supplier, error) {
	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}

	result, err := utils.FetchModel[Supplier](ctx, businessId, id)
	if err != nil {
		return nil, err
	}

	count, err := utils.ResourceCountWhere[Purchase](ctx, businessId, "supplier_id = ?", id)
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, errors.New("purchase associated with supplier exists")
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Delete(&result).Error; err != nil {
		return nil, err
	}
	return result, nil
}

func GetSupplier(ctx context.Context, id int) (*Supplier, error) {
	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}
	return utils.FetchModel[Supplier](ctx, businessId, id)
}

func GetSuppliers(ctx context.Context, name *string) ([]*Supplier, error) {
	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}

	db := config.GetDB()
	var results []*Supplier
	dbCtx := db.WithContext(ctx).Where("business_id = ?", businessId)
	if name != nil && len(*name) > 0 {
		dbCtx = dbCtx.Where("name LIKE ?", "%"+*name+"%")
	}
	if err := dbCtx.Order("name").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// upsertSupplierForPurchase mirrors upsertClientForSale for the payable
// side: create seeded from this purchase or increment the lifetime
// counters, backfilling empty contact fields only.
func upsertSupplierForPurchase(tx *gorm.DB, ctx context.Context, businessId string, input *NewPurchase, purchaseDate time.Time) (*Supplier, error) {
	var supplier Supplier
	err := tx.WithContext(ctx).
		Where("business_id = ? AND name = ?", businessId, input.SupplierName).
		First(&supplier).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		supplier = Supplier{
			BusinessId:       businessId,
			Name:             input.SupplierName,
			Email:            input.SupplierEmail,
			Phone:            input.SupplierPhone,
			TotalPurchases:   input.TotalAmount,
			PurchaseCount:    1,
			LastPurchaseDate: &purchaseDate,
			IsActive:         utils.NewTrue(),
		}
		if err := tx.WithContext(ctx).Create(&supplier).Error; err != nil {
			return nil, err
		}
		return &supplier, nil
	}

	supplier.TotalPurchases = supplier.TotalPurchases.Add(input.TotalAmount)
	supplier.PurchaseCount++
	supplier.LastPurchaseDate = &purchaseDate
	if supplier.Email == "" && input.SupplierEmail != "" {
		supplier.Email = input.SupplierEmail
	}
	if supplier.Phone == "" && input.SupplierPhone != "" {
		supplier.Phone = input.SupplierPhone
	}
	if err := tx.WithContext(ctx).Save(&supplier).Error; err != nil {
		return nil, err
	}
	return &supplier, nil
}

func rollbackSupplierForPurchase(tx *gorm.DB, ctx context.Context, businessId string, supplierId int, totalAmount decimal.Decimal) error {
	var supplier Supplier
	err := tx.WithContext(ctx).
		Where("business_id = ?", businessId).
		First(&supplier, supplierId).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}

	supplier.TotalPurchases = supplier.TotalPurchases.Sub(totalAmount)
	if supplier.TotalPurchases.IsNegative() {
		supplier.TotalPurchases = decimal.Zero
	}
	if supplier.PurchaseCount > 0 {
		supplier.PurchaseCount--
	}
	return tx.WithContext(ctx).Save(&supplier).Error
}
