package models

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/stockflow/inventory_backend/config"
	"github.com/stockflow/inventory_backend/utils"
	"gorm.io/gorm"
)

// Business is the tenant. Every other record carries its ID.
type Business struct {
	ID        string    `gorm:"primary_key;size:36" json:"id"`
	Name      string    `gorm:"size:100;not null" json:"name"`
	Email     string    `gorm:"size:100" json:"email"`
	Phone     string    `gorm:"size:50" json:"phone"`
	Address   string    `gorm:"size:255" json:"address"`
	Currency  string    `gorm:"size:10;default:'MMK'" json:"currency"`
	IsActive  *bool     `gorm:"not null;default:true" json:"is_active"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewBusiness struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
	Currency string `json:"currency"`
}

func (b *Business) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	return nil
}

// createBusiness inserts the tenant row inside the caller's
// transaction so registration stays all-or-nothing.
func createBusiness(tx *gorm.DB, ctx context.Context, input *NewBusiness) (*Business, error) {
	if input.Email != "" && !utils.IsValidEmail(input.Email) {
		return nil, errors.New("invalid email")
	}

	business := Business{
		Name:     input.Name,
		Email:    input.Email,
		Phone:    input.Phone,
		Address:  input.Address,
		Currency: input.Currency,
		IsActive: utils.NewTrue(),
	}
	if business.Currency == "" {
		business.Currency = "MMK"
	}

	if err := tx.WithContext(ctx).Create(&business).Error; err != nil {
		return nil, err
	}
	return &business, nil
}

func GetBusiness(ctx context.Context, id string) (*Business, error) {
	db := config.GetDB()
	var business Business
	if err := db.WithContext(ctx).Where("id = ?", id).First(&business).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.ErrorRecordNotFound
		}
		return nil, err
	}
	return &business, nil
}

// DeleteBusinessData removes the tenant and everything it owns in a
// single transaction: either every owned record goes or none do. This
// is the one flow that must not be best-effort.
func DeleteBusinessData(ctx context.Context, businessId string) error {
	if businessId == "" {
		return errors.New("business id is required")
	}

	db := config.GetDB()
	var business Business
	if err := db.WithContext(ctx).Where("id = ?", businessId).First(&business).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.ErrorRecordNotFound
		}
		return err
	}

	// every cascade condition names the tenant explicitly; automatic
	// scoping would re-filter the detail-table subqueries
	ctx = utils.SetSkipTenantScopeInContext(ctx, true)

	tx := db.Begin()
	owned := []struct {
		model  interface{}
		column string
	}{
		{&PaymentRecord{}, "business_id"},
		{&SaleDetail{}, "sale_id IN (SELECT id FROM sales WHERE business_id = ?)"},
		{&Sale{}, "business_id"},
		{&PurchaseDetail{}, "purchase_id IN (SELECT id FROM purchases WHERE business_id = ?)"},
		{&Purchase{}, "business_id"},
		{&Client{}, "business_id"},
		{&Supplier{}, "business_id"},
		{&Product{}, "business_id"},
		{&Warehouse{}, "business_id"},
		{&User{}, "business_id"},
	}
	for _, o := range owned {
		condition := o.column
		if condition == "business_id" {
			condition = "business_id = ?"
		}
		if err := tx.WithContext(ctx).Where(condition, businessId).Delete(o.model).Error; err != nil {
			tx.Rollback()
			return fmt.Errorf("cascade delete failed: %w", err)
		}
	}
	if err := tx.WithContext(ctx).Where("id = ?", businessId).Delete(&Business{}).Error; err != nil {
		tx.Rollback()
		return fmt.Errorf("cascade delete failed: %w", err)
	}
	if err := tx.Commit().Error; err != nil {
		return err
	}

	// cached counters and projections are disposable; removal is best effort
	_ = config.RemoveRedisKey(businessId+"-sale_seq", businessId+"-purchase_seq", businessId+"-dashboard")
	return nil
}
