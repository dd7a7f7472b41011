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

type Product struct {
	ID            int             `gorm:"primary_key" json:"id"`
	BusinessId    string          `gorm:"index;not null" json:"business_id"`
	WarehouseId   int             `gorm:"default:0" json:"warehouse_id"`
	Name          string          `gorm:"size:100;not null" json:"name"`
	Sku           string          `gorm:"size:100" json:"sku"`
	Unit          string          `gorm:"size:50" json:"unit"`
	SalesPrice    decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"sales_price"`
	PurchasePrice decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"purchase_price"`
	StockQty      decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"stock_qty"`
	ReorderLevel  decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"reorder_level"`
	IsActive      *bool           `gorm:"not null;default:true" json:"is_active"`
	CreatedAt     time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewProduct struct {
	Name          string          `json:"name" binding:"required"`
	Sku           string          `json:"sku"`
	Unit          string          `json:"unit"`
	WarehouseId   int             `json:"warehouse_id"`
	SalesPrice    decimal.Decimal `json:"sales_price"`
	PurchasePrice decimal.Decimal `json:"purchase_price"`
	StockQty      decimal.Decimal `json:"stock_qty"`
	ReorderLevel  decimal.Decimal `json:"reorder_level"`
	IsActive      *bool           `json:"is_active"`
}

func (input *NewProduct) validate(ctx context.Context, businessId string, id int) error {
	if input.Name == "" {
		return errors.New("product name is required")
	}
	if err := utils.ValidateUnique[Product](ctx, businessId, "name", input.Name, id); err != nil {
		return errors.New("product name already exists")
	}
	if input.Sku != "" {
		if err := utils.ValidateUnique[Product](ctx, businessId, "sku", input.Sku, id); err != nil {
			return errors.New("product sku already exists")
		}
	}
	if input.SalesPrice.IsNegative() || input.PurchasePrice.IsNegative() {
		return errors.New("price cannot be negative")
	}
	if input.StockQty.IsNegative() {
		return errors.New("stock qty cannot be negative")
	}
	if input.WarehouseId > 0 {
		if err := utils.ValidateResourceId[Warehouse](ctx, businessId, input.WarehouseId); err != nil {
			return errors.New("warehouse not found")
		}
	}
	return nil
}

func CreateProduct(ctx context.Context, input *NewProduct) (*Product, error) {
	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}
	if err := input.validate(ctx, businessId, 0); err != nil {
		return nil, err
	}

	product := Product{
		BusinessId:    businessId,
		WarehouseId:   input.WarehouseId,
		Name:          input.Name,
		Sku:           input.Sku,
		Unit:          input.Unit,
		SalesPrice:    input.SalesPrice,
		PurchasePrice: input.PurchasePrice,
		StockQty:      input.StockQty,
		ReorderLevel:  input.ReorderLevel,
		IsActive:      input.IsActive,
	}
	if product.IsActive == nil {
		product.IsActive = utils.NewTrue()
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&product).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

func UpdateProduct(ctx context.Context, id int, input *NewProduct) (*Product, error) {
	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}
	if err := input.validate(ctx, businessId, id); err != nil {
		return nil, err
	}

	product, err := utils.FetchModel[Product](ctx, businessId, id)
	if err != nil {
		return nil, err
	}

	product.Name = input.Name
	product.Sku = input.Sku
	product.Unit = input.Unit
	product.WarehouseId = input.WarehouseId
	product.SalesPrice = input.SalesPrice
	product.PurchasePrice = input.PurchasePrice
	product.ReorderLevel = input.ReorderLevel
	if input.IsActive != nil {
		product.IsActive = input.IsActive
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Save(&product).Error; err != nil {
		return nil, err
	}
	return product, nil
}

func DeleteProduct(ctx context.Context, id int) (*Product, error) {
	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}

	product, err := utils.FetchModel[Product](ctx, businessId, id)
	if err != nil {
		return nil, err
	}

	count, err := utils.ResourceCountWhere[SaleDetail](ctx, businessId, "product_id = ?", id)
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, errors.New("product has sales records and cannot be deleted")
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Delete(&product).Error; err != nil {
		return nil, err
	}
	return product, nil
}

func GetProduct(ctx context.Context, id int) (*Product, error) {
	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}
	return utils.FetchModel[Product](ctx, businessId, id)
}

func GetProducts(ctx context.Context) ([]*Product, error) {
	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}
	return utils.FetchAllModels[Product](ctx, businessId)
}

// GetLowStockProducts lists active products at or below their reorder
// level; the count feeds the dashboard.
func GetLowStockProducts(ctx context.Context) ([]*Product, error) {
	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}

	db := config.GetDB()
	var results []*Product
	if err := db.WithContext(ctx).
		Where("business_id = ? AND is_active = ? AND stock_qty <= reorder_level", businessId, true).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// adjustProductStock moves a product's quantity by delta inside the
// caller's transaction. Negative stock is allowed; oversold quantities
// surface on the low-stock report rather than blocking the sale.
func adjustProductStock(tx *gorm.DB, ctx context.Context, businessId string, productId int, delta decimal.Decimal) error {
	var product Product
	if err := tx.WithContext(ctx).
		Where("business_id = ?", businessId).
		First(&product, productId).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("product %d not found", productId)
		}
		return err
	}
	product.StockQty = product.StockQty.Add(delta)
	return tx.WithContext(ctx).Save(&product).Error
}
