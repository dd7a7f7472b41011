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

// Client is the buyer-side counterparty aggregate. CurrentCredit,
// OverdueAmount and CreditStatus are a derived projection over the
// client's unpaid sales; they are refreshed incrementally on payment
// events and authoritatively by the aggregation pass (see reconcile.go).
// LastReconciledAt marks when the projection was last recomputed from
// scratch, so staleness is explicit rather than silent.
type Client struct {
	ID               int             `gorm:"primary_key" json:"id"`
	BusinessId       string          `gorm:"index;not null" json:"business_id"`
	Name             string          `gorm:"size:100;not null" json:"name"`
	Email            string          `gorm:"size:100" json:"email"`
	Phone            string          `gorm:"size:20" json:"phone"`
	Address          string          `gorm:"type:text" json:"address"`
	CreditLimit      decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"credit_limit"`
	CreditStatus     CreditStatus    `gorm:"size:20;not null;default:'Good'" json:"credit_status"`
	CurrentCredit    decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"current_credit"`
	OverdueAmount    decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"overdue_amount"`
	OverpaidAmount   decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"overpaid_amount"`
	OpeningBalance   decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"opening_balance"`
	TotalRevenue     decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"total_revenue"`
	SalesCount       int             `gorm:"default:0" json:"sales_count"`
	LastSaleDate     *time.Time      `json:"last_sale_date"`
	LastReconciledAt *time.Time      `json:"last_reconciled_at"`
	IsActive         *bool           `gorm:"not null;default:true" json:"is_active"`
	CreatedAt        time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewClient struct {
	Name           string          `json:"name" binding:"required"`
	Email          string          `json:"email"`
	Phone          string          `json:"phone"`
	Address        string          `json:"address"`
	CreditLimit    decimal.Decimal `json:"credit_limit"`
	OpeningBalance decimal.Decimal `json:"opening_balance"`
}

// CreditDecision is the outcome of the advisory credit-limit check.
// Available is only populated on rejection.
type CreditDecision struct {
	Allowed   bool             `json:"allowed"`
	Reason    string           `json:"reason,omitempty"`
	Available *decimal.Decimal `json:"available,omitempty"`
}

// CanExtendCredit checks whether a new credit sale of proposedAmount
// fits under the client's limit. A zero limit means unlimited. The
// check reads CurrentCredit, which may be stale relative to sales not
// yet reconciled; it is advisory, not a hard guarantee under
// concurrent writes.
func (c *Client) CanExtendCredit(proposedAmount decimal.Decimal) CreditDecision {
	if proposedAmount.IsNegative() {
		return CreditDecision{Allowed: false, Reason: "proposed amount cannot be negative"}
	}
	if c.CreditStatus == CreditStatusBlocked {
		return CreditDecision{Allowed: false, Reason: "client credit is blocked"}
	}
	if c.CreditLimit.IsZero() {
		return CreditDecision{Allowed: true}
	}
	newTotal := c.CurrentCredit.Add(proposedAmount)
	if newTotal.LessThanOrEqual(c.CreditLimit) {
		return CreditDecision{Allowed: true}
	}
	available := c.CreditLimit.Sub(c.CurrentCredit)
	return CreditDecision{
		Allowed:   false,
		Reason:    "credit limit exceeded",
		Available: &available,
	}
}

func (input *NewClient) validate(ctx context.Context, businessId string, id int) error {
	if id > 0 {
		if err := utils.ValidateResourceId[Client](ctx, businessId, id); err != nil {
			return err
		}
	}
	if err := utils.ValidateUnique[Client](ctx, businessId, "name", input.Name, id); err != nil {
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
	if input.CreditLimit.IsNegative() {
		return errors.New("credit limit cannot be negative")
	}
	return nil
}

func CreateClient(ctx context.Context, input *NewClient) (*Client, error) {
	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}

	if err := input.validate(ctx, businessId, 0); err != nil {
		return nil, err
	}

	client := Client{
		BusinessId:     businessId,
		Name:           input.Name,
		Email:          input.Email,
		Phone:          input.Phone,
		Address:        input.Address,
		CreditLimit:    input.CreditLimit,
		CreditStatus:   CreditStatusGood,
		OpeningBalance: input.OpeningBalance,
		IsActive:       utils.NewTrue(),
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&client).Error; err != nil {
		return nil, err
	}
	return &client, nil
}

func UpdateClient(ctx context.Context, id int, input *NewClient) (*Client, error) {
	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}

	if err := input.validate(ctx, businessId, id); err != nil {
		return nil, err
	}

	client, err := utils.FetchModel[Client](ctx, businessId, id)
	if err != nil {
		return nil, err
	}

	// OpeningBalance is fixed at creation and never mutated.
	db := config.GetDB()
	err = db.WithContext(ctx).Model(&client).Updates(map[string]interface{}{
		"Name":        input.Name,
		"Email":       input.Email,
		"Phone":       input.Phone,
		"Address":     input.Address,
		"CreditLimit": input.CreditLimit,
	}).Error
	if err != nil {
		return nil, err
	}

	client.CreditStatus = creditStatusFor(client.CurrentCredit, input.CreditLimit)
	if err := db.WithContext(ctx).Model(&client).Update("CreditStatus", client.CreditStatus).Error; err != nil {
		return nil, err
	}
	return client, nil
}

func DeleteClient(ctx context.Context, id int) (*Client, error) {
	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}

	result, err := utils.FetchModel[Client](ctx, businessId, id)
	if err != nil {
		return nil, err
	}

	count, err := utils.ResourceCountWhere[Sale](ctx, businessId, "client_id = ?", id)
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, errors.New("sale associated with client exists")
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Delete(&result).Error; err != nil {
		return nil, err
	}
	return result, nil
}

func GetClient(ctx context.Context, id int) (*Client, error) {
	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}
	return utils.FetchModel[Client](ctx, businessId, id)
}

func GetClients(ctx context.Context, name *string) ([]*Client, error) {
	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}

	db := config.GetDB()
	var results []*Client
	dbCtx := db.WithContext(ctx).Where("business_id = ?", businessId)
	if name != nil && len(*name) > 0 {
		dbCtx = dbCtx.Where("name LIKE ?", "%"+*name+"%")
	}
	if err := dbCtx.Order("name").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// upsertClientForSale looks the client up by name and either creates it
// seeded from this sale or increments the lifetime counters. Contact
// fields are backfilled only when previously empty; existing values are
// never overwritten. Credit fields are NOT touched here: they become
// correct on the next payment event or aggregation pass.
func upsertClientForSale(tx *gorm.DB, ctx context.Context, businessId string, input *NewSale, saleDate time.Time) (*Client, error) {
	var client Client
	err := tx.WithContext(ctx).
		Where("business_id = ? AND name = ?", businessId, input.ClientName).
		First(&client).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		client = Client{
			BusinessId:   businessId,
			Name:         input.ClientName,
			Email:        input.ClientEmail,
			Phone:        input.ClientPhone,
			CreditStatus: CreditStatusGood,
			TotalRevenue: input.TotalAmount,
			SalesCount:   1,
			LastSaleDate: &saleDate,
			IsActive:     utils.NewTrue(),
		}
		if err := tx.WithContext(ctx).Create(&client).Error; err != nil {
			return nil, err
		}
		return &client, nil
	}

	client.TotalRevenue = client.TotalRevenue.Add(input.TotalAmount)
	client.SalesCount++
	client.LastSaleDate = &saleDate
	if client.Email == "" && input.ClientEmail != "" {
		client.Email = input.ClientEmail
	}
	if client.Phone == "" && input.ClientPhone != "" {
		client.Phone = input.ClientPhone
	}
	if err := tx.WithContext(ctx).Save(&client).Error; err != nil {
		return nil, err
	}
	return &client, nil
}

// rollbackClientForSale reverses the lifetime counters when a sale is
// voided. Counters are clamped at zero so inconsistent data can never
// drive them negative.
func rollbackClientForSale(tx *gorm.DB, ctx context.Context, businessId string, clientId int, totalAmount decimal.Decimal) error {
	var client Client
	err := tx.WithContext(ctx).
		Where("business_id = ?", businessId).
		First(&client, clientId).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}

	client.TotalRevenue = client.TotalRevenue.Sub(totalAmount)
	if client.TotalRevenue.IsNegative() {
		client.TotalRevenue = decimal.Zero
	}
	if client.SalesCount > 0 {
		client.SalesCount--
	}
	return tx.WithContext(ctx).Save(&client).Error
}
