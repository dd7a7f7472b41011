package models

import (
	"context"
	"errors"
	"time"

	"github.com/stockflow/inventory_backend/config"
	"github.com/stockflow/inventory_backend/utils"
	"gorm.io/gorm"
)

type User struct {
	ID         int       `gorm:"primary_key" json:"id"`
	BusinessId string    `gorm:"index;not null" json:"business_id"`
	Name       string    `gorm:"size:100;not null" json:"name"`
	Email      string    `gorm:"size:100;not null;uniqueIndex" json:"email"`
	Phone      string    `gorm:"size:50" json:"phone"`
	Password   string    `gorm:"size:255;not null" json:"-"`
	Role       string    `gorm:"size:20;not null;default:'staff'" json:"role"`
	IsActive   *bool     `gorm:"not null;default:true" json:"is_active"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type RegisterInput struct {
	BusinessName string `json:"business_name" binding:"required"`
	Name         string `json:"name" binding:"required"`
	Email        string `json:"email" binding:"required"`
	Phone        string `json:"phone"`
	Password     string `json:"password" binding:"required,min=6"`
}

type LoginInput struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Register provisions a new tenant: the business and its owner account
// are created together.
func Register(ctx context.Context, input *RegisterInput) (*User, string, error) {
	if !utils.IsValidEmail(input.Email) {
		return nil, "", errors.New("invalid email")
	}
	if input.Phone != "" {
		if err := utils.ValidatePhoneNumber(input.Phone, utils.CountryCode); err != nil {
			return nil, "", errors.New("invalid phone number")
		}
	}

	db := config.GetDB()
	var count int64
	if err := db.WithContext(ctx).Model(&User{}).Where("email = ?", input.Email).Count(&count).Error; err != nil {
		return nil, "", err
	}
	if count > 0 {
		return nil, "", errors.New("email already registered")
	}

	hashed, err := utils.HashPassword(input.Password)
	if err != nil {
		return nil, "", err
	}

	user := User{
		Name:     input.Name,
		Email:    input.Email,
		Phone:    input.Phone,
		Password: string(hashed),
		Role:     "owner",
		IsActive: utils.NewTrue(),
	}

	tx := db.Begin()
	business, err := createBusiness(tx, ctx, &NewBusiness{
		Name:  input.BusinessName,
		Email: input.Email,
		Phone: input.Phone,
	})
	if err != nil {
		tx.Rollback()
		return nil, "", err
	}
	user.BusinessId = business.ID
	if err := tx.WithContext(ctx).Create(&user).Error; err != nil {
		tx.Rollback()
		return nil, "", err
	}
	if err := tx.Commit().Error; err != nil {
		return nil, "", err
	}

	token, err := utils.JwtGenerate(user.ID, user.BusinessId)
	if err != nil {
		return nil, "", err
	}
	return &user, token, nil
}

func Login(ctx context.Context, input *LoginInput) (*User, string, error) {
	db := config.GetDB()
	var user User
	if err := db.WithContext(ctx).Where("email = ?", input.Email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", errors.New("invalid credentials")
		}
		return nil, "", err
	}
	if user.IsActive != nil && !*user.IsActive {
		return nil, "", errors.New("account is disabled")
	}
	if err := utils.ComparePassword(user.Password, input.Password); err != nil {
		return nil, "", errors.New("invalid credentials")
	}

	token, err := utils.JwtGenerate(user.ID, user.BusinessId)
	if err != nil {
		return nil, "", err
	}
	return &user, token, nil
}

func GetUser(ctx context.Context, id int) (*User, error) {
	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}
	return utils.FetchModel[User](ctx, businessId, id)
}
