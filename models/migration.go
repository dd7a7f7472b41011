package models

import (
	"github.com/stockflow/inventory_backend/config"
)

func MigrateTable() error {
	db := config.GetDB()
	return db.AutoMigrate(
		&Business{},
		&User{},
		&Warehouse{},
		&Product{},
		&Client{},
		&Supplier{},
		&Sale{},
		&SaleDetail{},
		&Purchase{},
		&PurchaseDetail{},
		&PaymentRecord{},
	)
}
