package database

import (
	"fmt"

	"github.com/AshirwadShaligram/finance-backend/internal/models"

	"gorm.io/gorm"
)

// AutoMigrate runs database schema migrations for all models.
//
// Account.current_balance was added after the first release; AutoMigrate adds
// the nullable column but leaves prior rows NULL. The ledger package
// backfills those lazily (current_balance := balance) the first time a
// mutation loads the account.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.User{},
		&models.Account{},
		&models.Category{},
		&models.Transaction{},
		&models.AuditLog{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}
