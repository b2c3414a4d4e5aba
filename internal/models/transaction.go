package models

import "time"

// Transaction represents a single income or expense entry. Every persisted
// transaction has already been applied to its account's running balance; the
// ledger package owns that lifecycle.
type Transaction struct {
	ID          uint      `gorm:"primaryKey"`
	UserID      uint      `gorm:"index;not null"`
	Amount      int64     `gorm:"not null"` // cents, always positive; sign comes from Type
	Description string    `gorm:"size:255"`
	Date        time.Time `gorm:"index;not null"`
	Type        string    `gorm:"size:16;index;not null"` // income / expense
	CategoryID  uint      `gorm:"index;not null"`
	AccountID   uint      `gorm:"index;not null"`
	CreatedAt   time.Time
	UpdatedAt   time.Time

	User     User     `gorm:"constraint:OnDelete:CASCADE"`
	Category Category `gorm:"constraint:OnDelete:RESTRICT"`
	Account  Account  `gorm:"constraint:OnDelete:RESTRICT"`
}
