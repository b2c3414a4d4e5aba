package models

import "time"

// Transaction / category types.
const (
	TypeIncome  = "income"
	TypeExpense = "expense"
)

// Category represents a user-defined income/expense tag.
type Category struct {
	ID        uint   `gorm:"primaryKey"`
	UserID    uint   `gorm:"index;not null"`
	Name      string `gorm:"size:64;not null"`
	Type      string `gorm:"size:16;index;not null"` // income / expense
	Color     string `gorm:"size:16;not null"`
	CreatedAt time.Time
	UpdatedAt time.Time

	User User `gorm:"constraint:OnDelete:CASCADE"`
}
