package models

import "time"

// Account represents a money account (wallet, bank, card...).
// Amounts are stored in cents to avoid float error, e.g. 12.34 = 1234.
//
// Balance is the opening balance; CurrentBalance is the running balance kept
// in sync by the ledger package. CurrentBalance is nullable: rows written
// before the column existed carry NULL and are backfilled to Balance the
// first time a mutation loads them.
type Account struct {
	ID             uint   `gorm:"primaryKey"`
	UserID         uint   `gorm:"index;not null"`
	Name           string `gorm:"size:64;not null"`
	Balance        int64  `gorm:"not null"`
	CurrentBalance *int64
	Color          string `gorm:"size:16;not null"`
	CreatedAt      time.Time
	UpdatedAt      time.Time

	User User `gorm:"constraint:OnDelete:CASCADE"`
}

// EffectiveBalance returns CurrentBalance, falling back to the opening
// balance for rows that have not been backfilled yet. Read-only; it never
// persists the backfill.
func (a *Account) EffectiveBalance() int64 {
	if a.CurrentBalance != nil {
		return *a.CurrentBalance
	}
	return a.Balance
}
