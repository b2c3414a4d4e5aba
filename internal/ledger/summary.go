package ledger

import (
	"fmt"

	"github.com/AshirwadShaligram/finance-backend/internal/models"

	"gorm.io/gorm"
)

// AccountSummary is the per-account slice of a Summary. Amounts in cents.
type AccountSummary struct {
	ID             uint
	Name           string
	InitialBalance int64
	CurrentBalance int64
	Color          string
}

// Summary aggregates a user's full ledger and account set. Amounts in cents.
type Summary struct {
	TotalIncome         int64
	TotalExpense        int64
	NetBalance          int64 // sum of running balances across accounts
	TotalInitialBalance int64 // sum of opening balances across accounts
	Accounts            []AccountSummary
}

// Summarize recomputes the summary from persisted state. It is a pure
// read-side projection: accounts that still lack a running balance are read
// through their opening balance without being backfilled.
func Summarize(db *gorm.DB, userID uint) (*Summary, error) {
	var txns []models.Transaction
	if err := db.Where("user_id = ?", userID).Find(&txns).Error; err != nil {
		return nil, fmt.Errorf("load transactions: %w", err)
	}

	var accounts []models.Account
	if err := db.Where("user_id = ?", userID).Order("id ASC").Find(&accounts).Error; err != nil {
		return nil, fmt.Errorf("load accounts: %w", err)
	}

	s := &Summary{Accounts: make([]AccountSummary, 0, len(accounts))}

	for i := range txns {
		if txns[i].Type == models.TypeIncome {
			s.TotalIncome += txns[i].Amount
		} else {
			s.TotalExpense += txns[i].Amount
		}
	}

	for i := range accounts {
		a := &accounts[i]
		cur := a.EffectiveBalance()
		s.NetBalance += cur
		s.TotalInitialBalance += a.Balance
		s.Accounts = append(s.Accounts, AccountSummary{
			ID:             a.ID,
			Name:           a.Name,
			InitialBalance: a.Balance,
			CurrentBalance: cur,
			Color:          a.Color,
		})
	}

	return s, nil
}
