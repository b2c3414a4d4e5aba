// Package ledger owns the account-balance lifecycle of transactions: every
// create, update, and delete applies or reverts the transaction's effect on
// its account's running balance, and the two must never go out of sync. All
// mutations run inside a single database transaction, so the account write
// and the transaction write commit or roll back together.
package ledger

import (
	"errors"
	"fmt"
	"time"

	"github.com/AshirwadShaligram/finance-backend/internal/models"

	"gorm.io/gorm"
)

// ErrAccountNotFound is returned when the referenced account does not exist
// or belongs to another user. The two cases are indistinguishable on purpose.
var ErrAccountNotFound = errors.New("account not found")

// LoadAccount fetches an account owned by userID for mutation, backfilling
// current_balance from the opening balance on rows that predate the column.
// The backfill persists the first time any mutation touches the account.
func LoadAccount(tx *gorm.DB, userID, accountID uint) (*models.Account, error) {
	var acc models.Account
	if err := tx.Where("id = ? AND user_id = ?", accountID, userID).First(&acc).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("load account: %w", err)
	}
	if acc.CurrentBalance == nil {
		cur := acc.Balance
		acc.CurrentBalance = &cur
		if err := tx.Model(&acc).Update("current_balance", cur).Error; err != nil {
			return nil, fmt.Errorf("backfill current balance: %w", err)
		}
	}
	return &acc, nil
}

// apply adds a transaction's signed effect to the running balance.
func apply(acc *models.Account, txType string, amount int64) {
	if txType == models.TypeIncome {
		*acc.CurrentBalance += amount
	} else {
		*acc.CurrentBalance -= amount
	}
}

// revert is the exact inverse of apply.
func revert(acc *models.Account, txType string, amount int64) {
	if txType == models.TypeIncome {
		*acc.CurrentBalance -= amount
	} else {
		*acc.CurrentBalance += amount
	}
}

// Create applies the transaction to its account and persists both. If the
// account is missing the whole operation fails and nothing is written.
func Create(db *gorm.DB, txn *models.Transaction) error {
	return db.Transaction(func(tx *gorm.DB) error {
		acc, err := LoadAccount(tx, txn.UserID, txn.AccountID)
		if err != nil {
			return err
		}
		apply(acc, txn.Type, txn.Amount)
		if err := tx.Save(acc).Error; err != nil {
			return fmt.Errorf("save account: %w", err)
		}
		if err := tx.Create(txn).Error; err != nil {
			return fmt.Errorf("create transaction: %w", err)
		}
		return nil
	})
}

// Patch describes a partial transaction update. A nil field means "no
// change"; zero values are therefore representable (though a zero amount is
// rejected by validation upstream).
type Patch struct {
	Amount      *int64
	Description *string
	Date        *time.Time
	Type        *string
	CategoryID  *uint
	AccountID   *uint
}

// financial reports whether the patch changes any field that affects a
// running balance: amount, type, or account.
func (p Patch) financial(txn *models.Transaction) bool {
	if p.Amount != nil && *p.Amount != txn.Amount {
		return true
	}
	if p.Type != nil && *p.Type != txn.Type {
		return true
	}
	if p.AccountID != nil && *p.AccountID != txn.AccountID {
		return true
	}
	return false
}

func (p Patch) applyTo(txn *models.Transaction) {
	if p.Amount != nil {
		txn.Amount = *p.Amount
	}
	if p.Description != nil {
		txn.Description = *p.Description
	}
	if p.Date != nil {
		txn.Date = *p.Date
	}
	if p.Type != nil {
		txn.Type = *p.Type
	}
	if p.CategoryID != nil {
		txn.CategoryID = *p.CategoryID
	}
	if p.AccountID != nil {
		txn.AccountID = *p.AccountID
	}
}

// Update applies a partial update to a transaction, reconciling balances:
// the old effect is reverted from the old account, then the new effect is
// applied to the (possibly different) new account. When old and new account
// coincide the second load observes the reverted state, so the two steps
// compose into the net delta. Updates that touch no financial field skip the
// revert/apply cycle entirely.
//
// A missing old account fails the whole update. The delete guard on accounts
// makes a dangling reference impossible through the API, so hitting that
// path means the data is already corrupt and adjusting blindly would corrupt
// it further.
func Update(db *gorm.DB, txn *models.Transaction, p Patch) error {
	return db.Transaction(func(tx *gorm.DB) error {
		if !p.financial(txn) {
			p.applyTo(txn)
			if err := tx.Save(txn).Error; err != nil {
				return fmt.Errorf("save transaction: %w", err)
			}
			return nil
		}

		oldAcc, err := LoadAccount(tx, txn.UserID, txn.AccountID)
		if err != nil {
			return err
		}
		revert(oldAcc, txn.Type, txn.Amount)
		if err := tx.Save(oldAcc).Error; err != nil {
			return fmt.Errorf("save account: %w", err)
		}

		p.applyTo(txn)

		newAcc, err := LoadAccount(tx, txn.UserID, txn.AccountID)
		if err != nil {
			return err
		}
		apply(newAcc, txn.Type, txn.Amount)
		if err := tx.Save(newAcc).Error; err != nil {
			return fmt.Errorf("save account: %w", err)
		}

		if err := tx.Save(txn).Error; err != nil {
			return fmt.Errorf("save transaction: %w", err)
		}
		return nil
	})
}

// Delete reverts the transaction's effect on its account and removes the
// record. Like Update, a missing account fails the whole operation.
func Delete(db *gorm.DB, txn *models.Transaction) error {
	return db.Transaction(func(tx *gorm.DB) error {
		acc, err := LoadAccount(tx, txn.UserID, txn.AccountID)
		if err != nil {
			return err
		}
		revert(acc, txn.Type, txn.Amount)
		if err := tx.Save(acc).Error; err != nil {
			return fmt.Errorf("save account: %w", err)
		}
		if err := tx.Delete(txn).Error; err != nil {
			return fmt.Errorf("delete transaction: %w", err)
		}
		return nil
	})
}
