package ledger

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/AshirwadShaligram/finance-backend/internal/database"
	"github.com/AshirwadShaligram/finance-backend/internal/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := database.AutoMigrate(db); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return db
}

func seedUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	user := models.User{Name: "Test", Email: "test@example.com", PasswordHash: "x"}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return &user
}

func seedAccount(t *testing.T, db *gorm.DB, userID uint, opening int64) *models.Account {
	t.Helper()
	cur := opening
	acc := models.Account{UserID: userID, Name: "Wallet", Balance: opening, CurrentBalance: &cur, Color: "#112233"}
	if err := db.Create(&acc).Error; err != nil {
		t.Fatalf("seed account: %v", err)
	}
	return &acc
}

func seedCategory(t *testing.T, db *gorm.DB, userID uint, typ string) *models.Category {
	t.Helper()
	cat := models.Category{UserID: userID, Name: typ, Type: typ, Color: "#445566"}
	if err := db.Create(&cat).Error; err != nil {
		t.Fatalf("seed category: %v", err)
	}
	return &cat
}

func currentBalance(t *testing.T, db *gorm.DB, accountID uint) int64 {
	t.Helper()
	var acc models.Account
	if err := db.First(&acc, accountID).Error; err != nil {
		t.Fatalf("reload account: %v", err)
	}
	if acc.CurrentBalance == nil {
		t.Fatalf("account %d has no current balance", accountID)
	}
	return *acc.CurrentBalance
}

func newTxn(userID uint, acc *models.Account, cat *models.Category, typ string, amount int64) *models.Transaction {
	return &models.Transaction{
		UserID:     userID,
		Amount:     amount,
		Date:       time.Now(),
		Type:       typ,
		CategoryID: cat.ID,
		AccountID:  acc.ID,
	}
}

// TestCreateAppliesEffect verifies income adds to and expense subtracts from
// the running balance.
func TestCreateAppliesEffect(t *testing.T) {
	db := testDB(t)
	user := seedUser(t, db)
	acc := seedAccount(t, db, user.ID, 10000)
	income := seedCategory(t, db, user.ID, models.TypeIncome)
	expense := seedCategory(t, db, user.ID, models.TypeExpense)

	if err := Create(db, newTxn(user.ID, acc, income, models.TypeIncome, 2500)); err != nil {
		t.Fatalf("create income: %v", err)
	}
	if got := currentBalance(t, db, acc.ID); got != 12500 {
		t.Errorf("after income: currentBalance = %d, want 12500", got)
	}

	if err := Create(db, newTxn(user.ID, acc, expense, models.TypeExpense, 500)); err != nil {
		t.Fatalf("create expense: %v", err)
	}
	if got := currentBalance(t, db, acc.ID); got != 12000 {
		t.Errorf("after expense: currentBalance = %d, want 12000", got)
	}
}

// TestLifecycleScenario walks the canonical sequence: open at 1000, income
// 200 -> 1200, expense 300 -> 900, raise the expense to 500 -> 700, delete
// the income -> 500.
func TestLifecycleScenario(t *testing.T) {
	db := testDB(t)
	user := seedUser(t, db)
	acc := seedAccount(t, db, user.ID, 100000) // 1000.00
	income := seedCategory(t, db, user.ID, models.TypeIncome)
	expense := seedCategory(t, db, user.ID, models.TypeExpense)

	incomeTxn := newTxn(user.ID, acc, income, models.TypeIncome, 20000)
	if err := Create(db, incomeTxn); err != nil {
		t.Fatalf("create income: %v", err)
	}
	if got := currentBalance(t, db, acc.ID); got != 120000 {
		t.Fatalf("step 1: currentBalance = %d, want 120000", got)
	}

	expenseTxn := newTxn(user.ID, acc, expense, models.TypeExpense, 30000)
	if err := Create(db, expenseTxn); err != nil {
		t.Fatalf("create expense: %v", err)
	}
	if got := currentBalance(t, db, acc.ID); got != 90000 {
		t.Fatalf("step 2: currentBalance = %d, want 90000", got)
	}

	newAmount := int64(50000)
	if err := Update(db, expenseTxn, Patch{Amount: &newAmount}); err != nil {
		t.Fatalf("update expense: %v", err)
	}
	if got := currentBalance(t, db, acc.ID); got != 70000 {
		t.Fatalf("step 3: currentBalance = %d, want 70000", got)
	}

	if err := Delete(db, incomeTxn); err != nil {
		t.Fatalf("delete income: %v", err)
	}
	if got := currentBalance(t, db, acc.ID); got != 50000 {
		t.Fatalf("step 4: currentBalance = %d, want 50000", got)
	}
}

// TestCreateDeleteRoundTrip checks that create followed by delete restores
// the pre-create balance exactly.
func TestCreateDeleteRoundTrip(t *testing.T) {
	db := testDB(t)
	user := seedUser(t, db)
	acc := seedAccount(t, db, user.ID, 7700)
	cat := seedCategory(t, db, user.ID, models.TypeExpense)

	txn := newTxn(user.ID, acc, cat, models.TypeExpense, 1234)
	if err := Create(db, txn); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := Delete(db, txn); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if got := currentBalance(t, db, acc.ID); got != 7700 {
		t.Errorf("after round trip: currentBalance = %d, want 7700", got)
	}
}

// TestNonFinancialUpdateLeavesBalance verifies that changing only the
// description does not touch any balance.
func TestNonFinancialUpdateLeavesBalance(t *testing.T) {
	db := testDB(t)
	user := seedUser(t, db)
	acc := seedAccount(t, db, user.ID, 5000)
	cat := seedCategory(t, db, user.ID, models.TypeExpense)

	txn := newTxn(user.ID, acc, cat, models.TypeExpense, 1000)
	if err := Create(db, txn); err != nil {
		t.Fatalf("create: %v", err)
	}

	desc := "groceries"
	if err := Update(db, txn, Patch{Description: &desc}); err != nil {
		t.Fatalf("update: %v", err)
	}

	if got := currentBalance(t, db, acc.ID); got != 4000 {
		t.Errorf("currentBalance = %d, want 4000", got)
	}
	var reloaded models.Transaction
	if err := db.First(&reloaded, txn.ID).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	if reloaded.Description != "groceries" {
		t.Errorf("description = %q, want groceries", reloaded.Description)
	}
}

// TestEqualAmountPatchSkipsCycle: a patch that restates the current values
// is financially neutral and must not change balances.
func TestEqualAmountPatchSkipsCycle(t *testing.T) {
	db := testDB(t)
	user := seedUser(t, db)
	acc := seedAccount(t, db, user.ID, 5000)
	cat := seedCategory(t, db, user.ID, models.TypeIncome)

	txn := newTxn(user.ID, acc, cat, models.TypeIncome, 1000)
	if err := Create(db, txn); err != nil {
		t.Fatalf("create: %v", err)
	}

	sameAmount := int64(1000)
	sameType := models.TypeIncome
	sameAccount := acc.ID
	if err := Update(db, txn, Patch{Amount: &sameAmount, Type: &sameType, AccountID: &sameAccount}); err != nil {
		t.Fatalf("update: %v", err)
	}
	if got := currentBalance(t, db, acc.ID); got != 6000 {
		t.Errorf("currentBalance = %d, want 6000", got)
	}
}

// TestMoveBetweenAccounts verifies that moving a transaction shifts both
// balances by the transaction's signed effect.
func TestMoveBetweenAccounts(t *testing.T) {
	db := testDB(t)
	user := seedUser(t, db)
	accA := seedAccount(t, db, user.ID, 10000)
	accB := seedAccount(t, db, user.ID, 20000)
	cat := seedCategory(t, db, user.ID, models.TypeExpense)

	txn := newTxn(user.ID, accA, cat, models.TypeExpense, 3000)
	if err := Create(db, txn); err != nil {
		t.Fatalf("create: %v", err)
	}
	if got := currentBalance(t, db, accA.ID); got != 7000 {
		t.Fatalf("A after create: %d, want 7000", got)
	}

	target := accB.ID
	if err := Update(db, txn, Patch{AccountID: &target}); err != nil {
		t.Fatalf("move: %v", err)
	}

	if got := currentBalance(t, db, accA.ID); got != 10000 {
		t.Errorf("A after move: %d, want 10000", got)
	}
	if got := currentBalance(t, db, accB.ID); got != 17000 {
		t.Errorf("B after move: %d, want 17000", got)
	}
}

// TestTypeFlipUpdate: flipping income to expense reverts +amount and applies
// -amount, a swing of twice the amount.
func TestTypeFlipUpdate(t *testing.T) {
	db := testDB(t)
	user := seedUser(t, db)
	acc := seedAccount(t, db, user.ID, 10000)
	cat := seedCategory(t, db, user.ID, models.TypeIncome)

	txn := newTxn(user.ID, acc, cat, models.TypeIncome, 2000)
	if err := Create(db, txn); err != nil {
		t.Fatalf("create: %v", err)
	}

	flipped := models.TypeExpense
	if err := Update(db, txn, Patch{Type: &flipped}); err != nil {
		t.Fatalf("update: %v", err)
	}
	if got := currentBalance(t, db, acc.ID); got != 8000 {
		t.Errorf("currentBalance = %d, want 8000", got)
	}
}

// TestCreateMissingAccount: the whole create fails and no transaction row is
// written.
func TestCreateMissingAccount(t *testing.T) {
	db := testDB(t)
	user := seedUser(t, db)
	cat := seedCategory(t, db, user.ID, models.TypeIncome)

	txn := &models.Transaction{
		UserID:     user.ID,
		Amount:     100,
		Date:       time.Now(),
		Type:       models.TypeIncome,
		CategoryID: cat.ID,
		AccountID:  9999,
	}
	err := Create(db, txn)
	if !errors.Is(err, ErrAccountNotFound) {
		t.Fatalf("err = %v, want ErrAccountNotFound", err)
	}

	var count int64
	db.Model(&models.Transaction{}).Count(&count)
	if count != 0 {
		t.Errorf("transaction count = %d, want 0 (no partial state)", count)
	}
}

// TestCreateForeignAccount: an account owned by another user reads as
// missing, never as forbidden.
func TestCreateForeignAccount(t *testing.T) {
	db := testDB(t)
	owner := seedUser(t, db)
	acc := seedAccount(t, db, owner.ID, 1000)

	intruder := models.User{Name: "Other", Email: "other@example.com", PasswordHash: "x"}
	if err := db.Create(&intruder).Error; err != nil {
		t.Fatalf("seed intruder: %v", err)
	}
	cat := seedCategory(t, db, intruder.ID, models.TypeIncome)

	err := Create(db, newTxn(intruder.ID, acc, cat, models.TypeIncome, 100))
	if !errors.Is(err, ErrAccountNotFound) {
		t.Fatalf("err = %v, want ErrAccountNotFound", err)
	}
	if got := currentBalance(t, db, acc.ID); got != 1000 {
		t.Errorf("owner balance = %d, want 1000", got)
	}
}

// TestUpdateMissingOldAccountFails: if the old account vanished out-of-band,
// the update hard-fails instead of silently skipping the revert.
func TestUpdateMissingOldAccountFails(t *testing.T) {
	db := testDB(t)
	user := seedUser(t, db)
	acc := seedAccount(t, db, user.ID, 5000)
	cat := seedCategory(t, db, user.ID, models.TypeExpense)

	txn := newTxn(user.ID, acc, cat, models.TypeExpense, 1000)
	if err := Create(db, txn); err != nil {
		t.Fatalf("create: %v", err)
	}

	// simulate out-of-band deletion bypassing the dependent-records guard
	if err := db.Exec("DELETE FROM accounts WHERE id = ?", acc.ID).Error; err != nil {
		t.Fatalf("raw delete: %v", err)
	}

	bigger := int64(2000)
	if err := Update(db, txn, Patch{Amount: &bigger}); !errors.Is(err, ErrAccountNotFound) {
		t.Fatalf("update err = %v, want ErrAccountNotFound", err)
	}

	// the transaction must be untouched
	var reloaded models.Transaction
	if err := db.First(&reloaded, txn.ID).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	if reloaded.Amount != 1000 {
		t.Errorf("amount = %d, want 1000 (update rolled back)", reloaded.Amount)
	}
}

// TestBackfillOnMutation: a pre-migration row (NULL current_balance) is
// backfilled to the opening balance before the delta applies, and the
// backfill persists.
func TestBackfillOnMutation(t *testing.T) {
	db := testDB(t)
	user := seedUser(t, db)
	acc := models.Account{UserID: user.ID, Name: "Legacy", Balance: 8000, Color: "#112233"}
	if err := db.Create(&acc).Error; err != nil {
		t.Fatalf("seed legacy account: %v", err)
	}
	// Create fills nil pointers with defaults only via hooks; force NULL
	if err := db.Exec("UPDATE accounts SET current_balance = NULL WHERE id = ?", acc.ID).Error; err != nil {
		t.Fatalf("null out column: %v", err)
	}
	cat := seedCategory(t, db, user.ID, models.TypeIncome)

	if err := Create(db, newTxn(user.ID, &acc, cat, models.TypeIncome, 1500)); err != nil {
		t.Fatalf("create: %v", err)
	}
	if got := currentBalance(t, db, acc.ID); got != 9500 {
		t.Errorf("currentBalance = %d, want 9500 (8000 backfill + 1500)", got)
	}
}

// TestInvariantOverSequence drives a mixed sequence and checks after every
// step that currentBalance == balance + sum(income) - sum(expense) over the
// transactions that exist.
func TestInvariantOverSequence(t *testing.T) {
	db := testDB(t)
	user := seedUser(t, db)
	acc := seedAccount(t, db, user.ID, 50000)
	income := seedCategory(t, db, user.ID, models.TypeIncome)
	expense := seedCategory(t, db, user.ID, models.TypeExpense)

	check := func(step string) {
		t.Helper()
		var txns []models.Transaction
		if err := db.Where("account_id = ?", acc.ID).Find(&txns).Error; err != nil {
			t.Fatalf("%s: load transactions: %v", step, err)
		}
		want := acc.Balance
		for _, txn := range txns {
			if txn.Type == models.TypeIncome {
				want += txn.Amount
			} else {
				want -= txn.Amount
			}
		}
		if got := currentBalance(t, db, acc.ID); got != want {
			t.Fatalf("%s: currentBalance = %d, want %d", step, got, want)
		}
	}

	t1 := newTxn(user.ID, acc, income, models.TypeIncome, 12000)
	if err := Create(db, t1); err != nil {
		t.Fatal(err)
	}
	check("create income")

	t2 := newTxn(user.ID, acc, expense, models.TypeExpense, 4500)
	if err := Create(db, t2); err != nil {
		t.Fatal(err)
	}
	check("create expense")

	flip := models.TypeExpense
	if err := Update(db, t1, Patch{Type: &flip}); err != nil {
		t.Fatal(err)
	}
	check("flip type")

	amt := int64(9999)
	if err := Update(db, t2, Patch{Amount: &amt}); err != nil {
		t.Fatal(err)
	}
	check("change amount")

	if err := Delete(db, t1); err != nil {
		t.Fatal(err)
	}
	check("delete first")

	if err := Delete(db, t2); err != nil {
		t.Fatal(err)
	}
	check("delete second")
}
