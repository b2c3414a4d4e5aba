package report

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/AshirwadShaligram/finance-backend/internal/database"
	"github.com/AshirwadShaligram/finance-backend/internal/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type recordingSender struct {
	sent map[string]string // to -> body
}

func (r *recordingSender) Send(to, subject, body string) error {
	if r.sent == nil {
		r.sent = make(map[string]string)
	}
	r.sent[to] = body
	return nil
}

func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := database.AutoMigrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

// TestRunSendsPerUserSummaries: every user gets a mail containing their own
// figures.
func TestRunSendsPerUserSummaries(t *testing.T) {
	db := testDB(t)

	alice := models.User{Name: "Alice", Email: "alice@example.com", PasswordHash: "x", Currency: "INR"}
	bob := models.User{Name: "Bob", Email: "bob@example.com", PasswordHash: "x", Currency: "INR"}
	if err := db.Create(&alice).Error; err != nil {
		t.Fatal(err)
	}
	if err := db.Create(&bob).Error; err != nil {
		t.Fatal(err)
	}

	cur := int64(120000)
	acc := models.Account{UserID: alice.ID, Name: "Wallet", Balance: 100000, CurrentBalance: &cur, Color: "#112233"}
	if err := db.Create(&acc).Error; err != nil {
		t.Fatal(err)
	}
	cat := models.Category{UserID: alice.ID, Name: "Salary", Type: models.TypeIncome, Color: "#445566"}
	if err := db.Create(&cat).Error; err != nil {
		t.Fatal(err)
	}
	txn := models.Transaction{
		UserID: alice.ID, Amount: 20000, Date: time.Now(),
		Type: models.TypeIncome, CategoryID: cat.ID, AccountID: acc.ID,
	}
	if err := db.Create(&txn).Error; err != nil {
		t.Fatal(err)
	}

	sender := &recordingSender{}
	job := NewJob(db, sender)

	sent, failed, err := job.Run()
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if sent != 2 || failed != 0 {
		t.Errorf("sent = %d, failed = %d, want 2/0", sent, failed)
	}

	aliceBody := sender.sent["alice@example.com"]
	if !strings.Contains(aliceBody, "Alice") {
		t.Errorf("alice's mail does not address her: %q", aliceBody)
	}
	if !strings.Contains(aliceBody, "200.00") {
		t.Errorf("alice's mail missing income total: %q", aliceBody)
	}
	if !strings.Contains(aliceBody, "1200.00") {
		t.Errorf("alice's mail missing net balance: %q", aliceBody)
	}

	bobBody := sender.sent["bob@example.com"]
	if !strings.Contains(bobBody, "0.00") {
		t.Errorf("bob's mail should show zero totals: %q", bobBody)
	}
}
