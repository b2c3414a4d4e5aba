package handler

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/AshirwadShaligram/finance-backend/internal/database"
	"github.com/AshirwadShaligram/finance-backend/internal/middleware"
	"github.com/AshirwadShaligram/finance-backend/internal/models"

	"github.com/gin-gonic/gin"
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

// asUser is a stand-in for AuthMiddleware: it injects a fixed user so
// handler tests do not need real tokens.
func asUser(user *models.User) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.CurrentUserKey, user)
		c.Next()
	}
}

// testRouter mounts the protected CRUD surface for the given user.
func testRouter(db *gorm.DB, user *models.User) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()

	api := r.Group("/api", asUser(user))

	accountHandler := NewAccountHandler(db)
	api.GET("/accounts", accountHandler.ListAccounts)
	api.POST("/accounts", accountHandler.CreateAccount)
	api.PUT("/accounts/:id", accountHandler.UpdateAccount)
	api.DELETE("/accounts/:id", accountHandler.DeleteAccount)

	categoryHandler := NewCategoryHandler(db)
	api.GET("/categories", categoryHandler.ListCategories)
	api.POST("/categories", categoryHandler.CreateCategory)
	api.PUT("/categories/:id", categoryHandler.UpdateCategory)
	api.DELETE("/categories/:id", categoryHandler.DeleteCategory)

	transactionHandler := NewTransactionHandler(db)
	api.GET("/transactions", transactionHandler.ListTransactions)
	api.POST("/transactions", transactionHandler.CreateTransaction)
	api.GET("/transactions/summary", transactionHandler.GetSummary)
	api.PUT("/transactions/:id", transactionHandler.UpdateTransaction)
	api.DELETE("/transactions/:id", transactionHandler.DeleteTransaction)

	return r
}

type envelope struct {
	Code    int                    `json:"code"`
	Message string                 `json:"message"`
	Data    map[string]interface{} `json:"data"`
}

// doJSON performs a request with an optional JSON body and decodes the
// response envelope.
func doJSON(t *testing.T, r *gin.Engine, method, path string, body interface{}) (int, envelope) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env envelope
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode response %q: %v", w.Body.String(), err)
	}
	return w.Code, env
}

func seedUser(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()
	user := models.User{Name: "Test", Email: email, PasswordHash: "x"}
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
	return acc.EffectiveBalance()
}
