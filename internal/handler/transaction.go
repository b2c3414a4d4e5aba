package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/AshirwadShaligram/finance-backend/internal/ledger"
	"github.com/AshirwadShaligram/finance-backend/internal/middleware"
	"github.com/AshirwadShaligram/finance-backend/internal/models"
	"github.com/AshirwadShaligram/finance-backend/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// TransactionHandler serves transaction CRUD and the financial summary. All
// balance bookkeeping is delegated to the ledger package.
type TransactionHandler struct {
	DB *gorm.DB
}

func NewTransactionHandler(db *gorm.DB) *TransactionHandler {
	return &TransactionHandler{DB: db}
}

// ---------- request/response shapes ----------

type createTransactionReq struct {
	Amount      string `json:"amount" binding:"required"`
	Description string `json:"description" binding:"max=255"`
	Date        string `json:"date"`
	Type        string `json:"type" binding:"required,oneof=income expense"`
	Category    uint   `json:"category" binding:"required"`
	Account     uint   `json:"account" binding:"required"`
}

type updateTransactionReq struct {
	Amount      *string `json:"amount"`
	Description *string `json:"description" binding:"omitempty,max=255"`
	Date        *string `json:"date"`
	Type        *string `json:"type" binding:"omitempty,oneof=income expense"`
	Category    *uint   `json:"category"`
	Account     *uint   `json:"account"`
}

type transactionResp struct {
	ID          uint      `json:"id"`
	AmountCent  int64     `json:"amount_cent"`
	Amount      string    `json:"amount"`
	Description string    `json:"description"`
	Date        time.Time `json:"date"`
	Type        string    `json:"type"`
	CategoryID  uint      `json:"category_id"`
	AccountID   uint      `json:"account_id"`
	CreatedAt   time.Time `json:"created_at"`

	Category *categoryResp `json:"category,omitempty"`
	Account  *accountResp  `json:"account,omitempty"`
}

func toTransactionResp(t *models.Transaction, expand bool) transactionResp {
	resp := transactionResp{
		ID:          t.ID,
		AmountCent:  t.Amount,
		Amount:      util.FormatAmount(t.Amount),
		Description: t.Description,
		Date:        t.Date,
		Type:        t.Type,
		CategoryID:  t.CategoryID,
		AccountID:   t.AccountID,
		CreatedAt:   t.CreatedAt,
	}
	if expand {
		cat := toCategoryResp(&t.Category)
		acc := toAccountResp(&t.Account)
		resp.Category = &cat
		resp.Account = &acc
	}
	return resp
}

// parseTxDate accepts the date formats the frontend sends.
func parseTxDate(s string) (time.Time, error) {
	layouts := []string{
		time.RFC3339,          // 2025-12-03T00:00:00+05:30
		"2006-01-02T15:04:05", // 2025-12-03T00:00:00
		"2006-01-02",          // 2025-12-03
	}
	var lastErr error
	for _, layout := range layouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

// ownedCategory verifies the referenced category exists and belongs to the
// caller; a foreign category reads as missing.
func (h *TransactionHandler) ownedCategory(userID, categoryID uint) (bool, error) {
	var count int64
	err := h.DB.Model(&models.Category{}).
		Where("id = ? AND user_id = ?", categoryID, userID).
		Count(&count).Error
	return count > 0, err
}

// ---------- list ----------

func (h *TransactionHandler) ListTransactions(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "not logged in")
		return
	}

	var txns []models.Transaction
	if err := h.DB.Where("user_id = ?", user.ID).
		Preload("Category").
		Preload("Account").
		Order("date DESC, id DESC").
		Find(&txns).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to load transactions")
		return
	}

	items := make([]transactionResp, 0, len(txns))
	for i := range txns {
		items = append(items, toTransactionResp(&txns[i], true))
	}
	util.Success(c, util.Response{"transactions": items})
}

// ---------- create ----------

func (h *TransactionHandler) CreateTransaction(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "not logged in")
		return
	}

	var req createTransactionReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid request body")
		return
	}

	amount, err := util.ParseAmount(req.Amount)
	if err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid amount")
		return
	}
	if err := util.ValidateAmount(amount); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "amount must be positive")
		return
	}

	date := time.Now()
	if req.Date != "" {
		date, err = parseTxDate(req.Date)
		if err != nil {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid date")
			return
		}
	}

	owned, err := h.ownedCategory(user.ID, req.Category)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to check category")
		return
	}
	if !owned {
		util.Error(c, http.StatusNotFound, util.CodeNotFound, "category not found")
		return
	}

	txn := models.Transaction{
		UserID:      user.ID,
		Amount:      amount,
		Description: req.Description,
		Date:        date,
		Type:        req.Type,
		CategoryID:  req.Category,
		AccountID:   req.Account,
	}

	// applies the amount to the account and persists both, atomically
	if err := ledger.Create(h.DB, &txn); err != nil {
		if errors.Is(err, ledger.ErrAccountNotFound) {
			util.Error(c, http.StatusNotFound, util.CodeNotFound, "account not found")
		} else {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to create transaction")
		}
		return
	}

	util.Created(c, util.Response{"transaction": toTransactionResp(&txn, false)})
}

// ---------- update ----------

func (h *TransactionHandler) UpdateTransaction(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "not logged in")
		return
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid id")
		return
	}

	var req updateTransactionReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid request body")
		return
	}

	var patch ledger.Patch

	if req.Amount != nil {
		amount, err := util.ParseAmount(*req.Amount)
		if err != nil {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid amount")
			return
		}
		if err := util.ValidateAmount(amount); err != nil {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "amount must be positive")
			return
		}
		patch.Amount = &amount
	}
	if req.Description != nil {
		patch.Description = req.Description
	}
	if req.Date != nil {
		date, err := parseTxDate(*req.Date)
		if err != nil {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid date")
			return
		}
		patch.Date = &date
	}
	if req.Type != nil {
		patch.Type = req.Type
	}
	if req.Category != nil {
		owned, err := h.ownedCategory(user.ID, *req.Category)
		if err != nil {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to check category")
			return
		}
		if !owned {
			util.Error(c, http.StatusNotFound, util.CodeNotFound, "category not found")
			return
		}
		patch.CategoryID = req.Category
	}
	if req.Account != nil {
		patch.AccountID = req.Account
	}

	var txn models.Transaction
	if err := h.DB.Where("id = ? AND user_id = ?", id, user.ID).First(&txn).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			util.Error(c, http.StatusNotFound, util.CodeNotFound, "transaction not found")
		} else {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to load transaction")
		}
		return
	}

	// reverts the old effect and applies the new one, atomically
	if err := ledger.Update(h.DB, &txn, patch); err != nil {
		if errors.Is(err, ledger.ErrAccountNotFound) {
			util.Error(c, http.StatusNotFound, util.CodeNotFound, "account not found")
		} else {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to update transaction")
		}
		return
	}

	util.Success(c, util.Response{"transaction": toTransactionResp(&txn, false)})
}

// ---------- delete ----------

func (h *TransactionHandler) DeleteTransaction(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "not logged in")
		return
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid id")
		return
	}

	var txn models.Transaction
	if err := h.DB.Where("id = ? AND user_id = ?", id, user.ID).First(&txn).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			util.Error(c, http.StatusNotFound, util.CodeNotFound, "transaction not found")
		} else {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to load transaction")
		}
		return
	}

	// reverts the amount from the account and removes the record, atomically
	if err := ledger.Delete(h.DB, &txn); err != nil {
		if errors.Is(err, ledger.ErrAccountNotFound) {
			util.Error(c, http.StatusNotFound, util.CodeNotFound, "account not found")
		} else {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to delete transaction")
		}
		return
	}

	util.Success(c, util.Response{"message": "transaction removed"})
}

// ---------- summary ----------

// GetSummary returns the aggregate view: totals over the ledger plus the
// per-account running balances.
func (h *TransactionHandler) GetSummary(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "not logged in")
		return
	}

	s, err := ledger.Summarize(h.DB, user.ID)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to compute summary")
		return
	}

	accounts := make([]gin.H, 0, len(s.Accounts))
	for _, a := range s.Accounts {
		accounts = append(accounts, gin.H{
			"id":                   a.ID,
			"name":                 a.Name,
			"initial_balance_cent": a.InitialBalance,
			"initial_balance":      util.FormatAmount(a.InitialBalance),
			"current_balance_cent": a.CurrentBalance,
			"current_balance":      util.FormatAmount(a.CurrentBalance),
			"color":                a.Color,
		})
	}

	util.Success(c, util.Response{
		"total_income_cent":          s.TotalIncome,
		"total_income":               util.FormatAmount(s.TotalIncome),
		"total_expense_cent":         s.TotalExpense,
		"total_expense":              util.FormatAmount(s.TotalExpense),
		"net_balance_cent":           s.NetBalance,
		"net_balance":                util.FormatAmount(s.NetBalance),
		"total_initial_balance_cent": s.TotalInitialBalance,
		"total_initial_balance":      util.FormatAmount(s.TotalInitialBalance),
		"accounts":                   accounts,
	})
}
