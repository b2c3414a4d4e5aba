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

// AccountHandler serves account CRUD.
type AccountHandler struct {
	DB *gorm.DB
}

func NewAccountHandler(db *gorm.DB) *AccountHandler {
	return &AccountHandler{DB: db}
}

type createAccountReq struct {
	Name    string `json:"name" binding:"required,max=64"`
	Balance string `json:"balance" binding:"required"` // decimal string, opening balance
	Color   string `json:"color" binding:"required"`
}

type updateAccountReq struct {
	Name    *string `json:"name" binding:"omitempty,max=64"`
	Balance *string `json:"balance"`
	Color   *string `json:"color"`
}

type accountResp struct {
	ID                 uint      `json:"id"`
	Name               string    `json:"name"`
	BalanceCent        int64     `json:"balance_cent"`
	Balance            string    `json:"balance"`
	CurrentBalanceCent int64     `json:"current_balance_cent"`
	CurrentBalance     string    `json:"current_balance"`
	Color              string    `json:"color"`
	CreatedAt          time.Time `json:"created_at"`
}

func toAccountResp(a *models.Account) accountResp {
	cur := a.EffectiveBalance()
	return accountResp{
		ID:                 a.ID,
		Name:               a.Name,
		BalanceCent:        a.Balance,
		Balance:            util.FormatAmount(a.Balance),
		CurrentBalanceCent: cur,
		CurrentBalance:     util.FormatAmount(cur),
		Color:              a.Color,
		CreatedAt:          a.CreatedAt,
	}
}

func (h *AccountHandler) ListAccounts(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "not logged in")
		return
	}

	var accounts []models.Account
	if err := h.DB.Where("user_id = ?", user.ID).Order("id ASC").Find(&accounts).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to load accounts")
		return
	}

	items := make([]accountResp, 0, len(accounts))
	for i := range accounts {
		items = append(items, toAccountResp(&accounts[i]))
	}
	util.Success(c, util.Response{"accounts": items})
}

func (h *AccountHandler) CreateAccount(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "not logged in")
		return
	}

	var req createAccountReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid request body")
		return
	}

	// opening balance may be zero or negative (overdrawn account)
	balance, err := util.ParseAmount(req.Balance)
	if err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid balance")
		return
	}
	if err := util.ValidateColor(req.Color); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid color")
		return
	}

	cur := balance // running balance starts at the opening balance
	account := models.Account{
		UserID:         user.ID,
		Name:           req.Name,
		Balance:        balance,
		CurrentBalance: &cur,
		Color:          req.Color,
	}
	if err := h.DB.Create(&account).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to create account")
		return
	}

	util.Created(c, util.Response{"account": toAccountResp(&account)})
}

// UpdateAccount applies a partial update. Editing the opening balance shifts
// the running balance by the same difference, so applied transactions keep
// their effect.
func (h *AccountHandler) UpdateAccount(c *gin.Context) {
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

	var req updateAccountReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid request body")
		return
	}
	if req.Color != nil {
		if err := util.ValidateColor(*req.Color); err != nil {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid color")
			return
		}
	}
	var newBalance *int64
	if req.Balance != nil {
		b, err := util.ParseAmount(*req.Balance)
		if err != nil {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid balance")
			return
		}
		newBalance = &b
	}

	var account *models.Account
	err = h.DB.Transaction(func(tx *gorm.DB) error {
		acc, err := ledger.LoadAccount(tx, user.ID, uint(id))
		if err != nil {
			return err
		}
		if req.Name != nil {
			acc.Name = *req.Name
		}
		if req.Color != nil {
			acc.Color = *req.Color
		}
		if newBalance != nil {
			*acc.CurrentBalance += *newBalance - acc.Balance
			acc.Balance = *newBalance
		}
		if err := tx.Save(acc).Error; err != nil {
			return err
		}
		account = acc
		return nil
	})
	if err != nil {
		if errors.Is(err, ledger.ErrAccountNotFound) {
			util.Error(c, http.StatusNotFound, util.CodeNotFound, "account not found")
		} else {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to save account")
		}
		return
	}

	util.Success(c, util.Response{"account": toAccountResp(account)})
}

// DeleteAccount removes an account that no transaction references.
func (h *AccountHandler) DeleteAccount(c *gin.Context) {
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

	var account models.Account
	if err := h.DB.Where("id = ? AND user_id = ?", id, user.ID).First(&account).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			util.Error(c, http.StatusNotFound, util.CodeNotFound, "account not found")
		} else {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to load account")
		}
		return
	}

	var refs int64
	if err := h.DB.Model(&models.Transaction{}).Where("account_id = ?", account.ID).Count(&refs).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to check transactions")
		return
	}
	if refs > 0 {
		util.Error(c, http.StatusBadRequest, util.CodeConflict, "cannot delete account with transactions")
		return
	}

	if err := h.DB.Delete(&account).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to delete account")
		return
	}

	util.Success(c, util.Response{"message": "account removed"})
}
