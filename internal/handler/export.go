package handler

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"time"

	"github.com/AshirwadShaligram/finance-backend/internal/middleware"
	"github.com/AshirwadShaligram/finance-backend/internal/models"
	"github.com/AshirwadShaligram/finance-backend/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

// ExportHandler serves ledger downloads in CSV and XLSX form.
type ExportHandler struct {
	DB *gorm.DB
}

func NewExportHandler(db *gorm.DB) *ExportHandler {
	return &ExportHandler{DB: db}
}

var exportHeader = []string{"Date", "Type", "Category", "Account", "Amount", "Description"}

func (h *ExportHandler) loadTransactions(userID uint) ([]models.Transaction, error) {
	var txns []models.Transaction
	err := h.DB.Where("user_id = ?", userID).
		Preload("Category").
		Preload("Account").
		Order("date ASC, id ASC").
		Find(&txns).Error
	return txns, err
}

func exportRow(t *models.Transaction) []string {
	return []string{
		t.Date.Format("2006-01-02"),
		t.Type,
		t.Category.Name,
		t.Account.Name,
		util.FormatAmount(t.Amount),
		t.Description,
	}
}

// ExportCSV streams the caller's full ledger as a CSV attachment.
func (h *ExportHandler) ExportCSV(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "not logged in")
		return
	}

	txns, err := h.loadTransactions(user.ID)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to load transactions")
		return
	}

	filename := fmt.Sprintf("transactions-%s.csv", time.Now().Format("20060102"))
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)

	w := csv.NewWriter(c.Writer)
	_ = w.Write(exportHeader)
	for i := range txns {
		_ = w.Write(exportRow(&txns[i]))
	}
	w.Flush()
}

// ExportXLSX streams the caller's full ledger as an Excel workbook.
func (h *ExportHandler) ExportXLSX(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "not logged in")
		return
	}

	txns, err := h.loadTransactions(user.ID)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to load transactions")
		return
	}

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Transactions"
	f.SetSheetName(f.GetSheetName(0), sheet)

	for col, title := range exportHeader {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		_ = f.SetCellValue(sheet, cell, title)
	}
	for row, txn := range txns {
		for col, value := range exportRow(&txn) {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			_ = f.SetCellValue(sheet, cell, value)
		}
	}

	filename := fmt.Sprintf("transactions-%s.xlsx", time.Now().Format("20060102"))
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)

	if err := f.Write(c.Writer); err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to write workbook")
		return
	}
}
