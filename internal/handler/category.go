package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/AshirwadShaligram/finance-backend/internal/middleware"
	"github.com/AshirwadShaligram/finance-backend/internal/models"
	"github.com/AshirwadShaligram/finance-backend/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// CategoryHandler serves category CRUD.
type CategoryHandler struct {
	DB *gorm.DB
}

func NewCategoryHandler(db *gorm.DB) *CategoryHandler {
	return &CategoryHandler{DB: db}
}

type createCategoryReq struct {
	Name  string `json:"name" binding:"required,max=64"`
	Type  string `json:"type" binding:"required,oneof=income expense"`
	Color string `json:"color" binding:"required"`
}

type updateCategoryReq struct {
	Name  *string `json:"name" binding:"omitempty,max=64"`
	Type  *string `json:"type" binding:"omitempty,oneof=income expense"`
	Color *string `json:"color"`
}

type categoryResp struct {
	ID        uint      `json:"id"`
	Name      string    `json:"name"`
	Type      string    `json:"type"`
	Color     string    `json:"color"`
	CreatedAt time.Time `json:"created_at"`
}

func toCategoryResp(cat *models.Category) categoryResp {
	return categoryResp{
		ID:        cat.ID,
		Name:      cat.Name,
		Type:      cat.Type,
		Color:     cat.Color,
		CreatedAt: cat.CreatedAt,
	}
}

func (h *CategoryHandler) ListCategories(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "not logged in")
		return
	}

	var categories []models.Category
	if err := h.DB.Where("user_id = ?", user.ID).Order("id ASC").Find(&categories).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to load categories")
		return
	}

	items := make([]categoryResp, 0, len(categories))
	for i := range categories {
		items = append(items, toCategoryResp(&categories[i]))
	}
	util.Success(c, util.Response{"categories": items})
}

func (h *CategoryHandler) CreateCategory(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "not logged in")
		return
	}

	var req createCategoryReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid request body")
		return
	}
	if err := util.ValidateColor(req.Color); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid color")
		return
	}

	category := models.Category{
		UserID: user.ID,
		Name:   req.Name,
		Type:   req.Type,
		Color:  req.Color,
	}
	if err := h.DB.Create(&category).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to create category")
		return
	}

	util.Created(c, util.Response{"category": toCategoryResp(&category)})
}

func (h *CategoryHandler) UpdateCategory(c *gin.Context) {
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

	var req updateCategoryReq
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

	var category models.Category
	if err := h.DB.Where("id = ? AND user_id = ?", id, user.ID).First(&category).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			util.Error(c, http.StatusNotFound, util.CodeNotFound, "category not found")
		} else {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to load category")
		}
		return
	}

	if req.Name != nil {
		category.Name = *req.Name
	}
	if req.Type != nil {
		category.Type = *req.Type
	}
	if req.Color != nil {
		category.Color = *req.Color
	}

	if err := h.DB.Save(&category).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to save category")
		return
	}

	util.Success(c, util.Response{"category": toCategoryResp(&category)})
}

// DeleteCategory removes a category that no transaction references.
func (h *CategoryHandler) DeleteCategory(c *gin.Context) {
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

	var category models.Category
	if err := h.DB.Where("id = ? AND user_id = ?", id, user.ID).First(&category).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			util.Error(c, http.StatusNotFound, util.CodeNotFound, "category not found")
		} else {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to load category")
		}
		return
	}

	var refs int64
	if err := h.DB.Model(&models.Transaction{}).Where("category_id = ?", category.ID).Count(&refs).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to check transactions")
		return
	}
	if refs > 0 {
		util.Error(c, http.StatusBadRequest, util.CodeConflict, "cannot delete category with transactions")
		return
	}

	if err := h.DB.Delete(&category).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to delete category")
		return
	}

	util.Success(c, util.Response{"message": "category removed"})
}
