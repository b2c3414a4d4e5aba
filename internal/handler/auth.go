package handler

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/AshirwadShaligram/finance-backend/internal/config"
	"github.com/AshirwadShaligram/finance-backend/internal/mail"
	"github.com/AshirwadShaligram/finance-backend/internal/middleware"
	"github.com/AshirwadShaligram/finance-backend/internal/models"
	"github.com/AshirwadShaligram/finance-backend/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// AuthHandler serves register/login/profile and the password-reset flow.
type AuthHandler struct {
	DB         *gorm.DB
	JWTSecret  string
	Issuer     string
	TokenTTL   time.Duration
	BcryptCost int
	BaseURL    string
	Mailer     mail.Sender
}

func NewAuthHandler(db *gorm.DB, cfg *config.Config, mailer mail.Sender) *AuthHandler {
	days := cfg.JWT.ExpireDays
	if days <= 0 {
		days = 30
	}
	cost := cfg.Security.BcryptCost
	if cost <= 0 {
		cost = bcrypt.DefaultCost
	}
	return &AuthHandler{
		DB:         db,
		JWTSecret:  cfg.JWT.Secret,
		Issuer:     cfg.JWT.Issuer,
		TokenTTL:   time.Duration(days) * 24 * time.Hour,
		BcryptCost: cost,
		BaseURL:    cfg.App.BaseURL,
		Mailer:     mailer,
	}
}

// userEnvelope is the auth response shape shared by register/login/profile.
func (h *AuthHandler) userEnvelope(u *models.User, withToken bool) (util.Response, error) {
	resp := util.Response{
		"id":       u.ID,
		"name":     u.Name,
		"email":    u.Email,
		"currency": u.Currency,
		"theme":    u.Theme,
	}
	if withToken {
		token, err := util.GenerateToken(h.JWTSecret, h.Issuer, u.ID, h.TokenTTL)
		if err != nil {
			return nil, fmt.Errorf("generate token: %w", err)
		}
		resp["token"] = token
	}
	return resp, nil
}

// ---------- register ----------

type registerReq struct {
	Name     string `json:"name" binding:"required,max=64"`
	Email    string `json:"email" binding:"required,email,max=128"`
	Password string `json:"password" binding:"required,min=6,max=72"`
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req registerReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid request body")
		return
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	var count int64
	if err := h.DB.Model(&models.User{}).Where("email = ?", req.Email).Count(&count).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to check user")
		return
	}
	if count > 0 {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "user already exists")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), h.BcryptCost)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to hash password")
		return
	}

	user := models.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: string(hash),
		Currency:     "INR",
		Theme:        "light",
	}
	if err := h.DB.Create(&user).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to create user")
		return
	}

	resp, err := h.userEnvelope(&user, true)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to generate token")
		return
	}
	util.Created(c, resp)
}

// ---------- login ----------

type loginReq struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req loginReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid request body")
		return
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	var user models.User
	if err := h.DB.Where("email = ?", req.Email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			util.Error(c, http.StatusUnauthorized, util.CodeAuth, "invalid email or password")
		} else {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to load user")
		}
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "invalid email or password")
		return
	}

	resp, err := h.userEnvelope(&user, true)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to generate token")
		return
	}
	util.Success(c, resp)
}

// ---------- profile ----------

func (h *AuthHandler) GetProfile(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "not logged in")
		return
	}

	resp, _ := h.userEnvelope(user, false)
	util.Success(c, resp)
}

type updateProfileReq struct {
	Name     *string `json:"name" binding:"omitempty,max=64"`
	Email    *string `json:"email" binding:"omitempty,email,max=128"`
	Currency *string `json:"currency" binding:"omitempty,max=8"`
	Theme    *string `json:"theme" binding:"omitempty,max=16"`
	Password *string `json:"password" binding:"omitempty,min=6,max=72"`
}

// UpdateProfile applies a partial update; absent fields keep prior values.
func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "not logged in")
		return
	}

	var req updateProfileReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid request body")
		return
	}

	if req.Name != nil {
		user.Name = *req.Name
	}
	if req.Email != nil {
		user.Email = strings.ToLower(strings.TrimSpace(*req.Email))
	}
	if req.Currency != nil {
		user.Currency = *req.Currency
	}
	if req.Theme != nil {
		user.Theme = *req.Theme
	}
	if req.Password != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(*req.Password), h.BcryptCost)
		if err != nil {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to hash password")
			return
		}
		user.PasswordHash = string(hash)
	}

	if err := h.DB.Save(user).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to save profile")
		return
	}

	resp, err := h.userEnvelope(user, true)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to generate token")
		return
	}
	util.Success(c, resp)
}

// ---------- password reset ----------

type forgotPasswordReq struct {
	Email string `json:"email" binding:"required,email"`
}

func hashResetToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

// ForgotPassword emails the user a reset link. The raw token only ever
// leaves the server inside that email; the database stores its SHA-256.
func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var req forgotPasswordReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid request body")
		return
	}

	var user models.User
	if err := h.DB.Where("email = ?", strings.ToLower(strings.TrimSpace(req.Email))).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			util.Error(c, http.StatusNotFound, util.CodeNotFound, "user not found with this email")
		} else {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to load user")
		}
		return
	}

	rawToken := uuid.NewString()
	expire := time.Now().Add(10 * time.Minute)
	user.ResetPasswordToken = hashResetToken(rawToken)
	user.ResetPasswordExpire = &expire
	if err := h.DB.Save(&user).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to save reset token")
		return
	}

	resetURL := fmt.Sprintf("%s/api/auth/resetpassword/%s", strings.TrimRight(h.BaseURL, "/"), rawToken)
	body := fmt.Sprintf("You are receiving this email because you (or someone else) has requested the reset of a password. Please make a PUT request to:\n\n%s\n", resetURL)

	if err := h.Mailer.Send(user.Email, "Password reset token", body); err != nil {
		// roll the token back so a failed send leaves no live token behind
		user.ResetPasswordToken = ""
		user.ResetPasswordExpire = nil
		_ = h.DB.Save(&user).Error
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "email could not be sent")
		return
	}

	util.Success(c, util.Response{"message": "email sent"})
}

type resetPasswordReq struct {
	Password string `json:"password" binding:"required,min=6,max=72"`
}

func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req resetPasswordReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid request body")
		return
	}

	tokenHash := hashResetToken(c.Param("resettoken"))

	var user models.User
	err := h.DB.Where("reset_password_token = ? AND reset_password_expire > ?", tokenHash, time.Now()).
		First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid token or token has expired")
		} else {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to load user")
		}
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), h.BcryptCost)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to hash password")
		return
	}
	user.PasswordHash = string(hash)
	user.ResetPasswordToken = ""
	user.ResetPasswordExpire = nil
	if err := h.DB.Save(&user).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to save password")
		return
	}

	token, err := util.GenerateToken(h.JWTSecret, h.Issuer, user.ID, h.TokenTTL)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to generate token")
		return
	}
	util.Success(c, util.Response{
		"message": "password updated successfully",
		"token":   token,
	})
}
