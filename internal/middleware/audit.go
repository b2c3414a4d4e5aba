package middleware

import (
	"net/http"

	"github.com/AshirwadShaligram/finance-backend/internal/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// AuditMiddleware records mutating API requests (POST/PUT/DELETE) after the
// handler ran. Failures to write the audit row never fail the request.
func AuditMiddleware(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		switch c.Request.Method {
		case http.MethodPost, http.MethodPut, http.MethodDelete:
		default:
			return
		}

		entry := models.AuditLog{
			Method:    c.Request.Method,
			Path:      c.FullPath(),
			IP:        c.ClientIP(),
			UserAgent: c.Request.UserAgent(),
		}
		if user, ok := CurrentUser(c); ok {
			id := user.ID
			entry.UserID = &id
		}

		_ = db.Create(&entry).Error
	}
}
