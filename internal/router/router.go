package router

import (
	"github.com/AshirwadShaligram/finance-backend/internal/config"
	"github.com/AshirwadShaligram/finance-backend/internal/handler"
	"github.com/AshirwadShaligram/finance-backend/internal/mail"
	"github.com/AshirwadShaligram/finance-backend/internal/middleware"
	"github.com/AshirwadShaligram/finance-backend/internal/report"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// SetupRouter configures the Gin engine and mounts the API.
func SetupRouter(cfg *config.Config, db *gorm.DB, mailer mail.Sender) *gin.Engine {
	if cfg.Server.Mode != "" {
		gin.SetMode(cfg.Server.Mode)
	}
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	api := r.Group("/api")

	// auth endpoints that do not require a token
	authHandler := handler.NewAuthHandler(db, cfg, mailer)
	api.POST("/auth/register", authHandler.Register)
	api.POST("/auth/login", authHandler.Login)
	api.POST("/auth/forgotpassword", authHandler.ForgotPassword)
	api.PUT("/auth/resetpassword/:resettoken", authHandler.ResetPassword)

	// internal trigger; the cron scheduler calls the same job directly
	reportJob := report.NewJob(db, mailer)
	reportHandler := handler.NewReportHandler(reportJob)
	api.POST("/email/send-daily-reports", reportHandler.SendDailyReports)

	// everything below requires a logged-in user
	protected := api.Group("")
	protected.Use(
		middleware.AuthMiddleware(cfg.JWT.Secret, db),
		middleware.AuditMiddleware(db),
	)

	protected.GET("/auth/profile", authHandler.GetProfile)
	protected.PUT("/auth/profile", authHandler.UpdateProfile)

	accountHandler := handler.NewAccountHandler(db)
	protected.GET("/accounts", accountHandler.ListAccounts)
	protected.POST("/accounts", accountHandler.CreateAccount)
	protected.PUT("/accounts/:id", accountHandler.UpdateAccount)
	protected.DELETE("/accounts/:id", accountHandler.DeleteAccount)

	categoryHandler := handler.NewCategoryHandler(db)
	protected.GET("/categories", categoryHandler.ListCategories)
	protected.POST("/categories", categoryHandler.CreateCategory)
	protected.PUT("/categories/:id", categoryHandler.UpdateCategory)
	protected.DELETE("/categories/:id", categoryHandler.DeleteCategory)

	transactionHandler := handler.NewTransactionHandler(db)
	protected.GET("/transactions", transactionHandler.ListTransactions)
	protected.POST("/transactions", transactionHandler.CreateTransaction)
	protected.GET("/transactions/summary", transactionHandler.GetSummary)
	protected.PUT("/transactions/:id", transactionHandler.UpdateTransaction)
	protected.DELETE("/transactions/:id", transactionHandler.DeleteTransaction)

	exportHandler := handler.NewExportHandler(db)
	protected.GET("/transactions/export/csv", exportHandler.ExportCSV)
	protected.GET("/transactions/export/xlsx", exportHandler.ExportXLSX)

	logHandler := handler.NewLogHandler(db)
	protected.GET("/logs", logHandler.ListLogs)

	return r
}
