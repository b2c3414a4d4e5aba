package handler

import (
	"net/http"

	"github.com/AshirwadShaligram/finance-backend/internal/report"
	"github.com/AshirwadShaligram/finance-backend/internal/util"

	"github.com/gin-gonic/gin"
)

// ReportHandler exposes a manual trigger for the daily report job; the cron
// scheduler drives the same job automatically.
type ReportHandler struct {
	Job *report.Job
}

func NewReportHandler(job *report.Job) *ReportHandler {
	return &ReportHandler{Job: job}
}

func (h *ReportHandler) SendDailyReports(c *gin.Context) {
	sent, failed, err := h.Job.Run()
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to send daily reports")
		return
	}
	util.Success(c, util.Response{
		"message": "daily reports sent",
		"sent":    sent,
		"failed":  failed,
	})
}
