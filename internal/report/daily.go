// Package report builds and delivers the daily per-user summary email.
package report

import (
	"fmt"
	"log"
	"time"

	"github.com/AshirwadShaligram/finance-backend/internal/ledger"
	"github.com/AshirwadShaligram/finance-backend/internal/mail"
	"github.com/AshirwadShaligram/finance-backend/internal/models"
	"github.com/AshirwadShaligram/finance-backend/internal/util"

	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
)

// Job sends every user a summary of their finances.
type Job struct {
	DB     *gorm.DB
	Sender mail.Sender
}

func NewJob(db *gorm.DB, sender mail.Sender) *Job {
	return &Job{DB: db, Sender: sender}
}

// Run sends the daily report to all users. Per-user failures are counted and
// reported but do not stop the run.
func (j *Job) Run() (sent int, failed int, err error) {
	var users []models.User
	if err := j.DB.Find(&users).Error; err != nil {
		return 0, 0, fmt.Errorf("load users: %w", err)
	}

	for i := range users {
		u := &users[i]
		body, err := j.buildReport(u)
		if err != nil {
			log.Printf("daily report: build for user %d: %v", u.ID, err)
			failed++
			continue
		}
		if err := j.Sender.Send(u.Email, "Your Daily Report", body); err != nil {
			log.Printf("daily report: send to user %d: %v", u.ID, err)
			failed++
			continue
		}
		sent++
	}
	return sent, failed, nil
}

func (j *Job) buildReport(u *models.User) (string, error) {
	s, err := ledger.Summarize(j.DB, u.ID)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf(`Hello %s,

Here is your daily report for %s.

  Total income:  %s %s
  Total expense: %s %s
  Net balance:   %s %s

Thanks,
Finance Tracker Team
`,
		u.Name,
		time.Now().Format("2006-01-02"),
		u.Currency, util.FormatAmount(s.TotalIncome),
		u.Currency, util.FormatAmount(s.TotalExpense),
		u.Currency, util.FormatAmount(s.NetBalance),
	), nil
}

// Schedule registers the job on a cron scheduler and starts it. The returned
// cron can be stopped by the caller on shutdown.
func Schedule(spec string, job *Job) (*cron.Cron, error) {
	c := cron.New()
	_, err := c.AddFunc(spec, func() {
		sent, failed, err := job.Run()
		if err != nil {
			log.Printf("daily report run failed: %v", err)
			return
		}
		log.Printf("daily report: sent=%d failed=%d", sent, failed)
	})
	if err != nil {
		return nil, fmt.Errorf("schedule daily report: %w", err)
	}
	c.Start()
	return c, nil
}
