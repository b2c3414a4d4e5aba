package main

import (
	"fmt"
	"log"

	"github.com/AshirwadShaligram/finance-backend/internal/config"
	"github.com/AshirwadShaligram/finance-backend/internal/database"
	"github.com/AshirwadShaligram/finance-backend/internal/mail"
	"github.com/AshirwadShaligram/finance-backend/internal/report"
	"github.com/AshirwadShaligram/finance-backend/internal/router"

	"github.com/joho/godotenv"
)

func main() {
	// .env for local development; env vars win over config.yaml either way
	_ = godotenv.Load()

	cfg, err := config.Load("config.yaml")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	// init database
	db, err := database.Init(cfg.Database)
	if err != nil {
		log.Fatalf("init database: %v", err)
	}

	// run migrations
	if err := database.AutoMigrate(db); err != nil {
		log.Fatalf("migrate database: %v", err)
	}

	mailer := mail.NewSMTPSender(cfg.Mail)

	// daily report schedule
	if cfg.Report.Enabled {
		job := report.NewJob(db, mailer)
		c, err := report.Schedule(cfg.Report.Schedule, job)
		if err != nil {
			log.Fatalf("schedule daily report: %v", err)
		}
		defer c.Stop()
		log.Printf("daily report scheduled: %s", cfg.Report.Schedule)
	}

	// setup router
	r := router.SetupRouter(cfg, db, mailer)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Address, cfg.Server.Port)
	log.Printf("server listening on %s", addr)
	if err := r.Run(addr); err != nil {
		log.Fatalf("run server: %v", err)
	}
}
