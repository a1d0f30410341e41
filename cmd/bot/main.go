package main

import (
	"context"
	"log"

	"github.com/joho/godotenv"

	"github.com/amirrezasz77/telewpbot/internal/ai"
	"github.com/amirrezasz77/telewpbot/internal/analytics"
	"github.com/amirrezasz77/telewpbot/internal/catalog"
	"github.com/amirrezasz77/telewpbot/internal/config"
	"github.com/amirrezasz77/telewpbot/internal/dashboard"
	"github.com/amirrezasz77/telewpbot/internal/scheduler"
	"github.com/amirrezasz77/telewpbot/internal/store"
	"github.com/amirrezasz77/telewpbot/internal/telegram"
)

func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Warning: .env file not found: %v", err)
	}

	cfg, err := config.New()
	if err != nil {
		log.Fatalf("configuration error: %v", err)
	}

	db, err := store.Open(cfg.DatabaseDSN)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	repo := store.NewRepo(db)

	cat, err := catalog.NewClient(cfg.WooCommerceURL, cfg.WooConsumerKey, cfg.WooConsumerSecret)
	if err != nil {
		log.Fatalf("failed to create catalog client: %v", err)
	}

	ctx := context.Background()

	aiSvc, err := ai.NewService(ctx, cfg)
	if err != nil {
		log.Fatalf("failed to init model backend: %v", err)
	}

	bot, err := telegram.New(cfg.TelegramBotToken, repo, cat, aiSvc, cfg.DefaultLanguage, cfg.SupportContact)
	if err != nil {
		log.Fatalf("failed to create bot: %v", err)
	}

	analyticsSvc := analytics.NewService(db)

	srv := dashboard.NewServer(cfg.DashboardAddr, db, analyticsSvc, bot)
	go func() {
		if err := srv.Run(); err != nil {
			log.Printf("dashboard server stopped: %v", err)
		}
	}()

	sched := scheduler.New()
	sched.SetRollupFunction(analyticsSvc.UpsertDailyRollup)
	if err := sched.Start(); err != nil {
		log.Fatalf("failed to start scheduler: %v", err)
	}
	defer sched.Stop()

	bot.Start(ctx)
}
