package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"calendar-share-bot/config"
	aclUsecase "calendar-share-bot/internal/acl/usecase"
	authzRepo "calendar-share-bot/internal/authz/repository/sqlite"
	authzUsecase "calendar-share-bot/internal/authz/usecase"
	"calendar-share-bot/internal/dispatch"
	tgDelivery "calendar-share-bot/internal/dispatch/delivery/telegram"
	"calendar-share-bot/internal/httpserver"
	"calendar-share-bot/pkg/gcal"
	"calendar-share-bot/pkg/log"
	"calendar-share-bot/pkg/telegram"
)

func main() {
	// 1. Configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Failed to load config: ", err)
		return
	}

	// 2. Logger
	logger := log.Init(log.ZapConfig{
		Level:        cfg.Logger.Level,
		Mode:         cfg.Logger.Mode,
		Encoding:     cfg.Logger.Encoding,
		ColorEnabled: cfg.Logger.ColorEnabled,
	})

	ctx := context.Background()

	logger.Info(ctx, "Starting Calendar Share Bot...")
	logger.Infof(ctx, "Environment: %s", cfg.Environment.Name)

	// 3. Persistent store
	if dir := filepath.Dir(cfg.SQLite.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			logger.Errorf(ctx, "Failed to create data directory %s: %v", dir, err)
			return
		}
	}
	store, err := authzRepo.Open(cfg.SQLite.Path)
	if err != nil {
		logger.Errorf(ctx, "Failed to open store at %s: %v", cfg.SQLite.Path, err)
		return
	}
	defer store.Close()
	logger.Infof(ctx, "Store opened at %s", cfg.SQLite.Path)

	// 4. OAuth2 coordinator
	coordinator := authzUsecase.New(logger, store, authzUsecase.Config{
		ClientID:        cfg.Google.ClientID,
		ClientSecret:    cfg.Google.ClientSecret,
		RedirectURL:     cfg.Google.RedirectURL,
		AuthURL:         cfg.Google.AuthURL,
		TokenURL:        cfg.Google.TokenURL,
		PendingGrantTTL: cfg.Google.PendingGrantTTL,
		RefreshSkew:     cfg.Google.TokenRefreshSkew,
		ExchangeTimeout: cfg.Google.ExchangeTimeout,
	})

	// 5. Calendar ACL gateway
	calendarClient := gcal.NewClient()
	if cfg.Google.CalendarEndpoint != "" {
		calendarClient.SetEndpoint(cfg.Google.CalendarEndpoint)
	}
	gateway := aclUsecase.New(logger, coordinator, calendarClient, aclUsecase.Config{
		RetryAttempts: cfg.Gateway.RetryAttempts,
		RetryDelay:    cfg.Gateway.RetryDelay,
	})

	// 6. Command dispatcher and Telegram delivery
	dispatcher := dispatch.New(logger, store, coordinator, gateway)

	telegramBot := telegram.NewBot(cfg.Telegram.BotToken)
	telegramHandler := tgDelivery.New(logger, dispatcher, telegramBot)

	if cfg.Telegram.WebhookURL != "" {
		if whErr := telegramBot.SetWebhook(cfg.Telegram.WebhookURL); whErr != nil {
			logger.Warnf(ctx, "Failed to set Telegram webhook: %v", whErr)
		} else {
			logger.Infof(ctx, "Telegram webhook registered at %s", cfg.Telegram.WebhookURL)
		}
	}

	// 7. HTTP Server
	httpServer, err := httpserver.New(logger, httpserver.Config{
		Logger:                  logger,
		Port:                    cfg.HTTPServer.Port,
		Mode:                    cfg.HTTPServer.Mode,
		Environment:             cfg.Environment.Name,
		TelegramHandler:         telegramHandler,
		Coordinator:             coordinator,
		CallbackRateLimitPerMin: cfg.HTTPServer.CallbackRateLimitPerMin,
	})
	if err != nil {
		logger.Error(ctx, "Failed to initialize HTTP server: ", err)
		return
	}

	// 8. Run
	if err := httpServer.Run(); err != nil {
		logger.Error(ctx, "Failed to run server: ", err)
		return
	}

	logger.Info(ctx, "Server stopped gracefully")
}
