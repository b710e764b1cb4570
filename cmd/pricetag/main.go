package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"pricetag-studio/internal/bot"
	"pricetag-studio/internal/config"
	"pricetag-studio/internal/ingest"
	"pricetag-studio/internal/pricing"
	"pricetag-studio/internal/render"
	"pricetag-studio/internal/server"
	"pricetag-studio/internal/storage"
	"pricetag-studio/pkg/logger"
	"pricetag-studio/pkg/redis"
)

func main() {
	// Локальный .env необязателен
	_ = godotenv.Load()

	// Инициализация логгера
	zapLogger, err := logger.New()
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	defer zapLogger.Sync()

	// Загрузка конфигурации
	cfg, err := config.Load()
	if err != nil {
		zapLogger.Fatal("Failed to load config", zap.Error(err))
	}

	ctx, cancel := signal.NotifyContext(
		context.Background(),
		os.Interrupt,
		syscall.SIGTERM,
	)
	defer cancel()

	// Инициализация Redis клиента
	redisClient := redis.New(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.RedisTTL)
	defer redisClient.Close()

	// Инициализация хранилища сессий
	sessions, err := storage.New(ctx, cfg, redisClient, zapLogger)
	if err != nil {
		zapLogger.Fatal("Failed to init session storage", zap.Error(err))
	}
	defer sessions.Close()

	// Импорт из Google Sheets работает только при заданном ключе
	var sheetsClient *ingest.SheetsClient
	if cfg.GoogleAPIKey != "" {
		sheetsClient, err = ingest.NewSheetsClient(ctx, cfg.GoogleAPIKey)
		if err != nil {
			zapLogger.Fatal("Failed to init sheets client", zap.Error(err))
		}
	} else {
		zapLogger.Info("Google Sheets import disabled: no API key")
	}

	chrome := render.NewChromeRenderer(cfg.ChromePath, zapLogger)

	srv := server.New(cfg.HTTPAddr, sessions, pricing.DefaultThemes(), server.Options{
		Chrome:  chrome,
		Sheets:  sheetsClient,
		BaseURL: cfg.PublicBaseURL,
	}, zapLogger)

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLogger.Error("HTTP server stopped with error", zap.Error(err))
			cancel()
		}
	}()

	// Создание бота
	tgBot, err := bot.New(redisClient, sessions, chrome, zapLogger, cfg)
	if err != nil {
		zapLogger.Fatal("Failed to create bot", zap.Error(err))
	}

	// Запуск бота
	if err := tgBot.Start(ctx); err != nil {
		zapLogger.Fatal("Bot stopped with error", zap.Error(err))
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLogger.Error("HTTP server shutdown failed", zap.Error(err))
	}

	zapLogger.Info("Shutdown gracefully")
}
