package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"agri-assistant/config"
	"agri-assistant/internal/api/rest"
	"agri-assistant/internal/api/telegram"
	"agri-assistant/internal/container"
)

func main() {
	log := logrus.New()
	log.Formatter = &logrus.JSONFormatter{
		FieldMap: logrus.FieldMap{
			logrus.FieldKeyTime:  "timestamp",
			logrus.FieldKeyLevel: "severity",
			logrus.FieldKeyMsg:   "message",
		},
		TimestampFormat: time.RFC3339Nano,
	}
	log.Out = os.Stdout

	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("failed to load config")
	}
	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		log.SetLevel(level)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Собираем сервисы приложения
	appContainer, cleanup, err := container.Build(ctx, cfg, log)
	if err != nil {
		log.WithError(err).Fatal("failed to build application")
	}
	defer cleanup()

	// Telegram-бот запускается только при наличии токена
	if cfg.TelegramToken != "" {
		bot, err := telegram.NewBot(
			cfg.TelegramToken,
			appContainer.UserService,
			appContainer.DiagnosisService,
			appContainer.ChatService,
			log.WithField("component", "telegram"),
		)
		if err != nil {
			log.WithError(err).Fatal("failed to create bot")
		}
		go func() {
			if err := bot.Run(ctx); err != nil {
				log.WithError(err).Error("bot stopped")
			}
		}()
	}

	handler := rest.NewHandler(appContainer.DiagnosisService, appContainer.ChatService, cfg.StaticDir)
	srv := &http.Server{
		Addr:         cfg.ListenAddr(),
		Handler:      handler.Router(log),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 5 * time.Minute,
		IdleTimeout:  2 * time.Minute,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.WithError(err).Warn("graceful shutdown failed")
		}
	}()

	log.WithField("addr", srv.Addr).Info("server is running")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.WithError(err).Fatal("server error")
	}
}
