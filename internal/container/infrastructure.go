package container

import (
	"context"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"agri-assistant/config"
	"agri-assistant/internal/domain/port"
	"agri-assistant/internal/infrastructure/llm"
	"agri-assistant/internal/infrastructure/markup"
	"agri-assistant/internal/infrastructure/storage"
	"agri-assistant/internal/infrastructure/vision"
)

const inferenceTimeout = 2 * time.Minute

// Build создаёт адаптеры по конфигурации и собирает контейнер.
// Возвращаемая функция освобождает ресурсы адаптеров.
func Build(ctx context.Context, cfg *config.Config, log logrus.FieldLogger) (*Container, func(), error) {
	var closers []func() error
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			if err := closers[i](); err != nil {
				log.WithError(err).Warn("failed to release resource")
			}
		}
	}

	detector, closeDetector, err := newDetector(ctx, cfg, log)
	if err != nil {
		return nil, nil, err
	}
	closers = append(closers, closeDetector)

	generator, err := llm.NewGeminiGenerator(ctx, llm.Options{
		APIKey:      cfg.APIKey,
		Model:       cfg.LLMModel,
		Temperature: cfg.LLMTemperature,
		Timeout:     cfg.LLMTimeout,
	})
	if err != nil {
		cleanup()
		return nil, nil, err
	}

	deps := Deps{
		Users:     storage.NewMemoryUserRepository(),
		Uploads:   storage.NewDiskUploadStore(cfg.UploadDir),
		Detector:  detector,
		Generator: generator,
		Renderer:  markup.NewRenderer(),
	}

	if cfg.HistoryDB != "" {
		history, err := storage.NewSQLiteHistoryRepository(cfg.HistoryDB)
		if err != nil {
			cleanup()
			return nil, nil, err
		}
		closers = append(closers, history.Close)
		deps.History = history
		log.WithField("path", cfg.HistoryDB).Info("diagnosis history enabled")
	}

	return New(deps, log), cleanup, nil
}

func newDetector(ctx context.Context, cfg *config.Config, log logrus.FieldLogger) (port.DiseaseDetector, func() error, error) {
	switch cfg.DetectorBackend {
	case config.BackendRemote:
		detector := vision.NewRemoteDetector(cfg.InferenceURL, &http.Client{Timeout: inferenceTimeout})
		if err := detector.CheckHealth(ctx); err != nil {
			// Сервис может подняться позже, запросы будут падать до его готовности
			log.WithError(err).Warn("inference service is not healthy")
		}
		log.WithField("url", cfg.InferenceURL).Info("using remote detector")
		return detector, func() error { return nil }, nil

	default:
		classes, err := vision.LoadClassTable(cfg.ClassTablePath)
		if err != nil {
			return nil, nil, err
		}
		detector, err := vision.NewYOLODetector(cfg.ModelPath, classes, cfg.AnnotatedDir, log.WithField("component", "detector"))
		if err != nil {
			return nil, nil, errors.Wrap(err, "create yolo detector")
		}
		log.WithFields(logrus.Fields{"model": cfg.ModelPath, "classes": len(classes)}).Info("using gocv detector")
		return detector, detector.Close, nil
	}
}
