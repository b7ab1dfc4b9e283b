package app

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"agri-assistant/internal/domain/entity"
	"agri-assistant/internal/domain/port"
)

// ErrNoDetectorOutput возвращается, если детектор не вернул ни результата, ни ошибки
var ErrNoDetectorOutput = errors.New("detector returned no output")

// DiagnosisService проводит загруженное фото через весь конвейер:
// сохранение, детекция, расшифровка классов и рекомендации по каждой детекции.
type DiagnosisService struct {
	uploads  port.UploadStore
	detector port.DiseaseDetector
	advisor  port.AdvisoryGenerator
	history  port.HistoryRepository
	log      logrus.FieldLogger
}

// NewDiagnosisService создаёт сервис диагностики. history может быть nil.
func NewDiagnosisService(
	uploads port.UploadStore,
	detector port.DiseaseDetector,
	advisor port.AdvisoryGenerator,
	history port.HistoryRepository,
	log logrus.FieldLogger,
) *DiagnosisService {
	return &DiagnosisService{
		uploads:  uploads,
		detector: detector,
		advisor:  advisor,
		history:  history,
		log:      log,
	}
}

// Diagnose возвращает ответ для загруженного фото.
// Ошибки детектора и генератора не перехватываются: один сбой прерывает весь запрос.
func (s *DiagnosisService) Diagnose(ctx context.Context, image *entity.UploadedImage) (*entity.Diagnosis, error) {
	if image.Empty() {
		return entity.NoFileDiagnosis(), nil
	}
	if s.detector == nil {
		return nil, errors.New("detector is not configured")
	}

	path, err := s.uploads.Save(ctx, image)
	if err != nil {
		return nil, err
	}

	output, err := s.detector.Detect(ctx, path)
	if err != nil {
		return nil, err
	}
	if output == nil {
		return nil, ErrNoDetectorOutput
	}
	s.log.WithFields(logrus.Fields{
		"file":       image.FileName,
		"detections": len(output.Detections),
		"annotated":  output.AnnotatedPath,
	}).Info("image inspected")

	if !output.HasDetections() {
		return entity.NewDiagnosis(nil), nil
	}

	results := make([]entity.AdvisoryResult, 0, len(output.Detections))
	for _, raw := range output.Detections {
		detection, err := entity.DecodeDetection(raw, output.Classes)
		if err != nil {
			return nil, err
		}

		summary, err := s.advisor.Advise(ctx, detection.ClassName)
		if err != nil {
			return nil, err
		}

		results = append(results, entity.AdvisoryResult{
			Status:     http.StatusOK,
			ClassName:  detection.ClassName,
			Summary:    summary,
			Confidence: detection.Confidence,
		})
	}

	s.record(ctx, image.FileName, results)
	return entity.NewDiagnosis(results), nil
}

// record пишет результат в журнал; ошибки журнала только логируются.
func (s *DiagnosisService) record(ctx context.Context, fileName string, results []entity.AdvisoryResult) {
	if s.history == nil || len(results) == 0 {
		return
	}

	now := time.Now().UTC()
	records := make([]entity.HistoryRecord, 0, len(results))
	for _, r := range results {
		records = append(records, entity.HistoryRecord{
			FileName:   fileName,
			ClassName:  r.ClassName,
			Confidence: r.Confidence,
			CreatedAt:  now,
		})
	}

	if err := s.history.Add(ctx, records); err != nil {
		s.log.WithError(err).Warn("failed to record diagnosis history")
	}
}

// History возвращает последние записи журнала.
func (s *DiagnosisService) History(ctx context.Context, limit int) ([]entity.HistoryRecord, error) {
	if s.history == nil {
		return []entity.HistoryRecord{}, nil
	}
	return s.history.Recent(ctx, limit)
}
