package port

import (
	"context"

	"agri-assistant/internal/domain/entity"
)

// DiseaseDetector интерфейс детектора болезней растений
type DiseaseDetector interface {
	// Detect запускает модель над сохранённым изображением и сохраняет копию с рамками
	Detect(ctx context.Context, imagePath string) (*entity.DetectionOutput, error)
}
