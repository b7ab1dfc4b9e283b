package port

import (
	"context"

	"agri-assistant/internal/domain/entity"
)

// UploadStore интерфейс хранилища загруженных изображений
type UploadStore interface {
	// Save записывает файл и возвращает путь к нему
	Save(ctx context.Context, image *entity.UploadedImage) (string, error)
}
