package port

import (
	"context"

	"agri-assistant/internal/domain/entity"
)

// HistoryRepository интерфейс журнала диагностики
type HistoryRepository interface {
	// Add сохраняет записи одной диагностики
	Add(ctx context.Context, records []entity.HistoryRecord) error

	// Recent возвращает последние записи, новые первыми
	Recent(ctx context.Context, limit int) ([]entity.HistoryRecord, error)
}
