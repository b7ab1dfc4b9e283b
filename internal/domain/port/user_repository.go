package port

import (
	"context"

	"agri-assistant/internal/domain/entity"
)

// UserRepository хранит состояние диалога по пользователям
type UserRepository interface {
	// Get возвращает копию пользователя, создаёт нового если не найден
	Get(ctx context.Context, userID, chatID int64) (*entity.User, error)

	// Save сохраняет пользователя целиком
	Save(ctx context.Context, user *entity.User) error

	// Update атомарно применяет change к пользователю.
	// Изменения сохраняются, только если change вернул true.
	Update(ctx context.Context, userID, chatID int64, change func(*entity.User) bool) (*entity.User, bool, error)
}
