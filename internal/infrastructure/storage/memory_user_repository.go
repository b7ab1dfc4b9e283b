package storage

import (
	"context"
	"sync"

	"agri-assistant/internal/domain/entity"
	"agri-assistant/internal/domain/port"
)

// MemoryUserRepository in-memory хранилище пользователей.
// Наружу отдаются только копии, чтобы горутины бота не делили один объект.
type MemoryUserRepository struct {
	mu    sync.Mutex
	users map[int64]entity.User
}

// NewMemoryUserRepository создаёт новое in-memory хранилище
func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{
		users: make(map[int64]entity.User),
	}
}

// Get возвращает пользователя по ID, создаёт нового если не найден
func (r *MemoryUserRepository) Get(ctx context.Context, userID, chatID int64) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	user := r.load(userID, chatID)
	return &user, nil
}

// Save сохраняет состояние пользователя
func (r *MemoryUserRepository) Save(ctx context.Context, user *entity.User) error {
	r.mu.Lock()
	r.users[user.ID] = *user
	r.mu.Unlock()

	return nil
}

// Update применяет change под блокировкой и сохраняет результат, если change вернул true
func (r *MemoryUserRepository) Update(ctx context.Context, userID, chatID int64, change func(*entity.User) bool) (*entity.User, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	user := r.load(userID, chatID)
	if !change(&user) {
		current := r.users[userID]
		return &current, false, nil
	}
	r.users[userID] = user

	return &user, true, nil
}

// load вызывается под r.mu
func (r *MemoryUserRepository) load(userID, chatID int64) entity.User {
	if user, exists := r.users[userID]; exists {
		return user
	}
	user := *entity.NewUser(userID, chatID)
	r.users[userID] = user
	return user
}

// Проверка реализации интерфейса
var _ port.UserRepository = (*MemoryUserRepository)(nil)
