package app

import (
	"context"
	"time"

	"agri-assistant/internal/domain/entity"
	"agri-assistant/internal/domain/port"
)

// UserService ведёт состояние диалога пользователей бота.
// Переходы, которые возвращают false, не меняют состояние.
type UserService struct {
	repo port.UserRepository
	now  func() time.Time
}

func NewUserService(repo port.UserRepository) *UserService {
	return &UserService{repo: repo, now: time.Now}
}

func (s *UserService) Get(ctx context.Context, userID, chatID int64) (*entity.User, error) {
	return s.repo.Get(ctx, userID, chatID)
}

// BeginCheck ждёт фото; false, если идёт диагностика
func (s *UserService) BeginCheck(ctx context.Context, userID, chatID int64) (*entity.User, bool, error) {
	return s.repo.Update(ctx, userID, chatID, (*entity.User).BeginCheck)
}

// StartProcessing занимает пользователя под диагностику.
// false означает, что фото не ждали: не было /check или предыдущее фото ещё обрабатывается.
func (s *UserService) StartProcessing(ctx context.Context, userID, chatID int64) (*entity.User, bool, error) {
	return s.repo.Update(ctx, userID, chatID, (*entity.User).StartProcessing)
}

// FinishProcessing возвращает пользователя в меню; успешная проверка попадает в счётчик
func (s *UserService) FinishProcessing(ctx context.Context, userID, chatID int64, succeeded bool) (*entity.User, error) {
	user, _, err := s.repo.Update(ctx, userID, chatID, func(u *entity.User) bool {
		if succeeded {
			u.CompleteDiagnosis(s.now().UTC())
		} else {
			u.SetState(entity.StateMainMenu)
		}
		return true
	})
	return user, err
}

// Cancel возвращает в главное меню; false, если идёт диагностика
func (s *UserService) Cancel(ctx context.Context, userID, chatID int64) (*entity.User, bool, error) {
	return s.repo.Update(ctx, userID, chatID, (*entity.User).Cancel)
}
