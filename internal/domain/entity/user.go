package entity

import "time"

// UserState состояние пользователя в диалоге
type UserState string

const (
	StateMainMenu      UserState = "main_menu"      // В главном меню
	StateAwaitingPhoto UserState = "awaiting_photo" // Ждём фото растения
	StateProcessing    UserState = "processing"     // Идёт диагностика
)

// User — собеседник бота и его история диагностик
type User struct {
	ID              int64     // Telegram User ID
	ChatID          int64     // Telegram Chat ID
	State           UserState // Текущее состояние диалога
	Diagnoses       int       // Сколько фото проверено
	LastDiagnosisAt time.Time // Время последней завершённой проверки
}

// NewUser создаёт нового пользователя с начальным состоянием
func NewUser(userID, chatID int64) *User {
	return &User{
		ID:     userID,
		ChatID: chatID,
		State:  StateMainMenu,
	}
}

// SetState обновляет состояние пользователя
func (u *User) SetState(state UserState) {
	u.State = state
}

// Busy сообщает, что для пользователя уже идёт диагностика
func (u *User) Busy() bool {
	return u.State == StateProcessing
}

// BeginCheck переводит в ожидание фото. Во время диагностики состояние не меняется.
func (u *User) BeginCheck() bool {
	if u.Busy() {
		return false
	}
	u.State = StateAwaitingPhoto
	return true
}

// StartProcessing принимает фото только после /check
func (u *User) StartProcessing() bool {
	if u.State != StateAwaitingPhoto {
		return false
	}
	u.State = StateProcessing
	return true
}

// Cancel возвращает в главное меню, если диагностика не идёт
func (u *User) Cancel() bool {
	if u.Busy() {
		return false
	}
	u.State = StateMainMenu
	return true
}

// CompleteDiagnosis отмечает завершённую проверку и возвращает в главное меню
func (u *User) CompleteDiagnosis(at time.Time) {
	u.Diagnoses++
	u.LastDiagnosisAt = at
	u.State = StateMainMenu
}
