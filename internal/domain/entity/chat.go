package entity

import "strings"

// Intent: результат классификации вопроса пользователя.
type Intent int

const (
	IntentOffTopic    Intent = iota // вопрос не про сельское хозяйство
	IntentAgriculture               // вопрос про сельское хозяйство
	IntentGreeting                  // приветствие
)

func (i Intent) String() string {
	switch i {
	case IntentAgriculture:
		return "agriculture"
	case IntentGreeting:
		return "greeting"
	default:
		return "off_topic"
	}
}

var (
	agricultureKeywords = []string{"farm", "farming", "agriculture", "crop", "plant", "soil", "harvest", "कृषि", "खेती", "बाली"}
	greetings           = []string{"hello", "hi", "hey", "namaste", "नमस्ते", "हेलो", "हाइ"}
)

// ClassifyQuestion определяет тему вопроса по подстрокам.
// Ключевые слова о сельском хозяйстве важнее приветствия.
func ClassifyQuestion(question string) Intent {
	q := strings.ToLower(question)
	if containsAny(q, agricultureKeywords) {
		return IntentAgriculture
	}
	if containsAny(q, greetings) {
		return IntentGreeting
	}
	return IntentOffTopic
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}

// ChatAnswer: полезная нагрузка ответа чата.
type ChatAnswer struct {
	Status   int    `json:"status"`
	Question string `json:"question,omitempty"`
	Response string `json:"response,omitempty"`
	Error    string `json:"error,omitempty"`
}

// ChatReply оборачивает ответ чата в поле "response".
type ChatReply struct {
	Response ChatAnswer `json:"response"`
}
