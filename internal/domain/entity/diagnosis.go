package entity

import (
	"net/http"
	"strings"
	"time"
)

const (
	MsgNoFileUploaded  = "No file uploaded"
	MsgNoDiseaseFound  = "No disease detected"
	MsgSomethingWrong  = "Sorry! Something went wrong!"
	MsgInvalidQuestion = "Bad Request! Please provide a valid question!"
)

// UploadedImage: загруженный пользователем файл.
type UploadedImage struct {
	FileName string
	Data     []byte
}

// Empty сообщает, что файл фактически не был загружен.
func (u *UploadedImage) Empty() bool {
	return u == nil || strings.TrimSpace(u.FileName) == "" || len(u.Data) == 0
}

// AdvisoryResult: рекомендация по одной детекции.
type AdvisoryResult struct {
	Status     int     `json:"status"`
	ClassName  string  `json:"class"`
	Summary    string  `json:"summary"`
	Confidence float64 `json:"confidence"`
}

// StatusResult описывает ответ без данных, только статус и текст ошибки.
type StatusResult struct {
	Status int    `json:"status"`
	Error  string `json:"error"`
}

// Diagnosis хранит ответ конвейера: либо список рекомендаций, либо объект со статусом.
type Diagnosis struct {
	Results []AdvisoryResult
	Failure *StatusResult
}

// NewDiagnosis собирает ответ из рекомендаций; пустой список превращается в "No disease detected".
func NewDiagnosis(results []AdvisoryResult) *Diagnosis {
	if len(results) == 0 {
		return &Diagnosis{Failure: &StatusResult{Status: http.StatusOK, Error: MsgNoDiseaseFound}}
	}
	return &Diagnosis{Results: results}
}

// NoFileDiagnosis: ответ на запрос без файла.
func NoFileDiagnosis() *Diagnosis {
	return &Diagnosis{Failure: &StatusResult{Status: http.StatusBadRequest, Error: MsgNoFileUploaded}}
}

// Body возвращает значение для сериализации в JSON.
func (d *Diagnosis) Body() any {
	if d.Failure != nil {
		return d.Failure
	}
	return d.Results
}

// HistoryRecord: запись журнала диагностики.
type HistoryRecord struct {
	ID         int64     `json:"id"`
	FileName   string    `json:"file_name"`
	ClassName  string    `json:"class"`
	Confidence float64   `json:"confidence"`
	CreatedAt  time.Time `json:"created_at"`
}
