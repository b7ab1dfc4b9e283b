package entity

import (
	"errors"
	"fmt"
)

// ErrUnknownClass возвращается, если индекса класса нет в таблице модели.
var ErrUnknownClass = errors.New("class index is not in class table")

// rowLen задаёт длину строки выхода детектора (x1, y1, x2, y2, conf, cls).
const rowLen = 6

// BoundingBox хранит координаты рамки в пикселях исходного изображения (x1, y1, x2, y2).
type BoundingBox [4]float64

// Width возвращает ширину рамки
func (b BoundingBox) Width() float64 {
	return b[2] - b[0]
}

// Height возвращает высоту рамки
func (b BoundingBox) Height() float64 {
	return b[3] - b[1]
}

// RawDetection: одна сырая детекция в порядке выхода модели.
type RawDetection struct {
	Box        BoundingBox
	Confidence float64 // уверенность в [0, 1]
	ClassIndex int     // индекс класса в ClassTable
}

// Row возвращает детекцию в виде строки выхода модели.
func (r RawDetection) Row() []float64 {
	return []float64{r.Box[0], r.Box[1], r.Box[2], r.Box[3], r.Confidence, float64(r.ClassIndex)}
}

// ParseRow разбирает строку [x1, y1, x2, y2, conf, cls] в RawDetection.
func ParseRow(row []float64) (RawDetection, error) {
	if len(row) < rowLen {
		return RawDetection{}, fmt.Errorf("detection row has %d values, want %d", len(row), rowLen)
	}
	classIndex := int(row[5])
	if classIndex < 0 {
		return RawDetection{}, fmt.Errorf("negative class index %d", classIndex)
	}
	return RawDetection{
		Box:        BoundingBox{row[0], row[1], row[2], row[3]},
		Confidence: row[4],
		ClassIndex: classIndex,
	}, nil
}

// ClassTable сопоставляет индекс класса модели с его названием.
// Загружается один раз при старте и не меняется.
type ClassTable map[int]string

// Name возвращает название класса по индексу
func (t ClassTable) Name(index int) (string, bool) {
	name, ok := t[index]
	return name, ok
}

// Detection: распознанная болезнь с уверенностью.
type Detection struct {
	ClassName  string
	Confidence float64
}

// DecodeDetection переводит сырую детекцию в Detection по таблице классов.
// Функция чистая: таблица не изменяется, порог уверенности не применяется.
func DecodeDetection(raw RawDetection, table ClassTable) (Detection, error) {
	name, ok := table.Name(raw.ClassIndex)
	if !ok {
		return Detection{}, fmt.Errorf("decode detection: %w: %d", ErrUnknownClass, raw.ClassIndex)
	}
	return Detection{
		ClassName:  name,
		Confidence: raw.Confidence,
	}, nil
}

// DetectionOutput хранит итог работы детектора для одного изображения.
type DetectionOutput struct {
	Detections    []RawDetection // детекции в порядке выхода модели
	Classes       ClassTable     // таблица классов экземпляра модели
	AnnotatedPath string         // путь к сохранённой копии с рамками
}

// HasDetections сообщает, нашла ли модель хоть что-то
func (o *DetectionOutput) HasDetections() bool {
	return o != nil && len(o.Detections) > 0
}
