package vision

import (
	"fmt"
	"sort"

	"agri-assistant/internal/domain/entity"
)

const (
	// InputSize: сторона входа YOLOv8 при экспорте в ONNX.
	InputSize = 640
	// ConfThreshold и IoUThreshold совпадают с порогами модели по умолчанию.
	ConfThreshold = 0.25
	IoUThreshold  = 0.7
	MaxDetections = 300
)

// YOLOOptions задаёт постобработку выхода модели.
type YOLOOptions struct {
	ConfThreshold float64
	IoUThreshold  float64
	MaxDetections int
	ScaleX        float64 // ширина исходника / InputSize
	ScaleY        float64 // высота исходника / InputSize
}

// DefaultYOLOOptions возвращает пороги модели для изображения размера width×height.
func DefaultYOLOOptions(width, height int) YOLOOptions {
	return YOLOOptions{
		ConfThreshold: ConfThreshold,
		IoUThreshold:  IoUThreshold,
		MaxDetections: MaxDetections,
		ScaleX:        float64(width) / InputSize,
		ScaleY:        float64(height) / InputSize,
	}
}

// DecodeYOLO разбирает выход YOLOv8 формы [1, 4+nc, anchors]:
// строки cx, cy, w, h, затем оценки классов по каждому якорю.
// Возвращает детекции после порога и NMS по классам, по убыванию уверенности.
func DecodeYOLO(data []float32, numClasses, anchors int, opts YOLOOptions) ([]entity.RawDetection, error) {
	if numClasses <= 0 || anchors <= 0 {
		return nil, fmt.Errorf("invalid output shape: classes=%d anchors=%d", numClasses, anchors)
	}
	if want := (4 + numClasses) * anchors; len(data) < want {
		return nil, fmt.Errorf("unexpected output length: got %d, want %d", len(data), want)
	}

	candidates := make([]entity.RawDetection, 0, 64)
	for i := 0; i < anchors; i++ {
		best, bestScore := -1, float32(0)
		for c := 0; c < numClasses; c++ {
			score := data[(4+c)*anchors+i]
			if best < 0 || score > bestScore {
				best, bestScore = c, score
			}
		}
		if float64(bestScore) < opts.ConfThreshold {
			continue
		}

		cx, cy := float64(data[i]), float64(data[anchors+i])
		w, h := float64(data[2*anchors+i]), float64(data[3*anchors+i])
		candidates = append(candidates, entity.RawDetection{
			Box: entity.BoundingBox{
				(cx - w/2) * opts.ScaleX,
				(cy - h/2) * opts.ScaleY,
				(cx + w/2) * opts.ScaleX,
				(cy + h/2) * opts.ScaleY,
			},
			Confidence: float64(bestScore),
			ClassIndex: best,
		})
	}

	return suppress(candidates, opts.IoUThreshold, opts.MaxDetections), nil
}

// suppress выполняет NMS отдельно для каждого класса.
func suppress(candidates []entity.RawDetection, iouThreshold float64, maxDetections int) []entity.RawDetection {
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Confidence > candidates[j].Confidence
	})

	kept := make([]entity.RawDetection, 0, len(candidates))
	for _, c := range candidates {
		if maxDetections > 0 && len(kept) >= maxDetections {
			break
		}
		overlaps := false
		for _, k := range kept {
			if k.ClassIndex == c.ClassIndex && iou(k.Box, c.Box) > iouThreshold {
				overlaps = true
				break
			}
		}
		if !overlaps {
			kept = append(kept, c)
		}
	}
	return kept
}

func iou(a, b entity.BoundingBox) float64 {
	x1, y1 := maxF(a[0], b[0]), maxF(a[1], b[1])
	x2, y2 := minF(a[2], b[2]), minF(a[3], b[3])
	inter := maxF(0, x2-x1) * maxF(0, y2-y1)
	union := a.Width()*a.Height() + b.Width()*b.Height() - inter
	if union <= 0 {
		return 0
	}
	return inter / union
}

func maxF(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

func minF(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
