package storage

import (
	"context"
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"agri-assistant/internal/domain/entity"
	"agri-assistant/internal/domain/port"
)

// ErrEmptyUpload возвращается при попытке сохранить пустой файл
var ErrEmptyUpload = errors.New("upload has no data")

// DiskUploadStore сохраняет загрузки в каталог на диске.
// Файлы с одинаковым именем перезаписываются.
type DiskUploadStore struct {
	root string
}

// NewDiskUploadStore создаёт хранилище с корнем root
func NewDiskUploadStore(root string) *DiskUploadStore {
	return &DiskUploadStore{root: root}
}

// Root возвращает корневой каталог хранилища
func (s *DiskUploadStore) Root() string {
	return s.root
}

// Save записывает файл в корень хранилища, создавая каталог при необходимости
func (s *DiskUploadStore) Save(ctx context.Context, image *entity.UploadedImage) (string, error) {
	if image.Empty() {
		return "", ErrEmptyUpload
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	if err := os.MkdirAll(s.root, 0o755); err != nil {
		return "", errors.Wrapf(err, "create upload dir %s", s.root)
	}

	// Берём только базовое имя, чтобы файл не ушёл за пределы корня.
	path := filepath.Join(s.root, filepath.Base(filepath.Clean("/"+image.FileName)))
	if err := os.WriteFile(path, image.Data, 0o644); err != nil {
		return "", errors.Wrapf(err, "write upload %s", path)
	}

	return path, nil
}

// Проверка реализации интерфейса
var _ port.UploadStore = (*DiskUploadStore)(nil)
