package vision

import (
	"os"
	"strconv"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"agri-assistant/internal/domain/entity"
)

// LoadClassTable читает названия классов из data.yaml модели.
// Поддерживаются обе формы поля names: список и отображение индекс → название.
func LoadClassTable(path string) (entity.ClassTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read class table")
	}
	return ParseClassTable(data)
}

// ParseClassTable разбирает YAML с полем names.
func ParseClassTable(data []byte) (entity.ClassTable, error) {
	var doc struct {
		Names yaml.Node `yaml:"names"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrap(err, "parse class table")
	}

	table := make(entity.ClassTable)
	switch doc.Names.Kind {
	case yaml.SequenceNode:
		for i, n := range doc.Names.Content {
			table[i] = n.Value
		}
	case yaml.MappingNode:
		for i := 0; i+1 < len(doc.Names.Content); i += 2 {
			key, value := doc.Names.Content[i], doc.Names.Content[i+1]
			index, err := strconv.Atoi(key.Value)
			if err != nil {
				return nil, errors.Wrapf(err, "class index %q", key.Value)
			}
			table[index] = value.Value
		}
	default:
		return nil, errors.New("class table has no names")
	}

	if len(table) == 0 {
		return nil, errors.New("class table is empty")
	}
	return table, nil
}
