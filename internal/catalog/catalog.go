// Package catalog loads and validates the ordered interview question catalog.
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"excel-interview-service/internal/domain"
)

// Source loads the full ordered catalog. Loads are atomic: a single invalid
// record fails the whole load, so a corrupted catalog can never present a
// silently shortened interview.
type Source interface {
	Load(ctx context.Context) ([]domain.Task, error)
}

// FileSource reads a JSON array of task records from disk.
type FileSource struct {
	path string
}

func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

func (s *FileSource) Load(_ context.Context) ([]domain.Task, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", domain.ErrCatalogInvalid, s.path, err)
	}
	var tasks []domain.Task
	if err := json.Unmarshal(data, &tasks); err != nil {
		return nil, fmt.Errorf("%w: parse %s: %v", domain.ErrCatalogInvalid, s.path, err)
	}
	if err := ValidateTasks(tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

// ValidateTasks checks every task and rejects duplicate identifiers.
func ValidateTasks(tasks []domain.Task) error {
	seen := make(map[string]bool, len(tasks))
	for i, task := range tasks {
		if err := task.Validate(); err != nil {
			return fmt.Errorf("%w: record %d: %v", domain.ErrCatalogInvalid, i, err)
		}
		if seen[task.ID] {
			return fmt.Errorf("%w: duplicate task id %q", domain.ErrCatalogInvalid, task.ID)
		}
		seen[task.ID] = true
	}
	return nil
}
