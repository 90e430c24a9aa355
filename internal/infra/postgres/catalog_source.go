package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"excel-interview-service/internal/catalog"
	"excel-interview-service/internal/domain"
	"github.com/jackc/pgx/v4/pgxpool"
)

// CatalogSource loads task JSONB rows from the interview_questions table,
// ordered by position. It applies the same atomic validation as the file
// source: one bad row fails the whole catalog.
type CatalogSource struct {
	pool *pgxpool.Pool
}

func NewCatalogSource(pool *pgxpool.Pool) *CatalogSource {
	return &CatalogSource{pool: pool}
}

func (s *CatalogSource) Load(ctx context.Context) ([]domain.Task, error) {
	rows, err := s.pool.Query(ctx, `SELECT data FROM interview_questions ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("%w: query questions: %v", domain.ErrCatalogInvalid, err)
	}
	defer rows.Close()

	var tasks []domain.Task
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("%w: scan question: %v", domain.ErrCatalogInvalid, err)
		}
		var task domain.Task
		if err := json.Unmarshal(raw, &task); err != nil {
			return nil, fmt.Errorf("%w: parse question: %v", domain.ErrCatalogInvalid, err)
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: read questions: %v", domain.ErrCatalogInvalid, err)
	}
	if err := catalog.ValidateTasks(tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}
