package catalog

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"excel-interview-service/internal/domain"
)

const validTask = `{
	"id": "%s",
	"topic": "Formulas",
	"difficulty": "Easy",
	"task_description": "Sum the column.",
	"starting_data": {"A": [1, 2, 0]},
	"solution_data": {"A": [1, 2, 3]},
	"evaluation_criteria": "Must use SUM."
}`

func writeCatalog(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "questions.json")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write catalog: %v", err)
	}
	return path
}

func TestFileSourceLoadsValidCatalog(t *testing.T) {
	path := writeCatalog(t, `[`+
		`{"id":"q1","topic":"T","difficulty":"Easy","task_description":"d","starting_data":{"A":[1]},"solution_data":{"A":[2]},"evaluation_criteria":"c"},`+
		`{"id":"q2","topic":"T","difficulty":"Hard","task_description":"d","starting_data":{"B":[1]},"solution_data":{"B":[2]},"evaluation_criteria":"c"}`+
		`]`)

	tasks, err := NewFileSource(path).Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(tasks) != 2 || tasks[0].ID != "q1" || tasks[1].ID != "q2" {
		t.Fatalf("unexpected tasks: %+v", tasks)
	}
}

func TestFileSourceLoadIsAtomic(t *testing.T) {
	// One record missing its evaluation_criteria among valid ones: the whole
	// load must fail, never a shortened catalog.
	path := writeCatalog(t, `[`+
		`{"id":"q1","topic":"T","difficulty":"Easy","task_description":"d","starting_data":{"A":[1]},"solution_data":{"A":[2]},"evaluation_criteria":"c"},`+
		`{"id":"q2","topic":"T","difficulty":"Easy","task_description":"d","starting_data":{"A":[1]},"solution_data":{"A":[2]}},`+
		`{"id":"q3","topic":"T","difficulty":"Easy","task_description":"d","starting_data":{"A":[1]},"solution_data":{"A":[2]},"evaluation_criteria":"c"}`+
		`]`)

	tasks, err := NewFileSource(path).Load(context.Background())
	if !errors.Is(err, domain.ErrCatalogInvalid) {
		t.Fatalf("expected catalog error, got tasks=%v err=%v", tasks, err)
	}
}

func TestFileSourceRejectsBadCatalogs(t *testing.T) {
	cases := map[string]string{
		"malformed json":  `[{`,
		"duplicate ids":   `[{"id":"q1","topic":"T","difficulty":"E","task_description":"d","starting_data":{"A":[1]},"solution_data":{"A":[2]},"evaluation_criteria":"c"},{"id":"q1","topic":"T","difficulty":"E","task_description":"d","starting_data":{"A":[1]},"solution_data":{"A":[2]},"evaluation_criteria":"c"}]`,
		"ragged table":    `[{"id":"q1","topic":"T","difficulty":"E","task_description":"d","starting_data":{"A":[1],"B":[1,2]},"solution_data":{"A":[2]},"evaluation_criteria":"c"}]`,
		"not an array":    `{"id":"q1"}`,
		"wrong cell type": `[{"id":"q1","topic":"T","difficulty":"E","task_description":"d","starting_data":{"A":[[1]]},"solution_data":{"A":[2]},"evaluation_criteria":"c"}]`,
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := NewFileSource(writeCatalog(t, content)).Load(context.Background()); !errors.Is(err, domain.ErrCatalogInvalid) {
				t.Fatalf("expected catalog error, got %v", err)
			}
		})
	}
}

func TestFileSourceMissingFile(t *testing.T) {
	if _, err := NewFileSource(filepath.Join(t.TempDir(), "absent.json")).Load(context.Background()); !errors.Is(err, domain.ErrCatalogInvalid) {
		t.Fatalf("expected catalog error, got %v", err)
	}
}

type countingSource struct {
	inner Source
	calls int
	fail  bool
}

func (s *countingSource) Load(ctx context.Context) ([]domain.Task, error) {
	s.calls++
	if s.fail {
		return nil, domain.ErrCatalogInvalid
	}
	return s.inner.Load(ctx)
}

func TestCacheLoadsOnce(t *testing.T) {
	path := writeCatalog(t, `[{"id":"q1","topic":"T","difficulty":"E","task_description":"d","starting_data":{"A":[1]},"solution_data":{"A":[2]},"evaluation_criteria":"c"}]`)
	source := &countingSource{inner: NewFileSource(path)}
	cache := NewCache(source)

	first, err := cache.Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	second, err := cache.Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if source.calls != 1 {
		t.Fatalf("expected source loaded once, got %d", source.calls)
	}

	// Callers get independent slices.
	first[0].ID = "mutated"
	if second[0].ID != "q1" {
		t.Fatalf("cache handed out shared slice")
	}
}

func TestCacheRetriesAfterFailure(t *testing.T) {
	path := writeCatalog(t, `[{"id":"q1","topic":"T","difficulty":"E","task_description":"d","starting_data":{"A":[1]},"solution_data":{"A":[2]},"evaluation_criteria":"c"}]`)
	source := &countingSource{inner: NewFileSource(path), fail: true}
	cache := NewCache(source)

	if _, err := cache.Load(context.Background()); !errors.Is(err, domain.ErrCatalogInvalid) {
		t.Fatalf("expected catalog error, got %v", err)
	}

	source.fail = false
	tasks, err := cache.Load(context.Background())
	if err != nil {
		t.Fatalf("load after recovery: %v", err)
	}
	if len(tasks) != 1 || source.calls != 2 {
		t.Fatalf("expected retry after failure, tasks=%d calls=%d", len(tasks), source.calls)
	}
}
