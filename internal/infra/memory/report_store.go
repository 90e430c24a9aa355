package memory

import (
	"context"
	"sync"

	"excel-interview-service/internal/domain"
)

// ReportStore is an in-memory implementation of app.ReportStore, used by
// tests and when Postgres is not configured.
type ReportStore struct {
	mu      sync.RWMutex
	reports map[string]domain.Report
}

func NewReportStore() *ReportStore {
	return &ReportStore{reports: make(map[string]domain.Report)}
}

// Upsert replaces any prior report for the same session identifier in full.
func (s *ReportStore) Upsert(_ context.Context, report domain.Report) error {
	s.mu.Lock()
	s.reports[report.SessionID] = report
	s.mu.Unlock()
	return nil
}

// Get returns the stored report for a session, if any.
func (s *ReportStore) Get(sessionID string) (domain.Report, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	report, ok := s.reports[sessionID]
	return report, ok
}

// Len reports how many distinct sessions have a report.
func (s *ReportStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.reports)
}
