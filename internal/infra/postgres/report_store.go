package postgres

import (
	"context"
	"fmt"

	"excel-interview-service/internal/domain"
	"github.com/jackc/pgx/v4/pgxpool"
)

// ReportStore persists finalized interview reports in the interview_results
// table, keyed by session_id with insert-or-replace semantics.
type ReportStore struct {
	pool *pgxpool.Pool
}

func NewReportStore(pool *pgxpool.Pool) *ReportStore {
	return &ReportStore{pool: pool}
}

func (s *ReportStore) Upsert(ctx context.Context, report domain.Report) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO interview_results (session_id, start_time, end_time, final_score, feedback_summary, full_transcript)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (session_id) DO UPDATE SET
			start_time = EXCLUDED.start_time,
			end_time = EXCLUDED.end_time,
			final_score = EXCLUDED.final_score,
			feedback_summary = EXCLUDED.feedback_summary,
			full_transcript = EXCLUDED.full_transcript`,
		report.SessionID,
		report.StartTime,
		report.EndTime,
		report.FinalScore,
		report.FeedbackSummary,
		report.FullTranscript,
	)
	if err != nil {
		return fmt.Errorf("%w: upsert report %s: %v", domain.ErrStoreUnavailable, report.SessionID, err)
	}
	return nil
}
