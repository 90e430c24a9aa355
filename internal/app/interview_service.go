package app

import (
	"context"
	"fmt"
	"log"
	"time"

	"excel-interview-service/internal/catalog"
	"excel-interview-service/internal/domain"
	"excel-interview-service/internal/evaluator"
)

// SessionStore abstracts the volatile session state storage (Redis,
// in-memory). Get distinguishes absent from unreachable: an absent session is
// (zero, false, nil) and routes the candidate to the start screen; only a
// store outage is an error.
type SessionStore interface {
	Get(ctx context.Context, sessionID string) (domain.SessionState, bool, error)
	Put(ctx context.Context, sessionID string, state domain.SessionState) error
	Create(ctx context.Context, sessionID string, tasks []domain.Task) (domain.SessionState, error)
}

// ReportStore persists the finalized report of a completed interview.
// Upsert is idempotent by session identifier.
type ReportStore interface {
	Upsert(ctx context.Context, report domain.Report) error
}

// InterviewService drives a session through NotStarted -> InProgress ->
// Finished. Every request is a read-modify-write against the session store
// with no compare-and-swap: concurrent submits for the same session are
// last-writer-wins (a documented property, see the service tests).
type InterviewService struct {
	sessions  SessionStore
	questions catalog.Source
	evaluator evaluator.Evaluator
	reports   ReportStore
	now       func() time.Time
}

func NewInterviewService(sessions SessionStore, questions catalog.Source, eval evaluator.Evaluator, reports ReportStore) *InterviewService {
	return NewInterviewServiceWithClock(sessions, questions, eval, reports, time.Now)
}

// NewInterviewServiceWithClock allows deterministic timestamps in tests.
func NewInterviewServiceWithClock(sessions SessionStore, questions catalog.Source, eval evaluator.Evaluator, reports ReportStore, now func() time.Time) *InterviewService {
	return &InterviewService{
		sessions:  sessions,
		questions: questions,
		evaluator: eval,
		reports:   reports,
		now:       now,
	}
}

// Resume fetches the current state of a session. A session that was never
// created, or whose TTL expired, comes back as (zero, false, nil) and is
// indistinguishable from one that never existed.
func (s *InterviewService) Resume(ctx context.Context, sessionID string) (domain.SessionState, bool, error) {
	return s.sessions.Get(ctx, sessionID)
}

// Start creates the session with a snapshot of the catalog and marks it
// started. A catalog load failure propagates and no session is created. An
// empty catalog produces an immediately finished session with zero
// evaluations.
func (s *InterviewService) Start(ctx context.Context, sessionID string) (domain.SessionState, error) {
	tasks, err := s.questions.Load(ctx)
	if err != nil {
		return domain.SessionState{}, err
	}

	state, err := s.sessions.Create(ctx, sessionID, tasks)
	if err != nil {
		return domain.SessionState{}, err
	}

	now := s.now()
	state.InterviewStarted = true
	state.StartTime = &now
	if len(state.Questions) == 0 {
		state.InterviewFinished = true
		state.EndTime = &now
		s.persistReport(ctx, state)
	}

	if err := s.sessions.Put(ctx, sessionID, state); err != nil {
		return domain.SessionState{}, err
	}
	return state, nil
}

// Submit records one task submission: exact-equality check of the edited
// table against the solution, synchronous evaluation of the formula (the
// evaluator always yields a result), then advance. Finishing the last task
// finalizes the session and upserts the report before the session state is
// written back.
func (s *InterviewService) Submit(ctx context.Context, sessionID, formula string, edited domain.Table) (domain.SessionState, error) {
	state, found, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return domain.SessionState{}, err
	}
	if !found {
		return domain.SessionState{}, domain.ErrSessionNotFound
	}
	if !state.InterviewStarted {
		return domain.SessionState{}, domain.ErrSessionNotStarted
	}
	if state.InterviewFinished {
		return domain.SessionState{}, domain.ErrSessionFinished
	}

	task, ok := state.CurrentTask()
	if !ok {
		return domain.SessionState{}, fmt.Errorf("%w: session %s has no current task", domain.ErrSessionCorrupt, sessionID)
	}

	isStateCorrect := edited.Equal(task.SolutionData)
	eval := s.evaluator.Evaluate(ctx, task, formula)

	state.UserAnswers = append(state.UserAnswers, domain.SubmissionRecord{
		QuestionID:       task.ID,
		SubmittedFormula: formula,
		FinalData:        edited,
		IsStateCorrect:   isStateCorrect,
	})
	state.Evaluations = append(state.Evaluations, eval)
	state.CurrentQuestionIndex++

	if state.CurrentQuestionIndex == len(state.Questions) {
		state.InterviewFinished = true
		end := s.now()
		state.EndTime = &end
		s.persistReport(ctx, state)
	}

	if err := s.sessions.Put(ctx, sessionID, state); err != nil {
		return domain.SessionState{}, err
	}
	return state, nil
}

// persistReport writes the final report best-effort. A report store outage is
// logged and swallowed: the session store copy remains the source of truth
// for the candidate's view of their own report.
func (s *InterviewService) persistReport(ctx context.Context, state domain.SessionState) {
	report, err := domain.BuildReport(state)
	if err != nil {
		log.Printf("build report for session %s: %v", state.SessionID, err)
		return
	}
	if err := s.reports.Upsert(ctx, report); err != nil {
		log.Printf("save report for session %s: %v", state.SessionID, err)
	}
}
