package domain

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Task is one interview exercise: a starting table the candidate edits, the
// solution table it should end up as, and the criteria the evaluator grades
// the submitted formula against.
type Task struct {
	ID                 string `json:"id"`
	Topic              string `json:"topic"`
	Difficulty         string `json:"difficulty"`
	TaskDescription    string `json:"task_description"`
	StartingData       Table  `json:"starting_data"`
	SolutionData       Table  `json:"solution_data"`
	EvaluationCriteria string `json:"evaluation_criteria"`
}

// Validate checks that all required fields are present and both tables are
// rectangular.
func (t Task) Validate() error {
	switch {
	case t.ID == "":
		return fmt.Errorf("task: missing id")
	case t.Topic == "":
		return fmt.Errorf("task %q: missing topic", t.ID)
	case t.Difficulty == "":
		return fmt.Errorf("task %q: missing difficulty", t.ID)
	case t.TaskDescription == "":
		return fmt.Errorf("task %q: missing task_description", t.ID)
	case t.EvaluationCriteria == "":
		return fmt.Errorf("task %q: missing evaluation_criteria", t.ID)
	case len(t.StartingData.Columns) == 0:
		return fmt.Errorf("task %q: missing starting_data", t.ID)
	case len(t.SolutionData.Columns) == 0:
		return fmt.Errorf("task %q: missing solution_data", t.ID)
	case !t.StartingData.Rectangular():
		return fmt.Errorf("task %q: starting_data is not rectangular", t.ID)
	case !t.SolutionData.Rectangular():
		return fmt.Errorf("task %q: solution_data is not rectangular", t.ID)
	}
	return nil
}

// Evaluation is the structured verdict for one submitted formula.
type Evaluation struct {
	Score     int    `json:"score"`
	IsCorrect bool   `json:"is_correct"`
	Feedback  string `json:"feedback"`
}

// Validate checks the score range.
func (e Evaluation) Validate() error {
	if e.Score < 1 || e.Score > 5 {
		return fmt.Errorf("evaluation: score %d out of range [1,5]", e.Score)
	}
	return nil
}

// SubmissionRecord captures everything the candidate handed in for one task.
type SubmissionRecord struct {
	QuestionID       string `json:"question_id"`
	SubmittedFormula string `json:"submitted_formula"`
	FinalData        Table  `json:"final_dataframe"`
	IsStateCorrect   bool   `json:"is_state_correct"`
}

// SessionState is the complete mutable record of one interview. The stores
// treat it as a single document; the json tags are the wire names.
type SessionState struct {
	SessionID            string             `json:"session_id"`
	CurrentQuestionIndex int                `json:"current_question_index"`
	Questions            []Task             `json:"questions"`
	UserAnswers          []SubmissionRecord `json:"user_answers"`
	Evaluations          []Evaluation       `json:"evaluations"`
	InterviewStarted     bool               `json:"interview_started"`
	InterviewFinished    bool               `json:"interview_finished"`
	StartTime            *time.Time         `json:"start_time,omitempty"`
	EndTime              *time.Time         `json:"end_time,omitempty"`
}

// NewSessionState builds the initial, not-yet-started state for a session
// with its catalog snapshot.
func NewSessionState(sessionID string, tasks []Task) SessionState {
	return SessionState{
		SessionID:   sessionID,
		Questions:   tasks,
		UserAnswers: []SubmissionRecord{},
		Evaluations: []Evaluation{},
	}
}

// CurrentTask returns the task the candidate is on, or false when the session
// has run past the last task.
func (s SessionState) CurrentTask() (Task, bool) {
	if s.CurrentQuestionIndex < 0 || s.CurrentQuestionIndex >= len(s.Questions) {
		return Task{}, false
	}
	return s.Questions[s.CurrentQuestionIndex], true
}

// Validate enforces the session invariants. It runs at every store decode
// boundary so a mangled document surfaces as a corruption error instead of
// undefined behavior downstream.
func (s SessionState) Validate() error {
	if s.SessionID == "" {
		return fmt.Errorf("session: missing session_id")
	}
	if s.CurrentQuestionIndex < 0 || s.CurrentQuestionIndex > len(s.Questions) {
		return fmt.Errorf("session %s: index %d out of range [0,%d]",
			s.SessionID, s.CurrentQuestionIndex, len(s.Questions))
	}
	if len(s.UserAnswers) != s.CurrentQuestionIndex || len(s.Evaluations) != s.CurrentQuestionIndex {
		return fmt.Errorf("session %s: answers=%d evaluations=%d index=%d, want all equal",
			s.SessionID, len(s.UserAnswers), len(s.Evaluations), s.CurrentQuestionIndex)
	}
	if !s.InterviewStarted && s.CurrentQuestionIndex != 0 {
		return fmt.Errorf("session %s: not started but index=%d", s.SessionID, s.CurrentQuestionIndex)
	}
	wantFinished := s.InterviewStarted && s.CurrentQuestionIndex == len(s.Questions)
	if s.InterviewFinished != wantFinished {
		return fmt.Errorf("session %s: finished=%v, want %v (index=%d questions=%d)",
			s.SessionID, s.InterviewFinished, wantFinished, s.CurrentQuestionIndex, len(s.Questions))
	}
	for _, q := range s.Questions {
		if err := q.Validate(); err != nil {
			return fmt.Errorf("session %s: %w", s.SessionID, err)
		}
	}
	return nil
}

// FinalScore is the arithmetic mean of evaluation scores, 0.0 when there are
// none.
func (s SessionState) FinalScore() float64 {
	if len(s.Evaluations) == 0 {
		return 0.0
	}
	sum := 0
	for _, e := range s.Evaluations {
		sum += e.Score
	}
	return float64(sum) / float64(len(s.Evaluations))
}

// FeedbackSummary joins each evaluation's feedback into a newline-separated
// bullet list.
func (s SessionState) FeedbackSummary() string {
	lines := make([]string, len(s.Evaluations))
	for i, e := range s.Evaluations {
		lines[i] = "- " + e.Feedback
	}
	return strings.Join(lines, "\n")
}

// Report is the durable, finalized summary of one completed session.
type Report struct {
	SessionID       string
	StartTime       *time.Time
	EndTime         *time.Time
	FinalScore      float64
	FeedbackSummary string
	FullTranscript  []byte
}

// BuildReport derives the report for a finished session, embedding the full
// serialized state as the transcript.
func BuildReport(s SessionState) (Report, error) {
	transcript, err := json.Marshal(s)
	if err != nil {
		return Report{}, fmt.Errorf("serialize transcript: %w", err)
	}
	return Report{
		SessionID:       s.SessionID,
		StartTime:       s.StartTime,
		EndTime:         s.EndTime,
		FinalScore:      s.FinalScore(),
		FeedbackSummary: s.FeedbackSummary(),
		FullTranscript:  transcript,
	}, nil
}
