package domain

import (
	"strings"
	"testing"
	"time"
)

func taskFixture(t *testing.T, id string) Task {
	t.Helper()
	return Task{
		ID:                 id,
		Topic:              "Formulas",
		Difficulty:         "Easy",
		TaskDescription:    "Sum the column.",
		StartingData:       mustTable(t, `{"A": [1, 2, 0]}`),
		SolutionData:       mustTable(t, `{"A": [1, 2, 3]}`),
		EvaluationCriteria: "Must use SUM.",
	}
}

func TestTaskValidate(t *testing.T) {
	if err := taskFixture(t, "q1").Validate(); err != nil {
		t.Fatalf("valid task rejected: %v", err)
	}

	missing := taskFixture(t, "q1")
	missing.Topic = ""
	if err := missing.Validate(); err == nil {
		t.Fatalf("expected error for missing topic")
	}

	ragged := taskFixture(t, "q1")
	ragged.SolutionData = mustTable(t, `{"A": [1, 2], "B": [3]}`)
	if err := ragged.Validate(); err == nil {
		t.Fatalf("expected error for ragged solution_data")
	}
}

func TestSessionStateValidate(t *testing.T) {
	tasks := []Task{taskFixture(t, "q1"), taskFixture(t, "q2")}
	now := time.Now()

	fresh := NewSessionState("s1", tasks)
	if err := fresh.Validate(); err != nil {
		t.Fatalf("fresh session invalid: %v", err)
	}

	mid := NewSessionState("s1", tasks)
	mid.InterviewStarted = true
	mid.StartTime = &now
	mid.CurrentQuestionIndex = 1
	mid.UserAnswers = []SubmissionRecord{{QuestionID: "q1"}}
	mid.Evaluations = []Evaluation{{Score: 4, Feedback: "ok"}}
	if err := mid.Validate(); err != nil {
		t.Fatalf("mid session invalid: %v", err)
	}

	lenMismatch := mid
	lenMismatch.Evaluations = nil
	if err := lenMismatch.Validate(); err == nil {
		t.Fatalf("expected error for answers/evaluations length mismatch")
	}

	notFinished := mid
	notFinished.CurrentQuestionIndex = 2
	notFinished.UserAnswers = append(notFinished.UserAnswers, SubmissionRecord{QuestionID: "q2"})
	notFinished.Evaluations = append(notFinished.Evaluations, Evaluation{Score: 2, Feedback: "meh"})
	if err := notFinished.Validate(); err == nil {
		t.Fatalf("expected error: index at end but finished=false")
	}
	notFinished.InterviewFinished = true
	if err := notFinished.Validate(); err != nil {
		t.Fatalf("finished session invalid: %v", err)
	}

	outOfRange := mid
	outOfRange.CurrentQuestionIndex = 3
	if err := outOfRange.Validate(); err == nil {
		t.Fatalf("expected error for index out of range")
	}

	unstarted := NewSessionState("s1", tasks)
	unstarted.CurrentQuestionIndex = 1
	if err := unstarted.Validate(); err == nil {
		t.Fatalf("expected error: not started with nonzero index")
	}
}

func TestFinalScore(t *testing.T) {
	s := SessionState{}
	if got := s.FinalScore(); got != 0.0 {
		t.Fatalf("empty evaluations: got %v, want 0.0", got)
	}

	s.Evaluations = []Evaluation{{Score: 5}, {Score: 2}}
	if got := s.FinalScore(); got != 3.5 {
		t.Fatalf("got %v, want 3.5", got)
	}
}

func TestFeedbackSummary(t *testing.T) {
	s := SessionState{Evaluations: []Evaluation{
		{Score: 5, Feedback: "great"},
		{Score: 2, Feedback: "wrong range"},
	}}
	want := "- great\n- wrong range"
	if got := s.FeedbackSummary(); got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestBuildReport(t *testing.T) {
	start := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	end := start.Add(20 * time.Minute)

	state := NewSessionState("s1", []Task{taskFixture(t, "q1")})
	state.InterviewStarted = true
	state.InterviewFinished = true
	state.CurrentQuestionIndex = 1
	state.UserAnswers = []SubmissionRecord{{QuestionID: "q1", SubmittedFormula: "=SUM(A1:A2)"}}
	state.Evaluations = []Evaluation{{Score: 4, IsCorrect: true, Feedback: "solid"}}
	state.StartTime = &start
	state.EndTime = &end

	report, err := BuildReport(state)
	if err != nil {
		t.Fatalf("build report: %v", err)
	}
	if report.SessionID != "s1" || report.FinalScore != 4.0 {
		t.Fatalf("unexpected report: %+v", report)
	}
	if report.FeedbackSummary != "- solid" {
		t.Fatalf("feedback summary %q", report.FeedbackSummary)
	}
	if !strings.Contains(string(report.FullTranscript), `"submitted_formula":"=SUM(A1:A2)"`) {
		t.Fatalf("transcript missing submission: %s", report.FullTranscript)
	}
}
