package http

import (
	"time"

	"excel-interview-service/internal/domain"
)

// stageView is what the presentation layer renders: which screen the session
// is on, plus the data that screen needs.
type stageView struct {
	SessionID string        `json:"session_id"`
	Screen    string        `json:"screen"` // "start" | "question" | "report"
	Question  *questionView `json:"question,omitempty"`
	Report    *reportView   `json:"report,omitempty"`
}

type questionView struct {
	Index           int          `json:"index"`
	Total           int          `json:"total"`
	Topic           string       `json:"topic"`
	Difficulty      string       `json:"difficulty"`
	TaskDescription string       `json:"task_description"`
	StartingData    domain.Table `json:"starting_data"`
}

type reportView struct {
	FinalScore      float64             `json:"final_score"`
	FeedbackSummary string              `json:"feedback_summary"`
	Evaluations     []domain.Evaluation `json:"evaluations"`
	StartTime       *time.Time          `json:"start_time,omitempty"`
	EndTime         *time.Time          `json:"end_time,omitempty"`
}

// startStageView is the view for a session that does not exist yet, either
// never created or expired. Both look the same to the candidate.
func startStageView(sessionID string) stageView {
	return stageView{SessionID: sessionID, Screen: "start"}
}

func buildStageView(state domain.SessionState) stageView {
	if state.InterviewFinished {
		return stageView{
			SessionID: state.SessionID,
			Screen:    "report",
			Report: &reportView{
				FinalScore:      state.FinalScore(),
				FeedbackSummary: state.FeedbackSummary(),
				Evaluations:     state.Evaluations,
				StartTime:       state.StartTime,
				EndTime:         state.EndTime,
			},
		}
	}
	if !state.InterviewStarted {
		return startStageView(state.SessionID)
	}
	task, _ := state.CurrentTask()
	return stageView{
		SessionID: state.SessionID,
		Screen:    "question",
		Question: &questionView{
			Index:           state.CurrentQuestionIndex,
			Total:           len(state.Questions),
			Topic:           task.Topic,
			Difficulty:      task.Difficulty,
			TaskDescription: task.TaskDescription,
			StartingData:    task.StartingData,
		},
	}
}
