// Package evaluator scores a candidate's submitted formula with a language
// model. Failures never escape the package: any transport, timeout, or parse
// problem collapses into a fixed low-score Evaluation so the interview flow
// is never blocked by a scoring outage.
package evaluator

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"math"
	"strings"
	"time"

	"excel-interview-service/internal/domain"

	openai "github.com/sashabaranov/go-openai"
)

// FallbackFeedback is the feedback text of the sentinel evaluation returned
// whenever the scoring backend fails.
const FallbackFeedback = "An error occurred while evaluating the response. Please ensure the formula is valid or try again."

// Fallback is the sentinel evaluation used when scoring fails.
func Fallback() domain.Evaluation {
	return domain.Evaluation{Score: 1, IsCorrect: false, Feedback: FallbackFeedback}
}

// Evaluator scores a submitted formula against a task. Implementations never
// return an error; degraded backends yield the fallback evaluation.
type Evaluator interface {
	Evaluate(ctx context.Context, task domain.Task, formula string) domain.Evaluation
}

// Client evaluates formulas through an OpenAI-compatible chat API (Ollama
// exposes one). Requests use temperature 0 so repeated evaluation of the same
// (task, formula) pair is reproducible.
type Client struct {
	api     *openai.Client
	model   string
	timeout time.Duration
}

// New creates a Client. baseURL may point at any OpenAI-compatible endpoint;
// timeout bounds each evaluation call.
func New(baseURL, apiKey, model string, timeout time.Duration) *Client {
	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}
	return &Client{
		api:     openai.NewClientWithConfig(config),
		model:   model,
		timeout: timeout,
	}
}

func (c *Client) Evaluate(ctx context.Context, task domain.Task, formula string) domain.Evaluation {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: buildUserPrompt(task, formula)},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		// A literal 0 is dropped by the field's omitempty and the backend
		// would fall back to its own sampling default. The smallest nonzero
		// float32 keeps the field on the wire and means zero-temperature
		// sampling to the backend.
		Temperature: math.SmallestNonzeroFloat32,
	})
	if err != nil {
		log.Printf("evaluator: chat completion for task %q: %v", task.ID, err)
		return Fallback()
	}
	if len(resp.Choices) == 0 {
		log.Printf("evaluator: empty response for task %q", task.ID)
		return Fallback()
	}

	raw := resp.Choices[0].Message.Content
	var eval domain.Evaluation
	if err := json.Unmarshal([]byte(raw), &eval); err != nil {
		log.Printf("evaluator: parse response for task %q: %v (raw: %s)", task.ID, err, raw)
		return Fallback()
	}
	// An out-of-range score means the model ignored the instructions; treat
	// it as a malformed response rather than clamping it into validity.
	if err := eval.Validate(); err != nil {
		log.Printf("evaluator: invalid response for task %q: %v (raw: %s)", task.ID, err, raw)
		return Fallback()
	}
	return eval
}

const systemPrompt = `You are an expert Excel formula evaluator for a technical interview.
Your task is to assess a candidate's submitted formula for a specific task.
Evaluate the formula strictly based on the provided criteria.
Respond ONLY with a JSON object of the form:
{"score": <integer 1 to 5>, "is_correct": <true/false>, "feedback": "<detailed justification>"}`

func buildUserPrompt(task domain.Task, formula string) string {
	var sb strings.Builder
	sb.WriteString("TASK DESCRIPTION:\n" + task.TaskDescription + "\n\n")
	sb.WriteString("EVALUATION CRITERIA:\n" + task.EvaluationCriteria + "\n\n")
	sb.WriteString(fmt.Sprintf("CANDIDATE'S FORMULA:\n%q\n", formula))
	return sb.String()
}
