package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/internhub/intern-management-api/internal/constants"
	"github.com/internhub/intern-management-api/internal/logging"
	"github.com/sashabaranov/go-openai"
	"github.com/sony/gobreaker"
)

var ErrAIUnavailable = errors.New("AI service is temporarily unavailable")

// GeneratedTask is a task proposal returned by the model.
type GeneratedTask struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	DueDate     string `json:"due_date"`
	Priority    string `json:"priority"`
}

type generatedTaskList struct {
	Tasks []GeneratedTask `json:"tasks"`
}

type AIService struct {
	client  *openai.Client
	breaker *gobreaker.CircuitBreaker
	now     func() time.Time
}

// NewAIService returns nil when apiKey is empty so callers can treat the
// feature as unconfigured.
func NewAIService(apiKey string) *AIService {
	if apiKey == "" {
		return nil
	}
	return NewAIServiceWithConfig(openai.DefaultConfig(apiKey))
}

func NewAIServiceWithConfig(cfg openai.ClientConfig) *AIService {
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "openai",
		MaxRequests: 1,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Logger.WithField("breaker", name).Warnf("circuit breaker %s -> %s", from, to)
		},
	})

	return &AIService{
		client:  openai.NewClientWithConfig(cfg),
		breaker: breaker,
		now:     time.Now,
	}
}

// DraftTasks asks the model for task proposals described by text.
func (s *AIService) DraftTasks(ctx context.Context, text string) ([]GeneratedTask, error) {
	result, err := s.breaker.Execute(func() (interface{}, error) {
		return s.complete(ctx, text)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, ErrAIUnavailable
		}
		return nil, err
	}
	return result.([]GeneratedTask), nil
}

func (s *AIService) complete(ctx context.Context, text string) ([]GeneratedTask, error) {
	today := s.now().Format(constants.DueDateLayout)
	prompt := fmt.Sprintf(`You help a mentor plan work for interns. Extract concrete tasks from the text below.

Today: %s

Text:
%s

Reply with a JSON object of the form:
{"tasks": [{"title": "short title", "description": "details", "due_date": "YYYY-MM-DD or empty", "priority": "LOW | MEDIUM | HIGH"}]}

Rules:
- Return {"tasks": []} when the text contains no tasks.
- Convert relative deadlines ("tomorrow", "next week") into dates.
- Return JSON only.`, today, text)

	resp, err := s.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model: openai.GPT4o,
			Messages: []openai.ChatCompletionMessage{
				{
					Role:    openai.ChatMessageRoleUser,
					Content: prompt,
				},
			},
			ResponseFormat: &openai.ChatCompletionResponseFormat{
				Type: openai.ChatCompletionResponseFormatTypeJSONObject,
			},
			Temperature: 0.3,
		},
	)
	if err != nil {
		return nil, fmt.Errorf("OpenAI API error: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no response from OpenAI")
	}

	content := resp.Choices[0].Message.Content

	var list generatedTaskList
	if err := json.Unmarshal([]byte(content), &list); err != nil {
		return nil, fmt.Errorf("failed to parse AI response: %w (response: %s)", err, content)
	}

	return list.Tasks, nil
}
