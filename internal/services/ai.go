package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
	"github.com/yukikurage/project-hub-api/internal/constants"
	"github.com/yukikurage/project-hub-api/internal/models"
)

type AIService struct {
	client *openai.Client
}

// GeneratedTask is a task drafted for a project. Drafts are returned to the
// caller and never stored.
type GeneratedTask struct {
	TaskName    string    `json:"task_name"`
	Description string    `json:"description"`
	StartDate   time.Time `json:"start_date"`
	EndDate     time.Time `json:"end_date"`
}

// NewAIService creates an AIService. Without an API key the service is disabled.
func NewAIService(apiKey string) *AIService {
	if apiKey == "" {
		return &AIService{}
	}
	return &AIService{
		client: openai.NewClient(apiKey),
	}
}

func (s *AIService) Enabled() bool {
	return s != nil && s.client != nil
}

// GenerateProjectTasks drafts tasks for a project using OpenAI GPT
func (s *AIService) GenerateProjectTasks(ctx context.Context, project *models.Project, instructions string, now time.Time) ([]GeneratedTask, error) {
	if s.client == nil {
		return nil, fmt.Errorf("OpenAI client not initialized")
	}

	deadline := "none"
	if project.Deadline != nil {
		deadline = project.Deadline.Format(time.RFC3339)
	}

	prompt := fmt.Sprintf(`You are a project planning assistant. Break the project below into concrete development tasks.

Current time: %s

Project title: %s
Project description:
%s
Project deadline: %s
Additional instructions: %s

Return a JSON array of at most %d tasks in this format:
[
  {
    "task_name": "short task name",
    "description": "what has to be done",
    "start_date": "ISO8601 date, e.g. 2025-10-28T09:00:00Z",
    "end_date": "ISO8601 date, not after the project deadline"
  }
]

Rules:
- Return an empty array [] if no tasks can be derived
- Every date must be an ISO8601 string
- Return JSON only, without any explanation`,
		now.Format(time.RFC3339), project.Title, project.Description, deadline,
		instructions, constants.MaxAIGeneratedTasks)

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
			Temperature: 0.3,
		},
	)

	if err != nil {
		return nil, fmt.Errorf("OpenAI API error: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no response from OpenAI")
	}

	content := stripCodeFence(resp.Choices[0].Message.Content)

	var tasks []GeneratedTask
	if err := json.Unmarshal([]byte(content), &tasks); err != nil {
		return nil, fmt.Errorf("failed to parse AI response: %w (response: %s)", err, content)
	}

	return tasks, nil
}

// stripCodeFence removes a markdown code fence around a JSON answer.
func stripCodeFence(content string) string {
	content = strings.TrimSpace(content)
	if !strings.HasPrefix(content, "```") {
		return content
	}
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	return strings.TrimSpace(content)
}
