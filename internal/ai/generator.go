package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"english-star-service/internal/domain"
	openai "github.com/sashabaranov/go-openai"
)

// generateTimeout caps a single quiz generation request so a hung upstream
// cannot leave a session loading forever.
const generateTimeout = 90 * time.Second

// Generator produces the daily quiz with a chat completion forced through a
// submit_questions tool call, so the model returns strictly structured
// questions instead of free text.
type Generator struct {
	client *openai.Client
	model  string
}

func NewGenerator(client *openai.Client, model string) *Generator {
	if model == "" {
		model = openai.GPT4o
	}
	return &Generator{client: client, model: model}
}

func (g *Generator) GenerateQuiz(ctx context.Context, topic string) ([]domain.QuizQuestion, error) {
	ctx, cancel := context.WithTimeout(ctx, generateTimeout)
	defer cancel()

	prompt := fmt.Sprintf(
		"Tạo một bài kiểm tra tiếng Anh tiểu học gồm 20 câu hỏi trắc nghiệm về chủ đề: %s. "+
			"Mỗi câu hỏi có 4 lựa chọn. Với mỗi câu hỏi hãy kèm một gợi ý ngắn gọn (explanation) "+
			"giúp học sinh suy nghĩ về câu trả lời đúng mà không trực tiếp tiết lộ đáp án.",
		topic,
	)

	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: g.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: "You generate English quizzes for Vietnamese primary-school students. Every question has exactly 4 options and one correct answer.",
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
		Tools: []openai.Tool{
			{
				Type: openai.ToolTypeFunction,
				Function: &openai.FunctionDefinition{
					Name:        "submit_questions",
					Description: "Submit the generated quiz questions",
					Parameters: map[string]interface{}{
						"type": "object",
						"properties": map[string]interface{}{
							"questions": map[string]interface{}{
								"type": "array",
								"items": map[string]interface{}{
									"type": "object",
									"properties": map[string]interface{}{
										"id": map[string]interface{}{
											"type": "integer",
										},
										"question": map[string]interface{}{
											"type":        "string",
											"description": "The question text",
										},
										"options": map[string]interface{}{
											"type": "array",
											"items": map[string]interface{}{
												"type": "string",
											},
											"description": "Exactly 4 answer options",
										},
										"correctAnswer": map[string]interface{}{
											"type":        "integer",
											"description": "0-based index of the correct option",
										},
										"explanation": map[string]interface{}{
											"type":        "string",
											"description": "Short hint that explains the concept without revealing the answer",
										},
									},
									"required": []string{"id", "question", "options", "correctAnswer"},
								},
							},
						},
						"required": []string{"questions"},
					},
				},
			},
		},
		ToolChoice: openai.ToolChoice{
			Type: openai.ToolTypeFunction,
			Function: openai.ToolFunction{
				Name: "submit_questions",
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("generate quiz: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("generate quiz: empty response")
	}

	choice := resp.Choices[0]
	if len(choice.Message.ToolCalls) == 0 {
		return nil, fmt.Errorf("generate quiz: no tool call in response")
	}
	toolCall := choice.Message.ToolCalls[0]
	if toolCall.Function.Name != "submit_questions" {
		return nil, fmt.Errorf("generate quiz: unexpected tool call %q", toolCall.Function.Name)
	}

	var args struct {
		Questions []domain.QuizQuestion `json:"questions"`
	}
	if err := json.Unmarshal([]byte(toolCall.Function.Arguments), &args); err != nil {
		return nil, fmt.Errorf("generate quiz: parse tool arguments: %w", err)
	}
	return args.Questions, nil
}
