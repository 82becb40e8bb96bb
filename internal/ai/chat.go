package ai

import (
	"context"
	"fmt"
	"strings"

	"english-star-service/internal/domain"
	openai "github.com/sashabaranov/go-openai"
)

const tutorPersona = "Bạn là một giáo viên tiếng Anh tiểu học vui vẻ, kiên nhẫn và tận tâm. " +
	"Hãy giải đáp các thắc mắc của học sinh bằng tiếng Việt và tiếng Anh đơn giản."

// ChatBot answers the tutor conversation with a fixed friendly-tutor persona.
type ChatBot struct {
	client *openai.Client
	model  string
}

func NewChatBot(client *openai.Client, model string) *ChatBot {
	if model == "" {
		model = openai.GPT4o
	}
	return &ChatBot{client: client, model: model}
}

func (c *ChatBot) ChatResponse(ctx context.Context, history []domain.ChatMessage) (string, error) {
	messages := make([]openai.ChatCompletionMessage, 0, len(history)+1)
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleSystem,
		Content: tutorPersona,
	})
	for _, turn := range history {
		role := openai.ChatMessageRoleUser
		if turn.Role == domain.RoleModel {
			role = openai.ChatMessageRoleAssistant
		}
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    role,
			Content: turn.Text,
		})
	}

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:    c.model,
		Messages: messages,
	})
	if err != nil {
		return "", fmt.Errorf("chat response: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat response: empty response")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
