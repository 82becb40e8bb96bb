package ai

import (
	"context"
	"fmt"
	"strings"

	"english-star-service/internal/domain"
	openai "github.com/sashabaranov/go-openai"
)

// Hinter produces the one-sentence practice tip shown on the skill pages.
type Hinter struct {
	client *openai.Client
	model  string
}

func NewHinter(client *openai.Client, model string) *Hinter {
	if model == "" {
		model = openai.GPT4oMini
	}
	return &Hinter{client: client, model: model}
}

func (h *Hinter) QuickHint(ctx context.Context, skill domain.Skill, topic string) (string, error) {
	resp, err := h.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: h.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role: openai.ChatMessageRoleUser,
				Content: fmt.Sprintf(
					"Give a very short, encouraging 1-sentence tip in Vietnamese for a primary student learning %s about %s.",
					skill, topic,
				),
			},
		},
	})
	if err != nil {
		return "", fmt.Errorf("quick hint: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("quick hint: empty response")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
