// Package ai holds the thin adapters around the external generative-language
// provider: daily quiz generation, practice hints, the chat tutor, and speech
// synthesis. The core treats all of these as opaque collaborators.
package ai

import (
	openai "github.com/sashabaranov/go-openai"
)

// Config selects the provider endpoint and models for each adapter. Zero
// values fall back to sensible defaults.
type Config struct {
	APIKey      string
	BaseURL     string
	QuizModel   string
	HintModel   string
	ChatModel   string
	SpeechModel string
	Voice       string
}

// NewClient builds the shared provider client.
func NewClient(cfg Config) *openai.Client {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	return openai.NewClientWithConfig(clientCfg)
}
