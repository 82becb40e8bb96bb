package ai

import (
	"context"
	"fmt"
	"io"

	openai "github.com/sashabaranov/go-openai"
)

// Speaker synthesizes audio for practice words and sentences. Playback of the
// returned bytes is entirely a client concern.
type Speaker struct {
	client *openai.Client
	model  openai.SpeechModel
	voice  openai.SpeechVoice
}

func NewSpeaker(client *openai.Client, model, voice string) *Speaker {
	s := &Speaker{
		client: client,
		model:  openai.TTSModel1,
		voice:  openai.VoiceNova,
	}
	if model != "" {
		s.model = openai.SpeechModel(model)
	}
	if voice != "" {
		s.voice = openai.SpeechVoice(voice)
	}
	return s
}

func (s *Speaker) GenerateSpeech(ctx context.Context, text string) ([]byte, error) {
	resp, err := s.client.CreateSpeech(ctx, openai.CreateSpeechRequest{
		Model: s.model,
		Input: "Say clearly for a child: " + text,
		Voice: s.voice,
	})
	if err != nil {
		return nil, fmt.Errorf("create speech: %w", err)
	}
	defer resp.Close()

	audio, err := io.ReadAll(resp)
	if err != nil {
		return nil, fmt.Errorf("read speech audio: %w", err)
	}
	return audio, nil
}
