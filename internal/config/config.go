package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		TTL      string `yaml:"ttl"`
	} `yaml:"redis"`
	Postgres struct {
		URL string `yaml:"url"`
	} `yaml:"postgres"`
	AI struct {
		APIKey      string `yaml:"api_key"`
		BaseURL     string `yaml:"base_url"`
		QuizModel   string `yaml:"quiz_model"`
		HintModel   string `yaml:"hint_model"`
		ChatModel   string `yaml:"chat_model"`
		SpeechModel string `yaml:"speech_model"`
		Voice       string `yaml:"voice"`
	} `yaml:"ai"`
	Quiz struct {
		Topic string `yaml:"topic"`
	} `yaml:"quiz"`
	Hints struct {
		TTL string `yaml:"ttl"`
	} `yaml:"hints"`
}

// Load reads YAML config from path.
func Load(path string) (Config, error) {
	cfg := Config{}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// TTLDuration parses a duration string or returns the fallback if empty.
func TTLDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}
