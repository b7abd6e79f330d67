// Package config loads the engine's runtime configuration.
package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/luofeng-dev/jielong-engine/internal/domain"
)

// LLMConfig defines how to reach the verse generator. BaseURL points at any
// OpenAI-wire-compatible endpoint.
type LLMConfig struct {
	APIKey      string  `json:"api_key"`
	BaseURL     string  `json:"base_url"`
	Model       string  `json:"model"`
	MaxTokens   int     `json:"max_tokens"`
	Temperature float32 `json:"temperature"`
}

// ScoringConfig holds the per-round point rules.
type ScoringConfig struct {
	PointsCorrect   int   `json:"points_correct"`
	PointsWrong     int   `json:"points_wrong"`
	WinOnExhaustion *bool `json:"win_on_exhaustion,omitempty"`
}

// Config holds the engine's runtime configuration.
type Config struct {
	DBPath         string        `json:"db_path"`
	ListenAddr     string        `json:"listen_addr"`
	LLM            LLMConfig     `json:"llm"`
	Scoring        ScoringConfig `json:"scoring"`
	MaxAttempts    int           `json:"max_attempts"`
	CallTimeoutSec int           `json:"call_timeout_sec"`
	MinVerseLen    int           `json:"min_verse_len"`
	MaxVerseLen    int           `json:"max_verse_len"`
	PoemDifficulty int           `json:"poem_difficulty"`
	SeedCorpus     bool          `json:"seed_corpus"`
}

// Load reads a JSON config file, applies env overrides and defaults, and
// validates.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config JSON: %w", err)
	}

	cfg.applyEnv()
	cfg.applyDefaults()

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// applyEnv lets secrets stay out of the config file.
func (c *Config) applyEnv() {
	if key := os.Getenv("JIELONG_LLM_API_KEY"); key != "" {
		c.LLM.APIKey = key
	}
	if base := os.Getenv("JIELONG_LLM_BASE_URL"); base != "" {
		c.LLM.BaseURL = base
	}
}

func (c *Config) applyDefaults() {
	if c.ListenAddr == "" {
		c.ListenAddr = ":9810"
	}
	if c.LLM.Model == "" {
		c.LLM.Model = "glm-4"
	}
	if c.LLM.MaxTokens == 0 {
		c.LLM.MaxTokens = 50
	}
	if c.LLM.Temperature == 0 {
		c.LLM.Temperature = 0.75
	}
	if c.MaxAttempts == 0 {
		c.MaxAttempts = 4
	}
	if c.CallTimeoutSec == 0 {
		c.CallTimeoutSec = 30
	}
	if c.MinVerseLen == 0 {
		c.MinVerseLen = 4
	}
	if c.MaxVerseLen == 0 {
		c.MaxVerseLen = 8
	}
	if c.Scoring.PointsCorrect == 0 {
		c.Scoring.PointsCorrect = 10
	}
	if c.Scoring.PointsWrong == 0 {
		c.Scoring.PointsWrong = 5
	}
	if c.Scoring.WinOnExhaustion == nil {
		win := true
		c.Scoring.WinOnExhaustion = &win
	}
}

func (c *Config) validate() error {
	var problems []string

	if c.DBPath == "" {
		problems = append(problems, "db_path is required")
	}
	if c.LLM.APIKey == "" {
		problems = append(problems, "llm.api_key is required (or set JIELONG_LLM_API_KEY)")
	}
	if c.MinVerseLen > c.MaxVerseLen {
		problems = append(problems, "min_verse_len must not exceed max_verse_len")
	}
	if c.MaxAttempts < 1 {
		problems = append(problems, "max_attempts must be at least 1")
	}

	if len(problems) > 0 {
		return &domain.EngineError{
			Code:    domain.ErrConfigInvalid.Code,
			Message: fmt.Sprintf("%s: %v", domain.ErrConfigInvalid.Message, problems),
		}
	}
	return nil
}
