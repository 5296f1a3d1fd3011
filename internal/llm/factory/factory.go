package factory

import (
	"fmt"

	"github.com/tradequest/tradequest/internal/config"
	"github.com/tradequest/tradequest/internal/core"
	"github.com/tradequest/tradequest/internal/llm"
	"github.com/tradequest/tradequest/internal/llm/claude"
	"github.com/tradequest/tradequest/internal/llm/openai"
)

// New creates an LLM provider based on configuration.
// An empty provider name returns core.ErrLLMDisabled.
func New(cfg config.LLMConfig) (llm.Provider, error) {
	switch cfg.Provider {
	case "":
		return nil, core.ErrLLMDisabled
	case "claude":
		p, err := claude.New(cfg.Claude.APIKey, cfg.Claude.Model)
		if err != nil {
			return nil, err
		}
		return p, nil
	case "openai":
		p, err := openai.NewWithBaseURL(cfg.OpenAI.APIKey, cfg.OpenAI.Model, cfg.OpenAI.BaseURL)
		if err != nil {
			return nil, err
		}
		return p, nil
	default:
		return nil, core.WrapError(core.ErrConfigInvalid, fmt.Errorf("unknown LLM provider: %s", cfg.Provider))
	}
}
