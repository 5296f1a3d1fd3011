package llm

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tradequest/tradequest/internal/core"
)

type stubProvider struct {
	reply string
	err   error
	got   ChatRequest
}

func (s *stubProvider) Name() string { return "stub" }

func (s *stubProvider) Chat(_ context.Context, req ChatRequest) (*ChatResponse, error) {
	s.got = req
	if s.err != nil {
		return nil, s.err
	}
	return &ChatResponse{Content: s.reply}, nil
}

func TestAsk(t *testing.T) {
	p := &stubProvider{reply: "  The strategy beat buy and hold.\n"}

	got, err := Ask(context.Background(), p, "system", "prompt")
	require.NoError(t, err)
	assert.Equal(t, "The strategy beat buy and hold.", got)
	assert.Equal(t, "system", p.got.SystemPrompt)
	require.Len(t, p.got.Messages, 1)
	assert.Equal(t, RoleUser, p.got.Messages[0].Role)
	assert.Equal(t, "prompt", p.got.Messages[0].Content)
	assert.Equal(t, DefaultMaxTokens, p.got.MaxTokens)
}

func TestAsk_Errors(t *testing.T) {
	_, err := Ask(context.Background(), nil, "", "prompt")
	assert.True(t, errors.Is(err, core.ErrLLMDisabled))

	_, err = Ask(context.Background(), &stubProvider{err: errors.New("boom")}, "", "prompt")
	assert.True(t, errors.Is(err, core.ErrLLMFailed))

	_, err = Ask(context.Background(), &stubProvider{reply: "   "}, "", "prompt")
	assert.True(t, errors.Is(err, core.ErrLLMFailed))
}
