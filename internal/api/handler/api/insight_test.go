package api

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tradequest/tradequest/internal/api/job"
	"github.com/tradequest/tradequest/internal/backtest"
	"github.com/tradequest/tradequest/internal/core"
	"github.com/tradequest/tradequest/internal/insight"
)

type mockExplainer struct {
	err error
	got *backtest.Result
}

func (m *mockExplainer) Explain(_ context.Context, r *backtest.Result) (*insight.Insight, error) {
	m.got = r
	if m.err != nil {
		return nil, m.err
	}
	return &insight.Insight{Provider: "mock", Summary: "Beat buy and hold."}, nil
}

const insightPattern = "POST /api/v1/backtests/{id}/insight"

func TestInsightHandler_Create(t *testing.T) {
	jobs := job.NewStore(100, time.Hour)
	backtests := NewBacktestHandler(jobs, &mockRunner{}, nil, time.Minute, nil)
	explainer := &mockExplainer{}
	handler := NewInsightHandler(backtests, explainer)

	j := createJob(t, jobs, backtest.Options{Symbol: "AAPL"})
	require.NoError(t, jobs.Complete(j.ID, sampleResult()))

	w := serve(insightPattern, handler.Create, "POST", "/api/v1/backtests/"+j.ID+"/insight")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	data := decodeData(t, w)
	assert.Equal(t, j.ID, data["jobId"])
	in := data["insight"].(map[string]any)
	assert.Equal(t, "Beat buy and hold.", in["summary"])
	require.NotNil(t, explainer.got)
	assert.Equal(t, "AAPL", explainer.got.Symbol)
}

func TestInsightHandler_Errors(t *testing.T) {
	jobs := job.NewStore(100, time.Hour)
	backtests := NewBacktestHandler(jobs, &mockRunner{}, nil, time.Minute, nil)
	pending := createJob(t, jobs, backtest.Options{Symbol: "AAPL"})
	done := createJob(t, jobs, backtest.Options{Symbol: "AAPL"})
	require.NoError(t, jobs.Complete(done.ID, sampleResult()))

	tests := []struct {
		name      string
		explainer Explainer
		id        string
		status    int
		code      string
	}{
		{"disabled", nil, done.ID, http.StatusServiceUnavailable, "LLM_DISABLED"},
		{"unknown job", &mockExplainer{}, "missing", http.StatusNotFound, "JOB_NOT_FOUND"},
		{"not complete", &mockExplainer{}, pending.ID, http.StatusConflict, "JOB_NOT_COMPLETE"},
		{"llm failure", &mockExplainer{err: core.WrapError(core.ErrLLMFailed, errors.New("rate limited"))}, done.ID, http.StatusBadGateway, "LLM_FAILED"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewInsightHandler(backtests, tt.explainer)
			w := serve(insightPattern, handler.Create, "POST", "/api/v1/backtests/"+tt.id+"/insight")
			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, tt.code, decodeError(t, w).Code)
		})
	}
}
