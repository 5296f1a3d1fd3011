package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/tradequest/tradequest/internal/api/job"
	"github.com/tradequest/tradequest/internal/api/response"
	"github.com/tradequest/tradequest/internal/backtest"
	"github.com/tradequest/tradequest/internal/core"
	"github.com/tradequest/tradequest/internal/insight"
)

// Explainer narrates a completed backtest.
type Explainer interface {
	Explain(ctx context.Context, result *backtest.Result) (*insight.Insight, error)
}

// InsightHandler serves LLM commentary for completed jobs.
type InsightHandler struct {
	backtests *BacktestHandler
	explainer Explainer
}

// NewInsightHandler creates an insight handler. A nil explainer answers
// every request with core.ErrLLMDisabled.
func NewInsightHandler(backtests *BacktestHandler, explainer Explainer) *InsightHandler {
	return &InsightHandler{backtests: backtests, explainer: explainer}
}

// Create generates an insight for the job named in the path.
func (h *InsightHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h.explainer == nil {
		response.Fail(w, core.ErrLLMDisabled)
		return
	}

	id := r.PathValue("id")
	j, err := h.backtests.lookup(r.Context(), id)
	if err != nil {
		response.Fail(w, err)
		return
	}
	if j.Status != job.StatusCompleted || j.Result == nil {
		response.Fail(w, core.WrapError(core.ErrJobNotComplete, fmt.Errorf("job %s is %s", id, j.Status)))
		return
	}

	in, err := h.explainer.Explain(r.Context(), j.Result)
	if err != nil {
		response.Fail(w, err)
		return
	}

	response.JSON(w, http.StatusOK, map[string]any{
		"jobId":   id,
		"insight": in,
	})
}
