// Package api implements the JSON handlers for the /api/v1 routes.
package api

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/tradequest/tradequest/internal/api/job"
	"github.com/tradequest/tradequest/internal/api/response"
	"github.com/tradequest/tradequest/internal/backtest"
	"github.com/tradequest/tradequest/internal/core"
	"go.uber.org/zap"
)

const DefaultBacktestTimeout = 2 * time.Minute

// Runner is the backtest engine as the handlers see it.
type Runner interface {
	Validate(opts backtest.Options) error
	Run(ctx context.Context, opts backtest.Options) (*backtest.Result, error)
	Compare(ctx context.Context, base backtest.Options, strategies []string) ([]*backtest.Result, error)
}

// ResultArchive persists completed results beyond the job store's lifetime.
type ResultArchive interface {
	Save(ctx context.Context, id string, result *backtest.Result) error
	Load(ctx context.Context, id string) (*backtest.Result, error)
}

// BacktestRequest is the request body for starting a backtest.
type BacktestRequest struct {
	Symbol         string         `json:"symbol" validate:"required,max=32"`
	Strategy       string         `json:"strategy" validate:"required"`
	StartDate      string         `json:"startDate" validate:"required,datetime=2006-01-02"`
	EndDate        string         `json:"endDate" validate:"required,datetime=2006-01-02"`
	InitialCapital float64        `json:"initialCapital" validate:"gte=0"`
	Parameters     map[string]any `json:"parameters,omitempty"`
	CommissionRate *float64       `json:"commissionRate,omitempty" validate:"omitempty,gte=0,lt=1"`
	Slippage       *float64       `json:"slippage,omitempty" validate:"omitempty,gte=0,lt=1"`
}

// Options converts the request into engine options. Dates were checked by validation.
func (req BacktestRequest) Options() backtest.Options {
	start, _ := time.Parse(time.DateOnly, req.StartDate)
	end, _ := time.Parse(time.DateOnly, req.EndDate)
	return backtest.Options{
		Symbol:         req.Symbol,
		Strategy:       req.Strategy,
		StartDate:      start,
		EndDate:        end,
		InitialCapital: req.InitialCapital,
		Parameters:     req.Parameters,
		CommissionRate: req.CommissionRate,
		Slippage:       req.Slippage,
	}
}

// BacktestHandler handles backtest API requests.
type BacktestHandler struct {
	jobs    *job.Store
	runner  Runner
	archive ResultArchive
	timeout time.Duration
	logger  *zap.Logger
	wg      sync.WaitGroup
}

// NewBacktestHandler creates a new backtest handler. archive may be nil.
func NewBacktestHandler(jobs *job.Store, runner Runner, archive ResultArchive, timeout time.Duration, logger *zap.Logger) *BacktestHandler {
	if timeout <= 0 {
		timeout = DefaultBacktestTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BacktestHandler{
		jobs:    jobs,
		runner:  runner,
		archive: archive,
		timeout: timeout,
		logger:  logger,
	}
}

// Create validates the request and starts a backtest job.
func (h *BacktestHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req BacktestRequest
	if err := decodeAndValidate(w, r, &req); err != nil {
		response.Fail(w, err)
		return
	}

	opts := req.Options()
	// Strategy and option errors surface here, before a job exists or data is fetched
	if err := h.runner.Validate(opts); err != nil {
		response.Fail(w, err)
		return
	}

	j, err := h.jobs.Create(opts)
	if err != nil {
		h.logger.Warn("backtest job rejected",
			zap.String("symbol", opts.Symbol),
			zap.Error(err),
		)
		response.Fail(w, err)
		return
	}
	h.logger.Info("backtest job created",
		zap.String("job_id", j.ID),
		zap.String("symbol", opts.Symbol),
		zap.String("strategy", opts.Strategy),
	)

	h.wg.Add(1)
	go func() {
		defer h.wg.Done()
		h.runBacktest(j.ID, opts)
	}()

	w.Header().Set("Location", "/api/v1/backtests/"+j.ID)
	response.JSON(w, http.StatusAccepted, map[string]any{
		"jobId":  j.ID,
		"status": j.Status,
	})
}

// runBacktest executes the backtest and updates job status.
func (h *BacktestHandler) runBacktest(jobID string, opts backtest.Options) {
	if err := h.jobs.Start(jobID); err != nil {
		h.logger.Error("marking backtest job running failed",
			zap.String("job_id", jobID),
			zap.Error(err),
		)
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.timeout)
	defer cancel()

	result, err := h.runner.Run(ctx, opts)
	if err != nil {
		h.logger.Warn("backtest job failed",
			zap.String("job_id", jobID),
			zap.String("symbol", opts.Symbol),
			zap.Error(err),
		)
		if ferr := h.jobs.Fail(jobID, err); ferr != nil {
			h.logger.Error("recording backtest failure failed",
				zap.String("job_id", jobID),
				zap.Error(ferr),
			)
		}
		return
	}

	if h.archive != nil {
		if err := h.archive.Save(ctx, jobID, result); err != nil {
			h.logger.Error("archiving backtest result failed",
				zap.String("job_id", jobID),
				zap.Error(err),
			)
		}
	}
	if err := h.jobs.Complete(jobID, result); err != nil {
		h.logger.Error("recording backtest result failed",
			zap.String("job_id", jobID),
			zap.Error(err),
		)
	}
}

// Wait blocks until every started job has finished.
func (h *BacktestHandler) Wait() {
	h.wg.Wait()
}

// Get returns a job with its result once completed. Jobs evicted from the
// store are served from the archive.
func (h *BacktestHandler) Get(w http.ResponseWriter, r *http.Request) {
	j, err := h.lookup(r.Context(), r.PathValue("id"))
	if err != nil {
		response.Fail(w, err)
		return
	}
	response.JSON(w, http.StatusOK, j)
}

func (h *BacktestHandler) lookup(ctx context.Context, id string) (*job.Job, error) {
	j, err := h.jobs.Get(id)
	if err == nil || !errors.Is(err, core.ErrJobNotFound) || h.archive == nil {
		return j, err
	}

	result, aerr := h.archive.Load(ctx, id)
	if aerr != nil {
		if errors.Is(aerr, core.ErrJobNotFound) {
			return nil, err
		}
		return nil, aerr
	}
	return &job.Job{
		ID:     id,
		Status: job.StatusCompleted,
		Request: backtest.Options{
			Symbol:   result.Symbol,
			Strategy: result.Strategy,
		},
		Result: result,
	}, nil
}

// List returns job summaries, newest first, optionally filtered by ?status=.
func (h *BacktestHandler) List(w http.ResponseWriter, r *http.Request) {
	filter := job.Status(r.URL.Query().Get("status"))

	jobs := make([]job.Job, 0)
	for _, j := range h.jobs.List() {
		if filter != "" && j.Status != filter {
			continue
		}
		j.Result = nil
		jobs = append(jobs, j)
	}

	response.JSON(w, http.StatusOK, map[string]any{
		"jobs":  jobs,
		"count": len(jobs),
	})
}
