package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tradequest/tradequest/internal/api/job"
	"github.com/tradequest/tradequest/internal/api/response"
	"github.com/tradequest/tradequest/internal/backtest"
	"github.com/tradequest/tradequest/internal/core"
	"github.com/tradequest/tradequest/internal/strategy"
)

// mockRunner validates strategies with the real parser and returns canned results
type mockRunner struct {
	mu      sync.Mutex
	result  *backtest.Result
	err     error
	ran     []backtest.Options
	compare []string
}

func (m *mockRunner) Validate(opts backtest.Options) error {
	_, err := strategy.ParseKind(opts.Strategy)
	return err
}

func (m *mockRunner) Run(_ context.Context, opts backtest.Options) (*backtest.Result, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ran = append(m.ran, opts)
	if m.err != nil {
		return nil, m.err
	}
	return m.result, nil
}

func (m *mockRunner) Compare(_ context.Context, base backtest.Options, strategies []string) ([]*backtest.Result, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.compare = strategies
	if m.err != nil {
		return nil, m.err
	}
	out := make([]*backtest.Result, len(strategies))
	for i, s := range strategies {
		out[i] = &backtest.Result{
			Symbol:   base.Symbol,
			Strategy: s,
			Results:  backtest.Metrics{TotalReturnPercent: float64(10 - i), TotalTrades: i},
		}
	}
	return out, nil
}

func (m *mockRunner) runs() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.ran)
}

type memArchive struct {
	mu    sync.Mutex
	saved map[string]*backtest.Result
}

func (a *memArchive) Save(_ context.Context, id string, r *backtest.Result) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.saved == nil {
		a.saved = map[string]*backtest.Result{}
	}
	a.saved[id] = r
	return nil
}

func (a *memArchive) Load(_ context.Context, id string) (*backtest.Result, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	r, ok := a.saved[id]
	if !ok {
		return nil, core.ErrJobNotFound
	}
	return r, nil
}

func sampleResult() *backtest.Result {
	return &backtest.Result{
		Symbol:   "AAPL",
		Strategy: "ma_crossover",
		Results:  backtest.Metrics{InitialCapital: 10000, FinalValue: 10800, TotalReturnPercent: 8},
		Trades:   []backtest.Trade{},
	}
}

const validBody = `{
	"symbol": "AAPL",
	"strategy": "ma_crossover",
	"startDate": "2023-01-01",
	"endDate": "2024-01-01",
	"parameters": {"fastPeriod": 5, "slowPeriod": 20}
}`

func post(t *testing.T, h http.HandlerFunc, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest("POST", path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h(w, req)
	return w
}

func createJob(t *testing.T, jobs *job.Store, opts backtest.Options) *job.Job {
	t.Helper()
	j, err := jobs.Create(opts)
	require.NoError(t, err)
	return j
}

// serve routes through a mux so path values are populated
func serve(pattern string, h http.HandlerFunc, method, path string) *httptest.ResponseRecorder {
	mux := http.NewServeMux()
	mux.HandleFunc(pattern, h)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest(method, path, nil))
	return w
}

func decodeData(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var resp response.SuccessResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data, ok := resp.Data.(map[string]any)
	require.True(t, ok, "data is %T", resp.Data)
	return data
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) response.ErrorDetail {
	t.Helper()
	var resp response.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.Error
}

func TestBacktestHandler_Create(t *testing.T) {
	jobs := job.NewStore(100, time.Hour)
	runner := &mockRunner{result: sampleResult()}
	archive := &memArchive{}
	handler := NewBacktestHandler(jobs, runner, archive, time.Minute, nil)

	w := post(t, handler.Create, "/api/v1/backtests", validBody)
	require.Equal(t, http.StatusAccepted, w.Code, w.Body.String())

	data := decodeData(t, w)
	jobID, _ := data["jobId"].(string)
	require.NotEmpty(t, jobID)
	assert.Equal(t, "pending", data["status"])
	assert.Equal(t, "/api/v1/backtests/"+jobID, w.Header().Get("Location"))

	handler.Wait()

	j, err := jobs.Get(jobID)
	require.NoError(t, err)
	assert.Equal(t, job.StatusCompleted, j.Status)
	assert.NotNil(t, j.CompletedAt)
	assert.Equal(t, 8.0, j.Result.Results.TotalReturnPercent)

	require.Equal(t, 1, runner.runs())
	opts := runner.ran[0]
	assert.Equal(t, "AAPL", opts.Symbol)
	assert.Equal(t, time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC), opts.StartDate)
	assert.Equal(t, 5.0, opts.Parameters["fastPeriod"])

	saved, err := archive.Load(context.Background(), jobID)
	require.NoError(t, err)
	assert.Equal(t, "AAPL", saved.Symbol)
}

func TestBacktestHandler_Create_Failure(t *testing.T) {
	jobs := job.NewStore(100, time.Hour)
	runner := &mockRunner{err: core.WrapError(core.ErrInsufficientData, errors.New("AAPL: got 12 bars, need 50"))}
	handler := NewBacktestHandler(jobs, runner, nil, time.Minute, nil)

	w := post(t, handler.Create, "/api/v1/backtests", validBody)
	require.Equal(t, http.StatusAccepted, w.Code)
	handler.Wait()

	jobID := decodeData(t, w)["jobId"].(string)
	j, err := jobs.Get(jobID)
	require.NoError(t, err)
	assert.Equal(t, job.StatusFailed, j.Status)
	assert.Equal(t, "INSUFFICIENT_DATA", j.ErrorCode)
	assert.Contains(t, j.Error, "got 12 bars")
	assert.Nil(t, j.Result)
}

func TestBacktestHandler_Create_Invalid(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		wantCode string
		wantMsg  string
	}{
		{"empty body", ``, "INVALID_REQUEST", "empty"},
		{"malformed json", `{"symbol":`, "INVALID_REQUEST", "decoding"},
		{"missing fields", `{"symbol": "AAPL"}`, "INVALID_REQUEST", "strategy is required"},
		{"bad date", `{"symbol":"AAPL","strategy":"breakout","startDate":"01/02/2023","endDate":"2024-01-01"}`, "INVALID_REQUEST", "startDate must be a date"},
		{"commission out of range", `{"symbol":"AAPL","strategy":"breakout","startDate":"2023-01-01","endDate":"2024-01-01","commissionRate":2}`, "INVALID_REQUEST", "commissionRate must be less than 1"},
		{"unknown strategy", `{"symbol":"AAPL","strategy":"astrology","startDate":"2023-01-01","endDate":"2024-01-01"}`, "INVALID_STRATEGY", "astrology"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			jobs := job.NewStore(100, time.Hour)
			runner := &mockRunner{result: sampleResult()}
			handler := NewBacktestHandler(jobs, runner, nil, time.Minute, nil)

			w := post(t, handler.Create, "/api/v1/backtests", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)

			detail := decodeError(t, w)
			assert.Equal(t, tt.wantCode, detail.Code)
			assert.Contains(t, detail.Cause, tt.wantMsg)

			assert.Empty(t, jobs.List(), "no job is created for invalid input")
			assert.Zero(t, runner.runs())
		})
	}
}

func TestBacktestRequest_Costs(t *testing.T) {
	base := `"symbol":"AAPL","strategy":"breakout","startDate":"2023-01-01","endDate":"2024-01-01"`
	tests := []struct {
		name       string
		body       string
		commission *float64
		slippage   *float64
	}{
		{"absent uses engine defaults", `{` + base + `}`, nil, nil},
		{"explicit zero", `{` + base + `,"commissionRate":0,"slippage":0}`, backtest.Float(0), backtest.Float(0)},
		{"explicit values", `{` + base + `,"commissionRate":0.002,"slippage":0.01}`, backtest.Float(0.002), backtest.Float(0.01)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner := &mockRunner{result: sampleResult()}
			handler := NewBacktestHandler(job.NewStore(100, time.Hour), runner, nil, time.Minute, nil)

			w := post(t, handler.Create, "/api/v1/backtests", tt.body)
			require.Equal(t, http.StatusAccepted, w.Code, w.Body.String())
			handler.Wait()

			require.Equal(t, 1, runner.runs())
			assert.Equal(t, tt.commission, runner.ran[0].CommissionRate)
			assert.Equal(t, tt.slippage, runner.ran[0].Slippage)
		})
	}
}

func TestBacktestHandler_Create_Saturated(t *testing.T) {
	jobs := job.NewStore(1, time.Hour)
	inflight := createJob(t, jobs, backtest.Options{Symbol: "MSFT"})
	require.NoError(t, jobs.Start(inflight.ID))
	runner := &mockRunner{result: sampleResult()}
	handler := NewBacktestHandler(jobs, runner, nil, time.Minute, nil)

	w := post(t, handler.Create, "/api/v1/backtests", validBody)
	require.Equal(t, http.StatusServiceUnavailable, w.Code, w.Body.String())
	assert.Equal(t, "JOBS_SATURATED", decodeError(t, w).Code)
	handler.Wait()

	assert.Zero(t, runner.runs())
	got, err := jobs.Get(inflight.ID)
	require.NoError(t, err, "in-flight job is never evicted")
	assert.Equal(t, job.StatusRunning, got.Status)
}

func TestBacktestHandler_Get(t *testing.T) {
	jobs := job.NewStore(100, time.Hour)
	handler := NewBacktestHandler(jobs, &mockRunner{}, nil, time.Minute, nil)

	j := createJob(t, jobs, backtest.Options{Symbol: "AAPL", Strategy: "breakout"})
	require.NoError(t, jobs.Complete(j.ID, sampleResult()))

	w := serve("GET /api/v1/backtests/{id}", handler.Get, "GET", "/api/v1/backtests/"+j.ID)
	require.Equal(t, http.StatusOK, w.Code)

	data := decodeData(t, w)
	assert.Equal(t, j.ID, data["id"])
	assert.Equal(t, "completed", data["status"])
	result := data["result"].(map[string]any)
	assert.Equal(t, "AAPL", result["symbol"])
}

func TestBacktestHandler_Get_Pending(t *testing.T) {
	jobs := job.NewStore(100, time.Hour)
	handler := NewBacktestHandler(jobs, &mockRunner{}, nil, time.Minute, nil)
	j := createJob(t, jobs, backtest.Options{Symbol: "AAPL"})

	w := serve("GET /api/v1/backtests/{id}", handler.Get, "GET", "/api/v1/backtests/"+j.ID)
	require.Equal(t, http.StatusOK, w.Code)

	data := decodeData(t, w)
	assert.Equal(t, "pending", data["status"])
	assert.NotContains(t, data, "result")
}

func TestBacktestHandler_Get_FromArchive(t *testing.T) {
	archive := &memArchive{}
	require.NoError(t, archive.Save(context.Background(), "old-job", sampleResult()))
	handler := NewBacktestHandler(job.NewStore(100, time.Hour), &mockRunner{}, archive, time.Minute, nil)

	w := serve("GET /api/v1/backtests/{id}", handler.Get, "GET", "/api/v1/backtests/old-job")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "completed", decodeData(t, w)["status"])
}

func TestBacktestHandler_Get_NotFound(t *testing.T) {
	handler := NewBacktestHandler(job.NewStore(100, time.Hour), &mockRunner{}, &memArchive{}, time.Minute, nil)

	w := serve("GET /api/v1/backtests/{id}", handler.Get, "GET", "/api/v1/backtests/nonexistent")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "JOB_NOT_FOUND", decodeError(t, w).Code)
}

func TestBacktestHandler_List(t *testing.T) {
	jobs := job.NewStore(100, time.Hour)
	handler := NewBacktestHandler(jobs, &mockRunner{}, nil, time.Minute, nil)

	a := createJob(t, jobs, backtest.Options{Symbol: "AAPL"})
	require.NoError(t, jobs.Complete(a.ID, sampleResult()))
	createJob(t, jobs, backtest.Options{Symbol: "MSFT"})

	w := serve("GET /api/v1/backtests", handler.List, "GET", "/api/v1/backtests")
	require.Equal(t, http.StatusOK, w.Code)
	data := decodeData(t, w)
	assert.Equal(t, 2.0, data["count"])
	for _, raw := range data["jobs"].([]any) {
		assert.NotContains(t, raw.(map[string]any), "result", "list omits results")
	}

	w = serve("GET /api/v1/backtests", handler.List, "GET", "/api/v1/backtests?status=completed")
	data = decodeData(t, w)
	assert.Equal(t, 1.0, data["count"])
}
