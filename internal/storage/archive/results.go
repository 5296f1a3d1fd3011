package archive

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/tradequest/tradequest/internal/backtest"
	"github.com/tradequest/tradequest/internal/core"
	"go.uber.org/zap"
)

const resultsDir = "backtests"

// Results stores backtest results under backtests/<id>.json
type Results struct {
	storage Storage
	logger  *zap.Logger
}

func NewResults(storage Storage, logger *zap.Logger) *Results {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Results{storage: storage, logger: logger}
}

// ResultPath returns the storage path for a job's result
func ResultPath(id string) string {
	return resultsDir + "/" + id + ".json"
}

// Save writes result as indented JSON
func (r *Results) Save(ctx context.Context, id string, result *backtest.Result) error {
	if id == "" || strings.ContainsAny(id, "/\\") {
		return core.WrapError(core.ErrArchiveFailed, fmt.Errorf("invalid result id %q", id))
	}
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return core.WrapError(core.ErrArchiveFailed, fmt.Errorf("encoding result: %w", err))
	}
	if err := r.storage.Write(ctx, ResultPath(id), data); err != nil {
		return core.WrapError(core.ErrArchiveFailed, err)
	}
	r.logger.Debug("archived backtest result",
		zap.String("id", id),
		zap.String("symbol", result.Symbol),
		zap.Int("bytes", len(data)),
	)
	return nil
}

// Load reads a previously archived result. A missing result returns core.ErrJobNotFound.
func (r *Results) Load(ctx context.Context, id string) (*backtest.Result, error) {
	data, err := r.storage.Read(ctx, ResultPath(id))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, core.WrapError(core.ErrJobNotFound, fmt.Errorf("no archived result for %s", id))
		}
		return nil, core.WrapError(core.ErrArchiveFailed, err)
	}
	var result backtest.Result
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, core.WrapError(core.ErrArchiveFailed, fmt.Errorf("decoding result %s: %w", id, err))
	}
	return &result, nil
}

// IDs lists the ids of all archived results
func (r *Results) IDs(ctx context.Context) ([]string, error) {
	paths, err := r.storage.List(ctx, resultsDir)
	if err != nil {
		return nil, core.WrapError(core.ErrArchiveFailed, err)
	}
	ids := make([]string, 0, len(paths))
	for _, p := range paths {
		name := strings.TrimPrefix(p, resultsDir+"/")
		if id, ok := strings.CutSuffix(name, ".json"); ok && !strings.Contains(id, "/") {
			ids = append(ids, id)
		}
	}
	return ids, nil
}
