package response

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tradequest/tradequest/internal/core"
)

func TestJSON_Success(t *testing.T) {
	w := httptest.NewRecorder()

	JSON(w, http.StatusOK, map[string]string{"hello": "world"})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var resp SuccessResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, map[string]any{"hello": "world"}, resp.Data)
	assert.False(t, resp.Meta.Timestamp.IsZero())
}

func TestError_WithCoreError(t *testing.T) {
	w := httptest.NewRecorder()

	Error(w, http.StatusBadRequest, core.WrapError(core.ErrInvalidStrategy, errors.New(`"foo" is unknown`)))

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "INVALID_STRATEGY", resp.Error.Code)
	assert.Equal(t, "unknown strategy", resp.Error.Message)
	assert.Equal(t, `"foo" is unknown`, resp.Error.Cause)
}

func TestError_WithPlainError(t *testing.T) {
	w := httptest.NewRecorder()

	Error(w, http.StatusInternalServerError, errors.New("secret internals"))

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "INTERNAL_ERROR", resp.Error.Code)
	assert.NotContains(t, w.Body.String(), "secret internals")
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{core.ErrInvalidRequest, http.StatusBadRequest},
		{core.WrapError(core.ErrInvalidStrategy, errors.New("x")), http.StatusBadRequest},
		{core.ErrUnauthorized, http.StatusUnauthorized},
		{core.ErrJobNotFound, http.StatusNotFound},
		{core.ErrJobNotComplete, http.StatusConflict},
		{fmt.Errorf("run: %w", core.ErrInsufficientData), http.StatusUnprocessableEntity},
		{core.ErrDataUnavailable, http.StatusBadGateway},
		{core.ErrLLMFailed, http.StatusBadGateway},
		{core.ErrLLMDisabled, http.StatusServiceUnavailable},
		{core.WrapError(core.ErrJobsSaturated, errors.New("2 jobs pending or running")), http.StatusServiceUnavailable},
		{context.DeadlineExceeded, http.StatusGatewayTimeout},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, StatusFor(tt.err), "%v", tt.err)
	}
}

func TestFail(t *testing.T) {
	w := httptest.NewRecorder()
	Fail(w, core.ErrJobNotFound)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "JOB_NOT_FOUND")
}
