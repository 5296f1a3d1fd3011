package api

import (
	"net/http"

	"github.com/tradequest/tradequest/internal/api/response"
	"github.com/tradequest/tradequest/internal/strategy"
)

// Strategies lists the built-in strategies with their default parameters.
func Strategies(w http.ResponseWriter, r *http.Request) {
	catalog := strategy.Catalog()
	response.JSON(w, http.StatusOK, map[string]any{
		"strategies": catalog,
		"count":      len(catalog),
	})
}
