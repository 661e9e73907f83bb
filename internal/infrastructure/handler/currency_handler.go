// Package handler internal/infrastructure/handler/currency_handler.go
package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/damon-houk/exchange-rates-sync/internal/application/service"
	"github.com/damon-houk/exchange-rates-sync/internal/domain/entity"
	"github.com/damon-houk/exchange-rates-sync/internal/infrastructure/logger"
	"github.com/damon-houk/exchange-rates-sync/internal/infrastructure/middleware"
	"github.com/gorilla/mux"
)

// CurrencyHandler handles HTTP requests for the currency list and favorites
type CurrencyHandler struct {
	service *service.SyncService
	logger  logger.Logger
}

// NewCurrencyHandler creates a new currency handler
func NewCurrencyHandler(service *service.SyncService, log logger.Logger) *CurrencyHandler {
	if log == nil {
		log = logger.GetDefaultLogger()
	}

	return &CurrencyHandler{
		service: service,
		logger:  log,
	}
}

// ListCurrencies returns the currencies matching the search and favorites filters
func (h *CurrencyHandler) ListCurrencies(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	query := r.URL.Query()

	search := query.Get("search")

	favoritesOnly := false
	if raw := query.Get("favorites"); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			h.logger.Warn("Invalid favorites parameter", map[string]interface{}{
				"request_id": requestID,
				"favorites":  raw,
			})
			sendErrorResponse(w, h.logger, "Invalid favorites parameter",
				"The 'favorites' query parameter must be true or false", http.StatusBadRequest, requestID)
			return
		}
		favoritesOnly = parsed
	}

	records := h.service.VisibleRecords(search, favoritesOnly)
	state := h.service.State()

	h.logger.Debug("Listing currencies", map[string]interface{}{
		"request_id": requestID,
		"search":     search,
		"favorites":  favoritesOnly,
		"count":      len(records),
	})

	resp := CurrencyListResponse{
		Base:       state.BaseCurrencyCode,
		UpdatedAt:  state.UpdatedAt,
		IsLoading:  state.IsLoading,
		Count:      len(records),
		Currencies: make([]CurrencyResponse, 0, len(records)),
	}
	for _, c := range records {
		resp.Currencies = append(resp.Currencies, newCurrencyResponse(c))
	}

	sendJSON(w, http.StatusOK, resp)
}

// ToggleFavorite flips the favorite flag of a currency
func (h *CurrencyHandler) ToggleFavorite(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	code := strings.ToUpper(mux.Vars(r)["code"])

	h.logger.Info("Handling toggle favorite request", map[string]interface{}{
		"request_id": requestID,
		"code":       code,
	})

	updated, err := h.service.ToggleFavorite(r.Context(), code)
	if err != nil {
		switch {
		case errors.Is(err, entity.ErrCurrencyNotFound):
			h.logger.Warn("Currency not found", map[string]interface{}{
				"request_id": requestID,
				"code":       code,
			})
			sendErrorResponse(w, h.logger, "Currency not found",
				"The requested currency is not part of the current rate set", http.StatusNotFound, requestID)
		case errors.Is(err, entity.ErrPersistence):
			h.logger.Error("Favorite flag not persisted", map[string]interface{}{
				"request_id": requestID,
				"code":       code,
				"error":      err.Error(),
			})
			sendErrorResponse(w, h.logger, "Favorite not saved",
				"The favorite flag was changed but could not be saved and may be lost on restart",
				http.StatusInternalServerError, requestID)
		default:
			h.logger.Error("Unexpected error in toggle favorite", map[string]interface{}{
				"request_id": requestID,
				"code":       code,
				"error":      err.Error(),
			})
			sendErrorResponse(w, h.logger, "Internal server error",
				"An unexpected error occurred while updating the favorite flag",
				http.StatusInternalServerError, requestID)
		}
		return
	}

	sendJSON(w, http.StatusOK, newCurrencyResponse(*updated))
}

// ClearCurrencies removes every stored currency
func (h *CurrencyHandler) ClearCurrencies(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	h.logger.Info("Handling clear currencies request", map[string]interface{}{
		"request_id": requestID,
	})

	if err := h.service.ClearAll(r.Context()); err != nil {
		h.logger.Error("Failed to clear currencies", map[string]interface{}{
			"request_id": requestID,
			"error":      err.Error(),
		})
		sendErrorResponse(w, h.logger, "Internal server error",
			"The stored currencies could not be removed", http.StatusInternalServerError, requestID)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// RegisterRoutes registers the currency handler routes
func (h *CurrencyHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/currencies", h.ListCurrencies).Methods("GET")
	router.HandleFunc("/currencies", h.ClearCurrencies).Methods("DELETE")
	router.HandleFunc("/currencies/{code}/favorite", h.ToggleFavorite).Methods("POST")

	h.logger.Info("Currency routes registered", map[string]interface{}{
		"routes": []string{
			"GET /currencies",
			"DELETE /currencies",
			"POST /currencies/{code}/favorite",
		},
	})
}
