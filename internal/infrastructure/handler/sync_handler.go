package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/damon-houk/exchange-rates-sync/internal/application/service"
	"github.com/damon-houk/exchange-rates-sync/internal/domain/entity"
	"github.com/damon-houk/exchange-rates-sync/internal/infrastructure/logger"
	"github.com/damon-houk/exchange-rates-sync/internal/infrastructure/middleware"
	"github.com/gorilla/mux"
)

// SyncHandler handles HTTP requests that drive or inspect synchronization
type SyncHandler struct {
	service *service.SyncService
	logger  logger.Logger
}

// NewSyncHandler creates a new sync handler
func NewSyncHandler(service *service.SyncService, log logger.Logger) *SyncHandler {
	if log == nil {
		log = logger.GetDefaultLogger()
	}

	return &SyncHandler{
		service: service,
		logger:  log,
	}
}

// Sync refreshes the rates against the configured base currency
func (h *SyncHandler) Sync(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	h.logger.Info("Handling sync request", map[string]interface{}{
		"request_id": requestID,
	})

	if err := h.service.RefreshCurrent(r.Context()); err != nil {
		h.sendRefreshError(w, err, requestID)
		return
	}

	sendJSON(w, http.StatusOK, newStatusResponse(h.service.State()))
}

// Status returns the synchronization state
func (h *SyncHandler) Status(w http.ResponseWriter, r *http.Request) {
	sendJSON(w, http.StatusOK, newStatusResponse(h.service.State()))
}

// SetBaseCurrency changes the base currency and refreshes the rates
func (h *SyncHandler) SetBaseCurrency(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	var req BaseCurrencyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("Invalid request body", map[string]interface{}{
			"request_id": requestID,
			"error":      err.Error(),
		})
		sendErrorResponse(w, h.logger, "Invalid request body",
			"The request body could not be parsed as valid JSON", http.StatusBadRequest, requestID)
		return
	}

	h.logger.Info("Handling set base currency request", map[string]interface{}{
		"request_id": requestID,
		"code":       req.Code,
	})

	err := h.service.SetBaseCurrency(r.Context(), req.Code)
	switch {
	case err == nil:
		sendJSON(w, http.StatusOK, newStatusResponse(h.service.State()))
	case errors.Is(err, entity.ErrPersistence):
		h.logger.Error("Failed to store base currency", map[string]interface{}{
			"request_id": requestID,
			"error":      err.Error(),
		})
		sendErrorResponse(w, h.logger, "Internal server error",
			"The base currency could not be saved", http.StatusInternalServerError, requestID)
	default:
		h.sendRefreshError(w, err, requestID)
	}
}

func (h *SyncHandler) sendRefreshError(w http.ResponseWriter, err error, requestID string) {
	switch {
	case errors.Is(err, entity.ErrInvalidBaseCurrency):
		h.logger.Warn("Invalid base currency", map[string]interface{}{
			"request_id": requestID,
			"error":      err.Error(),
		})
		sendErrorResponse(w, h.logger, "Invalid base currency",
			"The base currency must be an alphabetic code (e.g., EUR, USD)", http.StatusBadRequest, requestID)
	case errors.Is(err, entity.ErrRefreshInProgress):
		h.logger.Info("Refresh already in progress", map[string]interface{}{
			"request_id": requestID,
		})
		sendErrorResponse(w, h.logger, "Refresh in progress",
			"Another refresh is running, try again shortly", http.StatusConflict, requestID)
	default:
		h.logger.Error("Rate provider error", map[string]interface{}{
			"request_id": requestID,
			"error":      err.Error(),
		})
		sendErrorResponse(w, h.logger, "Unable to update rates",
			err.Error(), http.StatusBadGateway, requestID)
	}
}

// RegisterRoutes registers the sync handler routes
func (h *SyncHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/sync", h.Sync).Methods("POST")
	router.HandleFunc("/status", h.Status).Methods("GET")
	router.HandleFunc("/settings/base-currency", h.SetBaseCurrency).Methods("PUT")

	h.logger.Info("Sync routes registered", map[string]interface{}{
		"routes": []string{
			"POST /sync",
			"GET /status",
			"PUT /settings/base-currency",
		},
	})
}
