package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/damon-houk/exchange-rates-sync/internal/application/service"
	"github.com/damon-houk/exchange-rates-sync/internal/domain/entity"
	"github.com/damon-houk/exchange-rates-sync/internal/infrastructure/logger"
	"github.com/damon-houk/exchange-rates-sync/internal/infrastructure/middleware"
	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
)

// ConversionHandler handles HTTP requests for currency conversion
type ConversionHandler struct {
	service *service.ConversionService
	logger  logger.Logger
}

// NewConversionHandler creates a new conversion handler
func NewConversionHandler(service *service.ConversionService, log logger.Logger) *ConversionHandler {
	if log == nil {
		log = logger.GetDefaultLogger()
	}

	return &ConversionHandler{
		service: service,
		logger:  log,
	}
}

// Convert converts an amount between two currencies
func (h *ConversionHandler) Convert(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	query := r.URL.Query()

	from := strings.ToUpper(strings.TrimSpace(query.Get("from")))
	to := strings.ToUpper(strings.TrimSpace(query.Get("to")))
	rawAmount := query.Get("amount")

	h.logger.Info("Handling convert request", map[string]interface{}{
		"request_id": requestID,
		"from":       from,
		"to":         to,
		"amount":     rawAmount,
	})

	if from == "" || to == "" {
		sendErrorResponse(w, h.logger, "Missing currency parameter",
			"The 'from' and 'to' query parameters are required", http.StatusBadRequest, requestID)
		return
	}

	amount, err := decimal.NewFromString(rawAmount)
	if err != nil {
		h.logger.Warn("Invalid amount", map[string]interface{}{
			"request_id": requestID,
			"amount":     rawAmount,
			"error":      err.Error(),
		})
		sendErrorResponse(w, h.logger, "Invalid amount",
			"The 'amount' query parameter must be a decimal number", http.StatusBadRequest, requestID)
		return
	}

	result, err := h.service.Convert(r.Context(), amount, from, to)
	if err != nil {
		switch {
		case errors.Is(err, entity.ErrInvalidAmount):
			sendErrorResponse(w, h.logger, "Invalid amount",
				"Amount must be a positive value", http.StatusBadRequest, requestID)
		case errors.Is(err, entity.ErrUnknownCurrency):
			sendErrorResponse(w, h.logger, "Unknown currency",
				err.Error(), http.StatusNotFound, requestID)
		default:
			h.logger.Error("Unexpected error in conversion handler", map[string]interface{}{
				"request_id": requestID,
				"error":      err.Error(),
			})
			sendErrorResponse(w, h.logger, "Internal server error",
				"An unexpected error occurred. Please try again later.",
				http.StatusInternalServerError, requestID)
		}
		return
	}

	sendJSON(w, http.StatusOK, ConversionResponse{
		From:            result.From,
		To:              result.To,
		Base:            result.Base,
		OriginalAmount:  result.OriginalAmount,
		ExchangeRate:    result.ExchangeRate,
		ConvertedAmount: result.ConvertedAmount,
	})
}

// RegisterRoutes registers the conversion handler routes
func (h *ConversionHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/convert", h.Convert).Methods("GET")

	h.logger.Info("Conversion routes registered", map[string]interface{}{
		"routes": []string{
			"GET /convert",
		},
	})
}
