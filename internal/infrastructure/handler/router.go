package handler

import (
	"github.com/damon-houk/exchange-rates-sync/internal/infrastructure/logger"
	"github.com/damon-houk/exchange-rates-sync/internal/infrastructure/middleware"
	"github.com/gorilla/mux"
)

// RouteRegistrar is implemented by every handler in this package
type RouteRegistrar interface {
	RegisterRoutes(router *mux.Router)
}

// NewRouter builds the API router behind the middleware chain
func NewRouter(log logger.Logger, handlers ...RouteRegistrar) *mux.Router {
	if log == nil {
		log = logger.GetDefaultLogger()
	}

	router := mux.NewRouter()
	router.Use(
		middleware.RequestIDMiddleware,
		middleware.LoggingMiddleware(log),
		middleware.RecoveryMiddleware(log),
	)

	for _, h := range handlers {
		h.RegisterRoutes(router)
	}

	return router
}
