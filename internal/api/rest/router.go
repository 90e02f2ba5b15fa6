package rest

import (
	"net/http"

	"go.uber.org/zap"
)

// RouterDeps are the collaborators mounted next to the API handler
type RouterDeps struct {
	Handler *Handler
	// Progress upgrades GET /api/v1/ws to a progress stream
	Progress http.Handler
	// Metrics serves the Prometheus exposition
	Metrics http.Handler
	// Observer records per-route request metrics
	Observer HTTPObserver
	Logger   *zap.Logger
}

// NewRouter wires every route behind the shared middleware chain
func NewRouter(deps RouterDeps) http.Handler {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	middlewares := []Middleware{
		RecoveryMiddleware(logger),
		RequestIDMiddleware(),
		TracingMiddleware(),
		RequestLoggingMiddleware(logger),
	}
	if deps.Observer != nil {
		middlewares = append(middlewares, MetricsMiddleware(deps.Observer))
	}
	chain := NewMiddlewareChain(middlewares...)

	mux := http.NewServeMux()
	handle := func(pattern string, h http.HandlerFunc) {
		mux.Handle(pattern, chain.Then(h))
	}

	h := deps.Handler
	handle("POST /api/v1/numbers", h.UploadNumbers)
	handle("GET /api/v1/numbers", h.GetNumbers)
	handle("POST /api/v1/checks", h.StartCheck)
	handle("GET /api/v1/checks", h.GetCheck)
	handle("POST /api/v1/checks/cancel", h.CancelCheck)
	handle("GET /api/v1/checks/records", h.GetCheckRecords)
	handle("GET /api/v1/results/{kind}", h.GetResults)
	handle("GET /healthz", h.Health)

	if deps.Progress != nil {
		mux.Handle("GET /api/v1/ws", chain.Then(deps.Progress))
	}
	if deps.Metrics != nil {
		mux.Handle("GET /metrics", deps.Metrics)
	}

	return mux
}
