package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rxtech-lab/argo-backtest/internal/backtest/engine"
	"github.com/rxtech-lab/argo-backtest/internal/logger"
	"github.com/rxtech-lab/argo-backtest/internal/strategy"
	"github.com/rxtech-lab/argo-backtest/pkg/errors"
	"go.uber.org/zap"
)

// maxBodyBytes bounds request bodies, WASM modules included.
const maxBodyBytes = 32 << 20

// Server exposes the strategy registry and the backtest engine as a JSON API.
type Server struct {
	registry   strategy.Registry
	engine     engine.Engine
	log        *logger.Logger
	router     *mux.Router
	httpServer *http.Server
	listener   net.Listener
}

// NewServer creates a server over registry and an initialized engine.
func NewServer(registry strategy.Registry, backtestEngine engine.Engine, log *logger.Logger) *Server {
	if log == nil {
		log = logger.NewNopLogger()
	}

	s := &Server{
		registry:   registry,
		engine:     backtestEngine,
		log:        log,
		router:     mux.NewRouter(),
		httpServer: nil,
		listener:   nil,
	}

	s.router.HandleFunc("/strategies", s.handleListStrategies).Methods(http.MethodGet)
	s.router.HandleFunc("/strategies", s.handleAddStrategy).Methods(http.MethodPost)
	s.router.HandleFunc("/strategies/{type}", s.handleGetStrategy).Methods(http.MethodGet)
	s.router.HandleFunc("/strategies/{type}/schema", s.handleStrategySchema).Methods(http.MethodGet)
	s.router.HandleFunc("/backtests", s.handleRunBacktest).Methods(http.MethodPost)
	s.router.HandleFunc("/config/schema", s.handleConfigSchema).Methods(http.MethodGet)

	return s
}

// Handler returns the router serving the API.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves the API on address in the background.
// If address is empty or ":0", a random available port is used.
func (s *Server) Start(address string) error {
	if address == "" {
		address = ":0"
	}

	listener, err := net.Listen("tcp", address)
	if err != nil {
		return fmt.Errorf("failed to create listener: %w", err)
	}

	s.listener = listener
	s.httpServer = &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := s.httpServer.Serve(listener); err != http.ErrServerClosed {
			s.log.Error("HTTP server stopped", zap.Error(err))
		}
	}()

	s.log.Info("API server started", zap.String("address", s.Address()))

	return nil
}

// Stop shuts the server down, waiting at most 5 seconds for in-flight requests.
func (s *Server) Stop() error {
	if s.httpServer == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return s.httpServer.Shutdown(ctx)
}

// Address returns the address the server is listening on.
func (s *Server) Address() string {
	if s.listener == nil {
		return ""
	}

	return s.listener.Addr().String()
}

type errorResponse struct {
	Error string           `json:"error"`
	Code  errors.ErrorCode `json:"code"`
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.log.Warn("Failed to encode response", zap.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := statusFor(errors.GetCode(err))

	if status >= http.StatusInternalServerError {
		s.log.Error("Request failed", zap.Error(err))
	} else {
		s.log.Debug("Request rejected", zap.Error(err))
	}

	s.writeJSON(w, status, errorResponse{
		Error: err.Error(),
		Code:  errors.GetCode(err),
	})
}

func statusFor(code errors.ErrorCode) int {
	switch code {
	case errors.ErrCodeStrategyNotFound, errors.ErrCodeDataNotFound:
		return http.StatusNotFound
	case errors.ErrCodeStrategyAlreadyExists:
		return http.StatusConflict
	case errors.ErrCodeInvalidParameter,
		errors.ErrCodeInvalidPeriod,
		errors.ErrCodeMissingParameter,
		errors.ErrCodeInvalidStrategy,
		errors.ErrCodeStrategyLoadFailed,
		errors.ErrCodeVersionMismatch,
		errors.ErrCodeInvalidVersion:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
