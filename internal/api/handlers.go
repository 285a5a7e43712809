package api

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rxtech-lab/argo-backtest/internal/backtest/engine"
	"github.com/rxtech-lab/argo-backtest/internal/report"
	"github.com/rxtech-lab/argo-backtest/internal/strategy"
	"github.com/rxtech-lab/argo-backtest/internal/types"
	"github.com/rxtech-lab/argo-backtest/pkg/errors"
	"go.uber.org/zap"
)

// StrategyResponse is a registry entry as served by the API.
type StrategyResponse struct {
	Type        string               `json:"type"`
	Name        string               `json:"name"`
	Description string               `json:"description"`
	Params      []strategy.Parameter `json:"params"`
	Custom      bool                 `json:"custom"`
	Runtime     string               `json:"runtime,omitempty"`
}

// AddStrategyRequest registers a WASM strategy. Module holds the base64 encoded module bytes.
type AddStrategyRequest struct {
	Type        string               `json:"type,omitempty"`
	Name        string               `json:"name"`
	Description string               `json:"description"`
	Params      []strategy.Parameter `json:"params"`
	Module      []byte               `json:"module"`
}

// RunBacktestRequest runs the strategy of Type over Series. Parameters override the strategy defaults.
type RunBacktestRequest struct {
	Type       string                `json:"type"`
	Parameters types.ParameterValues `json:"parameters"`
	Series     types.PriceSeries     `json:"series"`
}

func toStrategyResponse(def strategy.StrategyDefinition) StrategyResponse {
	response := StrategyResponse{
		Type:        def.Type,
		Name:        def.Name,
		Description: def.Description,
		Params:      def.Params,
		Custom:      def.IsCustom(),
		Runtime:     "",
	}

	if response.Params == nil {
		response.Params = []strategy.Parameter{}
	}

	if def.IsCustom() {
		response.Runtime = def.Runtime.Name()
	}

	return response
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, target any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	if err := json.NewDecoder(r.Body).Decode(target); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidParameter, "invalid request body", err)
	}

	return nil
}

// handleListStrategies handles GET /strategies
func (s *Server) handleListStrategies(w http.ResponseWriter, _ *http.Request) {
	defs := s.registry.List()

	response := make([]StrategyResponse, 0, len(defs))
	for _, def := range defs {
		response = append(response, toStrategyResponse(def))
	}

	s.writeJSON(w, http.StatusOK, response)
}

// handleGetStrategy handles GET /strategies/{type}
func (s *Server) handleGetStrategy(w http.ResponseWriter, r *http.Request) {
	def, err := s.registry.Get(mux.Vars(r)["type"])
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, toStrategyResponse(def))
}

// handleStrategySchema handles GET /strategies/{type}/schema
func (s *Server) handleStrategySchema(w http.ResponseWriter, r *http.Request) {
	def, err := s.registry.Get(mux.Vars(r)["type"])
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, strategy.ParameterSchema(def))
}

// handleConfigSchema handles GET /config/schema
func (s *Server) handleConfigSchema(w http.ResponseWriter, _ *http.Request) {
	schema, err := s.engine.GetConfigSchema()
	if err != nil {
		s.writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(schema))
}

// handleAddStrategy handles POST /strategies
func (s *Server) handleAddStrategy(w http.ResponseWriter, r *http.Request) {
	var request AddStrategyRequest
	if err := s.decode(w, r, &request); err != nil {
		s.writeError(w, err)
		return
	}

	if len(request.Module) == 0 {
		s.writeError(w, errors.New(errors.ErrCodeMissingParameter, "module is required"))
		return
	}

	strategyRuntime, err := s.engine.LoadStrategyFromBytes(request.Module, engine.StrategyTypeWASM)
	if err != nil {
		s.writeError(w, err)
		return
	}

	strategyType := request.Type
	if strategyType == "" {
		strategyType = strategy.NewCustomStrategyType()
	}

	def := strategy.StrategyDefinition{
		Type:        strategyType,
		Name:        request.Name,
		Description: request.Description,
		Params:      request.Params,
		Runtime:     strategyRuntime,
	}

	if err := s.registry.Add(def); err != nil {
		s.writeError(w, err)
		return
	}

	s.log.Info("Strategy registered",
		zap.String("type", def.Type),
		zap.String("name", def.Name),
	)

	s.writeJSON(w, http.StatusCreated, toStrategyResponse(def))
}

// handleRunBacktest handles POST /backtests
func (s *Server) handleRunBacktest(w http.ResponseWriter, r *http.Request) {
	var request RunBacktestRequest
	if err := s.decode(w, r, &request); err != nil {
		s.writeError(w, err)
		return
	}

	def, err := s.registry.Get(request.Type)
	if err != nil {
		s.writeError(w, err)
		return
	}

	if request.Series == nil {
		request.Series = types.PriceSeries{}
	}

	result, err := s.engine.Run(r.Context(), request.Series, def, request.Parameters)
	if err != nil {
		s.writeError(w, err)
		return
	}

	params := strategy.DefaultParameters(def).Merge(request.Parameters)

	var opts []report.Option

	// custom bodies have no crossover averages; their params need not resolve to periods
	if !def.IsCustom() {
		indicators, err := s.engine.Indicators(request.Series, def, request.Parameters)
		if err != nil {
			s.writeError(w, err)
			return
		}

		opts = append(opts, report.WithIndicators(indicators))
	}

	s.writeJSON(w, http.StatusOK, report.NewReport(def, params, result, opts...))
}
