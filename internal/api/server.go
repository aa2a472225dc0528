// Package api provides the HTTP and WebSocket server around the backtest
// pipeline. It is a pure consumer surface: renderers and dashboards read
// annotated series and metrics from here, nothing feeds back into the core.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"github.com/trendlab/backtester/internal/backtester"
	"github.com/trendlab/backtester/internal/config"
	"github.com/trendlab/backtester/internal/data"
	"github.com/trendlab/backtester/pkg/types"
	"go.uber.org/zap"
)

// Server is the HTTP/WebSocket API server.
type Server struct {
	mu         sync.RWMutex
	logger     *zap.Logger
	cfg        *types.Config
	router     *mux.Router
	httpServer *http.Server
	upgrader   websocket.Upgrader
	provider   data.Provider
	engine     *backtester.Engine
	validator  *backtester.WalkForwardValidator
	results    map[string]*types.BacktestResult
	clients    map[*websocket.Conn]bool
}

// NewServer creates an API server over the given price provider.
func NewServer(logger *zap.Logger, cfg *types.Config, provider data.Provider) *Server {
	s := &Server{
		logger:    logger,
		cfg:       cfg,
		router:    mux.NewRouter(),
		provider:  provider,
		engine:    backtester.NewEngine(logger),
		validator: backtester.NewWalkForwardValidator(logger),
		results:   make(map[string]*types.BacktestResult),
		clients:   make(map[*websocket.Conn]bool),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true // development surface, same as the desktop app
			},
		},
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router.HandleFunc("/api/v1/health", s.handleHealth).Methods("GET")
	s.router.HandleFunc("/api/v1/data/history/{symbol}", s.handleGetHistory).Methods("GET")
	s.router.HandleFunc("/api/v1/backtest/run", s.handleRunBacktest).Methods("POST")
	s.router.HandleFunc("/api/v1/backtest/{id}", s.handleGetBacktest).Methods("GET")
	s.router.HandleFunc("/api/v1/walkforward/run", s.handleRunWalkForward).Methods("POST")
	if s.cfg.Server.EnableMetrics {
		s.router.Handle("/metrics", promhttp.Handler()).Methods("GET")
	}
	s.router.HandleFunc(s.cfg.Server.WebSocketPath, s.handleWebSocket)
}

// Start runs the HTTP server until it is stopped.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.cfg.Server.Host, s.cfg.Server.Port)

	handler := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"*"},
	}).Handler(s.router)

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
	}

	s.logger.Info("starting API server", zap.String("addr", addr))
	return s.httpServer.ListenAndServe()
}

// Stop gracefully shuts the server down.
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	for conn := range s.clients {
		conn.Close()
	}
	s.mu.Unlock()
	return s.httpServer.Shutdown(ctx)
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{
		"status": "healthy",
		"time":   time.Now().Unix(),
	})
}

func (s *Server) handleGetHistory(w http.ResponseWriter, r *http.Request) {
	symbol := mux.Vars(r)["symbol"]
	start, end, err := parseRange(r)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	series, err := s.provider.Load(r.Context(), symbol, start, end)
	if err != nil {
		s.writeError(w, statusFor(err), err)
		return
	}
	s.writeJSON(w, http.StatusOK, series)
}

// runRequest optionally overrides the configured symbol and date range.
type runRequest struct {
	Symbol string `json:"symbol,omitempty"`
	Start  string `json:"start,omitempty"`
	End    string `json:"end,omitempty"`
}

func (s *Server) handleRunBacktest(w http.ResponseWriter, r *http.Request) {
	strat, series, err := s.prepareRun(r)
	if err != nil {
		s.writeError(w, statusFor(err), err)
		return
	}

	result, err := s.engine.Run(series, strat)
	if err != nil {
		runsTotal.WithLabelValues("single", "error").Inc()
		s.writeError(w, statusFor(err), err)
		return
	}
	runsTotal.WithLabelValues("single", "ok").Inc()
	tradesTotal.Add(float64(len(result.Trades)))

	s.mu.Lock()
	s.results[result.ID] = result
	s.mu.Unlock()

	s.broadcast(map[string]any{
		"type":    "backtest_completed",
		"id":      result.ID,
		"symbol":  result.Symbol,
		"metrics": result.Metrics,
	})

	s.writeJSON(w, http.StatusOK, map[string]any{
		"id":      result.ID,
		"symbol":  result.Symbol,
		"trades":  len(result.Trades),
		"metrics": result.Metrics,
	})
}

func (s *Server) handleGetBacktest(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	s.mu.RLock()
	result, ok := s.results[id]
	s.mu.RUnlock()

	if !ok {
		s.writeError(w, http.StatusNotFound, fmt.Errorf("no backtest with id %s", id))
		return
	}
	s.writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleRunWalkForward(w http.ResponseWriter, r *http.Request) {
	strat, series, err := s.prepareRun(r)
	if err != nil {
		s.writeError(w, statusFor(err), err)
		return
	}

	cfg := *s.cfg
	cfg.Strategy = strat
	summary, err := s.validator.Run(series, cfg)
	if err != nil {
		runsTotal.WithLabelValues("walkforward", "error").Inc()
		s.writeError(w, statusFor(err), err)
		return
	}
	runsTotal.WithLabelValues("walkforward", "ok").Inc()
	windowsTotal.Add(float64(summary.WindowCount))

	s.broadcast(map[string]any{
		"type":    "walkforward_completed",
		"windows": summary.WindowCount,
	})
	s.writeJSON(w, http.StatusOK, summary)
}

// prepareRun applies request overrides to the configured strategy,
// revalidates, and loads the price series.
func (s *Server) prepareRun(r *http.Request) (types.StrategyConfig, types.PriceSeries, error) {
	strat := s.cfg.Strategy

	var req runRequest
	if r.Body != nil {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
			return strat, nil, fmt.Errorf("bad request body: %w", err)
		}
	}
	if req.Symbol != "" {
		strat.Backtest.Symbol = req.Symbol
	}
	if req.Start != "" {
		strat.Backtest.StartDate = req.Start
	}
	if req.End != "" {
		strat.Backtest.EndDate = req.End
	}

	checked := *s.cfg
	checked.Strategy = strat
	if err := config.Validate(&checked); err != nil {
		return strat, nil, err
	}

	start, err := time.Parse("2006-01-02", strat.Backtest.StartDate)
	if err != nil {
		return strat, nil, &types.ConfigError{Field: "backtest.start_date", Reason: "must be YYYY-MM-DD"}
	}
	end, err := time.Parse("2006-01-02", strat.Backtest.EndDate)
	if err != nil {
		return strat, nil, &types.ConfigError{Field: "backtest.end_date", Reason: "must be YYYY-MM-DD"}
	}

	series, err := s.provider.Load(r.Context(), strat.Backtest.Symbol, start, end)
	if err != nil {
		return strat, nil, err
	}
	return strat, series, nil
}

func parseRange(r *http.Request) (time.Time, time.Time, error) {
	q := r.URL.Query()
	start, err := time.Parse("2006-01-02", q.Get("start"))
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("bad start date %q", q.Get("start"))
	}
	end, err := time.Parse("2006-01-02", q.Get("end"))
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("bad end date %q", q.Get("end"))
	}
	return start, end, nil
}

func statusFor(err error) int {
	var cfgErr *types.ConfigError
	var dataErr *types.DataError
	switch {
	case errors.As(err, &cfgErr):
		return http.StatusBadRequest
	case errors.As(err, &dataErr):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("failed to encode response", zap.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, err error) {
	s.logger.Warn("request failed", zap.Int("status", status), zap.Error(err))
	s.writeJSON(w, status, map[string]string{"error": err.Error()})
}
