package api

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus instrumentation for the API server. Exposed on /metrics when
// server.enable_metrics is set.
var (
	runsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "backtester_runs_total",
		Help: "Completed pipeline runs by kind.",
	}, []string{"kind", "status"})

	tradesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "backtester_trades_total",
		Help: "Trades emitted by completed backtest runs.",
	})

	windowsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "backtester_walkforward_windows_total",
		Help: "Walk-forward windows evaluated.",
	})
)
