// Package types provides configuration types for the backtester.
package types

import "time"

// Config is the full validated configuration for a run.
type Config struct {
	Strategy StrategyConfig `mapstructure:"strategy" json:"strategy"`
	Data     DataConfig     `mapstructure:"data" json:"data"`
	Server   ServerConfig   `mapstructure:"server" json:"server"`
}

// StrategyConfig holds every knob of the trading rule and its evaluation.
type StrategyConfig struct {
	MACD          MACDConfig        `mapstructure:"macd" json:"macd"`
	Normalization NormalizeConfig   `mapstructure:"normalization" json:"normalization"`
	Thresholds    ThresholdConfig   `mapstructure:"thresholds" json:"thresholds"`
	Sizing        SizingParams      `mapstructure:"position_sizing" json:"positionSizing"`
	Backtest      BacktestConfig    `mapstructure:"backtest" json:"backtest"`
	WalkForward   WalkForwardConfig `mapstructure:"walk_forward" json:"walkForward"`

	CommissionPerTrade float64 `mapstructure:"commission_per_trade" json:"commissionPerTrade"`
	SlippagePct        float64 `mapstructure:"slippage_pct" json:"slippagePct"`
	LogTrades          bool    `mapstructure:"log_trades" json:"logTrades"`
}

// MACDConfig holds the oscillator periods.
type MACDConfig struct {
	FastPeriod   int `mapstructure:"fast_period" json:"fastPeriod"`
	SlowPeriod   int `mapstructure:"slow_period" json:"slowPeriod"`
	SignalPeriod int `mapstructure:"signal_period" json:"signalPeriod"`
}

// NormalizeConfig holds the bounded-normalization window.
type NormalizeConfig struct {
	Window int `mapstructure:"window" json:"window"`
}

// ThresholdConfig holds the signal thresholds on the normalized oscillator.
// Buy must be strictly less than Sell.
type ThresholdConfig struct {
	Buy  float64 `mapstructure:"normalized_buy" json:"normalizedBuy"`
	Sell float64 `mapstructure:"normalized_sell" json:"normalizedSell"`
}

// SizingParams configures risk-based position sizing. Read-only to the
// sizer; owned by the caller.
type SizingParams struct {
	Enabled        bool    `mapstructure:"enabled" json:"enabled"`
	AccountBalance float64 `mapstructure:"account_balance" json:"accountBalance"`
	RiskPerTrade   float64 `mapstructure:"risk_per_trade" json:"riskPerTrade"`
	StopLossPct    float64 `mapstructure:"stop_loss_pct" json:"stopLossPct"`
}

// BacktestConfig holds the simulation parameters of a single run.
type BacktestConfig struct {
	Symbol         string  `mapstructure:"symbol" json:"symbol"`
	StartDate      string  `mapstructure:"start_date" json:"startDate"`
	EndDate        string  `mapstructure:"end_date" json:"endDate"`
	InitialCapital float64 `mapstructure:"initial_capital" json:"initialCapital"`
}

// WalkForwardConfig holds rolling-validation parameters. Overrides are
// forced uniformly on every window so per-window comparisons stay fair.
type WalkForwardConfig struct {
	TrainDays  int `mapstructure:"train_days" json:"trainDays"`
	TestDays   int `mapstructure:"test_days" json:"testDays"`
	WarmupDays int `mapstructure:"warmup_days" json:"warmupDays"`

	OverrideBuyThreshold  float64 `mapstructure:"override_buy_threshold" json:"overrideBuyThreshold"`
	OverrideSellThreshold float64 `mapstructure:"override_sell_threshold" json:"overrideSellThreshold"`
	OverrideNormWindow    int     `mapstructure:"override_norm_window" json:"overrideNormWindow"`
}

// DataConfig configures the price providers.
type DataConfig struct {
	BaseURL  string        `mapstructure:"base_url" json:"baseUrl"`
	DataDir  string        `mapstructure:"data_dir" json:"dataDir"`
	Timeout  time.Duration `mapstructure:"timeout" json:"timeout"`
	Interval string        `mapstructure:"interval" json:"interval"`
}

// ServerConfig configures the API server.
type ServerConfig struct {
	Host          string        `mapstructure:"host" json:"host"`
	Port          int           `mapstructure:"port" json:"port"`
	WebSocketPath string        `mapstructure:"websocket_path" json:"websocketPath"`
	ReadTimeout   time.Duration `mapstructure:"read_timeout" json:"readTimeout"`
	WriteTimeout  time.Duration `mapstructure:"write_timeout" json:"writeTimeout"`
	EnableMetrics bool          `mapstructure:"enable_metrics" json:"enableMetrics"`
}
