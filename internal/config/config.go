// Package config loads and validates the YAML configuration.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
	"github.com/trendlab/backtester/pkg/types"
)

// Load reads the configuration file at path, applies defaults and
// environment overrides (BACKTESTER_ prefix), and validates the result.
// Invalid values are rejected here, before any computation begins.
func Load(path string) (*types.Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetEnvPrefix("BACKTESTER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	var cfg types.Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("strategy.macd.fast_period", 12)
	v.SetDefault("strategy.macd.slow_period", 26)
	v.SetDefault("strategy.macd.signal_period", 9)
	v.SetDefault("strategy.normalization.window", 200)
	v.SetDefault("strategy.thresholds.normalized_buy", -0.6)
	v.SetDefault("strategy.thresholds.normalized_sell", 0.6)
	v.SetDefault("strategy.backtest.initial_capital", 10000.0)
	v.SetDefault("strategy.log_trades", true)
	v.SetDefault("strategy.walk_forward.train_days", 365)
	v.SetDefault("strategy.walk_forward.test_days", 180)
	v.SetDefault("strategy.walk_forward.warmup_days", 120)
	v.SetDefault("strategy.walk_forward.override_buy_threshold", -0.5)
	v.SetDefault("strategy.walk_forward.override_sell_threshold", 0.5)
	v.SetDefault("strategy.walk_forward.override_norm_window", 60)
	v.SetDefault("data.data_dir", "./data")
	v.SetDefault("data.interval", "1d")
	v.SetDefault("data.timeout", "10s")
	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.websocket_path", "/ws")
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "15s")
}

// Validate checks every constraint the pipeline relies on. Violations are
// returned as *types.ConfigError naming the offending field; nothing is
// silently swapped or clamped.
func Validate(cfg *types.Config) error {
	strat := cfg.Strategy

	if strat.MACD.FastPeriod <= 0 {
		return &types.ConfigError{Field: "strategy.macd.fast_period", Reason: "must be positive"}
	}
	if strat.MACD.SlowPeriod <= 0 {
		return &types.ConfigError{Field: "strategy.macd.slow_period", Reason: "must be positive"}
	}
	if strat.MACD.SignalPeriod <= 0 {
		return &types.ConfigError{Field: "strategy.macd.signal_period", Reason: "must be positive"}
	}
	if strat.Normalization.Window <= 0 {
		return &types.ConfigError{Field: "strategy.normalization.window", Reason: "must be positive"}
	}
	if strat.Thresholds.Buy >= strat.Thresholds.Sell {
		return &types.ConfigError{
			Field:  "strategy.thresholds",
			Reason: fmt.Sprintf("normalized_buy (%v) must be strictly below normalized_sell (%v)", strat.Thresholds.Buy, strat.Thresholds.Sell),
		}
	}
	if strat.Backtest.InitialCapital <= 0 {
		return &types.ConfigError{Field: "strategy.backtest.initial_capital", Reason: "must be positive"}
	}
	if strat.CommissionPerTrade < 0 {
		return &types.ConfigError{Field: "strategy.commission_per_trade", Reason: "must not be negative"}
	}
	if strat.SlippagePct < 0 {
		return &types.ConfigError{Field: "strategy.slippage_pct", Reason: "must not be negative"}
	}
	if strat.Sizing.Enabled {
		if strat.Sizing.AccountBalance <= 0 {
			return &types.ConfigError{Field: "strategy.position_sizing.account_balance", Reason: "must be positive when sizing is enabled"}
		}
		if strat.Sizing.RiskPerTrade <= 0 || strat.Sizing.RiskPerTrade > 1 {
			return &types.ConfigError{Field: "strategy.position_sizing.risk_per_trade", Reason: "must be in (0, 1]"}
		}
	}

	wf := strat.WalkForward
	if wf.TrainDays <= 0 || wf.TestDays <= 0 || wf.WarmupDays <= 0 {
		return &types.ConfigError{Field: "strategy.walk_forward", Reason: "train_days, test_days and warmup_days must be positive"}
	}
	if wf.OverrideBuyThreshold >= wf.OverrideSellThreshold {
		return &types.ConfigError{Field: "strategy.walk_forward", Reason: "override_buy_threshold must be strictly below override_sell_threshold"}
	}
	if wf.OverrideNormWindow <= 0 {
		return &types.ConfigError{Field: "strategy.walk_forward.override_norm_window", Reason: "must be positive"}
	}

	return nil
}
