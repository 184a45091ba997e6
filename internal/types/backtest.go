package types

import (
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/helios-quant/helios-trading/pkg/errors"
)

// EquityPoint is one sample of the portfolio equity curve.
type EquityPoint struct {
	Time   time.Time `yaml:"time" json:"time"`
	Equity float64   `yaml:"equity" json:"equity"`
}

// BacktestStats are the summary performance metrics of a simulation run.
type BacktestStats struct {
	// TotalReturn is the fractional return over the run (0.25 = +25%).
	TotalReturn float64 `yaml:"total_return" json:"total_return"`
	// AnnualizedVolatility is the standard deviation of daily returns
	// scaled to a 252 trading day year.
	AnnualizedVolatility float64 `yaml:"annualized_volatility" json:"annualized_volatility"`
	SharpeRatio          float64 `yaml:"sharpe_ratio" json:"sharpe_ratio"`
	// MaxDrawdown is the largest peak-to-trough equity decline, as a fraction.
	MaxDrawdown float64 `yaml:"max_drawdown" json:"max_drawdown"`
	// WinRate is the fraction of closed round trips with positive profit.
	WinRate         float64 `yaml:"win_rate" json:"win_rate"`
	TotalTrades     int     `yaml:"total_trades" json:"total_trades"`
	WinningTrades   int     `yaml:"winning_trades" json:"winning_trades"`
	LosingTrades    int     `yaml:"losing_trades" json:"losing_trades"`
	TotalCommission float64 `yaml:"total_commission" json:"total_commission"`
}

// BacktestResult is the full outcome of one simulation run.
type BacktestResult struct {
	StrategyID     string        `yaml:"strategy_id" json:"strategy_id"`
	Symbol         string        `yaml:"symbol" json:"symbol"`
	Start          time.Time     `yaml:"start" json:"start"`
	End            time.Time     `yaml:"end" json:"end"`
	InitialCapital float64       `yaml:"initial_capital" json:"initial_capital"`
	FinalEquity    float64       `yaml:"final_equity" json:"final_equity"`
	Stats          BacktestStats `yaml:"stats" json:"stats"`
	Trades         []Trade       `yaml:"trades" json:"trades"`
	EquityCurve    []EquityPoint `yaml:"equity_curve" json:"equity_curve"`
	// RejectedSignals counts signals the risk gate turned away during the run.
	RejectedSignals int `yaml:"rejected_signals" json:"rejected_signals"`
}

// WriteYAML persists the result to the given path, creating parent
// directories as needed.
func (r *BacktestResult) WriteYAML(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrap(errors.ErrCodeSnapshotWriteError, "failed to create result directory", err)
	}

	data, err := yaml.Marshal(r)
	if err != nil {
		return errors.Wrap(errors.ErrCodeSnapshotWriteError, "failed to marshal backtest result", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrap(errors.ErrCodeSnapshotWriteError, "failed to write backtest result", err)
	}

	return nil
}
