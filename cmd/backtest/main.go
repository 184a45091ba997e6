// Command backtest replays a stored strategy against stored history and
// prints (and optionally saves) the resulting performance report.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/urfave/cli/v3"

	"github.com/helios-quant/helios-trading/internal/backtest"
	"github.com/helios-quant/helios-trading/internal/logger"
	"github.com/helios-quant/helios-trading/internal/store"
	"github.com/helios-quant/helios-trading/internal/strategy"
	"github.com/helios-quant/helios-trading/internal/types"
	"github.com/helios-quant/helios-trading/pkg/errors"
)

func backtestAction(ctx context.Context, cmd *cli.Command) error {
	log, err := logger.NewLogger()
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	db, err := store.Open(cmd.String("db"), log)
	if err != nil {
		return err
	}
	defer db.Close()

	strategyID := cmd.String("strategy")
	cfg, err := findStrategy(ctx, db, strategyID)
	if err != nil {
		return err
	}

	asset, err := findAsset(ctx, db, cmd.String("asset"))
	if err != nil {
		return err
	}

	var bar *progressbar.ProgressBar
	run := backtest.RunConfig{
		Start:          cmd.Timestamp("start"),
		End:            cmd.Timestamp("end"),
		InitialCapital: cmd.Float64("capital"),
		CommissionRate: cmd.Float64("commission"),
		Progress: func(done, total int) {
			if bar == nil {
				bar = progressbar.NewOptions(total,
					progressbar.OptionSetDescription(fmt.Sprintf("Replaying %s", asset.Symbol)),
					progressbar.OptionShowCount())
			}
			_ = bar.Set(done)
		},
	}

	sim := backtest.NewSimulator(db, strategy.Deps{}, log)
	result, err := sim.Run(ctx, cfg, asset, run)
	if err != nil {
		return err
	}
	if bar != nil {
		_ = bar.Finish()
	}

	printReport(result)

	if out := cmd.String("output"); out != "" {
		if err := result.WriteYAML(out); err != nil {
			return err
		}
		fmt.Printf("result written to %s\n", out)
	}

	return nil
}

func findStrategy(ctx context.Context, db *store.Store, strategyID string) (types.StrategyConfig, error) {
	configs, err := db.ListActiveStrategies(ctx)
	if err != nil {
		return types.StrategyConfig{}, err
	}
	for _, cfg := range configs {
		if cfg.ID == strategyID {
			return cfg, nil
		}
	}

	return types.StrategyConfig{}, errors.Newf(errors.ErrCodeStrategyNotFound, "no active strategy with id %q", strategyID)
}

func findAsset(ctx context.Context, db *store.Store, assetID string) (types.Asset, error) {
	assets, err := db.ListAssets(ctx)
	if err != nil {
		return types.Asset{}, err
	}
	for _, asset := range assets {
		if asset.ID == assetID || asset.Symbol == assetID {
			return asset, nil
		}
	}

	return types.Asset{}, errors.Newf(errors.ErrCodeAssetNotFound, "no asset with id or symbol %q", assetID)
}

func printReport(result *types.BacktestResult) {
	fmt.Printf("\n%s on %s, %s to %s\n",
		result.StrategyID, result.Symbol,
		result.Start.Format("2006-01-02"), result.End.Format("2006-01-02"))
	fmt.Printf("  initial capital:  %12.2f\n", result.InitialCapital)
	fmt.Printf("  final equity:     %12.2f\n", result.FinalEquity)
	fmt.Printf("  total return:     %11.2f%%\n", result.Stats.TotalReturn*100)
	fmt.Printf("  annualized vol:   %11.2f%%\n", result.Stats.AnnualizedVolatility*100)
	fmt.Printf("  sharpe ratio:     %12.2f\n", result.Stats.SharpeRatio)
	fmt.Printf("  max drawdown:     %11.2f%%\n", result.Stats.MaxDrawdown*100)
	fmt.Printf("  trades:           %12d\n", result.Stats.TotalTrades)
	fmt.Printf("  win rate:         %11.2f%%\n", result.Stats.WinRate*100)
	fmt.Printf("  commission paid:  %12.2f\n", result.Stats.TotalCommission)
	fmt.Printf("  rejected signals: %12d\n", result.RejectedSignals)
}

func main() {
	cmd := &cli.Command{
		Name:  "backtest",
		Usage: "Replay a strategy against stored historical prices",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "strategy",
				Usage:    "Strategy id to replay",
				Required: true,
			},
			&cli.StringFlag{
				Name:     "asset",
				Usage:    "Asset id or symbol to replay against",
				Required: true,
			},
			&cli.TimestampFlag{
				Name:     "start",
				Aliases:  []string{"s"},
				Usage:    "Start date in `YYYY-MM-DD` format",
				Required: true,
				Config: cli.TimestampConfig{
					Layouts: []string{"2006-01-02"},
				},
			},
			&cli.TimestampFlag{
				Name:    "end",
				Aliases: []string{"e"},
				Usage:   "End date in `YYYY-MM-DD` format, defaults to today",
				Value:   time.Now(),
				Config: cli.TimestampConfig{
					Layouts: []string{"2006-01-02"},
				},
			},
			&cli.Float64Flag{
				Name:  "capital",
				Usage: "Initial capital for the simulated portfolio",
				Value: 10000,
			},
			&cli.Float64Flag{
				Name:  "commission",
				Usage: "Fixed commission rate per fill (0.001 = 0.1%)",
				Value: 0.001,
			},
			&cli.StringFlag{
				Name:  "db",
				Usage: "Path to the database file",
				Value: "helios.db",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Write the full result to this YAML file",
			},
		},
		Action: backtestAction,
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
