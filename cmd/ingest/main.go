// Command ingest downloads historical bars from a market data provider
// and stores them in the local database for backtesting and replay.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/urfave/cli/v3"

	"github.com/helios-quant/helios-trading/internal/logger"
	"github.com/helios-quant/helios-trading/internal/store"
	"github.com/helios-quant/helios-trading/internal/types"
	"github.com/helios-quant/helios-trading/pkg/marketdata"
)

func ingestAction(ctx context.Context, cmd *cli.Command) error {
	asset := types.Asset{
		ID:     cmd.String("asset-id"),
		Symbol: cmd.String("symbol"),
		Class:  cmd.String("class"),
		Active: true,
	}
	if asset.ID == "" {
		asset.ID = asset.Symbol
	}
	start := cmd.Timestamp("start")
	end := cmd.Timestamp("end")

	provider, err := marketdata.NewProvider(
		marketdata.ProviderType(cmd.String("provider")),
		os.Getenv("POLYGON_API_KEY"),
	)
	if err != nil {
		return err
	}

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

	bar := progressbar.NewOptions(100,
		progressbar.OptionSetDescription(fmt.Sprintf("Downloading %s", asset.Symbol)),
		progressbar.OptionShowCount())

	points, err := provider.FetchBars(ctx, asset, start, end, func(current, total float64, _ string) {
		if total > 0 {
			_ = bar.Set(int(current / total * 100))
		}
	})
	if err != nil {
		return err
	}
	_ = bar.Finish()

	if err := db.SaveAsset(ctx, asset); err != nil {
		return err
	}
	if err := db.InsertPricePoints(ctx, points); err != nil {
		return err
	}

	fmt.Printf("\ningested %d bars for %s into %s\n", len(points), asset.Symbol, cmd.String("db"))

	return nil
}

func main() {
	cmd := &cli.Command{
		Name:  "ingest",
		Usage: "Download historical market data into the local database",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "symbol",
				Aliases:  []string{"t"},
				Usage:    "Ticker symbol to download",
				Required: true,
			},
			&cli.StringFlag{
				Name:  "asset-id",
				Usage: "Asset id to record bars under, defaults to the symbol",
			},
			&cli.StringFlag{
				Name:  "class",
				Usage: "Asset class (e.g. crypto, equity)",
				Value: "equity",
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
			&cli.StringFlag{
				Name:    "provider",
				Aliases: []string{"p"},
				Usage:   fmt.Sprintf("Data provider (%s, %s)", marketdata.ProviderBinance, marketdata.ProviderPolygon),
				Value:   string(marketdata.ProviderBinance),
			},
			&cli.StringFlag{
				Name:  "db",
				Usage: "Path to the database file",
				Value: "helios.db",
			},
		},
		Action: ingestAction,
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
