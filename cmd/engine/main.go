// Command engine runs the live paper trading engine against the local
// database, with an optional terminal dashboard.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/helios-quant/helios-trading/internal/engine"
	"github.com/helios-quant/helios-trading/internal/logger"
	"github.com/helios-quant/helios-trading/internal/store"
	"github.com/helios-quant/helios-trading/internal/strategy"
	"github.com/helios-quant/helios-trading/internal/version"
)

func main() {
	configPath := flag.String("config", "", "Path to the engine YAML config file")
	dbPath := flag.String("db", "helios.db", "Path to the database file")
	tui := flag.Bool("tui", false, "Show the terminal dashboard instead of log output")
	schema := flag.Bool("schema", false, "Print the engine config JSON schema and exit")
	showVersion := flag.Bool("version", false, "Print the engine version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("helios engine %s (schema %s)\n", version.Engine, version.SchemaVersion)

		return
	}
	if *schema {
		out, err := engine.GetConfigSchema()
		if err != nil {
			log.Fatal(err)
		}
		fmt.Println(out)

		return
	}

	if err := run(*configPath, *dbPath, *tui); err != nil {
		log.Fatal(err)
	}
}

func run(configPath, dbPath string, tui bool) error {
	cfg := engine.DefaultConfig()
	if configPath != "" {
		loaded, err := engine.LoadConfig(configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}

	zlog, err := logger.NewLogger()
	if err != nil {
		return err
	}
	defer func() { _ = zlog.Sync() }()

	db, err := store.Open(dbPath, zlog)
	if err != nil {
		return err
	}
	defer db.Close()

	eng, err := engine.New(cfg, db, db, db, strategy.Deps{}, zlog)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := eng.Start(ctx); err != nil {
		return err
	}
	defer eng.Stop()

	if tui {
		return runMonitor(eng)
	}

	<-ctx.Done()

	return eng.FatalErr()
}

func runMonitor(eng *engine.Engine) error {
	model := newMonitorModel(func() monitorStatus {
		depth, capacity, fullEvents := eng.QueueDepth()

		return monitorStatus{
			Portfolio:  eng.Portfolio(),
			QueueDepth: depth,
			QueueCap:   capacity,
			FullEvents: fullEvents,
			Fatal:      eng.FatalErr(),
		}
	}, time.Second)

	program := tea.NewProgram(model, tea.WithOutput(os.Stderr))
	if _, err := program.Run(); err != nil {
		return err
	}

	return eng.FatalErr()
}
