// Package store is the DuckDB-backed implementation of the persistence
// contracts: strategy configs, assets, price history, executed trades,
// and portfolio snapshots.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/Masterminds/squirrel"
	_ "github.com/marcboeker/go-duckdb"
	"github.com/moznion/go-optional"

	"github.com/helios-quant/helios-trading/internal/logger"
	"github.com/helios-quant/helios-trading/internal/types"
	"github.com/helios-quant/helios-trading/pkg/errors"
)

// Store wraps a DuckDB database. An empty path opens an in-memory
// database, which is what backtests and tests use.
type Store struct {
	db  *sql.DB
	sq  squirrel.StatementBuilderType
	log *logger.Logger
}

// Open creates a store at the given path and initializes the schema.
func Open(path string, log *logger.Logger) (*Store, error) {
	if path == "" {
		path = ":memory:"
	}
	if log == nil {
		log = logger.NewNopLogger()
	}

	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStoreUnavailable, "failed to open duckdb database", err)
	}

	s := &Store{
		db:  db,
		sq:  squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question),
		log: log,
	}
	if err := s.initialize(); err != nil {
		_ = db.Close()

		return nil, err
	}

	return s, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) initialize() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS assets (
			id TEXT PRIMARY KEY,
			symbol TEXT NOT NULL,
			class TEXT,
			active BOOLEAN
		)`,
		`CREATE TABLE IF NOT EXISTS strategies (
			id TEXT PRIMARY KEY,
			owner TEXT,
			name TEXT NOT NULL,
			kind TEXT NOT NULL,
			asset_class TEXT,
			parameters TEXT,
			max_position_size DOUBLE,
			max_drawdown_percent DOUBLE,
			max_daily_loss DOUBLE,
			model_ref TEXT,
			schema_version TEXT,
			active BOOLEAN,
			created_at TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS market_data (
			asset_id TEXT NOT NULL,
			symbol TEXT NOT NULL,
			time TIMESTAMP NOT NULL,
			open DOUBLE,
			high DOUBLE,
			low DOUBLE,
			close DOUBLE NOT NULL,
			volume DOUBLE
		)`,
		`CREATE TABLE IF NOT EXISTS trades (
			id TEXT PRIMARY KEY,
			signal_id TEXT,
			asset_id TEXT NOT NULL,
			symbol TEXT NOT NULL,
			side TEXT NOT NULL,
			strategy_id TEXT,
			time TIMESTAMP NOT NULL,
			price DOUBLE,
			quantity DOUBLE,
			commission DOUBLE,
			status TEXT,
			reason TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS portfolio_snapshots (
			time TIMESTAMP NOT NULL,
			cash DOUBLE,
			equity DOUBLE,
			realized_pnl DOUBLE,
			daily_loss DOUBLE,
			drawdown DOUBLE,
			trade_count INTEGER,
			positions TEXT
		)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return errors.Wrap(errors.ErrCodeStoreUnavailable, "failed to initialize schema", err)
		}
	}

	return nil
}

// SaveAsset inserts or replaces an asset.
func (s *Store) SaveAsset(ctx context.Context, asset types.Asset) error {
	query := s.sq.
		Insert("assets").
		Columns("id", "symbol", "class", "active").
		Values(asset.ID, asset.Symbol, asset.Class, asset.Active)

	sqlStr, args, err := query.ToSql()
	if err != nil {
		return errors.Wrap(errors.ErrCodeQueryFailed, "failed to build asset insert", err)
	}
	if _, err := s.db.ExecContext(ctx, sqlStr, args...); err != nil {
		return errors.Wrap(errors.ErrCodeQueryFailed, "failed to insert asset", err)
	}

	return nil
}

// ListAssets returns all assets, active and inactive.
func (s *Store) ListAssets(ctx context.Context) ([]types.Asset, error) {
	query := s.sq.
		Select("id", "symbol", "class", "active").
		From("assets").
		OrderBy("id")

	sqlStr, args, err := query.ToSql()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to build asset query", err)
	}

	rows, err := s.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to list assets", err)
	}
	defer rows.Close()

	var assets []types.Asset
	for rows.Next() {
		var a types.Asset
		if err := rows.Scan(&a.ID, &a.Symbol, &a.Class, &a.Active); err != nil {
			return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to scan asset row", err)
		}
		assets = append(assets, a)
	}

	return assets, rows.Err()
}

// SaveStrategy inserts or replaces a strategy config.
func (s *Store) SaveStrategy(ctx context.Context, cfg types.StrategyConfig) error {
	params, err := json.Marshal(cfg.Parameters)
	if err != nil {
		return errors.Wrap(errors.ErrCodeQueryFailed, "failed to encode strategy parameters", err)
	}
	modelRef := cfg.ModelRef.TakeOr("")

	query := s.sq.
		Insert("strategies").
		Columns("id", "owner", "name", "kind", "asset_class", "parameters",
			"max_position_size", "max_drawdown_percent", "max_daily_loss",
			"model_ref", "schema_version", "active", "created_at").
		Values(cfg.ID, cfg.Owner, cfg.Name, string(cfg.Kind), cfg.AssetClass, string(params),
			cfg.Risk.MaxPositionSize, cfg.Risk.MaxDrawdownPercent, cfg.Risk.MaxDailyLoss,
			modelRef, cfg.SchemaVersion, cfg.Active, cfg.CreatedAt)

	sqlStr, args, err := query.ToSql()
	if err != nil {
		return errors.Wrap(errors.ErrCodeQueryFailed, "failed to build strategy insert", err)
	}
	if _, err := s.db.ExecContext(ctx, sqlStr, args...); err != nil {
		return errors.Wrap(errors.ErrCodeQueryFailed, "failed to insert strategy", err)
	}

	return nil
}

// ListActiveStrategies returns every strategy flagged active.
func (s *Store) ListActiveStrategies(ctx context.Context) ([]types.StrategyConfig, error) {
	query := s.sq.
		Select("id", "owner", "name", "kind", "asset_class", "parameters",
			"max_position_size", "max_drawdown_percent", "max_daily_loss",
			"model_ref", "schema_version", "active", "created_at").
		From("strategies").
		Where(squirrel.Eq{"active": true}).
		OrderBy("id")

	sqlStr, args, err := query.ToSql()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to build strategy query", err)
	}

	rows, err := s.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to list strategies", err)
	}
	defer rows.Close()

	var configs []types.StrategyConfig
	for rows.Next() {
		var (
			cfg      types.StrategyConfig
			kind     string
			params   string
			modelRef string
		)
		if err := rows.Scan(&cfg.ID, &cfg.Owner, &cfg.Name, &kind, &cfg.AssetClass, &params,
			&cfg.Risk.MaxPositionSize, &cfg.Risk.MaxDrawdownPercent, &cfg.Risk.MaxDailyLoss,
			&modelRef, &cfg.SchemaVersion, &cfg.Active, &cfg.CreatedAt); err != nil {
			return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to scan strategy row", err)
		}

		cfg.Kind = types.StrategyKind(kind)
		if params != "" {
			if err := json.Unmarshal([]byte(params), &cfg.Parameters); err != nil {
				return nil, errors.Wrapf(errors.ErrCodeQueryFailed, err, "strategy %s has malformed parameters", cfg.ID)
			}
		}
		if modelRef != "" {
			cfg.ModelRef = optional.Some(modelRef)
		}
		configs = append(configs, cfg)
	}

	return configs, rows.Err()
}

// InsertPricePoints appends market data points in one transaction.
func (s *Store) InsertPricePoints(ctx context.Context, points []types.PricePoint) error {
	if len(points) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(errors.ErrCodeMarketDataWriteFailed, "failed to begin transaction", err)
	}

	query := s.sq.
		Insert("market_data").
		Columns("asset_id", "symbol", "time", "open", "high", "low", "close", "volume")
	for _, p := range points {
		query = query.Values(p.AssetID, p.Symbol, p.Time, p.Open, p.High, p.Low, p.Close, p.Volume)
	}

	sqlStr, args, err := query.ToSql()
	if err != nil {
		_ = tx.Rollback()

		return errors.Wrap(errors.ErrCodeMarketDataWriteFailed, "failed to build price insert", err)
	}
	if _, err := tx.ExecContext(ctx, sqlStr, args...); err != nil {
		_ = tx.Rollback()

		return errors.Wrap(errors.ErrCodeMarketDataWriteFailed, "failed to insert price points", err)
	}

	return tx.Commit()
}

// GetRecentPrices returns points strictly newer than since, oldest first.
func (s *Store) GetRecentPrices(ctx context.Context, assetID string, since time.Time) ([]types.PricePoint, error) {
	query := s.sq.
		Select("asset_id", "symbol", "time", "open", "high", "low", "close", "volume").
		From("market_data").
		Where(squirrel.Eq{"asset_id": assetID}).
		Where(squirrel.Gt{"time": since}).
		OrderBy("time ASC")

	return s.queryPrices(ctx, query)
}

// GetHistoricalPrices returns points within [start, end], oldest first.
func (s *Store) GetHistoricalPrices(ctx context.Context, assetID string, start, end time.Time) ([]types.PricePoint, error) {
	query := s.sq.
		Select("asset_id", "symbol", "time", "open", "high", "low", "close", "volume").
		From("market_data").
		Where(squirrel.Eq{"asset_id": assetID}).
		Where(squirrel.GtOrEq{"time": start}).
		Where(squirrel.LtOrEq{"time": end}).
		OrderBy("time ASC")

	return s.queryPrices(ctx, query)
}

func (s *Store) queryPrices(ctx context.Context, query squirrel.SelectBuilder) ([]types.PricePoint, error) {
	sqlStr, args, err := query.ToSql()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to build price query", err)
	}

	rows, err := s.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to query prices", err)
	}
	defer rows.Close()

	var points []types.PricePoint
	for rows.Next() {
		var p types.PricePoint
		if err := rows.Scan(&p.AssetID, &p.Symbol, &p.Time, &p.Open, &p.High, &p.Low, &p.Close, &p.Volume); err != nil {
			return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to scan price row", err)
		}
		points = append(points, p)
	}

	return points, rows.Err()
}

// PersistTrade appends a trade record.
func (s *Store) PersistTrade(ctx context.Context, trade types.Trade) error {
	query := s.sq.
		Insert("trades").
		Columns("id", "signal_id", "asset_id", "symbol", "side", "strategy_id",
			"time", "price", "quantity", "commission", "status", "reason").
		Values(trade.ID, trade.SignalID, trade.AssetID, trade.Symbol, string(trade.Side), trade.StrategyID,
			trade.Time, trade.Price, trade.Quantity, trade.Commission, string(trade.Status), trade.Reason)

	sqlStr, args, err := query.ToSql()
	if err != nil {
		return errors.Wrap(errors.ErrCodeQueryFailed, "failed to build trade insert", err)
	}
	if _, err := s.db.ExecContext(ctx, sqlStr, args...); err != nil {
		return errors.Wrap(errors.ErrCodeQueryFailed, "failed to persist trade", err)
	}

	return nil
}

// ListTrades returns all persisted trades, oldest first.
func (s *Store) ListTrades(ctx context.Context) ([]types.Trade, error) {
	query := s.sq.
		Select("id", "signal_id", "asset_id", "symbol", "side", "strategy_id",
			"time", "price", "quantity", "commission", "status", "reason").
		From("trades").
		OrderBy("time ASC")

	sqlStr, args, err := query.ToSql()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to build trade query", err)
	}

	rows, err := s.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to list trades", err)
	}
	defer rows.Close()

	var trades []types.Trade
	for rows.Next() {
		var (
			t      types.Trade
			side   string
			status string
		)
		if err := rows.Scan(&t.ID, &t.SignalID, &t.AssetID, &t.Symbol, &side, &t.StrategyID,
			&t.Time, &t.Price, &t.Quantity, &t.Commission, &status, &t.Reason); err != nil {
			return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to scan trade row", err)
		}
		t.Side = types.Side(side)
		t.Status = types.TradeStatus(status)
		trades = append(trades, t)
	}

	return trades, rows.Err()
}

// PersistPortfolioSnapshot appends a snapshot row. Positions are stored
// as a JSON document; snapshots are for observability, not replay.
func (s *Store) PersistPortfolioSnapshot(ctx context.Context, snap types.PortfolioSnapshot) error {
	positions, err := json.Marshal(snap.Positions)
	if err != nil {
		return errors.Wrap(errors.ErrCodeSnapshotWriteError, "failed to encode positions", err)
	}

	query := s.sq.
		Insert("portfolio_snapshots").
		Columns("time", "cash", "equity", "realized_pnl", "daily_loss", "drawdown", "trade_count", "positions").
		Values(snap.Time, snap.Cash, snap.Equity, snap.RealizedPnL, snap.DailyLoss, snap.Drawdown, snap.TradeCount, string(positions))

	sqlStr, args, err := query.ToSql()
	if err != nil {
		return errors.Wrap(errors.ErrCodeSnapshotWriteError, "failed to build snapshot insert", err)
	}
	if _, err := s.db.ExecContext(ctx, sqlStr, args...); err != nil {
		return errors.Wrap(errors.ErrCodeSnapshotWriteError, "failed to persist snapshot", err)
	}

	return nil
}
