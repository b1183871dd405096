package recorder

import (
	"database/sql"
	"fmt"
	"math"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"ReturnRanker/internal/logging"
	"ReturnRanker/internal/model"
)

// SQLiteRecorder persists run history to a SQLite database.
type SQLiteRecorder struct {
	db     *sql.DB
	mu     sync.Mutex
	logger *logging.Logger
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string, logger *logging.Logger) (*SQLiteRecorder, error) {
	if logger == nil {
		logger = logging.NewSilentLogger()
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db, logger: logger}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	logger.Info().Str("path", dbPath).Msg("sqlite recorder opened")
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS evaluation_runs (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id     TEXT NOT NULL UNIQUE,
			timestamp  INTEGER NOT NULL,
			end_date   TEXT NOT NULL,
			trades     INTEGER,
			results    INTEGER,
			skipped    INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_ts ON evaluation_runs(timestamp)`,

		`CREATE TABLE IF NOT EXISTS run_results (
			id                INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id            TEXT NOT NULL,
			rank              INTEGER NOT NULL,
			symbol            TEXT NOT NULL,
			annualized_return REAL,
			total_return      REAL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_results_run ON run_results(run_id)`,

		`CREATE TABLE IF NOT EXISTS skip_events (
			id            INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id        TEXT,
			timestamp     INTEGER NOT NULL,
			symbol        TEXT NOT NULL,
			purchase_date TEXT,
			reason        TEXT,
			kind          TEXT,
			error         TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_skips_run ON skip_events(run_id)`,

		`CREATE TABLE IF NOT EXISTS edge_case_events (
			id        INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id    TEXT,
			timestamp INTEGER NOT NULL,
			symbol    TEXT NOT NULL,
			reason    TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_edges_run ON edge_case_events(run_id)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

// nullable stores NaN as NULL.
func nullable(v float64) sql.NullFloat64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: v, Valid: true}
}

// RecordRun stores the run row and its ranked results in one transaction.
func (r *SQLiteRecorder) RecordRun(summary *model.RunSummary) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`INSERT INTO evaluation_runs
		(run_id, timestamp, end_date, trades, results, skipped)
		VALUES (?,?,?,?,?,?)`,
		summary.RunID, summary.StartedAt.Unix(), summary.EndDate.Format("2006-01-02"),
		summary.Trades, len(summary.Results), summary.Skipped,
	); err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	for i, res := range summary.Results {
		if _, err := tx.Exec(`INSERT INTO run_results
			(run_id, rank, symbol, annualized_return, total_return)
			VALUES (?,?,?,?,?)`,
			summary.RunID, i+1, res.Symbol, nullable(res.AnnualizedReturn), nullable(res.TotalReturn),
		); err != nil {
			return fmt.Errorf("insert result %s: %w", res.Symbol, err)
		}
	}
	return tx.Commit()
}

func (r *SQLiteRecorder) RecordSkip(evt *model.SkipEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var errText string
	if evt.Err != nil {
		errText = evt.Err.Error()
	}
	_, err := r.db.Exec(`INSERT INTO skip_events
		(run_id, timestamp, symbol, purchase_date, reason, kind, error)
		VALUES (?,?,?,?,?,?,?)`,
		evt.RunID, time.Now().Unix(), evt.Symbol, evt.PurchaseDate.Format("2006-01-02"),
		string(evt.Reason), evt.Kind, errText,
	)
	return err
}

func (r *SQLiteRecorder) RecordEdgeCase(evt *model.EdgeCaseEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`INSERT INTO edge_case_events
		(run_id, timestamp, symbol, reason)
		VALUES (?,?,?,?)`,
		evt.RunID, time.Now().Unix(), evt.Symbol, string(evt.Reason),
	)
	return err
}

func (r *SQLiteRecorder) Close() error {
	r.logger.Info().Msg("closing sqlite recorder")
	return r.db.Close()
}
