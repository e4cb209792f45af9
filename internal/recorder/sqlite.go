package recorder

import (
	"database/sql"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

// SQLiteRecorder persists load and insight history to a SQLite database.
type SQLiteRecorder struct {
	db     *sql.DB
	mu     sync.Mutex
	logger *zap.Logger
}

// NewSQLiteRecorder opens (or creates) the database and runs migrations.
func NewSQLiteRecorder(dbPath string, logger *zap.Logger) (*SQLiteRecorder, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db, logger: logger.Named("recorder")}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	r.logger.Info("sqlite recorder opened", zap.String("path", dbPath))
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS loads (
			id           INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp    INTEGER NOT NULL,
			upload_id    TEXT NOT NULL,
			source       TEXT,
			filename     TEXT,
			rows         INTEGER,
			surviving    INTEGER,
			rejected     INTEGER,
			points       INTEGER,
			applied      INTEGER,
			error        TEXT,
			min_price    REAL,
			max_price    REAL,
			mean_price   REAL,
			return_pct   REAL,
			return_ok    INTEGER,
			range_start  TEXT,
			range_end    TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_loads_ts ON loads(timestamp)`,

		`CREATE TABLE IF NOT EXISTS insights (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp   INTEGER NOT NULL,
			version     INTEGER,
			provider    TEXT,
			points      INTEGER,
			cached      INTEGER,
			error       TEXT,
			latency_ms  INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_insights_ts ON insights(timestamp)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

func (r *SQLiteRecorder) RecordLoad(evt *LoadEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`INSERT INTO loads
		(timestamp, upload_id, source, filename, rows, surviving, rejected, points, applied, error,
		 min_price, max_price, mean_price, return_pct, return_ok, range_start, range_end)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		time.Now().Unix(), evt.UploadID, evt.Source, evt.Filename,
		evt.Rows, evt.Surviving, evt.Rejected, evt.Points, boolInt(evt.Applied), evt.Error,
		evt.Min, evt.Max, evt.Mean, evt.ReturnPct, boolInt(evt.ReturnOK),
		dateOrEmpty(evt.RangeStart), dateOrEmpty(evt.RangeEnd),
	)
	return err
}

func (r *SQLiteRecorder) RecordInsight(evt *InsightEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`INSERT INTO insights
		(timestamp, version, provider, points, cached, error, latency_ms)
		VALUES (?,?,?,?,?,?,?)`,
		time.Now().Unix(), evt.Version, evt.Provider, evt.Points, boolInt(evt.Cached),
		evt.Error, evt.Latency.Milliseconds(),
	)
	return err
}

// CountLoads returns how many load attempts have been recorded.
func (r *SQLiteRecorder) CountLoads() (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM loads`).Scan(&n)
	return n, err
}

func (r *SQLiteRecorder) Close() error {
	r.logger.Info("closing sqlite recorder")
	return r.db.Close()
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func dateOrEmpty(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02")
}
