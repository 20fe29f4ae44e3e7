package recorder

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"
)

// SQLiteRecorder persists sessions and their price rows to a SQLite database.
type SQLiteRecorder struct {
	db  *sql.DB
	mu  sync.Mutex
	log zerolog.Logger
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string, log zerolog.Logger) (*SQLiteRecorder, error) {
	if dir := filepath.Dir(dbPath); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL lets report tooling read while a session writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db, log: log}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Info().Str("path", dbPath).Msg("sqlite recorder opened")
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS sessions (
			id             TEXT PRIMARY KEY,
			timestamp      INTEGER NOT NULL,
			symbol         TEXT NOT NULL,
			exchange       TEXT NOT NULL,
			complete       INTEGER NOT NULL,
			error          TEXT,
			row_count      INTEGER NOT NULL,
			max_adj_close  REAL,
			min_adj_close  REAL,
			average_volume REAL,
			adtv           INTEGER,
			scale_max      REAL,
			scale_min      REAL,
			price_format   TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_symbol ON sessions(symbol, timestamp)`,

		`CREATE TABLE IF NOT EXISTS price_rows (
			session_id TEXT NOT NULL REFERENCES sessions(id),
			seq        INTEGER NOT NULL,
			date       TEXT NOT NULL,
			open       REAL,
			high       REAL,
			low        REAL,
			close      REAL,
			adj_close  REAL,
			volume     INTEGER,
			PRIMARY KEY (session_id, seq)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_price_rows_date ON price_rows(date)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

// RecordSession writes the session row and its dataset in one transaction.
func (r *SQLiteRecorder) RecordSession(rec *SessionRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	rowCount := 0
	if rec.Dataset != nil {
		rowCount = rec.Dataset.Len()
	}
	var maxAdj, minAdj, avgVol, scaleMax, scaleMin sql.NullFloat64
	var adtv sql.NullInt64
	var priceFormat sql.NullString
	if s := rec.Stats; s != nil {
		maxAdj = sql.NullFloat64{Float64: s.MaxAdjClose, Valid: true}
		minAdj = sql.NullFloat64{Float64: s.MinAdjClose, Valid: true}
		avgVol = sql.NullFloat64{Float64: s.AverageVolume, Valid: true}
		adtv = sql.NullInt64{Int64: s.ADTV, Valid: true}
		scaleMax = sql.NullFloat64{Float64: s.ScaleMax, Valid: true}
		scaleMin = sql.NullFloat64{Float64: s.ScaleMin, Valid: true}
		priceFormat = sql.NullString{String: s.PriceFormat, Valid: true}
	}

	if _, err := tx.Exec(`INSERT INTO sessions
		(id, timestamp, symbol, exchange, complete, error, row_count,
		 max_adj_close, min_adj_close, average_volume, adtv, scale_max, scale_min, price_format)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		rec.ID, rec.StartedAt.Unix(), rec.Symbol, rec.Exchange, rec.Complete, rec.Error, rowCount,
		maxAdj, minAdj, avgVol, adtv, scaleMax, scaleMin, priceFormat,
	); err != nil {
		return fmt.Errorf("insert session: %w", err)
	}

	if rowCount > 0 {
		stmt, err := tx.Prepare(`INSERT INTO price_rows
			(session_id, seq, date, open, high, low, close, adj_close, volume)
			VALUES (?,?,?,?,?,?,?,?,?)`)
		if err != nil {
			return fmt.Errorf("prepare rows: %w", err)
		}
		defer stmt.Close()
		for i, row := range rec.Dataset.Rows {
			if _, err := stmt.Exec(rec.ID, i, row.Date.Format("2006-01-02"),
				row.Open, row.High, row.Low, row.Close, row.AdjClose, row.Volume); err != nil {
				return fmt.Errorf("insert row %d: %w", i, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	r.log.Debug().Str("session", rec.ID).Int("rows", rowCount).Msg("session recorded")
	return nil
}

func (r *SQLiteRecorder) Close() error {
	r.log.Info().Msg("closing sqlite recorder")
	return r.db.Close()
}
