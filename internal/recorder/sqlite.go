package recorder

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"

	"github.com/wfuentes35/codigo-fut/internal/model"
)

// SQLiteRecorder persists signal and close events to a SQLite database.
type SQLiteRecorder struct {
	db     *sql.DB
	mu     sync.Mutex
	logger *logrus.Logger
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string, logger *logrus.Logger) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL mode for better concurrent read performance (dashboards read
	// while the bot writes).
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db, logger: logger}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	logger.Infof("sqlite recorder opened: %s", dbPath)
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS signals (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			symbol      TEXT NOT NULL,
			direction   TEXT NOT NULL,
			entry_price REAL,
			entry_time  INTEGER NOT NULL,
			tp1_key     TEXT,
			tp2_key     TEXT,
			sl_key      TEXT,
			annotations TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_signals_ts ON signals(entry_time)`,

		`CREATE TABLE IF NOT EXISTS closed_trades (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			symbol      TEXT NOT NULL,
			direction   TEXT NOT NULL,
			status      TEXT NOT NULL,
			entry_price REAL,
			entry_time  INTEGER NOT NULL,
			close_price REAL,
			close_time  INTEGER NOT NULL,
			tp1_hit     INTEGER,
			tp2_hit     INTEGER,
			UNIQUE(symbol, entry_time)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_closed_ts ON closed_trades(close_time)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

func (r *SQLiteRecorder) RecordSignal(pos *model.Position) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	annotations := ""
	if len(pos.Annotations) > 0 {
		if data, err := json.Marshal(pos.Annotations); err == nil {
			annotations = string(data)
		}
	}

	_, err := r.db.Exec(`INSERT INTO signals
		(symbol, direction, entry_price, entry_time, tp1_key, tp2_key, sl_key, annotations)
		VALUES (?,?,?,?,?,?,?,?)`,
		pos.Symbol, string(pos.Direction), pos.EntryPrice, pos.EntryTime.UnixMilli(),
		string(pos.TP1Key), string(pos.TP2Key), string(pos.SLKey), annotations,
	)
	return err
}

func (r *SQLiteRecorder) RecordClosed(pos *model.Position) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	// INSERT OR IGNORE keeps re-recording a closed position idempotent,
	// mirroring the closed-log merge.
	_, err := r.db.Exec(`INSERT OR IGNORE INTO closed_trades
		(symbol, direction, status, entry_price, entry_time, close_price, close_time, tp1_hit, tp2_hit)
		VALUES (?,?,?,?,?,?,?,?,?)`,
		pos.Symbol, string(pos.Direction), string(pos.Status),
		pos.EntryPrice, pos.EntryTime.UnixMilli(),
		pos.ClosePrice, pos.CloseTime.UnixMilli(),
		pos.TP1Hit, pos.TP2Hit,
	)
	return err
}

func (r *SQLiteRecorder) Close() error {
	r.logger.Info("closing sqlite recorder")
	return r.db.Close()
}
