package recorder

import (
	"database/sql"
	"fmt"
	"log"
	"sync"

	_ "modernc.org/sqlite"
)

// SQLiteRecorder persists simulation history to a SQLite database.
type SQLiteRecorder struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL mode so analysis tooling can read while the daemon writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Printf("[INFO] sqlite recorder opened: %s", dbPath)
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS crisis_events (
			id        INTEGER PRIMARY KEY AUTOINCREMENT,
			day       INTEGER NOT NULL,
			realm     INTEGER NOT NULL,
			crisis    TEXT,
			severity  REAL,
			causes    TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_crisis_day ON crisis_events(day)`,

		`CREATE TABLE IF NOT EXISTS sanction_events (
			id             INTEGER PRIMARY KEY AUTOINCREMENT,
			day            INTEGER NOT NULL,
			sanction_id    TEXT,
			event_type     TEXT,
			imposer        INTEGER,
			target         INTEGER,
			severity       TEXT,
			monthly_damage INTEGER,
			total_damage   INTEGER,
			months_active  INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_sanction_day ON sanction_events(day)`,

		`CREATE TABLE IF NOT EXISTS agreement_events (
			id              INTEGER PRIMARY KEY AUTOINCREMENT,
			day             INTEGER NOT NULL,
			agreement_id    TEXT,
			event_type      TEXT,
			realm_a         INTEGER,
			realm_b         INTEGER,
			trade_bonus     REAL,
			value_generated REAL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_agreement_day ON agreement_events(day)`,

		`CREATE TABLE IF NOT EXISTS bridge_snapshots (
			id       INTEGER PRIMARY KEY AUTOINCREMENT,
			day      INTEGER NOT NULL,
			bridge   TEXT,
			realm    INTEGER NOT NULL,
			balance  REAL,
			severity REAL,
			treasury INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_snapshot_day ON bridge_snapshots(day)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

func (r *SQLiteRecorder) RecordCrisis(evt *CrisisEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`INSERT INTO crisis_events
		(day, realm, crisis, severity, causes)
		VALUES (?,?,?,?,?)`,
		evt.Day, evt.Realm, evt.Crisis, evt.Severity, evt.Causes,
	)
	return err
}

func (r *SQLiteRecorder) RecordSanction(evt *SanctionEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`INSERT INTO sanction_events
		(day, sanction_id, event_type, imposer, target, severity, monthly_damage, total_damage, months_active)
		VALUES (?,?,?,?,?,?,?,?,?)`,
		evt.Day, evt.SanctionID, evt.EventType, evt.Imposer, evt.Target,
		evt.Severity, evt.MonthlyDamage, evt.TotalDamage, evt.MonthsActive,
	)
	return err
}

func (r *SQLiteRecorder) RecordAgreement(evt *AgreementEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`INSERT INTO agreement_events
		(day, agreement_id, event_type, realm_a, realm_b, trade_bonus, value_generated)
		VALUES (?,?,?,?,?,?,?)`,
		evt.Day, evt.AgreementID, evt.EventType, evt.RealmA, evt.RealmB,
		evt.TradeBonus, evt.ValueGenerated,
	)
	return err
}

func (r *SQLiteRecorder) RecordSnapshot(snap *BridgeSnapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`INSERT INTO bridge_snapshots
		(day, bridge, realm, balance, severity, treasury)
		VALUES (?,?,?,?,?,?)`,
		snap.Day, snap.Bridge, snap.Realm, snap.Balance, snap.Severity, snap.Treasury,
	)
	return err
}

func (r *SQLiteRecorder) Close() error {
	log.Println("[INFO] closing sqlite recorder")
	return r.db.Close()
}
