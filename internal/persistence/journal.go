// Package persistence provides the SQLite session journal: per-cycle state
// rows and the agent message log, queryable while the simulation runs.
// The journal is session-scoped — nothing is ever loaded back on startup.
package persistence

import (
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/talgya/rescuegrid/internal/environment"
	"github.com/talgya/rescuegrid/internal/protocol"
)

// Journal wraps a SQLite connection for in-session telemetry.
type Journal struct {
	conn *sqlx.DB
}

// Open opens or creates the journal database at the given path. Use
// ":memory:" for a throwaway journal.
func Open(path string) (*Journal, error) {
	conn, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}

	j := &Journal{conn: conn}
	if err := j.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate journal: %w", err)
	}
	// A fresh session starts with a clean journal.
	if err := j.Reset(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("reset journal: %w", err)
	}
	return j, nil
}

// Close closes the underlying connection.
func (j *Journal) Close() error {
	return j.conn.Close()
}

func (j *Journal) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS cycles (
		cycle INTEGER PRIMARY KEY,
		phase TEXT NOT NULL,
		scenario TEXT NOT NULL,
		victims INTEGER NOT NULL,
		victims_saved INTEGER NOT NULL,
		seismic_level REAL NOT NULL,
		rebuild_progress REAL NOT NULL,
		roads_blocked INTEGER NOT NULL,
		recorded_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS messages (
		id INTEGER PRIMARY KEY,
		cycle INTEGER NOT NULL,
		sender TEXT NOT NULL,
		type TEXT NOT NULL,
		priority INTEGER NOT NULL,
		sent_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_messages_cycle ON messages(cycle);
	`
	_, err := j.conn.Exec(schema)
	return err
}

// CycleRow is one journaled cycle.
type CycleRow struct {
	Cycle           int     `db:"cycle" json:"cycle"`
	Phase           string  `db:"phase" json:"phase"`
	Scenario        string  `db:"scenario" json:"scenario"`
	Victims         int     `db:"victims" json:"victims"`
	VictimsSaved    int     `db:"victims_saved" json:"victims_saved"`
	SeismicLevel    float64 `db:"seismic_level" json:"seismic_level"`
	RebuildProgress float64 `db:"rebuild_progress" json:"rebuild_progress"`
	RoadsBlocked    bool    `db:"roads_blocked" json:"roads_blocked"`
	RecordedAt      string  `db:"recorded_at" json:"recorded_at"`
}

// RecordCycle writes one cycle row plus the cycle's new bus messages.
// Implements engine.CycleRecorder.
func (j *Journal) RecordCycle(cycle int, snap environment.Snapshot, msgs []protocol.Message) error {
	tx, err := j.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.Exec(`INSERT OR REPLACE INTO cycles
		(cycle, phase, scenario, victims, victims_saved, seismic_level, rebuild_progress, roads_blocked, recorded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		cycle, string(snap.Phase), string(snap.Scenario), snap.Victims, snap.VictimsSaved,
		snap.SeismicLevel, snap.RebuildProgress, snap.RoadsBlocked, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("insert cycle %d: %w", cycle, err)
	}

	for _, m := range msgs {
		_, err = tx.Exec(`INSERT OR IGNORE INTO messages (id, cycle, sender, type, priority, sent_at)
			VALUES (?, ?, ?, ?, ?, ?)`,
			m.ID, cycle, m.Sender, string(m.Type), m.Priority, m.Timestamp.UTC().Format(time.RFC3339))
		if err != nil {
			return fmt.Errorf("insert message %d: %w", m.ID, err)
		}
	}

	return tx.Commit()
}

// History returns up to limit most recent cycle rows, newest first.
func (j *Journal) History(limit int) ([]CycleRow, error) {
	if limit <= 0 {
		limit = 50
	}
	var rows []CycleRow
	err := j.conn.Select(&rows, `SELECT * FROM cycles ORDER BY cycle DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("select cycles: %w", err)
	}
	return rows, nil
}

// MessageCount returns how many messages have been journaled.
func (j *Journal) MessageCount() (int, error) {
	var n int
	if err := j.conn.Get(&n, `SELECT COUNT(*) FROM messages`); err != nil {
		return 0, err
	}
	return n, nil
}

// Reset drops all journaled rows.
func (j *Journal) Reset() error {
	if _, err := j.conn.Exec(`DELETE FROM cycles`); err != nil {
		return err
	}
	_, err := j.conn.Exec(`DELETE FROM messages`)
	return err
}
