// Package ledger persists simulation sessions and individual customer
// outcomes to a sqlite database, so runs can be compared after the fact.
package ledger

import (
	"database/sql"
	"fmt"
	"time"

	_ "embed"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/sirupsen/logrus"
)

const schemaVersion = 1

//go:embed schema_v1.sql
var schema string

// Ledger wraps the sqlite database. Safe for concurrent use; sqlite allows
// a single writer, so the pool is capped at one connection (which also
// keeps :memory: databases alive between calls).
type Ledger struct {
	db  *sql.DB
	log logrus.FieldLogger
}

// Open opens or creates the ledger database at path. The schema is created
// on first use; a database with an unexpected schema version is refused.
func Open(path string, log logrus.FieldLogger) (*Ledger, error) {
	if log == nil {
		log = logrus.StandardLogger()
	}
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)

	var userVersion int
	if err := db.QueryRow("PRAGMA user_version").Scan(&userVersion); err != nil {
		db.Close()
		return nil, fmt.Errorf("reading ledger schema version: %v", err)
	}
	switch userVersion {
	case schemaVersion:
	case 0:
		if _, err := db.Exec(schema); err != nil {
			db.Close()
			return nil, fmt.Errorf("creating ledger schema: %v", err)
		}
	default:
		db.Close()
		return nil, fmt.Errorf("ledger schema version is %d, expected %d", userVersion, schemaVersion)
	}

	return &Ledger{db: db, log: log}, nil
}

func (l *Ledger) Close() error {
	return l.db.Close()
}

// SessionParams are the scenario parameters stored with a session row.
type SessionParams struct {
	Barbers       int
	WaitingSeats  int
	Customers     int
	ServiceTimeUs int
}

// Session is one recorded simulation run. Its outcome methods satisfy the
// simulation driver's Recorder interface; recording failures are logged and
// swallowed so a broken disk never stalls a running simulation.
type Session struct {
	l  *Ledger
	id uuid.UUID
}

// BeginSession inserts a new session row and returns a handle for recording
// its visits.
func (l *Ledger) BeginSession(p SessionParams) (*Session, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return nil, err
	}
	_, err = l.db.Exec(
		"INSERT INTO sessions (id, started_at, barbers, waiting_seats, customers, service_time_us) VALUES (?, ?, ?, ?, ?, ?)",
		id.String(), time.Now(), p.Barbers, p.WaitingSeats, p.Customers, p.ServiceTimeUs)
	if err != nil {
		return nil, fmt.Errorf("inserting session: %v", err)
	}
	return &Session{l: l, id: id}, nil
}

func (s *Session) ID() string {
	return s.id.String()
}

func (s *Session) Assigned(customer, chair int) {
	s.record(customer, &chair, "assigned")
}

func (s *Session) Dropped(customer int) {
	s.record(customer, nil, "dropped")
}

func (s *Session) Served(customer, chair int) {
	s.record(customer, &chair, "served")
}

func (s *Session) record(customer int, chair *int, outcome string) {
	var chairVal interface{}
	if chair != nil {
		chairVal = *chair
	}
	_, err := s.l.db.Exec(
		"INSERT INTO visits (session_id, customer, chair, outcome, recorded_at) VALUES (?, ?, ?, ?, ?)",
		s.id.String(), customer, chairVal, outcome, time.Now())
	if err != nil {
		s.l.log.WithField("customer", customer).Errorf("recording %s visit: %v", outcome, err)
	}
}

// Finish stores the aggregate result on the session row.
func (s *Session) Finish(served, dropped int, elapsed time.Duration) error {
	_, err := s.l.db.Exec(
		"UPDATE sessions SET served = ?, dropped = ?, elapsed_us = ? WHERE id = ?",
		served, dropped, elapsed.Microseconds(), s.id.String())
	if err != nil {
		return fmt.Errorf("finishing session %s: %v", s.id, err)
	}
	return nil
}

// SessionSummary is one row of the sessions table. The result columns are
// NULL for sessions that never finished.
type SessionSummary struct {
	ID            string
	StartedAt     time.Time
	Barbers       int
	WaitingSeats  int
	Customers     int
	ServiceTimeUs int
	Served        sql.NullInt64
	Dropped       sql.NullInt64
	ElapsedUs     sql.NullInt64
}

// Sessions returns every recorded session, oldest first.
func (l *Ledger) Sessions() ([]SessionSummary, error) {
	rows, err := l.db.Query(
		"SELECT id, started_at, barbers, waiting_seats, customers, service_time_us, served, dropped, elapsed_us FROM sessions ORDER BY started_at")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []SessionSummary
	for rows.Next() {
		var s SessionSummary
		if err := rows.Scan(&s.ID, &s.StartedAt, &s.Barbers, &s.WaitingSeats, &s.Customers,
			&s.ServiceTimeUs, &s.Served, &s.Dropped, &s.ElapsedUs); err != nil {
			return nil, err
		}
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}

// Visit is one recorded customer outcome. Chair is NULL for drops.
type Visit struct {
	Customer   int
	Chair      sql.NullInt64
	Outcome    string
	RecordedAt time.Time
}

// Visits returns the visits of one session in the order they were recorded.
func (l *Ledger) Visits(sessionID string) ([]Visit, error) {
	rows, err := l.db.Query(
		"SELECT customer, chair, outcome, recorded_at FROM visits WHERE session_id = ? ORDER BY id", sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var visits []Visit
	for rows.Next() {
		var v Visit
		if err := rows.Scan(&v.Customer, &v.Chair, &v.Outcome, &v.RecordedAt); err != nil {
			return nil, err
		}
		visits = append(visits, v)
	}
	return visits, rows.Err()
}
