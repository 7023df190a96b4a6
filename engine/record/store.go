// Package record stores touch sessions in SQLite and plays them back as an
// input provider.
package record

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/hubastard/grovetouch/engine/touch"
	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaFS embed.FS

var ErrNoSession = errors.New("record: no such session")

// Event is one recorded touch event. At is the offset from the first event
// of the session.
type Event struct {
	At         time.Duration
	Device     string
	ID         int
	Kind       touch.Kind
	X, Y       float64
	FiducialID int
	Angle      float64
	HasAngle   bool
}

type Session struct {
	ID        int64
	Name      string
	CreatedAt time.Time
	Events    int
}

type Store struct {
	mu sync.Mutex
	db *sql.DB

	stmtInsert *sql.Stmt
}

func Open(path string) (*Store, error) {
	dsn := fmt.Sprintf("%s?_journal_mode=WAL&_synchronous=NORMAL&_foreign_keys=ON", path)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database at %s: %w", path, err)
	}
	// one connection keeps :memory: databases alive between calls
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	schema, err := schemaFS.ReadFile("schema.sql")
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("reading embedded schema: %w", err)
	}
	if _, err := db.Exec(string(schema)); err != nil {
		db.Close()
		return nil, fmt.Errorf("executing schema: %w", err)
	}
	stmt, err := db.Prepare(`INSERT INTO events
		(session_id, offset_ns, device, touch_id, kind, sx, sy, fiducial_id, angle, has_angle)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("preparing insert: %w", err)
	}
	return &Store{db: db, stmtInsert: stmt}, nil
}

func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stmtInsert.Close()
	return s.db.Close()
}

// CreateSession returns the id of the named session, creating it if needed.
func (s *Store) CreateSession(name string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.Exec(`INSERT OR IGNORE INTO sessions (name, created_at) VALUES (?, ?)`,
		name, time.Now().UnixNano())
	if err != nil {
		return 0, fmt.Errorf("creating session %s: %w", name, err)
	}
	return s.lookup(name)
}

// SessionID returns the id of an existing session.
func (s *Store) SessionID(name string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lookup(name)
}

func (s *Store) lookup(name string) (int64, error) {
	var id int64
	err := s.db.QueryRow(`SELECT id FROM sessions WHERE name = ?`, name).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("%q: %w", name, ErrNoSession)
	}
	if err != nil {
		return 0, fmt.Errorf("looking up session %s: %w", name, err)
	}
	return id, nil
}

// Append inserts events into a session within a single transaction.
func (s *Store) Append(session int64, events []Event) error {
	if len(events) == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning event transaction: %w", err)
	}
	defer tx.Rollback()

	stmt := tx.Stmt(s.stmtInsert)
	for _, ev := range events {
		_, err := stmt.Exec(session, int64(ev.At), ev.Device, ev.ID, int(ev.Kind),
			ev.X, ev.Y, ev.FiducialID, ev.Angle, ev.HasAngle)
		if err != nil {
			return fmt.Errorf("inserting event: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing events: %w", err)
	}
	return nil
}

// Events returns a session's events in recording order.
func (s *Store) Events(session int64) ([]Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rows, err := s.db.Query(`SELECT offset_ns, device, touch_id, kind, sx, sy, fiducial_id, angle, has_angle
		FROM events WHERE session_id = ? ORDER BY offset_ns, id`, session)
	if err != nil {
		return nil, fmt.Errorf("querying events: %w", err)
	}
	defer rows.Close()

	var out []Event
	for rows.Next() {
		var (
			ev   Event
			at   int64
			kind int
		)
		if err := rows.Scan(&at, &ev.Device, &ev.ID, &kind, &ev.X, &ev.Y,
			&ev.FiducialID, &ev.Angle, &ev.HasAngle); err != nil {
			return nil, fmt.Errorf("scanning event: %w", err)
		}
		ev.At = time.Duration(at)
		ev.Kind = touch.Kind(kind)
		out = append(out, ev)
	}
	return out, rows.Err()
}

// Sessions lists the recorded sessions, oldest first.
func (s *Store) Sessions() ([]Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rows, err := s.db.Query(`SELECT s.id, s.name, s.created_at, COUNT(e.id)
		FROM sessions s LEFT JOIN events e ON e.session_id = s.id
		GROUP BY s.id ORDER BY s.created_at, s.id`)
	if err != nil {
		return nil, fmt.Errorf("querying sessions: %w", err)
	}
	defer rows.Close()

	var out []Session
	for rows.Next() {
		var (
			sess    Session
			created int64
		)
		if err := rows.Scan(&sess.ID, &sess.Name, &created, &sess.Events); err != nil {
			return nil, fmt.Errorf("scanning session: %w", err)
		}
		sess.CreatedAt = time.Unix(0, created)
		out = append(out, sess)
	}
	return out, rows.Err()
}

// DeleteSession removes a session and its events.
func (s *Store) DeleteSession(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	res, err := s.db.Exec(`DELETE FROM sessions WHERE name = ?`, name)
	if err != nil {
		return fmt.Errorf("deleting session %s: %w", name, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%q: %w", name, ErrNoSession)
	}
	return nil
}
