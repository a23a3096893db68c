// Package history provides SQLite-based persistence for the deployment
// journal. Every plan computed and every update applied is recorded, so the
// revset behind any past deployment can be replayed and audited.
package history

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/okarlsson/sledge/internal/models"
)

// Store represents the SQLite journal store.
type Store struct {
	db *sql.DB
}

// Entry is one recorded deployment event.
type Entry struct {
	ID        string                `json:"id"`
	Timestamp time.Time             `json:"timestamp"`
	VCS       string                `json:"vcs"`
	CodeDir   string                `json:"code_dir"`
	Revision  string                `json:"revision"`
	Applied   bool                  `json:"applied"`
	Plan      models.DeploymentPlan `json:"plan"`
}

// New opens the journal, creating its directory as needed.
func New(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create journal directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	s := &Store{db: db}
	return s, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// Initialize creates the database schema
func (s *Store) Initialize() error {
	schema := `
	-- Deployment journal (append-only)
	CREATE TABLE IF NOT EXISTS deployments (
		id TEXT PRIMARY KEY,
		timestamp DATETIME DEFAULT CURRENT_TIMESTAMP,
		vcs TEXT NOT NULL,
		code_dir TEXT NOT NULL,
		revision TEXT,
		revset TEXT,
		direction TEXT NOT NULL,
		applied BOOLEAN DEFAULT FALSE,
		entries JSON
	);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}
	return nil
}

// Record appends one deployment event and returns its run id.
func (s *Store) Record(vcsType, codeDir, revision string, plan *models.DeploymentPlan, applied bool) (string, error) {
	entries, err := json.Marshal(plan.Entries)
	if err != nil {
		return "", fmt.Errorf("failed to encode plan entries: %w", err)
	}

	id := uuid.NewString()
	_, err = s.db.Exec(
		`INSERT INTO deployments (id, timestamp, vcs, code_dir, revision, revset, direction, applied, entries)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, time.Now().UTC(), vcsType, codeDir, revision, plan.Revset, string(plan.Direction), applied, string(entries),
	)
	if err != nil {
		return "", fmt.Errorf("failed to record deployment: %w", err)
	}
	return id, nil
}

// List returns the most recent events, newest first. limit <= 0 returns all.
func (s *Store) List(limit int) ([]*Entry, error) {
	query := `SELECT id, timestamp, vcs, code_dir, revision, revset, direction, applied, entries
		  FROM deployments ORDER BY timestamp DESC, rowid DESC`
	args := []interface{}{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query deployments: %w", err)
	}
	defer rows.Close()

	var out []*Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// Last returns the most recent event, or nil when the journal is empty.
func (s *Store) Last() (*Entry, error) {
	entries, err := s.List(1)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, nil
	}
	return entries[0], nil
}

func scanEntry(rows *sql.Rows) (*Entry, error) {
	var e Entry
	var revision, revset, entriesJSON sql.NullString
	var direction string

	if err := rows.Scan(&e.ID, &e.Timestamp, &e.VCS, &e.CodeDir, &revision, &revset, &direction, &e.Applied, &entriesJSON); err != nil {
		return nil, fmt.Errorf("failed to scan deployment: %w", err)
	}

	e.Revision = revision.String
	e.Plan.Revset = revset.String
	e.Plan.Direction = models.Direction(direction)
	if e.Plan.Direction == models.DirectionNone {
		e.Plan.Message = models.NoOpMessage
	}
	if entriesJSON.Valid && entriesJSON.String != "" {
		if err := json.Unmarshal([]byte(entriesJSON.String), &e.Plan.Entries); err != nil {
			return nil, fmt.Errorf("failed to decode plan entries: %w", err)
		}
	}
	return &e, nil
}
