package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ziadkadry99/sitekit/internal/db"
)

// ErrNotFound is returned by Get for an unknown id.
var ErrNotFound = errors.New("run not found")

// tsLayout is fixed-width so timestamps sort lexically in SQL.
const tsLayout = "2006-01-02T15:04:05.000000000Z"

// Store provides access to recorded runs.
type Store struct {
	db  *db.DB
	now func() time.Time
}

// NewStore creates a Store backed by the given database.
func NewStore(database *db.DB) *Store {
	return &Store{db: database, now: time.Now}
}

// Record inserts a run. If run.ID is empty a UUID is generated; zero
// timestamps default to now. The stored run is returned.
func (s *Store) Record(ctx context.Context, run Run) (Run, error) {
	if run.ID == "" {
		run.ID = uuid.New().String()
	}
	now := s.now().UTC()
	if run.FinishedAt.IsZero() {
		run.FinishedAt = now
	}
	if run.StartedAt.IsZero() {
		run.StartedAt = run.FinishedAt
	}
	if run.Status == "" {
		run.Status = StatusSucceeded
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO runs (id, kind, stack, status, detail, started_at, finished_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		run.ID,
		string(run.Kind),
		run.Stack,
		string(run.Status),
		run.Detail,
		run.StartedAt.UTC().Format(tsLayout),
		run.FinishedAt.UTC().Format(tsLayout),
	)
	if err != nil {
		return Run{}, fmt.Errorf("inserting run: %w", err)
	}
	return run, nil
}

// Get retrieves a single run.
func (s *Store) Get(ctx context.Context, id string) (*Run, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, kind, stack, status, detail, started_at, finished_at
		FROM runs WHERE id = ?`, id)
	run, err := scanInto(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return run, err
}

// Filter narrows List.
type Filter struct {
	Stack string
	Kind  Kind
	Limit int
}

// List returns runs newest first.
func (s *Store) List(ctx context.Context, f Filter) ([]Run, error) {
	query := "SELECT id, kind, stack, status, detail, started_at, finished_at FROM runs WHERE 1=1"
	var args []any
	if f.Stack != "" {
		query += " AND stack = ?"
		args = append(args, f.Stack)
	}
	if f.Kind != "" {
		query += " AND kind = ?"
		args = append(args, string(f.Kind))
	}
	query += " ORDER BY started_at DESC, finished_at DESC"
	if f.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", f.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanInto(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *run)
	}
	return runs, rows.Err()
}

// scanner is implemented by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanInto(sc scanner) (*Run, error) {
	var (
		r            Run
		kind, status string
	)
	err := sc.Scan(&r.ID, &kind, &r.Stack, &status, &r.Detail,
		timestamp{&r.StartedAt}, timestamp{&r.FinishedAt})
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("scanning run: %w", err)
	}
	r.Kind = Kind(kind)
	r.Status = Status(status)
	return &r, nil
}

// timestamp scans a DATETIME column. The driver hands back time.Time for
// values it recognizes and the raw text otherwise.
type timestamp struct{ t *time.Time }

func (ts timestamp) Scan(src any) error {
	switch v := src.(type) {
	case time.Time:
		*ts.t = v.UTC()
		return nil
	case string:
		return ts.parse(v)
	case []byte:
		return ts.parse(string(v))
	default:
		return fmt.Errorf("unsupported timestamp value %T", src)
	}
}

func (ts timestamp) parse(s string) error {
	t, err := time.Parse(tsLayout, s)
	if err != nil {
		t, err = time.Parse(time.RFC3339Nano, s)
	}
	if err != nil {
		return fmt.Errorf("parsing timestamp %q: %w", s, err)
	}
	*ts.t = t.UTC()
	return nil
}
