package history

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"

	"github.com/sp-meter/circles/internal/db"
)

// timestampLayout keeps millisecond precision so entries written within the
// same second still sort in insertion order.
const timestampLayout = "2006-01-02 15:04:05.000"

const selectColumns = `id, timestamp, session_id, page, kind, from_name, from_id,
	to_name, to_id, value, outcome, result, error`

// Store persists conversion history entries.
type Store struct {
	db  *db.DB
	now func() time.Time
}

// NewStore creates a Store backed by the given database.
func NewStore(database *db.DB) *Store {
	return &Store{db: database, now: time.Now}
}

// Record inserts a new entry. If entry.ID is empty a UUID is generated and
// a zero Timestamp is replaced by the current time. The stored id is returned.
func (s *Store) Record(ctx context.Context, entry Entry) (string, error) {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = s.now()
	}
	if !entry.Outcome.Valid() {
		return "", errors.Newf("unknown outcome %q", entry.Outcome)
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO conversion_history (
			id, timestamp, session_id, page, kind, from_name, from_id,
			to_name, to_id, value, outcome, result, error
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.ID,
		entry.Timestamp.UTC().Format(timestampLayout),
		entry.SessionID,
		entry.Page,
		string(entry.Kind),
		entry.FromName,
		entry.FromID,
		entry.ToName,
		entry.ToID,
		entry.Value,
		string(entry.Outcome),
		entry.Result,
		entry.Error,
	)
	if err != nil {
		return "", errors.Wrap(err, "inserting history entry")
	}
	return entry.ID, nil
}

// GetByID retrieves a single entry, or ErrNotFound.
func (s *Store) GetByID(ctx context.Context, id string) (*Entry, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+selectColumns+" FROM conversion_history WHERE id = ?", id)

	e, err := scanInto(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errors.Wrapf(ErrNotFound, "id %s", id)
	}
	if err != nil {
		return nil, errors.Wrap(err, "reading history entry")
	}
	return e, nil
}

// Filter controls which entries Query returns.
type Filter struct {
	Page      string
	SessionID string
	Kind      Kind
	Outcome   Outcome
	Since     *time.Time
	Limit     int
	Offset    int
}

// Query returns entries matching the filter, newest first.
func (s *Store) Query(ctx context.Context, filter Filter) ([]Entry, error) {
	var (
		clauses []string
		args    []any
	)

	if filter.Page != "" {
		clauses = append(clauses, "page = ?")
		args = append(args, filter.Page)
	}
	if filter.SessionID != "" {
		clauses = append(clauses, "session_id = ?")
		args = append(args, filter.SessionID)
	}
	if filter.Kind != "" {
		clauses = append(clauses, "kind = ?")
		args = append(args, string(filter.Kind))
	}
	if filter.Outcome != "" {
		clauses = append(clauses, "outcome = ?")
		args = append(args, string(filter.Outcome))
	}
	if filter.Since != nil {
		clauses = append(clauses, "timestamp >= ?")
		args = append(args, filter.Since.UTC().Format(timestampLayout))
	}

	query := "SELECT " + selectColumns + " FROM conversion_history"
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY timestamp DESC, rowid DESC"

	// SQLite only accepts OFFSET after a LIMIT.
	switch {
	case filter.Limit > 0:
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
	case filter.Offset > 0:
		query += " LIMIT -1"
	}
	if filter.Offset > 0 {
		query += fmt.Sprintf(" OFFSET %d", filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "querying history entries")
	}
	defer rows.Close()

	entries := []Entry{}
	for rows.Next() {
		e, err := scanInto(rows)
		if err != nil {
			return nil, errors.Wrap(err, "scanning history entry")
		}
		entries = append(entries, *e)
	}
	return entries, rows.Err()
}

// DeleteBefore removes all entries older than the given time and returns
// the number of deleted rows.
func (s *Store) DeleteBefore(ctx context.Context, before time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM conversion_history WHERE timestamp < ?",
		before.UTC().Format(timestampLayout),
	)
	if err != nil {
		return 0, errors.Wrap(err, "deleting old history entries")
	}
	return res.RowsAffected()
}

// scanner is implemented by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanInto(sc scanner) (*Entry, error) {
	var (
		e             Entry
		ts            string
		kind, outcome string
	)

	err := sc.Scan(
		&e.ID, &ts, &e.SessionID, &e.Page, &kind, &e.FromName, &e.FromID,
		&e.ToName, &e.ToID, &e.Value, &outcome, &e.Result, &e.Error,
	)
	if err != nil {
		return nil, err
	}

	e.Kind = Kind(kind)
	e.Outcome = Outcome(outcome)
	e.Timestamp = parseTimestamp(ts)
	return &e, nil
}

func parseTimestamp(ts string) time.Time {
	for _, layout := range []string{timestampLayout, time.DateTime, time.RFC3339Nano} {
		if t, err := time.Parse(layout, ts); err == nil {
			return t
		}
	}
	return time.Time{}
}
