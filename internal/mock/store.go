package mock

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/sadopc/apitrack/internal/tracker"
)

// ErrNotFound is returned when an endpoint id does not exist.
var ErrNotFound = errors.New("not found")

// Store persists tracked endpoints and their call logs in sqlite.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// NewStore opens (or creates) the database at dbPath. ":memory:" works for tests.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening tracker db: %w", err)
	}
	// One connection keeps ":memory:" databases shared across queries.
	db.SetMaxOpenConns(1)

	if err := createTables(db); err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db, now: time.Now}, nil
}

func createTables(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS endpoints (
			id            TEXT PRIMARY KEY,
			endpoint      TEXT NOT NULL,
			method        TEXT NOT NULL,
			headers       TEXT NOT NULL DEFAULT '{}',
			params        TEXT NOT NULL DEFAULT '{}',
			body          TEXT NOT NULL DEFAULT '',
			status        INTEGER NOT NULL DEFAULT 0,
			code          INTEGER,
			response_time REAL,
			updated_at    TEXT NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_endpoints_updated ON endpoints(updated_at DESC);
		CREATE TABLE IF NOT EXISTS call_logs (
			id            TEXT PRIMARY KEY,
			api_id        TEXT NOT NULL,
			timestamp     TEXT NOT NULL,
			status_code   INTEGER,
			response_time REAL NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_call_logs_api ON call_logs(api_id, timestamp DESC);
	`)
	if err != nil {
		return fmt.Errorf("creating tracker tables: %w", err)
	}
	return nil
}

// Filter selects endpoints for List. Empty fields match everything.
type Filter struct {
	SearchTerm string
	Method     string
	Status     string // "true" or "false"
	Code       string
	Page       int
	PageSize   int
}

// Create inserts a new endpoint that has never been invoked.
func (s *Store) Create(ctx context.Context, p tracker.Payload) (tracker.Endpoint, error) {
	e := tracker.Endpoint{
		ID:        uuid.NewString(),
		Endpoint:  p.Endpoint,
		Method:    p.Method,
		Headers:   nonNil(p.Headers),
		Params:    nonNil(p.Params),
		Body:      p.Body,
		UpdatedAt: s.now().UTC(),
	}
	headers, params, err := encodeMaps(e.Headers, e.Params)
	if err != nil {
		return tracker.Endpoint{}, err
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO endpoints (id, endpoint, method, headers, params, body, status, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, 0, ?)`,
		e.ID, e.Endpoint, string(e.Method), headers, params, e.Body, formatTime(e.UpdatedAt))
	if err != nil {
		return tracker.Endpoint{}, fmt.Errorf("inserting endpoint: %w", err)
	}
	return e, nil
}

// Get returns one endpoint or ErrNotFound.
func (s *Store) Get(ctx context.Context, id string) (tracker.Endpoint, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, endpoint, method, headers, params, body, status, code, response_time, updated_at
		FROM endpoints WHERE id = ?`, id)
	e, err := scanEndpoint(row)
	if errors.Is(err, sql.ErrNoRows) {
		return tracker.Endpoint{}, ErrNotFound
	}
	return e, err
}

// Patch holds the fields of a partial update. Nil fields are left alone.
type Patch struct {
	Endpoint *string
	Method   *tracker.Method
	Headers  map[string]string
	Params   map[string]string
	Body     *string
}

// Update applies patch to the endpoint and bumps updated_at.
func (s *Store) Update(ctx context.Context, id string, patch Patch) (tracker.Endpoint, error) {
	e, err := s.Get(ctx, id)
	if err != nil {
		return tracker.Endpoint{}, err
	}
	if patch.Endpoint != nil {
		e.Endpoint = *patch.Endpoint
	}
	if patch.Method != nil {
		e.Method = *patch.Method
	}
	if patch.Headers != nil {
		e.Headers = patch.Headers
	}
	if patch.Params != nil {
		e.Params = patch.Params
	}
	if patch.Body != nil {
		e.Body = *patch.Body
	}
	e.UpdatedAt = s.now().UTC()

	headers, params, err := encodeMaps(e.Headers, e.Params)
	if err != nil {
		return tracker.Endpoint{}, err
	}
	_, err = s.db.ExecContext(ctx, `
		UPDATE endpoints SET endpoint = ?, method = ?, headers = ?, params = ?, body = ?, updated_at = ?
		WHERE id = ?`,
		e.Endpoint, string(e.Method), headers, params, e.Body, formatTime(e.UpdatedAt), id)
	if err != nil {
		return tracker.Endpoint{}, fmt.Errorf("updating endpoint: %w", err)
	}
	return e, nil
}

// Delete removes the endpoint and its call logs.
func (s *Store) Delete(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `DELETE FROM endpoints WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting endpoint: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM call_logs WHERE api_id = ?`, id); err != nil {
		return fmt.Errorf("deleting call logs: %w", err)
	}
	return tx.Commit()
}

// List returns one page of endpoints, most recently updated first, and the
// number of endpoints matching f.
func (s *Store) List(ctx context.Context, f Filter) ([]tracker.Endpoint, int, error) {
	var (
		where []string
		args  []any
	)
	if t := strings.TrimSpace(f.SearchTerm); t != "" {
		where = append(where, "endpoint LIKE ?")
		args = append(args, "%"+t+"%")
	}
	if f.Method != "" {
		where = append(where, "method = ?")
		args = append(args, strings.ToUpper(f.Method))
	}
	switch f.Status {
	case "true":
		where = append(where, "status = 1")
	case "false":
		where = append(where, "status = 0")
	}
	if f.Code != "" {
		code, err := strconv.Atoi(f.Code)
		if err != nil {
			return nil, 0, fmt.Errorf("code must be an integer")
		}
		where = append(where, "code = ?")
		args = append(args, code)
	}
	clause := ""
	if len(where) > 0 {
		clause = " WHERE " + strings.Join(where, " AND ")
	}

	var total int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM endpoints"+clause, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("counting endpoints: %w", err)
	}

	size := f.PageSize
	if size <= 0 {
		size = 10
	}
	offset := (max(f.Page, 1) - 1) * size
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, endpoint, method, headers, params, body, status, code, response_time, updated_at
		FROM endpoints`+clause+`
		ORDER BY updated_at DESC, id
		LIMIT ? OFFSET ?`, append(args, size, offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("listing endpoints: %w", err)
	}
	defer rows.Close()

	items := []tracker.Endpoint{}
	for rows.Next() {
		e, err := scanEndpoint(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, e)
	}
	return items, total, rows.Err()
}

// RecordCall stores one invocation and updates the endpoint's health. code
// is nil when the target could not be reached.
func (s *Store) RecordCall(ctx context.Context, id string, code *int, seconds float64) (tracker.Endpoint, error) {
	e, err := s.Get(ctx, id)
	if err != nil {
		return tracker.Endpoint{}, err
	}
	at := s.now().UTC()
	e.Code = code
	e.ResponseTime = &seconds
	e.Status = code != nil && *code >= 200 && *code < 400
	e.UpdatedAt = at

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return tracker.Endpoint{}, err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		UPDATE endpoints SET status = ?, code = ?, response_time = ?, updated_at = ? WHERE id = ?`,
		e.Status, nullInt(code), seconds, formatTime(at), id)
	if err != nil {
		return tracker.Endpoint{}, fmt.Errorf("updating endpoint health: %w", err)
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO call_logs (id, api_id, timestamp, status_code, response_time) VALUES (?, ?, ?, ?, ?)`,
		uuid.NewString(), id, formatTime(at), nullInt(code), seconds)
	if err != nil {
		return tracker.Endpoint{}, fmt.Errorf("inserting call log: %w", err)
	}
	return e, tx.Commit()
}

// Logs returns one page of call logs for id, newest first, and the total.
func (s *Store) Logs(ctx context.Context, id string, page, pageSize int) ([]tracker.CallLog, int, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, 0, err
	}
	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM call_logs WHERE api_id = ?`, id).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("counting call logs: %w", err)
	}
	if pageSize <= 0 {
		pageSize = 10
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, api_id, timestamp, status_code, response_time
		FROM call_logs WHERE api_id = ?
		ORDER BY timestamp DESC, id
		LIMIT ? OFFSET ?`, id, pageSize, (max(page, 1)-1)*pageSize)
	if err != nil {
		return nil, 0, fmt.Errorf("listing call logs: %w", err)
	}
	defer rows.Close()

	logs := []tracker.CallLog{}
	for rows.Next() {
		var (
			l    tracker.CallLog
			ts   string
			code sql.NullInt64
		)
		if err := rows.Scan(&l.ID, &l.EndpointID, &ts, &code, &l.ResponseTime); err != nil {
			return nil, 0, fmt.Errorf("scanning call log row: %w", err)
		}
		l.Timestamp, _ = time.Parse(time.RFC3339Nano, ts)
		if code.Valid {
			l.StatusCode = tracker.IntPtr(int(code.Int64))
		}
		logs = append(logs, l)
	}
	return logs, total, rows.Err()
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEndpoint(row scanner) (tracker.Endpoint, error) {
	var (
		e               tracker.Endpoint
		method, ts      string
		headers, params string
		code            sql.NullInt64
		rt              sql.NullFloat64
	)
	if err := row.Scan(&e.ID, &e.Endpoint, &method, &headers, &params, &e.Body, &e.Status, &code, &rt, &ts); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return e, err
		}
		return e, fmt.Errorf("scanning endpoint row: %w", err)
	}
	e.Method = tracker.Method(method)
	if err := json.Unmarshal([]byte(headers), &e.Headers); err != nil {
		return e, fmt.Errorf("decoding headers: %w", err)
	}
	if err := json.Unmarshal([]byte(params), &e.Params); err != nil {
		return e, fmt.Errorf("decoding params: %w", err)
	}
	if code.Valid {
		e.Code = tracker.IntPtr(int(code.Int64))
	}
	if rt.Valid {
		e.ResponseTime = tracker.FloatPtr(rt.Float64)
	}
	e.UpdatedAt, _ = time.Parse(time.RFC3339Nano, ts)
	return e, nil
}

func encodeMaps(headers, params map[string]string) (string, string, error) {
	h, err := json.Marshal(nonNil(headers))
	if err != nil {
		return "", "", fmt.Errorf("encoding headers: %w", err)
	}
	p, err := json.Marshal(nonNil(params))
	if err != nil {
		return "", "", fmt.Errorf("encoding params: %w", err)
	}
	return string(h), string(p), nil
}

func nonNil(m map[string]string) map[string]string {
	if m == nil {
		return map[string]string{}
	}
	return m
}

func nullInt(v *int) any {
	if v == nil {
		return nil
	}
	return *v
}

// formatTime uses a fixed-width layout so lexical order matches time order.
func formatTime(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.000000000Z07:00")
}
