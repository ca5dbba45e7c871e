package cache

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/matheuskafuri/techpulse/internal/corpus"
	_ "modernc.org/sqlite"
)

// Cache is the local article store. Records keep their nullable title and,
// when the timestamp could not be parsed, its raw text so that the
// pipeline can report it.
type Cache struct {
	readDB  *sql.DB
	writeDB *sql.DB
}

func Open(dbPath string) (*Cache, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("creating cache dir: %w", err)
	}

	writeDB, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening write db: %w", err)
	}
	writeDB.SetMaxOpenConns(1)

	c := &Cache{writeDB: writeDB}
	if err := c.init(); err != nil {
		c.Close()
		return nil, err
	}

	readDB, err := sql.Open("sqlite", "file:"+dbPath+"?mode=ro")
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("opening read db: %w", err)
	}
	c.readDB = readDB
	return c, nil
}

func (c *Cache) init() error {
	_, err := c.writeDB.Exec(`
		CREATE TABLE IF NOT EXISTS records (
			id          INTEGER PRIMARY KEY,
			title       TEXT,
			time        INTEGER,
			time_raw    TEXT NOT NULL DEFAULT '',
			author      TEXT NOT NULL DEFAULT '',
			url         TEXT NOT NULL DEFAULT '',
			type        TEXT NOT NULL DEFAULT '',
			score       INTEGER NOT NULL DEFAULT 0,
			descendants INTEGER NOT NULL DEFAULT 0,
			fetched_at  DATETIME NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_records_time ON records(time);

		CREATE TABLE IF NOT EXISTS meta (
			key   TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);
	`)
	if err != nil {
		return fmt.Errorf("initializing schema: %w", err)
	}
	return nil
}

func (c *Cache) Close() error {
	var errs []error
	if c.readDB != nil {
		errs = append(errs, c.readDB.Close())
	}
	if c.writeDB != nil {
		errs = append(errs, c.writeDB.Close())
	}
	for _, e := range errs {
		if e != nil {
			return e
		}
	}
	return nil
}

// UpsertRecords stores records, refreshing title and engagement of ids
// already present.
func (c *Cache) UpsertRecords(records []corpus.Record) error {
	tx, err := c.writeDB.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO records (id, title, time, time_raw, author, url, type, score, descendants, fetched_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			score = excluded.score,
			descendants = excluded.descendants,
			fetched_at = excluded.fetched_at
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	now := time.Now()
	for _, r := range records {
		var (
			unix sql.NullInt64
			raw  string
		)
		if ts, err := r.Time.Parse(); err == nil {
			unix = sql.NullInt64{Int64: ts.Unix(), Valid: true}
		} else {
			raw = r.Time.String()
		}
		var title sql.NullString
		if r.Title != nil {
			title = sql.NullString{String: *r.Title, Valid: true}
		}
		_, err := stmt.Exec(r.ID, title, unix, raw, r.By, r.URL, r.Type, r.Score, r.Descendants, now)
		if err != nil {
			return fmt.Errorf("upserting record %d: %w", r.ID, err)
		}
	}

	return tx.Commit()
}

// Records returns stored records ordered by time, then id. Records without a
// parsable time sort first and are only returned when no time filter is set.
func (c *Cache) Records(opts QueryOpts) ([]corpus.Record, error) {
	var (
		where []string
		args  []interface{}
	)

	if !opts.Since.IsZero() {
		where = append(where, "time >= ?")
		args = append(args, opts.Since.Unix())
	}
	if !opts.Until.IsZero() {
		where = append(where, "time < ?")
		args = append(args, opts.Until.Unix())
	}
	if opts.Type != "" {
		where = append(where, "type = ?")
		args = append(args, opts.Type)
	}

	query := "SELECT id, title, time, time_raw, author, url, type, score, descendants FROM records"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY time ASC, id ASC"
	if opts.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", opts.Limit)
	}

	rows, err := c.readDB.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying records: %w", err)
	}
	defer rows.Close()

	var records []corpus.Record
	for rows.Next() {
		var (
			r     corpus.Record
			title sql.NullString
			unix  sql.NullInt64
			raw   string
		)
		if err := rows.Scan(&r.ID, &title, &unix, &raw, &r.By, &r.URL, &r.Type, &r.Score, &r.Descendants); err != nil {
			return nil, fmt.Errorf("scanning record: %w", err)
		}
		if title.Valid {
			s := title.String
			r.Title = &s
		}
		if unix.Valid {
			r.Time = corpus.Unix(unix.Int64)
		} else {
			r.Time = corpus.RawTimestamp(raw)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// Prune deletes records older than the given age and returns how many went.
func (c *Cache) Prune(olderThan time.Duration) (int64, error) {
	cutoff := time.Now().Add(-olderThan).Unix()
	res, err := c.writeDB.Exec("DELETE FROM records WHERE time < ?", cutoff)
	if err != nil {
		return 0, fmt.Errorf("pruning records: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	if n > 0 {
		if _, err := c.writeDB.Exec("VACUUM"); err != nil {
			return n, fmt.Errorf("vacuum: %w", err)
		}
	}
	return n, nil
}

func (c *Cache) Count() (int, error) {
	var count int
	if err := c.readDB.QueryRow("SELECT COUNT(*) FROM records").Scan(&count); err != nil {
		return 0, fmt.Errorf("counting records: %w", err)
	}
	return count, nil
}

// Span returns the posting times of the oldest and newest stored story with
// a parsed timestamp. ok is false when there is none.
func (c *Cache) Span() (oldest, newest time.Time, ok bool, err error) {
	var lo, hi sql.NullInt64
	err = c.readDB.QueryRow("SELECT MIN(time), MAX(time) FROM records WHERE time IS NOT NULL").Scan(&lo, &hi)
	if err != nil {
		return time.Time{}, time.Time{}, false, fmt.Errorf("reading span: %w", err)
	}
	if !lo.Valid || !hi.Valid {
		return time.Time{}, time.Time{}, false, nil
	}
	return time.Unix(lo.Int64, 0).UTC(), time.Unix(hi.Int64, 0).UTC(), true, nil
}

// Stats returns the record count and the size of the database file.
func (c *Cache) Stats(dbPath string) (int, int64, error) {
	count, err := c.Count()
	if err != nil {
		return 0, 0, err
	}
	info, err := os.Stat(dbPath)
	if err != nil {
		return count, 0, fmt.Errorf("stat %s: %w", dbPath, err)
	}
	return count, info.Size(), nil
}

func (c *Cache) NeedsRefresh(interval time.Duration) bool {
	t, ok := c.LastRefresh()
	if !ok {
		return true
	}
	return time.Since(t) > interval
}

// LastRefresh returns when the store was last fetched into.
func (c *Cache) LastRefresh() (time.Time, bool) {
	value, err := c.getMeta("last_refresh")
	if err != nil {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

func (c *Cache) SetLastRefresh() error {
	return c.setMeta("last_refresh", time.Now().Format(time.RFC3339))
}

func (c *Cache) getMeta(key string) (string, error) {
	var value string
	err := c.readDB.QueryRow("SELECT value FROM meta WHERE key = ?", key).Scan(&value)
	return value, err
}

func (c *Cache) setMeta(key, value string) error {
	_, err := c.writeDB.Exec(`
		INSERT INTO meta (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	return err
}
