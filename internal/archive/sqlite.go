package archive

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"jobsift/internal/identity"
	"jobsift/internal/model"
)

// Archive keeps the full posting rows of every run in a SQLite database, so
// the review TUI and stats commands can browse past runs without re-reading
// report files. The history JSON file stays the dedup source of truth; the
// archive is display data only.
type Archive struct {
	db *sql.DB
}

// Row is one archived posting observation.
type Row struct {
	Posting     model.Posting
	Fingerprint string
	IsNew       bool
}

// New opens (or creates) a SQLite database at dbPath and ensures the
// postings table exists.
func New(dbPath string) (*Archive, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening archive db: %w", err)
	}

	// Verify the connection is alive.
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging archive db: %w", err)
	}

	createTable := `CREATE TABLE IF NOT EXISTS postings (
		fingerprint TEXT NOT NULL,
		run_date    TEXT NOT NULL,
		is_new      INTEGER NOT NULL,
		title       TEXT NOT NULL,
		company     TEXT NOT NULL,
		location    TEXT,
		url         TEXT,
		description TEXT,
		site        TEXT,
		posted_at   TEXT,
		label       TEXT,
		PRIMARY KEY (fingerprint, run_date)
	)`
	if _, err := db.Exec(createTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating postings table: %w", err)
	}

	return &Archive{db: db}, nil
}

// RecordRun stores all postings of one run in a single transaction.
// Re-recording the same run date is idempotent per posting.
func (a *Archive) RecordRun(runDate time.Time, newPostings, seenPostings []model.Posting) error {
	tx, err := a.db.Begin()
	if err != nil {
		return fmt.Errorf("recording run: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`INSERT OR REPLACE INTO postings
		(fingerprint, run_date, is_new, title, company, location, url, description, site, posted_at, label)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("recording run: %w", err)
	}
	defer stmt.Close()

	insert := func(p model.Posting, isNew bool) error {
		fp := identity.Fingerprint(identity.Normalize(p))
		postedAt := ""
		if p.PostedAt != nil {
			postedAt = p.PostedAt.Format(time.RFC3339)
		}
		_, err := stmt.Exec(fp, formatRunDate(runDate), isNew,
			p.Title, p.Company, p.Location, p.URL, p.Description, p.Site, postedAt, string(p.Label))
		return err
	}

	for _, p := range newPostings {
		if err := insert(p, true); err != nil {
			return fmt.Errorf("recording new posting %q: %w", p.Title, err)
		}
	}
	for _, p := range seenPostings {
		if err := insert(p, false); err != nil {
			return fmt.Errorf("recording seen posting %q: %w", p.Title, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("recording run: %w", err)
	}
	return nil
}

// LatestRunDate returns the most recent recorded run date. The bool is false
// when the archive is empty.
func (a *Archive) LatestRunDate() (time.Time, bool, error) {
	var raw sql.NullString
	err := a.db.QueryRow("SELECT MAX(run_date) FROM postings").Scan(&raw)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("querying latest run: %w", err)
	}
	if !raw.Valid || raw.String == "" {
		return time.Time{}, false, nil
	}
	t, err := time.Parse(time.RFC3339Nano, raw.String)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("parsing latest run date %q: %w", raw.String, err)
	}
	return t, true, nil
}

// RunPostings returns all rows of one run, new postings first, preserving
// insert order within each group.
func (a *Archive) RunPostings(runDate time.Time) ([]Row, error) {
	rows, err := a.db.Query(`SELECT fingerprint, is_new, title, company, location, url, description, site, posted_at, label
		FROM postings WHERE run_date = ? ORDER BY is_new DESC, rowid`, formatRunDate(runDate))
	if err != nil {
		return nil, fmt.Errorf("querying run postings: %w", err)
	}
	defer rows.Close()

	var out []Row
	for rows.Next() {
		var r Row
		var postedAt, label string
		err := rows.Scan(&r.Fingerprint, &r.IsNew,
			&r.Posting.Title, &r.Posting.Company, &r.Posting.Location, &r.Posting.URL,
			&r.Posting.Description, &r.Posting.Site, &postedAt, &label)
		if err != nil {
			return nil, fmt.Errorf("scanning run posting: %w", err)
		}
		if postedAt != "" {
			if t, err := time.Parse(time.RFC3339, postedAt); err == nil {
				r.Posting.PostedAt = &t
			}
		}
		r.Posting.Label = model.Label(label)
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading run postings: %w", err)
	}
	return out, nil
}

// Close closes the underlying database connection.
func (a *Archive) Close() error {
	return a.db.Close()
}

// Run dates round-trip as RFC3339Nano strings so MAX() and equality behave
// lexicographically.
func formatRunDate(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}
