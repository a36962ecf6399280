package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/JakeFAU/page-analyzer/internal/analyzer"
)

// Queries runs repository statements against an explicit transaction or connection.
// Every error it returns is an *analyzer.StorageError.
type Queries struct {
	db    DBTX
	clock analyzer.Clock
}

// NewQueries binds the repository statements to db.
func NewQueries(db DBTX, clock analyzer.Clock) *Queries {
	return &Queries{db: db, clock: clock}
}

const (
	findURLIDByNameSQL = `SELECT id FROM urls WHERE name = $1 ORDER BY id LIMIT 1`

	insertURLSQL = `INSERT INTO urls (name, created_at) VALUES ($1, $2) RETURNING id`

	insertURLIfAbsentSQL = `INSERT INTO urls (name, created_at) VALUES ($1, $2)
ON CONFLICT (name) DO NOTHING
RETURNING id`

	findURLByIDSQL = `SELECT id, name, created_at FROM urls WHERE id = $1`

	insertCheckSQL = `INSERT INTO url_checks (url_id, status_code, h1, title, description, created_at)
VALUES ($1, $2, $3, $4, $5, $6)`

	listChecksSQL = `SELECT id, url_id,
	COALESCE(status_code, 0) AS status_code,
	COALESCE(h1, '') AS h1,
	COALESCE(title, '') AS title,
	COALESCE(description, '') AS description,
	created_at
FROM url_checks WHERE url_id = $1
ORDER BY id`

	// Ties on the date-granular created_at go to the highest check id.
	listURLsWithLastCheckSQL = `SELECT DISTINCT ON (urls.id)
	urls.id AS id,
	urls.name AS name,
	urls.created_at AS created_at,
	url_checks.created_at AS last_check_at,
	url_checks.status_code AS last_status_code
FROM urls LEFT JOIN url_checks ON url_checks.url_id = urls.id
ORDER BY urls.id DESC, url_checks.created_at DESC NULLS LAST, url_checks.id DESC NULLS LAST`
)

type urlSummaryRow struct {
	ID             int64      `db:"id"`
	Name           string     `db:"name"`
	CreatedAt      time.Time  `db:"created_at"`
	LastCheckAt    *time.Time `db:"last_check_at"`
	LastStatusCode *int       `db:"last_status_code"`
}

func (r urlSummaryRow) summary() analyzer.URLSummary {
	out := analyzer.URLSummary{
		URL: analyzer.URL{ID: r.ID, Name: r.Name, CreatedAt: r.CreatedAt},
	}
	if r.LastCheckAt != nil {
		out.LastCheck = &analyzer.CheckSummary{CreatedAt: *r.LastCheckAt}
		if r.LastStatusCode != nil {
			out.LastCheck.StatusCode = *r.LastStatusCode
		}
	}
	return out
}

// FindURLIDByName returns the first URL id registered under name.
func (q *Queries) FindURLIDByName(ctx context.Context, name string) (int64, bool, error) {
	var id int64
	err := q.db.QueryRow(ctx, findURLIDByNameSQL, name).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, &analyzer.StorageError{Op: "find url id by name", Err: err}
	}
	return id, true, nil
}

// InsertURL inserts name dated today and returns the generated id.
func (q *Queries) InsertURL(ctx context.Context, name string) (int64, error) {
	var id int64
	if err := q.db.QueryRow(ctx, insertURLSQL, name, q.today()).Scan(&id); err != nil {
		return 0, &analyzer.StorageError{Op: "insert url", Err: err}
	}
	return id, nil
}

// RegisterURL looks name up and inserts it when absent. An insert that loses a race against a
// concurrent registration re-reads the winner's id.
func (q *Queries) RegisterURL(ctx context.Context, name string) (int64, bool, error) {
	id, found, err := q.FindURLIDByName(ctx, name)
	if err != nil || found {
		return id, found, err
	}
	err = q.db.QueryRow(ctx, insertURLIfAbsentSQL, name, q.today()).Scan(&id)
	switch {
	case err == nil:
		return id, false, nil
	case !errors.Is(err, pgx.ErrNoRows):
		return 0, false, &analyzer.StorageError{Op: "register url", Err: err}
	}
	id, found, err = q.FindURLIDByName(ctx, name)
	if err != nil {
		return 0, false, err
	}
	if !found {
		return 0, false, &analyzer.StorageError{
			Op:  "register url",
			Err: errors.New("conflicting url row is not visible"),
		}
	}
	return id, true, nil
}

// FindURLByID fetches a single URL by primary key.
func (q *Queries) FindURLByID(ctx context.Context, id int64) (analyzer.URL, bool, error) {
	rows, err := q.db.Query(ctx, findURLByIDSQL, id)
	if err != nil {
		return analyzer.URL{}, false, &analyzer.StorageError{Op: "find url by id", Err: err}
	}
	u, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[analyzer.URL])
	if errors.Is(err, pgx.ErrNoRows) {
		return analyzer.URL{}, false, nil
	}
	if err != nil {
		return analyzer.URL{}, false, &analyzer.StorageError{Op: "find url by id", Err: err}
	}
	return u, true, nil
}

// InsertCheck records check against check.URLID dated today. ID and CreatedAt are ignored.
func (q *Queries) InsertCheck(ctx context.Context, check analyzer.Check) error {
	_, err := q.db.Exec(ctx, insertCheckSQL,
		check.URLID,
		check.StatusCode,
		check.H1,
		check.Title,
		check.Description,
		q.today(),
	)
	if err != nil {
		return &analyzer.StorageError{Op: "insert check", Err: err}
	}
	return nil
}

// ListChecksForURL returns every check of urlID in insertion order.
func (q *Queries) ListChecksForURL(ctx context.Context, urlID int64) ([]analyzer.Check, error) {
	rows, err := q.db.Query(ctx, listChecksSQL, urlID)
	if err != nil {
		return nil, &analyzer.StorageError{Op: "list checks", Err: err}
	}
	checks, err := pgx.CollectRows(rows, pgx.RowToStructByName[analyzer.Check])
	if err != nil {
		return nil, &analyzer.StorageError{Op: "list checks", Err: err}
	}
	return checks, nil
}

// ListURLsWithLastCheck returns every URL with its most recent check, newest URL first.
func (q *Queries) ListURLsWithLastCheck(ctx context.Context) ([]analyzer.URLSummary, error) {
	rows, err := q.db.Query(ctx, listURLsWithLastCheckSQL)
	if err != nil {
		return nil, &analyzer.StorageError{Op: "list urls", Err: err}
	}
	summaryRows, err := pgx.CollectRows(rows, pgx.RowToStructByName[urlSummaryRow])
	if err != nil {
		return nil, &analyzer.StorageError{Op: "list urls", Err: err}
	}
	out := make([]analyzer.URLSummary, 0, len(summaryRows))
	for _, r := range summaryRows {
		out = append(out, r.summary())
	}
	return out, nil
}

func (q *Queries) today() time.Time {
	return analyzer.DateOf(q.clock.Now())
}
