package analyzer

import (
	"context"
	"time"
)

// Repository persists URLs and their checks.
type Repository interface {
	FindURLIDByName(ctx context.Context, name string) (int64, bool, error)
	InsertURL(ctx context.Context, name string) (int64, error)
	RegisterURL(ctx context.Context, name string) (id int64, existed bool, err error)
	FindURLByID(ctx context.Context, id int64) (URL, bool, error)
	InsertCheck(ctx context.Context, check Check) error
	ListChecksForURL(ctx context.Context, urlID int64) ([]Check, error)
	ListURLsWithLastCheck(ctx context.Context) ([]URLSummary, error)
	Ping(ctx context.Context) error
}

// Fetcher performs a single GET for a page.
// Implementations return *FetchError for transport failures and status codes >= 400.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (Page, error)
}

// Clock returns the current time (useful for testing).
type Clock interface {
	Now() time.Time
}
