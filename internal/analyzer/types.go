package analyzer

import "time"

// URL is a registered, normalized web address.
type URL struct {
	ID        int64     `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Check is one recorded analysis of a URL's page.
// Text fields are empty, never absent, once read back from storage.
type Check struct {
	ID          int64     `json:"id" db:"id"`
	URLID       int64     `json:"url_id" db:"url_id"`
	StatusCode  int       `json:"status_code" db:"status_code"`
	H1          string    `json:"h1" db:"h1"`
	Title       string    `json:"title" db:"title"`
	Description string    `json:"description" db:"description"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// CheckSummary is the most recent check reported alongside a URL in listings.
type CheckSummary struct {
	CreatedAt  time.Time `json:"created_at"`
	StatusCode int       `json:"status_code"`
}

// URLSummary is one row of the URL listing. LastCheck is nil when the URL was never checked.
type URLSummary struct {
	URL       URL           `json:"url"`
	LastCheck *CheckSummary `json:"last_check,omitempty"`
}

// Page is the raw result of a successful fetch.
type Page struct {
	URL        string
	StatusCode int
	Body       []byte
}

// ExtractionResult carries the signals derived from a fetched page.
type ExtractionResult struct {
	StatusCode  int    `json:"status_code"`
	H1          string `json:"h1"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

// CheckFor binds an extraction result to a URL, ready for insertion.
func (r ExtractionResult) CheckFor(urlID int64) Check {
	return Check{
		URLID:       urlID,
		StatusCode:  r.StatusCode,
		H1:          r.H1,
		Title:       r.Title,
		Description: r.Description,
	}
}

// DateOf truncates t to its UTC calendar date.
func DateOf(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
