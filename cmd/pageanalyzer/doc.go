// Package main hosts the page analyzer entrypoint.
//
// Architecture overview:
//   - HTTP: internal/api.Server renders the submission form, the URL list, and per-URL check history. Submitted
//     addresses are reduced to scheme://host by internal/urlutil and validated before they reach storage.
//   - Checks: a check fetches the stored address once through the colly-based fetcher, extracts the first h1, the
//     title, and the meta description with goquery, and records them with the response status code.
//   - Persistence: internal/storage/postgres keeps urls and url_checks in Postgres behind a pgxpool sized by
//     MINCONN/MAXCONN (defaults 2 and 3). Every repository call runs in its own transaction; WithTx composes several.
//     Schema migrations are embedded and run on startup unless db.migrate_on_start is false.
//   - Configuration & plumbing: Viper populates config from env/files; zap provides structured logging; Prometheus
//     metrics are exported via the metrics middleware and /metrics handler.
//
// Quick checklist:
//   - Configure env vars: DATABASE_URL (or memory:// for a throwaway in-memory store), SECRET_KEY, PORT, MINCONN,
//     MAXCONN. Every key also accepts a PAGEANALYZER_ prefixed form, e.g. PAGEANALYZER_HTTP_TIMEOUT_SECONDS.
//   - Run locally: go run ./cmd/pageanalyzer serve --config config.yaml
//   - One-off check without a database: go run ./cmd/pageanalyzer check https://example.com
package main
