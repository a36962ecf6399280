// Package api hosts the HTTP server, middleware, and HTML handlers. Notable routes:
//   - GET / and POST /urls to submit an address.
//   - GET /urls and GET /urls/{id} to browse registered addresses and their checks.
//   - POST /urls/{id}/checks to fetch and analyze a page.
//   - GET /healthz / readyz for Kubernetes probes.
//   - GET /metrics for Prometheus scraping.
package api
