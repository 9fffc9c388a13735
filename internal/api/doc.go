// Package api hosts the HTTP server, middleware, and REST handlers for operator
// access. Notable routes:
//   - GET /healthz and /readyz for Kubernetes probes.
//   - GET /metrics for Prometheus scraping.
//   - POST /v1/scrape to run a full discovery-and-extract batch.
//   - POST /v1/scrape/page to extract a single detail page.
package api
