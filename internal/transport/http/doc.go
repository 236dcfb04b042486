// Package http exposes the analysis engine over a small JSON API:
// group discovery, on-demand analysis runs, health, and Prometheus
// metrics. Handlers return RFC 7807 problem documents on failure.
package http
