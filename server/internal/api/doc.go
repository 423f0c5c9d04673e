// Package api implements the HTTP surface of opsdeck.
//
// New returns an http.Handler that serves:
//
//	GET /                          service index
//	GET /api/health                liveness, uptime and version
//	GET /api/summary               aggregated dashboard summary
//	GET /api/docker/containers     container listing
//	GET /api/docker/logs           log tails (?name=&lines=)
//	GET /api/docker/metrics        per-container resource usage
//	GET /api/docker/alerts         alerts, synthetic when alerting is unreachable
//	GET /api/docker/system         runtime and host description
//	GET /api/github/pipelines      CI runs, synthetic when CI is unconfigured
//	GET /api/debug/{service}       connectivity check for prometheus, grafana or github
//	GET /metrics                   Prometheus exposition of opsdeck itself
//	GET /ws/summary                summary stream (WebSocket)
//
// All JSON endpoints return 405 for non-GET methods and 404 with the list
// of available endpoints for unknown paths. Every request passes through the
// middleware chain in middleware.go.
package api
