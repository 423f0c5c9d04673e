// Package config loads the opsdeck configuration from an optional YAML file
// and the process environment.
//
// Sections:
//   - server: HTTP port, rate limit, WebSocket push interval, host identity
//   - runtime: container runtime binary, command timeout, log tail limits
//   - alerting: alerting backend base URL, candidate paths, bearer token env
//   - ci: CI provider API URL, repository, bearer token env
//   - metrics: Prometheus URL and optional exposition fallback URL
//
// Load applies defaults, then the file (if any), then the environment
// overlay, then validates. Secrets are never read from the file: token_env
// names the environment variable that holds them.
package config
