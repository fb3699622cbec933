// Package api provides the HTTP API for running compatibility checks.
//
// # Endpoints
//
//	POST /v1/check               {"old": "...", "new": "...", "hide": ["ClassAdded"]}
//	                             or {"module": "core", "new": "..."} against a stored baseline
//	                             200 when the check passes, 409 when errors remain
//	POST /v1/format              {"snapshot": "..."} -> canonical snapshot text
//	GET  /v1/baselines           modules with a stored baseline
//	GET  /v1/baselines/{module}  stored snapshot text
//	PUT  /v1/baselines/{module}  replace a baseline with the canonical form of the body
//	GET  /health/live, /health/ready, /metrics
//
// Malformed snapshots are rejected with 400 and the line and column of the
// first error in the response details.
//
// # Usage
//
//	srv := api.NewServer(api.ServerOptions{
//		Checker: checker.New(checker.WithMetrics(metrics)),
//		Store:   store,
//		Metrics: metrics,
//		Logger:  logger,
//	})
//	http.ListenAndServe(":8080", srv)
package api
