// Package httputil provides HTTP handler utilities for consistent error handling,
// JSON encoding/decoding, and request parsing.
//
// # Response Helpers
//
//	httputil.WriteJSON(w, http.StatusOK, result)
//	httputil.WriteText(w, http.StatusOK, snapshotText)
//	httputil.WriteBadRequest(w, "old snapshot is required")
//	httputil.WriteDetailedError(w, http.StatusBadRequest, err, map[string]string{"line": "3"})
//
// # Request Parsing
//
//	var req CheckRequest
//	if !httputil.ParseJSONOrError(w, r, &req) {
//		return // Error response already written
//	}
//
// # Middleware
//
//	handler := httputil.Chain(
//		httputil.RequestIDMiddleware,
//		httputil.LoggingMiddleware(logger, metrics),
//		httputil.RecoveryMiddleware(logger),
//		httputil.MaxBytesMiddleware(32<<20),
//	)(router)
package httputil
