// Package observability provides structured logging, Prometheus metrics, and OpenTelemetry tracing.
//
// # Structured Logging
//
// Logger wraps logrus. The CLI logs text to stderr, the server logs JSON:
//
//	logger := observability.NewLoggerWithFormat(observability.InfoLevel, os.Stderr, observability.FormatText)
//	logger.WithField("run_id", runID).Infof("checked %d classes", n)
//
// Loggers travel through a context together with the request and run IDs:
//
//	ctx = observability.WithLogger(ctx, logger)
//	ctx = observability.WithRunID(ctx, runID)
//	observability.FromContext(ctx).Warn("baseline missing")
//
// # Prometheus Metrics
//
//	metrics := observability.NewMetrics(nil)
//	metrics.RecordCheck("fail", elapsed)
//	metrics.RecordFinding("MemberRemoved", "error")
//	http.Handle("/metrics", metrics.Handler())
//
// # Health Checks
//
// Readiness pings every registered Probe; baseline stores implement it.
//
// # OpenTelemetry
//
//	providers, err := observability.InitOTel(ctx, observability.OTelConfig{
//		Enabled:     true,
//		Endpoint:    "otel-collector:4317",
//		ServiceName: "apicheck",
//		Insecure:    true,
//	}, logger)
//	defer observability.ShutdownOTel(ctx, providers, logger)
//
// Spans are started with StartSpan and are no-ops until InitOTel runs.
package observability
