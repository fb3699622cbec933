// Package checker runs compatibility checks end to end.
//
// A check loads the accepted baseline and the current API from two Sources,
// parsing both sides concurrently, then compares and classifies the models:
//
//	c := checker.New(
//		checker.WithPolicy(policy, accepted),
//		checker.WithCache(checker.NewModelCache(128, 10*time.Minute, metrics)),
//		checker.WithMetrics(metrics),
//		checker.WithLogger(logger),
//	)
//	result, err := c.Check(ctx, "core",
//		checker.StoreSource{Store: store, Module: "core"},
//		checker.FileSource{Path: "build/api/current.txt"},
//	)
//	if err == nil && !result.Passed() {
//		// report result.Report
//	}
//
// Sources can be snapshot text, files, a baseline store, or an in-process
// Extractor. CheckAll checks many modules in parallel with a bounded number
// of workers.
package checker
