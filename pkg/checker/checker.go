package checker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/errgroup"

	"github.com/platinummonkey/apicheck/pkg/apimodel"
	"github.com/platinummonkey/apicheck/pkg/compatibility"
	"github.com/platinummonkey/apicheck/pkg/observability"
	"github.com/platinummonkey/apicheck/pkg/snapshot"
)

// ErrIncompatible is returned by callers that turn a failed Report into an
// error, such as the CLI.
var ErrIncompatible = errors.New("incompatible API changes found")

// Result is the outcome of checking one module.
type Result struct {
	Module   string                          `json:"module,omitempty"`
	RunID    string                          `json:"run_id"`
	Old      string                          `json:"old"`
	New      string                          `json:"new"`
	Report   *compatibility.Report           `json:"report"`
	Findings []compatibility.Incompatibility `json:"-"`
	Duration time.Duration                   `json:"duration_ns"`
}

// Passed reports whether no error survived suppression.
func (r *Result) Passed() bool {
	return !r.Report.Failed()
}

// Job is one module to check in CheckAll.
type Job struct {
	Module string
	Old    Source
	New    Source
}

// Checker loads both sides of a comparison, compares and classifies them.
// A Checker is safe for concurrent use.
type Checker struct {
	classifier  *compatibility.Classifier
	hide        []compatibility.Kind
	cache       *ModelCache
	metrics     *observability.Metrics
	logger      *observability.Logger
	maxParallel int
}

// Option configures a Checker.
type Option func(*Checker)

// WithPolicy sets the severity policy and accepted-findings baseline. Either
// may be nil.
func WithPolicy(policy *compatibility.Policy, baseline *compatibility.Baseline) Option {
	return func(c *Checker) {
		c.classifier = compatibility.NewClassifier(policy, baseline)
	}
}

// WithHideList demotes the given kinds to hidden.
func WithHideList(kinds ...compatibility.Kind) Option {
	return func(c *Checker) {
		c.hide = append(c.hide, kinds...)
	}
}

// WithCache shares parsed models across checks.
func WithCache(cache *ModelCache) Option {
	return func(c *Checker) {
		c.cache = cache
	}
}

// WithMetrics records check, parse and finding metrics.
func WithMetrics(metrics *observability.Metrics) Option {
	return func(c *Checker) {
		c.metrics = metrics
	}
}

// WithLogger sets the logger.
func WithLogger(logger *observability.Logger) Option {
	return func(c *Checker) {
		c.logger = logger
	}
}

// WithMaxParallel bounds the number of modules CheckAll checks at once.
func WithMaxParallel(n int) Option {
	return func(c *Checker) {
		if n > 0 {
			c.maxParallel = n
		}
	}
}

// New creates a Checker with the default policy.
func New(opts ...Option) *Checker {
	c := &Checker{
		classifier:  compatibility.NewClassifier(nil, nil),
		maxParallel: 4,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = observability.NewLogger(observability.WarnLevel, nil)
	}
	return c
}

// With returns a copy of c with opts applied on top of its settings. The
// copy shares the cache, metrics and logger.
func (c *Checker) With(opts ...Option) *Checker {
	cp := *c
	cp.hide = append([]compatibility.Kind(nil), c.hide...)
	for _, opt := range opts {
		opt(&cp)
	}
	return &cp
}

// Load produces the Model for a single source, going through the cache.
func (c *Checker) Load(ctx context.Context, src Source) (*apimodel.Model, error) {
	return src.Load(ctx, c.parser("single", c.logger))
}

// Check compares old against new. A non-nil error means a side could not be
// loaded; incompatibilities are reported in the Result, never as errors.
func (c *Checker) Check(ctx context.Context, module string, oldSrc, newSrc Source) (result *Result, err error) {
	start := time.Now()
	runID := observability.GetRunID(ctx)
	if runID == "" {
		runID = uuid.NewString()
		ctx = observability.WithRunID(ctx, runID)
	}
	logger := c.logger.WithFields(map[string]interface{}{
		"run_id": runID,
		"module": module,
	})

	ctx, span := observability.StartSpan(ctx, "apicheck.Check",
		attribute.String("apicheck.module", module),
		attribute.String("apicheck.run_id", runID),
	)
	defer span.End()
	logger = observability.UpdateLoggerWithTraceContext(ctx, logger)
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "check failed")
			c.recordCheck("error", start)
		}
	}()
	defer observability.RecoverToError(logger, "check "+module, &err)

	oldModel, newModel, err := c.loadBoth(ctx, logger, oldSrc, newSrc)
	if err != nil {
		return nil, err
	}

	_, compareSpan := observability.StartSpan(ctx, "apicheck.Compare")
	findings := compatibility.Compare(oldModel, newModel)
	compareSpan.SetAttributes(attribute.Int("apicheck.findings", len(findings)))
	compareSpan.End()

	report := c.classifier.Classify(findings, c.hide)
	span.SetAttributes(
		attribute.Int("apicheck.errors", report.ErrorCount),
		attribute.Int("apicheck.warnings", report.WarningCount),
		attribute.Int("apicheck.hidden", report.HiddenCount),
	)

	outcome := "pass"
	if report.Failed() {
		outcome = "fail"
	}
	if c.metrics != nil {
		for _, e := range report.Entries {
			c.metrics.RecordFinding(e.Kind.String(), e.Severity.String())
		}
	}
	c.recordCheck(outcome, start)

	logger.WithFields(map[string]interface{}{
		"errors":   report.ErrorCount,
		"warnings": report.WarningCount,
		"hidden":   report.HiddenCount,
		"result":   outcome,
	}).Infof("checked %s against %s", newSrc, oldSrc)

	return &Result{
		Module:   module,
		RunID:    runID,
		Old:      oldSrc.String(),
		New:      newSrc.String(),
		Report:   report,
		Findings: findings,
		Duration: time.Since(start),
	}, nil
}

// CheckAll checks independent modules in parallel, at most maxParallel at a
// time. Results keep the order of jobs. The first load error cancels the
// remaining jobs and is returned with whatever results completed.
func (c *Checker) CheckAll(ctx context.Context, jobs []Job) ([]*Result, error) {
	runID := observability.GetRunID(ctx)
	if runID == "" {
		runID = uuid.NewString()
		ctx = observability.WithRunID(ctx, runID)
	}

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(c.maxParallel)

	results := make([]*Result, len(jobs))
	for i, job := range jobs {
		i, job := i, job
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			result, err := c.Check(ctx, job.Module, job.Old, job.New)
			if err != nil {
				return fmt.Errorf("module %s: %w", job.Module, err)
			}
			results[i] = result
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return results, err
	}
	return results, nil
}

// loadBoth loads the two sides concurrently and joins them.
func (c *Checker) loadBoth(ctx context.Context, logger *observability.Logger, oldSrc, newSrc Source) (*apimodel.Model, *apimodel.Model, error) {
	var oldModel, newModel *apimodel.Model

	eg, ctx := errgroup.WithContext(ctx)
	eg.Go(func() (err error) {
		defer observability.RecoverToError(logger, "load old", &err)
		oldModel, err = oldSrc.Load(ctx, c.parser("old", logger))
		if err != nil {
			return fmt.Errorf("failed to load old API from %s: %w", oldSrc, err)
		}
		return nil
	})
	eg.Go(func() (err error) {
		defer observability.RecoverToError(logger, "load new", &err)
		newModel, err = newSrc.Load(ctx, c.parser("new", logger))
		if err != nil {
			return fmt.Errorf("failed to load new API from %s: %w", newSrc, err)
		}
		return nil
	})
	if err := eg.Wait(); err != nil {
		return nil, nil, err
	}

	logExternalReferences(logger.WithField("side", "old"), oldModel)
	logExternalReferences(logger.WithField("side", "new"), newModel)
	return oldModel, newModel, nil
}

// parser returns the ParseFunc for one side: cached by content, traced and
// measured.
func (c *Checker) parser(side string, logger *observability.Logger) ParseFunc {
	return func(ctx context.Context, name string, text []byte) (*apimodel.Model, error) {
		key := Key(text)
		if m, ok := c.cache.Get(key); ok {
			logger.WithField("side", side).Debugf("using cached model for %s", name)
			return m, nil
		}

		_, span := observability.StartSpan(ctx, "apicheck.Parse",
			attribute.String("apicheck.side", side),
			attribute.String("apicheck.source", name),
			attribute.Int("apicheck.bytes", len(text)),
		)
		defer span.End()

		start := time.Now()
		m, err := snapshot.Parse(string(text), snapshot.WithFilename(name))
		classes := 0
		if err == nil {
			classes = m.ClassCount()
		}
		if c.metrics != nil {
			c.metrics.RecordParse(side, classes, time.Since(start), err)
		}
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "parse failed")
			return nil, err
		}
		span.SetAttributes(attribute.Int("apicheck.classes", classes))

		c.cache.Add(key, m)
		return m, nil
	}
}

func (c *Checker) recordCheck(result string, start time.Time) {
	if c.metrics != nil {
		c.metrics.RecordCheck(result, time.Since(start))
	}
}

// logExternalReferences reports supertypes that resolved to placeholders.
// They only serve as identities and are never compared.
func logExternalReferences(logger *observability.Logger, m *apimodel.Model) {
	refs := m.ExternalReferences()
	if len(refs) == 0 {
		return
	}
	logger.WithField("references", refs).Debugf("%d external supertypes resolved to placeholders", len(refs))
}
