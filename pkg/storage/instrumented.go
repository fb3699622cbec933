package storage

import (
	"context"
	"time"

	"github.com/platinummonkey/apicheck/pkg/observability"
)

// InstrumentedStore records metrics and debug logs around every call to the
// wrapped store.
type InstrumentedStore struct {
	next    BaselineStore
	metrics *observability.Metrics
	logger  *observability.Logger
}

// Instrument wraps store. Either metrics or logger may be nil.
func Instrument(store BaselineStore, metrics *observability.Metrics, logger *observability.Logger) *InstrumentedStore {
	return &InstrumentedStore{next: store, metrics: metrics, logger: logger}
}

func (s *InstrumentedStore) Name() string {
	return s.next.Name()
}

func (s *InstrumentedStore) observe(op, module string, start time.Time, err error) {
	elapsed := time.Since(start)
	if s.metrics != nil {
		s.metrics.RecordStorageOperation(op, s.next.Name(), elapsed, err)
	}
	if s.logger != nil {
		s.logger.WithFields(map[string]interface{}{
			"operation": op,
			"backend":   s.next.Name(),
			"module":    module,
			"duration":  elapsed.String(),
		}).WithError(err).Debug("storage operation")
	}
}

func (s *InstrumentedStore) Get(ctx context.Context, module string) ([]byte, error) {
	start := time.Now()
	data, err := s.next.Get(ctx, module)
	s.observe("get", module, start, err)
	return data, err
}

func (s *InstrumentedStore) Put(ctx context.Context, module string, snapshot []byte) error {
	start := time.Now()
	err := s.next.Put(ctx, module, snapshot)
	s.observe("put", module, start, err)
	return err
}

func (s *InstrumentedStore) List(ctx context.Context) ([]string, error) {
	start := time.Now()
	modules, err := s.next.List(ctx)
	s.observe("list", "", start, err)
	return modules, err
}

func (s *InstrumentedStore) Ping(ctx context.Context) error {
	start := time.Now()
	err := s.next.Ping(ctx)
	s.observe("ping", "", start, err)
	return err
}
