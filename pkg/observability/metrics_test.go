package observability

import (
	"errors"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Record(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := NewMetrics(registry)
	assert.Same(t, registry, m.Registry())

	m.RecordCheck("fail", 20*time.Millisecond)
	m.RecordCheck("pass", time.Millisecond)
	m.RecordCheck("pass", time.Millisecond)
	assert.Equal(t, float64(2), testutil.ToFloat64(m.ChecksTotal.WithLabelValues("pass")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.ChecksTotal.WithLabelValues("fail")))

	m.RecordFinding("MemberRemoved", "error")
	assert.Equal(t, float64(1), testutil.ToFloat64(m.FindingsTotal.WithLabelValues("MemberRemoved", "error")))

	m.RecordParse("old", 12, time.Millisecond, nil)
	m.RecordParse("new", 0, time.Millisecond, errors.New("bad"))
	assert.Equal(t, float64(12), testutil.ToFloat64(m.ModelClasses.WithLabelValues("old")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.ParseErrorTotal.WithLabelValues("new")))

	m.RecordCacheHit("model")
	m.RecordCacheMiss("model")
	assert.Equal(t, float64(1), testutil.ToFloat64(m.CacheHitsTotal.WithLabelValues("model")))

	m.RecordStorageOperation("get", "s3", time.Millisecond, errors.New("denied"))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.StorageOperationsTotal.WithLabelValues("get", "s3", "error")))

	m.RecordHTTPRequest("POST", "/v1/check", 409, time.Millisecond)
	assert.Equal(t, float64(1), testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("POST", "/v1/check", "409")))
}

func TestMetrics_Handler(t *testing.T) {
	m := NewMetrics(nil)
	m.RecordCheck("pass", time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `apicheck_checks_total{result="pass"} 1`)
}
