package observability

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubProbe struct {
	name string
	err  error
}

func (p stubProbe) Name() string { return p.name }
func (p stubProbe) Ping(ctx context.Context) error { return p.err }

func TestHealthChecker_Check(t *testing.T) {
	healthy := NewHealthChecker("1.2.3", stubProbe{name: "filesystem"})
	status := healthy.Check(context.Background())
	assert.Equal(t, StatusHealthy, status.Status)
	assert.Equal(t, "1.2.3", status.Version)
	assert.Equal(t, StatusHealthy, status.Dependencies["filesystem"].Status)

	broken := NewHealthChecker("1.2.3", stubProbe{name: "s3", err: errors.New("no such bucket")})
	status = broken.Check(context.Background())
	assert.Equal(t, StatusUnhealthy, status.Status)
	assert.Equal(t, "no such bucket", status.Dependencies["s3"].Message)
}

func TestHealthChecker_Handlers(t *testing.T) {
	checker := NewHealthChecker("dev", stubProbe{name: "s3", err: errors.New("down")})

	rec := httptest.NewRecorder()
	checker.Liveness(rec, httptest.NewRequest("GET", "/health/live", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	checker.Readiness(rec, httptest.NewRequest("GET", "/health/ready", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var status HealthStatus
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&status))
	assert.Equal(t, StatusUnhealthy, status.Status)
}

func TestShutdownManager(t *testing.T) {
	logger := NewLogger(ErrorLevel, nil)
	sm := NewShutdownManager(logger, nil, time.Second)

	var order []int
	sm.RegisterShutdownFunc(func(ctx context.Context) error { order = append(order, 1); return nil })
	sm.RegisterShutdownFunc(func(ctx context.Context) error { order = append(order, 2); return errors.New("flush failed") })
	sm.RegisterShutdownFunc(func(ctx context.Context) error { order = append(order, 3); return nil })

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := sm.Wait(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "flush failed")
	assert.Equal(t, []int{1, 2, 3}, order)
}
