package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveStoreOperation(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.ObserveStoreOperation("store_feedback", time.Now(), nil)
	m.ObserveStoreOperation("store_feedback", time.Now(), errors.New("boom"))
	m.ObserveStoreOperation("stats", time.Now(), nil)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.storeOperations.WithLabelValues("store_feedback", OutcomeSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.storeOperations.WithLabelValues("store_feedback", OutcomeError)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.storeOperations.WithLabelValues("stats", OutcomeSuccess)))
	assert.Equal(t, 2, testutil.CollectAndCount(m.storeDuration))
}

func TestObserveJob(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.ObserveJob("feedback:store", OutcomeSuccess)
	m.ObserveJob("feedback:store", OutcomeSkipped)
	m.ObserveJob("feedback:store", OutcomeSkipped)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.jobsProcessed.WithLabelValues("feedback:store", OutcomeSkipped)))
}

func TestNilMetrics(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveStoreOperation("list_feedback", time.Now(), nil)
		m.ObserveJob("feedback:digest", OutcomeError)
	})
}

func TestHandler(t *testing.T) {
	m := New(prometheus.NewRegistry())
	m.ObserveJob("feedback:digest", OutcomeSuccess)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `feedback_jobs_processed_total{outcome="success",task="feedback:digest"} 1`)
}

func TestDefaultIsSingleton(t *testing.T) {
	assert.Same(t, Default(), Default())
}
