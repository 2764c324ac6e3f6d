package metrics

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/coffeetrack/coffeetrack/server/internal/store"
)

// scrape fetches the exposition from m.Handler and parses it.
func scrape(t *testing.T, m *Metrics) map[string]*dto.MetricFamily {
	t.Helper()
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var parser expfmt.TextParser
	mfs, err := parser.TextToMetricFamilies(rec.Body)
	require.NoError(t, err)
	return mfs
}

func TestObserveRequest(t *testing.T) {
	m := New()
	m.ObserveRequest("GET", "/plants", 200, 3*time.Millisecond)
	m.ObserveRequest("GET", "/plants", 200, 5*time.Millisecond)
	m.ObserveRequest("POST", "/plants", 400, time.Millisecond)
	m.ObserveRequest("GET", "", 404, time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.httpRequests.WithLabelValues("GET", "/plants", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.httpRequests.WithLabelValues("POST", "/plants", "400")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.httpRequests.WithLabelValues("GET", "unmatched", "404")))

	served, err := m.RequestsServed()
	require.NoError(t, err)
	assert.Equal(t, 4.0, served)
}

func TestRequestsServed_Empty(t *testing.T) {
	served, err := New().RequestsServed()
	require.NoError(t, err)
	assert.Zero(t, served)
}

func TestRequestStarted(t *testing.T) {
	m := New()
	done := m.RequestStarted()
	assert.Equal(t, 1.0, testutil.ToFloat64(m.httpInFlight))
	done()
	assert.Equal(t, 0.0, testutil.ToFloat64(m.httpInFlight))
}

func TestHandler_Exposition(t *testing.T) {
	m := New()
	m.ObserveRequest("GET", "/", 200, time.Millisecond)
	m.ObserveStoreOp("query", "plant", nil, time.Millisecond)

	mfs := scrape(t, m)

	mf, ok := mfs["coffeetrack_http_requests_total"]
	require.True(t, ok, "request counter missing from exposition")
	assert.Equal(t, 1.0, sumFamily(mf))
	assert.Contains(t, mfs, "coffeetrack_http_request_duration_seconds")
	assert.Contains(t, mfs, "coffeetrack_store_operations_total")
	assert.Contains(t, mfs, "go_goroutines")
}

func TestInstrument(t *testing.T) {
	m := New()
	st := Instrument(store.NewMemory("test"), m)
	ctx := context.Background()

	_, err := st.Create(ctx, "plant", bson.M{"name": "a"})
	require.NoError(t, err)
	_, err = st.Query(ctx, "plant", nil)
	require.NoError(t, err)
	_, err = st.Collections(ctx)
	require.NoError(t, err)
	require.NoError(t, st.Ping(ctx))

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = st.Query(cancelled, "plant", nil)
	assert.ErrorIs(t, err, store.ErrUnavailable)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.storeOps.WithLabelValues("create", "plant", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.storeOps.WithLabelValues("query", "plant", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.storeOps.WithLabelValues("query", "plant", "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.storeOps.WithLabelValues("ping", "", "ok")))
	assert.Equal(t, "test", st.Name())
}

func TestSumFamily(t *testing.T) {
	v := func(f float64) *float64 { return &f }
	mf := &dto.MetricFamily{Metric: []*dto.Metric{
		{Counter: &dto.Counter{Value: v(2)}},
		{Gauge: &dto.Gauge{Value: v(3)}},
		{Untyped: &dto.Untyped{Value: v(0.5)}},
		{},
	}}
	assert.Equal(t, 5.5, sumFamily(mf))
}
