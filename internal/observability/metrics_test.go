package observability

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Counters(t *testing.T) {
	m := NewMetrics()

	m.RecordTransition("initiate", nil)
	m.RecordTransition("initiate", nil)
	m.RecordTransition("initiate", errors.New("duplicate"))
	m.RecordVote()
	m.RecordRequest("/identities/:address", http.MethodGet, http.StatusOK, 20*time.Millisecond)
	m.RecordError("/identities/:address", http.MethodGet, "NOT_FOUND")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.transitions.WithLabelValues("initiate", OutcomeSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.transitions.WithLabelValues("initiate", OutcomeFailure)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.votes))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.requests.WithLabelValues("/identities/:address", http.MethodGet, "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.errors.WithLabelValues("/identities/:address", http.MethodGet, "NOT_FOUND")))

	count, err := testutil.GatherAndCount(m.Gatherer(), "identity_registry_lifecycle_transitions_total")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestMetrics_NilIsSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.RecordTransition("burn", nil)
		m.RecordVote()
		m.RecordRequest("/", http.MethodGet, http.StatusOK, time.Millisecond)
		m.RecordError("/", http.MethodGet, "INTERNAL_ERROR")
	})
}

func TestMetrics_Handler(t *testing.T) {
	m := NewMetrics()
	m.RecordVote()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "identity_registry_votes_total 1"))
}
