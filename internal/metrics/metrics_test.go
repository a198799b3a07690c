package metrics

import (
	"testing"

	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsRegistered(t *testing.T) {
	t.Parallel()

	// promauto registers on package init.
	assert.NotNil(t, HTTPRequestDuration)
	assert.NotNil(t, HTTPRequestsTotal)
	assert.NotNil(t, HealthzUp)
	assert.NotNil(t, ReadyzUp)
	assert.NotNil(t, HandshakesTotal)
	assert.NotNil(t, PollAttemptsTotal)
	assert.NotNil(t, TokenRefreshesTotal)
	assert.NotNil(t, SearchRequestsTotal)
	assert.NotNil(t, SearchDuration)
	assert.NotNil(t, WatchCycleDuration)
	assert.NotNil(t, WatchLastSuccessTimestamp)
	assert.NotNil(t, WatchErrorsTotal)
	assert.NotNil(t, SnapshotsRecordedTotal)
	assert.NotNil(t, BagsAvailableGauge)
	assert.NotNil(t, AlertsFiredTotal)
	assert.NotNil(t, NotificationFailuresTotal)
	assert.NotNil(t, NotificationDuration)
}

func TestHandshakesTotal_LabelledCounter(t *testing.T) {
	t.Parallel()

	c := HandshakesTotal.WithLabelValues("metrics_test")
	c.Inc()
	c.Inc()

	m := &dto.Metric{}
	require.NoError(t, c.Write(m))
	assert.Equal(t, 2.0, m.GetCounter().GetValue())
}

func TestStatusClass(t *testing.T) {
	t.Parallel()

	tests := []struct {
		status int
		want   string
	}{
		{status: 100, want: "1xx"},
		{status: 200, want: "2xx"},
		{status: 202, want: "2xx"},
		{status: 304, want: "3xx"},
		{status: 401, want: "4xx"},
		{status: 429, want: "4xx"},
		{status: 500, want: "5xx"},
		{status: 503, want: "5xx"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, StatusClass(tt.status))
		})
	}
}
