package shared

import (
	"sync"
	"testing"
	"time"

	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServiceMetrics(t *testing.T) {
	metrics := NewServiceMetrics("QuotesClient")

	metrics.RecordRequest(true, 10*time.Millisecond)
	metrics.RecordRequest(true, 30*time.Millisecond)
	metrics.RecordRequest(false, 20*time.Millisecond)
	metrics.IncrementCounter("network")

	snapshot := metrics.GetSnapshot()
	assert.Equal(t, "QuotesClient", snapshot.ServiceName)
	assert.Equal(t, int64(3), snapshot.TotalRequests)
	assert.Equal(t, int64(2), snapshot.SuccessfulRequests)
	assert.Equal(t, int64(1), snapshot.FailedRequests)
	assert.Equal(t, 20*time.Millisecond, snapshot.AverageProcessingTime)
	assert.Equal(t, 10*time.Millisecond, snapshot.MinProcessingTime)
	assert.Equal(t, 30*time.Millisecond, snapshot.MaxProcessingTime)
	assert.Equal(t, int64(1), snapshot.Counters["network"])
	assert.InDelta(t, 66.67, metrics.GetSuccessRate(), 0.01)

	metrics.Reset()
	snapshot = metrics.GetSnapshot()
	assert.Zero(t, snapshot.TotalRequests)
	assert.Empty(t, snapshot.Counters)
	assert.Zero(t, metrics.GetSuccessRate())
}

func TestServiceMetricsConcurrentUse(t *testing.T) {
	metrics := NewServiceMetrics("Pipeline")

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			metrics.RecordRequest(i%2 == 0, time.Millisecond)
			metrics.IncrementCounter("runs")
		}(i)
	}
	wg.Wait()

	snapshot := metrics.GetSnapshot()
	assert.Equal(t, int64(50), snapshot.TotalRequests)
	assert.Equal(t, int64(50), snapshot.Counters["runs"])
}

func TestServiceMetricsLogSummary(t *testing.T) {
	hook := logtest.NewGlobal()
	defer hook.Reset()

	metrics := NewServiceMetrics("NewsService")
	metrics.RecordRequest(true, 5*time.Millisecond)
	metrics.LogSummary()

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, "Service metrics summary", entry.Message)
	assert.Equal(t, "NewsService", entry.Data["service_name"])
	assert.Equal(t, int64(1), entry.Data["total_requests"])
}
