package shared

import (
	"sort"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

const maxLatencySamples = 1000

// ServiceMetrics tracks request counts, latency and per-key counters for a service
type ServiceMetrics struct {
	serviceName           string
	totalRequests         int64
	successfulRequests    int64
	failedRequests        int64
	totalProcessingTime   time.Duration
	minProcessingTime     time.Duration
	maxProcessingTime     time.Duration
	lastUpdated           time.Time
	counters              map[string]int64
	processingTimeSamples []time.Duration
	mutex                 sync.RWMutex
}

// MetricsSnapshot is a point-in-time copy of ServiceMetrics
type MetricsSnapshot struct {
	ServiceName           string           `json:"service_name"`
	TotalRequests         int64            `json:"total_requests"`
	SuccessfulRequests    int64            `json:"successful_requests"`
	FailedRequests        int64            `json:"failed_requests"`
	SuccessRate           float64          `json:"success_rate"`
	AverageProcessingTime time.Duration    `json:"average_processing_time"`
	MinProcessingTime     time.Duration    `json:"min_processing_time"`
	MaxProcessingTime     time.Duration    `json:"max_processing_time"`
	P95ProcessingTime     time.Duration    `json:"p95_processing_time"`
	LastUpdated           time.Time        `json:"last_updated"`
	Counters              map[string]int64 `json:"counters"`
}

// NewServiceMetrics creates a new metrics tracker for a service
func NewServiceMetrics(serviceName string) *ServiceMetrics {
	return &ServiceMetrics{
		serviceName:           serviceName,
		lastUpdated:           time.Now(),
		counters:              make(map[string]int64),
		processingTimeSamples: make([]time.Duration, 0, 64),
	}
}

// RecordRequest records a request with its success status and processing time
func (m *ServiceMetrics) RecordRequest(success bool, processingTime time.Duration) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.totalRequests++
	m.totalProcessingTime += processingTime
	if success {
		m.successfulRequests++
	} else {
		m.failedRequests++
	}

	if m.minProcessingTime == 0 || processingTime < m.minProcessingTime {
		m.minProcessingTime = processingTime
	}
	if processingTime > m.maxProcessingTime {
		m.maxProcessingTime = processingTime
	}

	if len(m.processingTimeSamples) >= maxLatencySamples {
		m.processingTimeSamples = m.processingTimeSamples[1:]
	}
	m.processingTimeSamples = append(m.processingTimeSamples, processingTime)
	m.lastUpdated = time.Now()
}

// IncrementCounter increments a named counter
func (m *ServiceMetrics) IncrementCounter(key string) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.counters[key]++
	m.lastUpdated = time.Now()
}

// GetSuccessRate returns the success rate as a percentage
func (m *ServiceMetrics) GetSuccessRate() float64 {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return m.successRateLocked()
}

func (m *ServiceMetrics) successRateLocked() float64 {
	if m.totalRequests == 0 {
		return 0.0
	}
	return float64(m.successfulRequests) / float64(m.totalRequests) * 100.0
}

// GetSnapshot returns a thread-safe snapshot of current metrics
func (m *ServiceMetrics) GetSnapshot() MetricsSnapshot {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	counters := make(map[string]int64, len(m.counters))
	for k, v := range m.counters {
		counters[k] = v
	}

	var average time.Duration
	if m.totalRequests > 0 {
		average = time.Duration(int64(m.totalProcessingTime) / m.totalRequests)
	}

	return MetricsSnapshot{
		ServiceName:           m.serviceName,
		TotalRequests:         m.totalRequests,
		SuccessfulRequests:    m.successfulRequests,
		FailedRequests:        m.failedRequests,
		SuccessRate:           m.successRateLocked(),
		AverageProcessingTime: average,
		MinProcessingTime:     m.minProcessingTime,
		MaxProcessingTime:     m.maxProcessingTime,
		P95ProcessingTime:     percentile(m.processingTimeSamples, 0.95),
		LastUpdated:           m.lastUpdated,
		Counters:              counters,
	}
}

func percentile(samples []time.Duration, p float64) time.Duration {
	if len(samples) == 0 {
		return 0
	}
	sorted := make([]time.Duration, len(samples))
	copy(sorted, samples)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	index := int(float64(len(sorted)) * p)
	if index >= len(sorted) {
		index = len(sorted) - 1
	}
	return sorted[index]
}

// LogSummary logs a metrics summary
func (m *ServiceMetrics) LogSummary() {
	snapshot := m.GetSnapshot()

	logrus.WithFields(logrus.Fields{
		"service_name":            snapshot.ServiceName,
		"total_requests":          snapshot.TotalRequests,
		"successful_requests":     snapshot.SuccessfulRequests,
		"failed_requests":         snapshot.FailedRequests,
		"success_rate":            snapshot.SuccessRate,
		"average_processing_time": snapshot.AverageProcessingTime,
		"p95_processing_time":     snapshot.P95ProcessingTime,
		"counters":                snapshot.Counters,
	}).Info("Service metrics summary")
}

// Reset resets all metrics to zero
func (m *ServiceMetrics) Reset() {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.totalRequests = 0
	m.successfulRequests = 0
	m.failedRequests = 0
	m.totalProcessingTime = 0
	m.minProcessingTime = 0
	m.maxProcessingTime = 0
	m.counters = make(map[string]int64)
	m.processingTimeSamples = m.processingTimeSamples[:0]
	m.lastUpdated = time.Now()

	logrus.WithField("service_name", m.serviceName).Info("Service metrics reset")
}
