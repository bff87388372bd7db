package server

import "sync"

// Metrics holds process-wide request and storage counters.
type Metrics struct {
	mu sync.RWMutex

	requestsTotal    int64
	requestErrors4xx int64
	requestErrors5xx int64

	demographicsSavedTotal int64
	audioUploadsTotal      int64
	audioUploadBytesTotal  int64
	presignedURLsTotal     int64
	completionsTotal       int64
	simulatedUploadsTotal  int64
	storageErrorsTotal     int64
}

// MetricsSnapshot is a point-in-time copy of all counters.
type MetricsSnapshot struct {
	RequestsTotal    int64
	RequestErrors4xx int64
	RequestErrors5xx int64

	DemographicsSavedTotal int64
	AudioUploadsTotal      int64
	AudioUploadBytesTotal  int64
	PresignedURLsTotal     int64
	CompletionsTotal       int64
	SimulatedUploadsTotal  int64
	StorageErrorsTotal     int64
}

var globalMetrics = &Metrics{}

// GetMetrics returns the global metrics instance.
func GetMetrics() *Metrics {
	return globalMetrics
}

// RecordRequest counts a finished HTTP request by status class.
func (m *Metrics) RecordRequest(status int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requestsTotal++
	switch {
	case status >= 500:
		m.requestErrors5xx++
	case status >= 400:
		m.requestErrors4xx++
	}
}

// RecordDemographicsSaved counts a persisted demographics record.
func (m *Metrics) RecordDemographicsSaved() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.demographicsSavedTotal++
}

// RecordAudioUpload counts a stored recording and its size.
func (m *Metrics) RecordAudioUpload(bytes int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.audioUploadsTotal++
	m.audioUploadBytesTotal += bytes
}

// RecordPresignedURL counts an issued upload grant.
func (m *Metrics) RecordPresignedURL() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.presignedURLsTotal++
}

// RecordCompletion counts an acknowledged upload completion.
func (m *Metrics) RecordCompletion() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.completionsTotal++
}

// RecordSimulatedUpload counts a file received by the local receiver.
func (m *Metrics) RecordSimulatedUpload(bytes int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.simulatedUploadsTotal++
	m.audioUploadBytesTotal += bytes
}

// RecordStorageError counts a failed storage operation.
func (m *Metrics) RecordStorageError() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.storageErrorsTotal++
}

// Snapshot returns a consistent copy of all counters.
func (m *Metrics) Snapshot() MetricsSnapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return MetricsSnapshot{
		RequestsTotal:          m.requestsTotal,
		RequestErrors4xx:       m.requestErrors4xx,
		RequestErrors5xx:       m.requestErrors5xx,
		DemographicsSavedTotal: m.demographicsSavedTotal,
		AudioUploadsTotal:      m.audioUploadsTotal,
		AudioUploadBytesTotal:  m.audioUploadBytesTotal,
		PresignedURLsTotal:     m.presignedURLsTotal,
		CompletionsTotal:       m.completionsTotal,
		SimulatedUploadsTotal:  m.simulatedUploadsTotal,
		StorageErrorsTotal:     m.storageErrorsTotal,
	}
}
