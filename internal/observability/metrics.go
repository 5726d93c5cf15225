package observability

import (
	"sync"
	"time"
)

type requestKey struct {
	Method string
	Path   string
	Status int
}

type errorKey struct {
	Method string
	Path   string
	Code   string
}

// Metrics keeps in-process counters for the helpdesk API: request volume and
// cumulative latency per route/status, and error volume per taxonomy code.
type Metrics struct {
	mu       sync.Mutex
	requests map[requestKey]int64
	latency  map[requestKey]time.Duration
	errors   map[errorKey]int64
}

// NewMetrics initializes metrics storage.
func NewMetrics() *Metrics {
	return &Metrics{
		requests: make(map[requestKey]int64),
		latency:  make(map[requestKey]time.Duration),
		errors:   make(map[errorKey]int64),
	}
}

// RecordRequest counts a finished request under its final status code.
func (m *Metrics) RecordRequest(path, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	key := requestKey{Method: method, Path: path, Status: status}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests[key]++
	m.latency[key] += duration
}

// RecordError counts a rendered error under its taxonomy code
// (NOT_FOUND, MISSING_REQUIRED_FIELD, STORE_FAILURE, ...).
func (m *Metrics) RecordError(path, method, code string) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errors[errorKey{Method: method, Path: path, Code: code}]++
}

// RequestCount reports how many requests finished with the given status on a route.
func (m *Metrics) RequestCount(path, method string, status int) int64 {
	if m == nil {
		return 0
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.requests[requestKey{Method: method, Path: path, Status: status}]
}

// ErrorCount reports how many errors with the given code were rendered on a route.
func (m *Metrics) ErrorCount(path, method, code string) int64 {
	if m == nil {
		return 0
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.errors[errorKey{Method: method, Path: path, Code: code}]
}
