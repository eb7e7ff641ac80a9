package observability

import (
	"strconv"
	"sync"
	"time"

	"github.com/spec-kit/triage-engine/internal/domain"
)

// Metrics provides basic in-memory counters.
type Metrics struct {
	mu           sync.Mutex
	requestCount map[string]int64
	errorCount   map[string]int64
	decisions    map[domain.FinalAction]int64
	humanActions map[domain.HumanAction]int64
	degraded     int64
}

// NewMetrics initializes metrics storage.
func NewMetrics() *Metrics {
	return &Metrics{
		requestCount: make(map[string]int64),
		errorCount:   make(map[string]int64),
		decisions:    make(map[domain.FinalAction]int64),
		humanActions: make(map[domain.HumanAction]int64),
	}
}

// RecordRequest increments counters for requests.
func (m *Metrics) RecordRequest(path, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	key := pathKey(path, method, status)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requestCount[key]++
}

// RecordError increments error counters.
func (m *Metrics) RecordError(path, method, code string) {
	if m == nil {
		return
	}
	key := path + "|" + method + "|" + code
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errorCount[key]++
}

// RecordDecision counts a produced decision by final action. Degraded marks
// decisions that ran on fail-safe defaults.
func (m *Metrics) RecordDecision(action domain.FinalAction, degraded bool) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.decisions[action]++
	if degraded {
		m.degraded++
	}
}

// RecordHumanAction counts a recorded reviewer action.
func (m *Metrics) RecordHumanAction(action domain.HumanAction) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.humanActions[action]++
}

// DecisionCount returns the counter for a final action.
func (m *Metrics) DecisionCount(action domain.FinalAction) int64 {
	if m == nil {
		return 0
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.decisions[action]
}

func pathKey(path, method string, status int) string {
	return path + "|" + method + "|" + strconv.Itoa(status)
}
