// Package latency records duration samples per named operation over a small
// rolling window, making slow sequential workflows observable without
// persisting anything.
package latency

import (
	"sort"
	"sync"
	"time"
)

// WindowSize bounds the number of samples retained per operation; older
// samples are dropped FIFO.
const WindowSize = 100

type Stats struct {
	Count   int
	Average time.Duration
	Min     time.Duration
	Max     time.Duration
	Median  time.Duration
}

type Monitor struct {
	mu      sync.Mutex
	samples map[string][]time.Duration

	now func() time.Time
}

func NewMonitor() *Monitor {
	return &Monitor{
		samples: make(map[string][]time.Duration),
		now:     time.Now,
	}
}

// Start begins timing the named operation; the returned stop function records
// the elapsed duration when called.
func (m *Monitor) Start(operation string) func() {
	started := m.now()
	return func() {
		m.Record(operation, m.now().Sub(started))
	}
}

func (m *Monitor) Record(operation string, d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	window := append(m.samples[operation], d)
	if len(window) > WindowSize {
		window = window[len(window)-WindowSize:]
	}
	m.samples[operation] = window
}

// Stats returns aggregates over the operation's current window. The second
// return is false when no samples were recorded.
func (m *Monitor) Stats(operation string) (Stats, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	window := m.samples[operation]
	if len(window) == 0 {
		return Stats{}, false
	}

	stats := Stats{Count: len(window), Min: window[0], Max: window[0]}
	var total time.Duration
	for _, d := range window {
		total += d
		if d < stats.Min {
			stats.Min = d
		}
		if d > stats.Max {
			stats.Max = d
		}
	}
	stats.Average = total / time.Duration(len(window))

	sorted := make([]time.Duration, len(window))
	copy(sorted, window)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		stats.Median = (sorted[mid-1] + sorted[mid]) / 2
	} else {
		stats.Median = sorted[mid]
	}

	return stats, true
}

// Operations lists operation names with at least one sample.
func (m *Monitor) Operations() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	ops := make([]string, 0, len(m.samples))
	for op := range m.samples {
		ops = append(ops, op)
	}
	sort.Strings(ops)
	return ops
}
