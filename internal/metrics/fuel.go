// Package metrics implements the optional fuel-accounting sidecar from
// spec.md §5: an in-memory tabular store keyed by function name, written by
// a single-writer actor (a buffered channel drained by one goroutine),
// with the map itself guarded by a sync.RWMutex in the style of the
// teacher's internal/infrastructure/wasm.Runtime.
package metrics

import "sync"

// FunctionStats is one function's accumulated fuel-consumption record.
type FunctionStats struct {
	Count         uint64
	TotalConsumed uint64
	Max           uint64
	Min           uint64
	Last          uint64
	LastTimestamp int64
}

type record struct {
	function      string
	consumed      uint64
	timestampUnix int64
}

// FuelMeter is the sidecar. Writes are serialized through one actor
// goroutine draining a buffered channel; reads copy the map under the
// RWMutex's read lock, so they are not lock-free and wait for any write
// the actor is applying.
type FuelMeter struct {
	writes chan record
	resets chan chan struct{}
	stop   chan struct{}
	done   chan struct{}

	mu    sync.RWMutex
	stats map[string]FunctionStats
}

// NewFuelMeter starts the sidecar's writer goroutine.
func NewFuelMeter() *FuelMeter {
	m := &FuelMeter{
		writes: make(chan record, 256),
		resets: make(chan chan struct{}),
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
		stats:  make(map[string]FunctionStats),
	}
	go m.run()
	return m
}

func (m *FuelMeter) run() {
	defer close(m.done)
	for {
		select {
		case r := <-m.writes:
			m.apply(r)
		case ack := <-m.resets:
			m.mu.Lock()
			m.stats = make(map[string]FunctionStats)
			m.mu.Unlock()
			close(ack)
		case <-m.stop:
			return
		}
	}
}

func (m *FuelMeter) apply(r record) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, exists := m.stats[r.function]
	if !exists {
		s = FunctionStats{Min: r.consumed, Max: r.consumed}
	}
	s.Count++
	s.TotalConsumed += r.consumed
	if r.consumed > s.Max {
		s.Max = r.consumed
	}
	if r.consumed < s.Min {
		s.Min = r.consumed
	}
	s.Last = r.consumed
	s.LastTimestamp = r.timestampUnix
	m.stats[r.function] = s
}

// Record submits one call's fuel consumption. Non-blocking up to the
// writer channel's buffer; a full buffer drops the sample rather than
// stalling the caller, since accounting is observability, not correctness.
// A no-op after Close.
func (m *FuelMeter) Record(function string, consumed uint64, timestampUnix int64) {
	select {
	case <-m.stop:
		return
	default:
	}
	select {
	case m.writes <- record{function: function, consumed: consumed, timestampUnix: timestampUnix}:
	case <-m.stop:
	default:
	}
}

// Snapshot returns a copy of every function's current stats, taken under
// the read lock.
func (m *FuelMeter) Snapshot() map[string]FunctionStats {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make(map[string]FunctionStats, len(m.stats))
	for k, v := range m.stats {
		out[k] = v
	}
	return out
}

// Reset atomically clears every entry and blocks until the clear has been
// applied by the writer goroutine.
func (m *FuelMeter) Reset() {
	ack := make(chan struct{})
	m.resets <- ack
	<-ack
}

// Close stops the writer goroutine. Subsequent Record calls are no-ops.
func (m *FuelMeter) Close() {
	close(m.stop)
	<-m.done
}
