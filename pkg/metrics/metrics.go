// Package metrics provides Prometheus collectors for validation runs.
//
// # Overview
//
// The metrics package provides:
//   - Pre-defined collectors for rows loaded, table status, notices and validator latency
//   - A Collector that components hold, which is a no-op when disabled or nil
//   - Throughput tracking for long table loads
//   - Process memory snapshots through gopsutil
//
// # Basic Usage
//
//	collector := metrics.NewCollector("run-1", true)
//	collector.RowsLoaded("stop_times.txt", 200000)
//
//	timer := metrics.NewTimer("trip_usage")
//	runValidator()
//	collector.ObserveValidator("trip_usage", timer.Stop())
package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Collector records validation metrics for one run. A nil or disabled
// collector accepts every call and records nothing.
type Collector struct {
	runID     string
	enabled   bool
	startTime time.Time
	mu        sync.RWMutex
	rows      map[string]int64 // rows per table, for GetAll
}

// NewCollector creates a new metrics collector for a run.
func NewCollector(runID string, enabled bool) *Collector {
	return &Collector{
		runID:     runID,
		enabled:   enabled,
		startTime: time.Now(),
		rows:      make(map[string]int64),
	}
}

// Enabled reports whether the collector records anything.
func (c *Collector) Enabled() bool {
	return c != nil && c.enabled
}

// GetAll returns a summary of what this collector recorded
func (c *Collector) GetAll() map[string]interface{} {
	if c == nil {
		return map[string]interface{}{}
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	rows := make(map[string]int64, len(c.rows))
	for k, v := range c.rows {
		rows[k] = v
	}
	return map[string]interface{}{
		"run_id":     c.runID,
		"start_time": c.startTime,
		"uptime":     time.Since(c.startTime).Seconds(),
		"rows":       rows,
	}
}

// RowsLoaded adds n to the rows loaded from table.
func (c *Collector) RowsLoaded(table string, n int) {
	if !c.Enabled() || n <= 0 {
		return
	}
	c.mu.Lock()
	c.rows[table] += int64(n)
	c.mu.Unlock()
	RowsLoadedTotal.WithLabelValues(table).Add(float64(n))
}

// TableStatus records the final load status of a table as its ordinal.
func (c *Collector) TableStatus(table string, status int) {
	if !c.Enabled() {
		return
	}
	TableLoadStatus.WithLabelValues(table).Set(float64(status))
}

// NoticesEmitted adds n to the notices counted for code.
func (c *Collector) NoticesEmitted(code, severity string, n int) {
	if !c.Enabled() || n <= 0 {
		return
	}
	NoticesTotal.WithLabelValues(code, severity).Add(float64(n))
}

// ObserveValidator records the duration of one validator unit.
func (c *Collector) ObserveValidator(validator string, d time.Duration) {
	if !c.Enabled() {
		return
	}
	ValidatorLatency.WithLabelValues(validator).Observe(d.Seconds())
}

// ValidatorSkipped counts a validator skipped because a table it needs did not load.
func (c *Collector) ValidatorSkipped(validator string) {
	if !c.Enabled() {
		return
	}
	ValidatorsSkippedTotal.WithLabelValues(validator).Inc()
}

// SystemError counts a system error by kind.
func (c *Collector) SystemError(kind string) {
	if !c.Enabled() {
		return
	}
	SystemErrorsTotal.WithLabelValues(kind).Inc()
}

// Memory records a process memory snapshot.
func (c *Collector) Memory(s MemorySnapshot) {
	if !c.Enabled() {
		return
	}
	MemoryResident.Set(float64(s.RSS))
	MemoryHeapAlloc.Set(float64(s.HeapAlloc))
}

var (
	// RowsLoadedTotal tracks the rows built into entity stores.
	// Labels: table (GTFS filename)
	RowsLoadedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gtfs_validator_rows_loaded_total",
			Help: "Total number of CSV rows loaded into entity stores",
		},
		[]string{"table"},
	)

	// TableLoadStatus holds the final load status ordinal per table.
	TableLoadStatus = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "gtfs_validator_table_status",
			Help: "Final load status of each table (0 = no file, 5 = parsable headers and rows)",
		},
		[]string{"table"},
	)

	// NoticesTotal counts notices by code and severity after resolution.
	NoticesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gtfs_validator_notices_total",
			Help: "Total number of notices emitted",
		},
		[]string{"code", "severity"},
	)

	// ValidatorLatency tracks the duration of validator units in seconds.
	ValidatorLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "gtfs_validator_unit_duration_seconds",
			Help: "Validator unit duration in seconds",
			Buckets: []float64{
				0.0001, // 100μs - small tables
				0.001,  // 1ms
				0.01,   // 10ms
				0.1,    // 100ms - typical stop_times scan
				1,      // 1s
				10,     // 10s - very large feeds
			},
		},
		[]string{"validator"},
	)

	// ValidatorsSkippedTotal counts validators that did not run.
	ValidatorsSkippedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gtfs_validator_skipped_total",
			Help: "Validators skipped because a required table did not load",
		},
		[]string{"validator"},
	)

	// SystemErrorsTotal counts system errors by kind.
	SystemErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gtfs_validator_system_errors_total",
			Help: "Total number of system errors",
		},
		[]string{"kind"},
	)

	// MemoryResident tracks the resident set size of the process
	MemoryResident = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "gtfs_validator_memory_resident_bytes",
			Help: "Resident set size in bytes",
		},
	)

	// MemoryHeapAlloc tracks the Go heap in use
	MemoryHeapAlloc = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "gtfs_validator_memory_heap_alloc_bytes",
			Help: "Go heap allocated bytes",
		},
	)
)

// Timer provides a simple timing mechanism for measuring operation durations.
type Timer struct {
	start time.Time
	name  string
}

// NewTimer creates a new timer and starts timing immediately.
func NewTimer(name string) *Timer {
	return &Timer{
		start: time.Now(),
		name:  name,
	}
}

// Name returns the timer name.
func (t *Timer) Name() string {
	return t.name
}

// Stop returns the elapsed duration since creation. It can be called repeatedly.
func (t *Timer) Stop() time.Duration {
	return time.Since(t.start)
}

// ThroughputTracker tracks rows per second while a table loads.
// Thread-safe for concurrent use.
type ThroughputTracker struct {
	mu        sync.Mutex
	count     int64     // Rows since last reset
	lastReset time.Time // Time of last reset
	table     string
}

// NewThroughputTracker creates a new throughput tracker for a table.
func NewThroughputTracker(table string) *ThroughputTracker {
	return &ThroughputTracker{
		lastReset: time.Now(),
		table:     table,
	}
}

// Increment adds n to the row count. Safe for concurrent use.
func (t *ThroughputTracker) Increment(n int64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.count += n
}

// GetAndReset returns rows per second since the last reset and resets the counter.
func (t *ThroughputTracker) GetAndReset() float64 {
	t.mu.Lock()
	defer t.mu.Unlock()

	elapsed := time.Since(t.lastReset).Seconds()
	if elapsed == 0 {
		return 0
	}

	throughput := float64(t.count) / elapsed

	t.count = 0
	t.lastReset = time.Now()

	return throughput
}
