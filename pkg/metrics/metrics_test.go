package metrics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNilCollectorIsNoop(t *testing.T) {
	var c *Collector
	assert.False(t, c.Enabled())
	assert.NotPanics(t, func() {
		c.RowsLoaded("stops.txt", 10)
		c.TableStatus("stops.txt", 5)
		c.NoticesEmitted("unused_shape", "WARNING", 1)
		c.ObserveValidator("shape_usage", time.Millisecond)
		c.ValidatorSkipped("shape_usage")
		c.SystemError("runtime_exception_in_validator_error")
	})
	assert.Empty(t, c.GetAll())
}

func TestCollectorRecordsRows(t *testing.T) {
	c := NewCollector("run-rows", true)

	c.RowsLoaded("stops.txt", 3)
	c.RowsLoaded("stops.txt", 4)
	c.RowsLoaded("stops.txt", 0)

	assert.Equal(t, map[string]int64{"stops.txt": 7}, c.GetAll()["rows"])
	assert.Equal(t, "run-rows", c.GetAll()["run_id"])
}

func TestDisabledCollectorRecordsNothing(t *testing.T) {
	c := NewCollector("run-off", false)

	c.RowsLoaded("stops.txt", 9)

	assert.False(t, c.Enabled())
	assert.Empty(t, c.GetAll()["rows"])
}

func TestTimerAndThroughput(t *testing.T) {
	timer := NewTimer("load")
	tracker := NewThroughputTracker("stop_times.txt")
	tracker.Increment(100)
	time.Sleep(5 * time.Millisecond)

	assert.Greater(t, tracker.GetAndReset(), float64(0))
	assert.GreaterOrEqual(t, timer.Stop(), 5*time.Millisecond)
	assert.Equal(t, "load", timer.Name())
}

func TestTakeMemorySnapshot(t *testing.T) {
	snap := TakeMemorySnapshot()
	assert.NotZero(t, snap.HeapAlloc)
	assert.Len(t, snap.Fields(), 5)
}
