package metrics

import (
	"os"
	"runtime"

	"github.com/shirou/gopsutil/v3/mem"
	"github.com/shirou/gopsutil/v3/process"
	"go.uber.org/zap"
)

// MemorySnapshot is the process and system memory at one point of a run.
type MemorySnapshot struct {
	RSS             uint64  // resident set size of this process
	HeapAlloc       uint64  // Go heap in use
	SystemTotal     uint64  // physical memory of the host
	SystemAvailable uint64  // memory available to new processes
	SystemUsedPct   float64 // percentage of host memory in use
}

// TakeMemorySnapshot reads the current memory figures. Figures that the
// platform cannot provide are left at zero.
func TakeMemorySnapshot() MemorySnapshot {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	snap := MemorySnapshot{HeapAlloc: ms.HeapAlloc}

	if proc, err := process.NewProcess(int32(os.Getpid())); err == nil { //nolint:gosec // pid fits in int32
		if info, err := proc.MemoryInfo(); err == nil {
			snap.RSS = info.RSS
		}
	}
	if vm, err := mem.VirtualMemory(); err == nil {
		snap.SystemTotal = vm.Total
		snap.SystemAvailable = vm.Available
		snap.SystemUsedPct = vm.UsedPercent
	}
	return snap
}

// Fields renders the snapshot as zap fields.
func (s MemorySnapshot) Fields() []zap.Field {
	return []zap.Field{
		zap.Uint64("rss_bytes", s.RSS),
		zap.Uint64("heap_alloc_bytes", s.HeapAlloc),
		zap.Uint64("system_total_bytes", s.SystemTotal),
		zap.Uint64("system_available_bytes", s.SystemAvailable),
		zap.Float64("system_used_percent", s.SystemUsedPct),
	}
}
