package benchmark

import "runtime"

// MemSampler reports the amount of memory currently in use, in bytes.
// Implementations may trigger a garbage collection before sampling, so a
// single sample can be slow; the stack orders its time and memory samples so
// that this cost stays out of the measured elapsed time.
type MemSampler interface {
	// UsedBytes returns the memory in use at the time of the call.
	UsedBytes() int64
}

// RuntimeSampler samples memory usage from the Go runtime. It requests a
// garbage collection before every reading so that dead objects do not count
// as used memory. Precision is best effort: the runtime gives no guarantee
// that a collection is complete when GC returns.
type RuntimeSampler struct{}

// NewRuntimeSampler creates a new RuntimeSampler.
func NewRuntimeSampler() *RuntimeSampler {
	return &RuntimeSampler{}
}

// UsedBytes returns heap bytes in use plus runtime-managed off-heap memory
// (goroutine stacks, mspan and mcache structures).
func (s *RuntimeSampler) UsedBytes() int64 {
	runtime.GC()

	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return int64(m.HeapAlloc + m.StackInuse + m.MSpanInuse + m.MCacheInuse)
}
