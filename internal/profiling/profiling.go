package profiling

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
)

// Lightweight per-frame CPU profiler. Safe to call from the worker goroutine;
// its time lands in whichever frame is open when the call finishes.

var (
	mu          sync.Mutex
	frameTotals = make(map[string]time.Duration)
)

// Track returns a stop function that records the elapsed time under the given name.
// Usage: defer profiling.Track("subsystem.Operation")()
func Track(name string) func() {
	start := time.Now()
	return func() {
		d := time.Since(start)
		mu.Lock()
		frameTotals[name] += d
		mu.Unlock()
	}
}

// ResetFrame clears current per-frame totals. Call at the start of each frame.
func ResetFrame() {
	mu.Lock()
	clear(frameTotals)
	mu.Unlock()
}

// Snapshot returns a copy of current per-frame totals.
func Snapshot() map[string]time.Duration {
	mu.Lock()
	defer mu.Unlock()
	out := make(map[string]time.Duration, len(frameTotals))
	for k, v := range frameTotals {
		out[k] = v
	}
	return out
}

// SumWithPrefix adds up every bucket whose name starts with prefix.
func SumWithPrefix(prefix string) time.Duration {
	mu.Lock()
	defer mu.Unlock()
	var total time.Duration
	for k, v := range frameTotals {
		if strings.HasPrefix(k, prefix) {
			total += v
		}
	}
	return total
}

// TopN formats the n most expensive buckets of the current frame.
// Example: "streaming.Poll:4.2ms, meshing.Build:2.1ms"
func TopN(n int) string {
	ss := Snapshot()
	names := make([]string, 0, len(ss))
	for k := range ss {
		names = append(names, k)
	}
	sort.Slice(names, func(i, j int) bool {
		if ss[names[i]] == ss[names[j]] {
			return names[i] < names[j]
		}
		return ss[names[i]] > ss[names[j]]
	})
	if n > len(names) {
		n = len(names)
	}
	parts := make([]string, 0, n)
	for _, name := range names[:n] {
		ms := float64(ss[name].Microseconds()) / 1000.0
		parts = append(parts, fmt.Sprintf("%s:%.1fms", name, ms))
	}
	return strings.Join(parts, ", ")
}
