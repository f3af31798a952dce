package profiling

import (
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Lightweight accumulating profiler for engine operations. Totals grow until
// Reset is called.

// Entry is the accumulated cost of one named operation.
type Entry struct {
	Name  string
	Total time.Duration
	Calls int
}

var (
	mu      sync.Mutex
	entries = make(map[string]*Entry)
)

// Track returns a stop function that records the elapsed time under the given name.
// Usage: defer profiling.Track("csg.Union")()
func Track(name string) func() {
	start := time.Now()
	return func() {
		d := time.Since(start)
		mu.Lock()
		e, ok := entries[name]
		if !ok {
			e = &Entry{Name: name}
			entries[name] = e
		}
		e.Total += d
		e.Calls++
		mu.Unlock()
	}
}

// Reset clears all totals.
func Reset() {
	mu.Lock()
	clear(entries)
	mu.Unlock()
}

// Snapshot returns the current totals, most expensive first.
func Snapshot() []Entry {
	mu.Lock()
	out := make([]Entry, 0, len(entries))
	for _, e := range entries {
		out = append(out, *e)
	}
	mu.Unlock()
	sort.Slice(out, func(i, j int) bool {
		if out[i].Total != out[j].Total {
			return out[i].Total > out[j].Total
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// TopN formats the n most expensive operations.
// Example: "csg.Subtract:4.2ms(3), csg.Retesselate:2.1ms(5)"
func TopN(n int) string {
	ss := Snapshot()
	if n > len(ss) {
		n = len(ss)
	}
	parts := make([]string, 0, n)
	for _, e := range ss[:n] {
		parts = append(parts, e.Name+":"+formatMs(e.Total)+"("+strconv.Itoa(e.Calls)+")")
	}
	return strings.Join(parts, ", ")
}

// formatMs keeps one decimal and drops a trailing ".0".
func formatMs(d time.Duration) string {
	ms := float64(d.Microseconds()) / 1000.0
	s := strconv.FormatFloat(ms, 'f', 1, 64)
	return strings.TrimSuffix(s, ".0") + "ms"
}
