package profiling

import (
	"strings"
	"testing"
	"time"
)

func TestTrackAccumulates(t *testing.T) {
	Reset()
	for i := 0; i < 3; i++ {
		Track("csg.Union")()
	}
	Track("csg.Subtract")()

	ss := Snapshot()
	if len(ss) != 2 {
		t.Fatalf("got %d entries, want 2", len(ss))
	}
	calls := map[string]int{}
	for _, e := range ss {
		calls[e.Name] = e.Calls
	}
	if calls["csg.Union"] != 3 {
		t.Fatalf("got %d union calls, want 3", calls["csg.Union"])
	}
	if calls["csg.Subtract"] != 1 {
		t.Fatalf("got %d subtract calls, want 1", calls["csg.Subtract"])
	}

	Reset()
	if n := len(Snapshot()); n != 0 {
		t.Fatalf("got %d entries after reset, want 0", n)
	}
}

func TestTopNOrdersByTotal(t *testing.T) {
	Reset()
	mu.Lock()
	entries["fast"] = &Entry{Name: "fast", Total: time.Millisecond, Calls: 1}
	entries["slow"] = &Entry{Name: "slow", Total: 4200 * time.Microsecond, Calls: 2}
	mu.Unlock()
	defer Reset()

	got := TopN(5)
	want := "slow:4.2ms(2), fast:1ms(1)"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
	if one := TopN(1); strings.Contains(one, "fast") {
		t.Fatalf("TopN(1) = %q, should only hold the slowest entry", one)
	}
}
