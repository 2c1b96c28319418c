package internaldefs

import (
	"strings"
	"testing"

	"github.com/parentsmadrasa/sessionkit"
)

func TestCounterDefsCoverEveryCounter(t *testing.T) {
	seen := make(map[sessionkit.MetricID]string)
	for _, def := range CounterDefs {
		if !strings.HasPrefix(def.Name, "portal_session_") || !strings.HasSuffix(def.Name, "_total") {
			t.Fatalf("unexpected counter name %q", def.Name)
		}
		if prev, ok := seen[def.ID]; ok {
			t.Fatalf("metric %d exported twice as %q and %q", def.ID, prev, def.Name)
		}
		seen[def.ID] = def.Name
	}
	if _, ok := seen[sessionkit.MetricLogoutLatency]; ok {
		t.Fatal("latency histogram must not be exported as a counter")
	}
	if len(seen)+len(HistogramDefs) != int(sessionkit.MetricLogoutLatency)+1 {
		t.Fatalf("expected every metric to be exported, got %d counters", len(seen))
	}
}

func TestCumulativeBuckets(t *testing.T) {
	got := CumulativeBuckets(NormalizeBuckets([]uint64{1, 2, 3}))
	want := [8]uint64{1, 3, 6, 6, 6, 6, 6, 6}
	if got != want {
		t.Fatalf("expected %v, got %v", want, got)
	}
	if len(HistogramBounds) != len(HistogramBoundSeconds)+1 {
		t.Fatal("expected numeric bounds for every finite bucket")
	}
}
