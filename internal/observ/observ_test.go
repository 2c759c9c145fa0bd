package observ

import (
	"strings"
	"sync"
	"testing"
)

func TestStats_ConcurrentRecordsAreSorted(t *testing.T) {
	s := NewStats()
	var wg sync.WaitGroup
	for _, name := range []string{"shift", "main", "dp_misc"} {
		wg.Add(1)
		go func(name string) {
			defer wg.Done()
			s.RecordTable(TableStats{Table: name, Kind: "baseline", Before: 4, After: 3, Merges: 1})
			s.RecordArtifact(ArtifactStats{Path: name + ".cc", Bytes: 10})
		}(name)
	}
	wg.Wait()

	tables := s.Tables()
	if len(tables) != 3 || tables[0].Table != "dp_misc" || tables[2].Table != "shift" {
		t.Fatalf("tables = %+v", tables)
	}
	sum := s.Summary()
	if !strings.Contains(sum, "rows   4 ->   3  (1 merged)") || !strings.Contains(sum, "main.cc") {
		t.Fatalf("summary:\n%s", sum)
	}
}

func TestTimer_Report(t *testing.T) {
	tm := NewTimer()
	idx := tm.Begin("load")
	tm.End(idx, "3 tables")
	tm.End(42, "ignored")
	r := tm.Report()
	if len(r.Phases) != 1 || r.Phases[0].Note != "3 tables" {
		t.Fatalf("report = %+v", r)
	}
	if !strings.Contains(tm.Summary(), "// 3 tables") {
		t.Fatalf("summary = %q", tm.Summary())
	}
	var nilTimer *Timer
	nilTimer.End(nilTimer.Begin("x"), "")
}
