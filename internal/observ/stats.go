package observ

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// TableStats is the optimizer outcome for one table.
type TableStats struct {
	Table  string
	Kind   string
	Before int
	After  int
	Merges int
}

// ArtifactStats describes one rendered file.
type ArtifactStats struct {
	Path    string
	Bytes   int
	Symbols int
}

// Stats accumulates generator output statistics. Safe for concurrent use.
type Stats struct {
	mu        sync.Mutex
	tables    map[string]TableStats
	artifacts []ArtifactStats
}

func NewStats() *Stats {
	return &Stats{tables: make(map[string]TableStats)}
}

// RecordTable stores the optimizer counts for a table; a repeated table
// and kind overwrites the earlier entry.
func (s *Stats) RecordTable(ts TableStats) {
	if s == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tables[ts.Table+"/"+ts.Kind] = ts
}

func (s *Stats) RecordArtifact(as ArtifactStats) {
	if s == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.artifacts = append(s.artifacts, as)
}

// Tables returns the table entries sorted by table then kind.
func (s *Stats) Tables() []TableStats {
	if s == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]TableStats, 0, len(s.tables))
	for _, ts := range s.tables {
		out = append(out, ts)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Table != out[j].Table {
			return out[i].Table < out[j].Table
		}
		return out[i].Kind < out[j].Kind
	})
	return out
}

// Artifacts returns the artifact entries sorted by path.
func (s *Stats) Artifacts() []ArtifactStats {
	if s == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	out := append([]ArtifactStats(nil), s.artifacts...)
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}

// Summary renders both sections as a plain-text table.
func (s *Stats) Summary() string {
	var b strings.Builder
	tables := s.Tables()
	if len(tables) > 0 {
		b.WriteString("tables:\n")
		for _, ts := range tables {
			fmt.Fprintf(&b, "  %-28s %-8s rows %3d -> %3d", ts.Table, ts.Kind, ts.Before, ts.After)
			if ts.Merges > 0 {
				fmt.Fprintf(&b, "  (%d merged)", ts.Merges)
			}
			b.WriteString("\n")
		}
	}
	arts := s.Artifacts()
	if len(arts) > 0 {
		b.WriteString("artifacts:\n")
		for _, as := range arts {
			fmt.Fprintf(&b, "  %-44s %7d bytes %4d symbols\n", as.Path, as.Bytes, as.Symbols)
		}
	}
	return b.String()
}
