package ui

import (
	"errors"
	"strings"
	"testing"

	"dgen/internal/pipeline"
)

func TestProgressModel_ApplyEvent(t *testing.T) {
	m := NewProgressModel("dgen", []string{"a.yaml", "b.yaml"}, pipeline.StageWrite, nil).(*progressModel)

	m.applyEvent(pipeline.Event{File: "a.yaml", Stage: pipeline.StageEmit, Status: pipeline.StatusWorking})
	if m.items[0].status != "emitting" {
		t.Fatalf("status = %q, want emitting", m.items[0].status)
	}
	m.applyEvent(pipeline.Event{File: "a.yaml", Stage: pipeline.StageEmit, Status: pipeline.StatusDone})
	if m.items[0].status != "emitting" {
		t.Fatalf("intermediate done changed status to %q", m.items[0].status)
	}
	m.applyEvent(pipeline.Event{File: "a.yaml", Stage: pipeline.StageWrite, Status: pipeline.StatusDone})
	if m.items[0].status != "done" {
		t.Fatalf("status = %q, want done", m.items[0].status)
	}

	m.applyEvent(pipeline.Event{File: "b.yaml", Stage: pipeline.StageAugment, Status: pipeline.StatusError, Err: errors.New("boom")})
	m.applyEvent(pipeline.Event{File: "b.yaml", Stage: pipeline.StageEmit, Status: pipeline.StatusWorking})
	if m.items[1].status != "error" || m.items[1].err == nil {
		t.Fatalf("error status lost: %+v", m.items[1])
	}
	if m.finished() != 2 {
		t.Fatalf("finished = %d", m.finished())
	}
	m.applyEvent(pipeline.Event{File: "unknown.yaml", Stage: pipeline.StageLoad, Status: pipeline.StatusWorking})

	view := m.View()
	if !strings.Contains(view, "(2/2)") || !strings.Contains(view, "boom") {
		t.Fatalf("view:\n%s", view)
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in    string
		width int
		want  string
	}{
		{"short", 10, "short"},
		{"gen/arm32_decode.yaml", 10, "gen/arm..."},
		{"tables/arm32.yaml", 12, "tables/ar..."},
		{"abcdef", 3, "abc"},
		{"abc", 0, "abc"},
	}
	for _, tt := range tests {
		if got := truncate(tt.in, tt.width); got != tt.want {
			t.Fatalf("truncate(%q, %d) = %q, want %q", tt.in, tt.width, got, tt.want)
		}
		if tt.width > 0 && len(tt.in) > tt.width && len(tt.want) != tt.width {
			t.Fatalf("truncate(%q, %d) must fill the width exactly", tt.in, tt.width)
		}
	}
}
