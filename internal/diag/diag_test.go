package diag

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorCarriesLocationAndAction(t *testing.T) {
	err := Errorf(ActUnknownTable, "table %q is not defined", "shift").WithAction("->shift")
	wrapped := fmt.Errorf("augment: %w", At(err, Location{Table: "main", Row: 3}))

	var de *Error
	if !errors.As(wrapped, &de) {
		t.Fatalf("expected *Error in chain")
	}
	want := `error ACT2003 main:3 table "shift" is not defined (action ->shift)`
	if got := de.Error(); got != want {
		t.Fatalf("Error() = %q, want %q", got, want)
	}
	if CodeOf(wrapped) != ActUnknownTable {
		t.Fatalf("CodeOf = %v", CodeOf(wrapped))
	}
	if !errors.Is(wrapped, &Error{Diag: Diagnostic{Code: ActUnknownTable}}) {
		t.Fatalf("errors.Is by code failed")
	}
}

func TestAtKeepsInnermostLocation(t *testing.T) {
	err := At(Errorf(CfgBadPattern, "bad"), Location{Table: "inner", Row: DefaultRow})
	err = At(err, Location{Table: "outer", Row: 7})
	var de *Error
	errors.As(err, &de)
	if got := de.Diag.Location.String(); got != "inner:default" {
		t.Fatalf("location = %q, want inner:default", got)
	}
}

func TestDedupReporterAndSort(t *testing.T) {
	bag := NewBag(10)
	r := NewDedupReporter(BagReporter{Bag: bag})
	Warn(r, OptShadowedRow, Location{Table: "b", Row: 2}, "shadowed")
	Warn(r, OptShadowedRow, Location{Table: "b", Row: 2}, "shadowed")
	Warn(r, OptEmptyRow, Location{Table: "a", Row: 5}, "empty")
	if bag.Len() != 2 {
		t.Fatalf("bag.Len() = %d, want 2", bag.Len())
	}
	bag.Sort()
	got := FormatShort(bag.Items())
	want := "warning OPT3001 b:2 shadowed\nwarning OPT3002 a:5 empty"
	if got != want {
		t.Fatalf("FormatShort:\nwant:\n%s\ngot:\n%s", want, got)
	}
	if bag.Items()[0].Location.Table != "a" {
		t.Fatalf("sort did not order by table")
	}
}

func TestBagLimit(t *testing.T) {
	bag := NewBag(1)
	if !bag.Add(New(SevInfo, CfgInfo, Location{}, "one")) {
		t.Fatalf("first add rejected")
	}
	if bag.Add(New(SevError, CfgInfo, Location{}, "two")) {
		t.Fatalf("add beyond limit accepted")
	}
	if bag.HasErrors() {
		t.Fatalf("dropped error must not count")
	}
}
