package diag

// Reporter is the minimal contract stages use to hand over warnings.
// Implementations: BagReporter, DedupReporter, Nop.
type Reporter interface {
	Report(d Diagnostic)
}

// BagReporter stores diagnostics in a Bag.
type BagReporter struct{ Bag *Bag }

func (r BagReporter) Report(d Diagnostic) {
	if r.Bag == nil {
		return
	}
	r.Bag.Add(d)
}

type nopReporter struct{}

func (nopReporter) Report(Diagnostic) {}

// Nop discards everything.
var Nop Reporter = nopReporter{}

// Warn is a shortcut for reporting a warning at loc.
func Warn(r Reporter, code Code, loc Location, msg string) {
	if r == nil {
		return
	}
	r.Report(New(SevWarning, code, loc, msg))
}
