// Package diagfmt renders diagnostics for people (Pretty) and for tools (JSON).
package diagfmt

import (
	"errors"
	"fmt"
	"io"

	"github.com/fatih/color"

	"dgen/internal/diag"
)

type palette struct {
	err, warn, info, loc, note *color.Color
}

func newPalette(enabled bool) palette {
	p := palette{
		err:  color.New(color.FgRed, color.Bold),
		warn: color.New(color.FgYellow, color.Bold),
		info: color.New(color.FgCyan),
		loc:  color.New(color.Bold),
		note: color.New(color.Faint),
	}
	for _, c := range []*color.Color{p.err, p.warn, p.info, p.loc, p.note} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

func (p palette) severity(s diag.Severity) *color.Color {
	switch s {
	case diag.SevError:
		return p.err
	case diag.SevWarning:
		return p.warn
	}
	return p.info
}

// Pretty writes one diagnostic per line:
//
//	<path>: <table:row>: <severity> <CODE>: <message>
//	    action: <action>
//
// Items are printed in the given order; call Bag.Sort first for stable output.
func Pretty(w io.Writer, items []diag.Diagnostic, opts PrettyOpts) {
	p := newPalette(opts.Color)
	for _, d := range items {
		if opts.Path != "" {
			fmt.Fprintf(w, "%s: ", opts.Path)
		}
		fmt.Fprintf(w, "%s: %s %s: %s\n",
			p.loc.Sprint(d.Location.String()),
			p.severity(d.Severity).Sprint(d.Severity.Label()),
			d.Code.ID(),
			d.Message)
		if opts.ShowAction && d.Action != "" {
			fmt.Fprintf(w, "    %s %s\n", p.note.Sprint("action:"), d.Action)
		}
	}
}

// PrettyError renders a fatal error. Errors carrying a diagnostic get the
// diagnostic layout with the action shown, anything else a plain line.
func PrettyError(w io.Writer, err error, opts PrettyOpts) {
	if err == nil {
		return
	}
	var de *diag.Error
	if !errors.As(err, &de) {
		p := newPalette(opts.Color)
		if opts.Path != "" {
			fmt.Fprintf(w, "%s: ", opts.Path)
		}
		fmt.Fprintf(w, "%s: %v\n", p.err.Sprint("error"), err)
		return
	}
	d := de.Diag
	if de.Err != nil {
		d.Message += ": " + de.Err.Error()
	}
	opts.ShowAction = true
	Pretty(w, []diag.Diagnostic{d}, opts)
}
