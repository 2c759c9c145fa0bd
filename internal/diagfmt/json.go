package diagfmt

import (
	"encoding/json"
	"io"
	"strconv"

	"dgen/internal/diag"
)

// LocationJSON is a table/row location.
type LocationJSON struct {
	File  string `json:"file,omitempty"`
	Table string `json:"table,omitempty"`
	Row   string `json:"row,omitempty"`
}

// DiagnosticJSON is one diagnostic in JSON form.
type DiagnosticJSON struct {
	Severity string       `json:"severity"`
	Code     string       `json:"code"`
	Title    string       `json:"title"`
	Message  string       `json:"message"`
	Location LocationJSON `json:"location"`
	Action   string       `json:"action,omitempty"`
}

// DiagnosticsOutput is the root of the JSON output.
type DiagnosticsOutput struct {
	Diagnostics []DiagnosticJSON `json:"diagnostics"`
	Count       int              `json:"count"`
}

func rowString(row int) string {
	switch {
	case row == diag.DefaultRow:
		return "default"
	case row > 0:
		return strconv.Itoa(row)
	}
	return ""
}

// BuildDiagnosticsOutput converts items. Count is the number of items
// before Max cut the list.
func BuildDiagnosticsOutput(items []diag.Diagnostic, opts JSONOpts) DiagnosticsOutput {
	out := DiagnosticsOutput{Diagnostics: make([]DiagnosticJSON, 0, len(items)), Count: len(items)}
	for i, d := range items {
		if opts.Max > 0 && i >= opts.Max {
			break
		}
		out.Diagnostics = append(out.Diagnostics, DiagnosticJSON{
			Severity: d.Severity.String(),
			Code:     d.Code.ID(),
			Title:    d.Code.Title(),
			Message:  d.Message,
			Location: LocationJSON{File: opts.Path, Table: d.Location.Table, Row: rowString(d.Location.Row)},
			Action:   d.Action,
		})
	}
	return out
}

// JSON writes items as indented JSON.
func JSON(w io.Writer, items []diag.Diagnostic, opts JSONOpts) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(BuildDiagnosticsOutput(items, opts))
}
