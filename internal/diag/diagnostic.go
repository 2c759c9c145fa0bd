package diag

import (
	"strconv"
	"strings"
)

// DefaultRow is the Location.Row value naming a table's default row.
const DefaultRow = -1

// Location points into the decoder description. Row is 1-based; zero means
// the finding is about the table (or the whole decoder when Table is empty).
type Location struct {
	Table string
	Row   int
}

func (l Location) String() string {
	if l.Table == "" {
		return "decoder"
	}
	switch {
	case l.Row == DefaultRow:
		return l.Table + ":default"
	case l.Row > 0:
		return l.Table + ":" + strconv.Itoa(l.Row)
	}
	return l.Table
}

type Diagnostic struct {
	Severity Severity
	Code     Code
	Message  string
	Location Location
	Action   string
}

func New(sev Severity, code Code, loc Location, msg string) Diagnostic {
	return Diagnostic{
		Severity: sev,
		Code:     code,
		Location: loc,
		Message:  msg,
	}
}

// WithAction records the lexical description of the action involved.
func (d Diagnostic) WithAction(desc string) Diagnostic {
	d.Action = desc
	return d
}

// Short renders "error ACT2003 table:row message".
func (d Diagnostic) Short() string {
	var b strings.Builder
	b.WriteString(d.Severity.Label())
	b.WriteByte(' ')
	b.WriteString(d.Code.ID())
	b.WriteByte(' ')
	b.WriteString(d.Location.String())
	b.WriteByte(' ')
	b.WriteString(sanitizeMessage(d.Message))
	if d.Action != "" {
		b.WriteString(" (action ")
		b.WriteString(d.Action)
		b.WriteByte(')')
	}
	return b.String()
}
