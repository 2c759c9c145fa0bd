package optimize

import (
	"context"
	"fmt"
	"strconv"

	"dgen/internal/decoder"
	"dgen/internal/diag"
	"dgen/internal/trace"
)

// Table optimizes t for dispatch to kind k. Dropped rows are reported as
// warnings and the row counts go out as a table-scope trace point.
func Table(ctx context.Context, t *decoder.Table, k decoder.Kind, r diag.Reporter) (Result, error) {
	res, err := Rows(t.Rows, t.Default, ForKind(k))
	if err != nil {
		return Result{}, diag.At(err, diag.Location{Table: t.Name})
	}
	for _, row := range res.Empty {
		diag.Warn(r, diag.OptEmptyRow, diag.Location{Table: t.Name, Row: row},
			"row can never match: its patterns contradict each other")
	}
	for _, row := range res.Shadowed {
		diag.Warn(r, diag.OptShadowedRow, diag.Location{Table: t.Name, Row: row},
			"row is shadowed by an earlier row and is never selected")
	}
	trace.Point(trace.FromContext(ctx), trace.ScopeTable, "optimize:"+t.Name, trace.ParentFromContext(ctx),
		fmt.Sprintf("%s dispatch", k), map[string]string{
			"before": strconv.Itoa(res.Before),
			"after":  strconv.Itoa(res.After),
			"merges": strconv.Itoa(res.Merges),
		})
	return res, nil
}
