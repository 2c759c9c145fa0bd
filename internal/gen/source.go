package gen

import (
	"context"
	"strconv"
	"strings"

	"dgen/internal/decoder"
	"dgen/internal/diag"
	"dgen/internal/observ"
	"dgen/internal/optimize"
)

// sourceOptions are the parts of the configuration the dispatch source needs.
type sourceOptions struct {
	kind     decoder.Kind
	trace    bool
	reporter diag.Reporter
	stats    *observ.Stats
}

// emitSource implements one dispatch method per table, walking from the
// primary table. Rows are optimized for the dispatched kind first.
func emitSource(ctx context.Context, w *writer, dec *decoder.Decoder, opts sourceOptions) error {
	w.emit(namedCCHeader)
	if opts.trace {
		w.emit(namedCCTraceInclude)
	}
	w.emit(namedCCPreamble)
	for _, t := range dec.Walk() {
		if err := emitDispatchMethod(ctx, w, t, opts); err != nil {
			return err
		}
	}
	w.emit(namedCCFooter)
	return w.err
}

func emitDispatchMethod(ctx context.Context, w *writer, t *decoder.Table, opts sourceOptions) error {
	res, err := optimize.Table(ctx, t, opts.kind, opts.reporter)
	if err != nil {
		return err
	}
	opts.stats.RecordTable(observ.TableStats{
		Table:  t.Name,
		Kind:   opts.kind.String(),
		Before: res.Before,
		After:  res.After,
		Merges: res.Merges,
	})

	w.v.Table = t.Name
	w.v.Citation = t.Citation
	w.emit(parseTableMethodHeader)
	if t.Citation != "" {
		w.emit(parseTableCitation)
	}
	w.emit(parseTableMethodSignature)
	if opts.trace {
		w.emit(methodHeaderTrace)
	}
	for i, r := range res.Rows {
		row := strconv.Itoa(i + 1)
		cond := condition(r)
		if t.Default != nil && i == len(res.Rows)-1 {
			row = "default"
			cond = "true"
		}
		action, err := dispatchAction(w.v, r.Action, opts.kind)
		if err != nil {
			return diag.At(err, diag.Location{Table: t.Name})
		}
		w.v.RowComment = r.String()
		w.v.RowIndex = row
		w.v.Condition = cond
		w.v.Action = action
		w.emit(methodDispatchBegin)
		if opts.trace {
			w.emit(methodDispatchTrace)
		}
		w.emit(parseTableMethodRow)
		w.emit(methodDispatchClose)
	}
	w.emit(parseTableMethodFooter)
	return w.err
}

// condition ANDs the row's interesting patterns in declaration order.
func condition(r decoder.Row) string {
	ps := r.Interesting()
	if len(ps) == 0 {
		return "true"
	}
	parts := make([]string, len(ps))
	for i, p := range ps {
		parts[i] = p.ToCommentedBool()
	}
	return strings.Join(parts, " &&\n      ")
}

// dispatchAction is the expression a dispatch row returns.
func dispatchAction(v *Values, a decoder.Action, k decoder.Kind) (string, error) {
	var out string
	err := decoder.Visit(a,
		func(da *decoder.DecoderAction) error {
			v.installAction(da)
			out = v.kinds[k].Instance
			return nil
		},
		func(dm *decoder.DecoderMethod) error {
			out = "decode_" + dm.Table + "(inst)"
			return nil
		})
	return out, err
}
