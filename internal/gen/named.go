package gen

import (
	"dgen/internal/decoder"
	"dgen/internal/diag"
)

// eachAction calls fn for every decoder action row of tables, default rows
// last. row is 1-based or diag.DefaultRow. Errors are located at the row.
func eachAction(tables []*decoder.Table, fn func(t *decoder.Table, row int, r decoder.Row, a *decoder.DecoderAction) error) error {
	for _, t := range tables {
		for i, r := range t.AllRows() {
			row := i + 1
			if t.Default != nil && i == len(t.Rows) {
				row = diag.DefaultRow
			}
			err := decoder.Visit(r.Action,
				func(a *decoder.DecoderAction) error { return fn(t, row, r, a) },
				func(*decoder.DecoderMethod) error { return nil })
			if err != nil {
				return diag.At(err, diag.Location{Table: t.Name, Row: row})
			}
		}
	}
	return nil
}

// emitNamedBases declares one named wrapper per distinct generated baseline.
func emitNamedBases(w *writer, dec *decoder.Decoder) error {
	w.emit(namedBasesHeader)
	err := eachAction(dec.Tables, func(_ *decoder.Table, _ int, _ decoder.Row, a *decoder.DecoderAction) error {
		if a.GeneratedBaseline == "" || !w.mark("Named"+a.GeneratedBaseline) {
			return nil
		}
		w.v.GenBase = a.GeneratedBaseline
		w.emit(generatedBaselineClass)
		return nil
	})
	if err != nil {
		return err
	}
	w.emit(namedBasesFooter)
	return w.err
}

// emitNamedClasses declares the rule classes and their named wrappers, one
// of each per distinct symbol and kind.
func emitNamedClasses(w *writer, dec *decoder.Decoder) error {
	w.emit(namedClassesHeader)
	w.emit(ruleClassesHeader)
	err := eachAction(dec.Tables, func(_ *decoder.Table, _ int, _ decoder.Row, a *decoder.DecoderAction) error {
		w.v.installAction(a)
		for _, k := range decoder.Kinds {
			if w.once(ruleClassSym, k) {
				w.emitKind(ruleClassDecl, k)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	w.emit(ruleClassesFooter)

	w.emit(namedDecodersHeader)
	err = eachAction(dec.Tables, func(_ *decoder.Table, _ int, _ decoder.Row, a *decoder.DecoderAction) error {
		w.v.installAction(a)
		for _, k := range decoder.Kinds {
			if w.once(namedClassDeclareSym, k) {
				w.emitKind(namedClassDeclare, k)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	w.emit(namedClassesFooter)
	return w.err
}

// emitNamedDecoder declares the decoder state: one instance field per
// distinct instance of either kind, then one dispatch method per table.
func emitNamedDecoder(w *writer, dec *decoder.Decoder) error {
	w.emit(namedDecoderHeader)
	err := eachAction(dec.Tables, func(_ *decoder.Table, _ int, _ decoder.Row, a *decoder.DecoderAction) error {
		w.v.installAction(a)
		for _, k := range decoder.Kinds {
			if w.once(decoderStateFieldName, k) {
				w.emitKind(decoderStateField, k)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	w.emit(decoderStateDecoderComments)
	for _, t := range dec.Walk() {
		w.v.Table = t.Name
		w.emit(decoderStateDecoder)
	}
	w.emit(namedDecoderFooter)
	return w.err
}
