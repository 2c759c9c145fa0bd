package tables

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/renameio/v2"
	"github.com/vmihailenco/msgpack/v5"

	"dgen/internal/decoder"
	"dgen/internal/diag"
)

const snapshotVersion = "dgs1"

type snapshot struct {
	Version string `msgpack:"version"`
	File    File   `msgpack:"file"`
}

// FromDecoder converts the model back into its file form.
func FromDecoder(d *decoder.Decoder) (*File, error) {
	f := &File{Decoder: d.Name}
	if d.Primary != nil {
		f.Primary = d.Primary.Name
	}
	for _, t := range d.Tables {
		tf := TableFile{Name: t.Name, Citation: t.Citation}
		for i, r := range t.Rows {
			rf, err := rowFile(r)
			if err != nil {
				return nil, diag.At(err, diag.Location{Table: t.Name, Row: i + 1})
			}
			tf.Rows = append(tf.Rows, rf)
		}
		if t.Default != nil {
			rf, err := rowFile(*t.Default)
			if err != nil {
				return nil, diag.At(err, diag.Location{Table: t.Name, Row: diag.DefaultRow})
			}
			tf.Default = &rf
		}
		f.Tables = append(f.Tables, tf)
	}
	return f, nil
}

func rowFile(r decoder.Row) (RowFile, error) {
	var rf RowFile
	for _, p := range r.Patterns {
		rf.Patterns = append(rf.Patterns, p.String())
	}
	err := decoder.Visit(r.Action,
		func(a *decoder.DecoderAction) error {
			af := &ActionFile{
				Class:             a.Class,
				Baseline:          a.Baseline,
				Actual:            a.Actual,
				Rule:              a.Rule,
				Pattern:           a.Pattern,
				GeneratedBaseline: a.GeneratedBaseline,
				Defs:              a.Defs,
			}
			for _, s := range a.Safety {
				af.Safety = append(af.Safety, SafetyFile{Qualifier: s.Qualifier, Cond: s.Cond, Violation: s.Violation})
			}
			if a.Constraints != nil {
				af.Other = a.Constraints.Other
				for _, p := range a.Constraints.Restrictions {
					af.Restrictions = append(af.Restrictions, p.String())
				}
			}
			rf.Action = af
			return nil
		},
		func(m *decoder.DecoderMethod) error {
			rf.Call = m.Table
			return nil
		})
	return rf, err
}

// EncodeSnapshot renders f as a versioned msgpack snapshot.
func EncodeSnapshot(f *File) ([]byte, error) {
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	enc.SetSortMapKeys(true)
	if err := enc.Encode(snapshot{Version: snapshotVersion, File: *f}); err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	return buf.Bytes(), nil
}

// WriteSnapshot atomically replaces path with a snapshot of d.
func WriteSnapshot(path string, d *decoder.Decoder) error {
	f, err := FromDecoder(d)
	if err != nil {
		return err
	}
	data, err := EncodeSnapshot(f)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create snapshot dir: %w", err)
	}
	if err := renameio.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	return nil
}
