package tables

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/vmihailenco/msgpack/v5"
	"gopkg.in/yaml.v3"

	"dgen/internal/decoder"
	"dgen/internal/diag"
)

// Format is a table file encoding.
type Format uint8

const (
	FormatYAML Format = iota + 1
	FormatTOML
	FormatSnapshot
)

func (f Format) String() string {
	switch f {
	case FormatYAML:
		return "yaml"
	case FormatTOML:
		return "toml"
	case FormatSnapshot:
		return "snapshot"
	default:
		return "unknown"
	}
}

// DetectFormat picks the format from the file extension.
func DetectFormat(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	case ".dgs", ".msgpack":
		return FormatSnapshot, nil
	}
	return 0, diag.Errorf(diag.CfgBadTableFile, "%s: unknown table file extension (want .yaml, .toml or .dgs)", path)
}

// Load reads, decodes and builds the decoder stored at path.
func Load(path string) (*decoder.Decoder, error) {
	f, err := ReadFile(path)
	if err != nil {
		return nil, err
	}
	d, err := Build(f)
	if err != nil {
		return nil, err
	}
	if d.Name == "" {
		d.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return d, nil
}

// ReadFile reads and decodes path without building the model.
func ReadFile(path string) (*File, error) {
	format, err := DetectFormat(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, diag.Wrap(diag.CfgBadTableFile, err, "read table file")
	}
	f, err := Decode(data, format)
	if err != nil {
		return nil, diag.Wrap(diag.CfgBadTableFile, err, "%s", path)
	}
	return f, nil
}

// Decode parses data in the given format. Unknown keys are errors in every
// format.
func Decode(data []byte, format Format) (*File, error) {
	var f File
	switch format {
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&f); err != nil {
			if errors.Is(err, io.EOF) {
				return nil, errors.New("table file is empty")
			}
			return nil, err
		}
		if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
			return nil, errors.New("table file contains multiple documents or trailing content")
		}
	case FormatTOML:
		meta, err := toml.Decode(string(data), &f)
		if err != nil {
			return nil, err
		}
		if keys := unknownTOMLKeys(meta); len(keys) > 0 {
			return nil, errors.New("unknown keys: " + strings.Join(keys, ", "))
		}
	case FormatSnapshot:
		dec := msgpack.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields(true)
		var snap snapshot
		if err := dec.Decode(&snap); err != nil {
			return nil, err
		}
		if snap.Version != snapshotVersion {
			return nil, errors.New("unsupported snapshot version " + snap.Version)
		}
		f = snap.File
	default:
		return nil, errors.New("unknown table format")
	}
	return &f, nil
}

// unknownTOMLKeys lists undecoded keys, sorted. Keys below a safety entry
// are consumed by SafetyFile.UnmarshalTOML, which checks them itself, but
// the decoder still reports them as undecoded.
func unknownTOMLKeys(meta toml.MetaData) []string {
	var keys []string
	for _, k := range meta.Undecoded() {
		if belowSafety(k) {
			continue
		}
		keys = append(keys, k.String())
	}
	sort.Strings(keys)
	return keys
}

func belowSafety(k toml.Key) bool {
	for i := 0; i+1 < len(k); i++ {
		if k[i] == "safety" && i > 0 && k[i-1] == "action" {
			return true
		}
	}
	return false
}

// Build turns a decoded file into the decoder model. The primary table is
// the one named by Primary, else the first table.
func Build(f *File) (*decoder.Decoder, error) {
	if f == nil || len(f.Tables) == 0 {
		return nil, diag.Errorf(diag.CfgNoPrimary, "table file declares no tables")
	}
	d := &decoder.Decoder{Name: f.Decoder, Tables: make([]*decoder.Table, 0, len(f.Tables))}
	for _, tf := range f.Tables {
		if strings.TrimSpace(tf.Name) == "" {
			return nil, diag.Errorf(diag.CfgBadTableFile, "table #%d has no name", len(d.Tables)+1)
		}
		t := &decoder.Table{Name: tf.Name, Citation: tf.Citation, Rows: make([]decoder.Row, 0, len(tf.Rows))}
		for i, rf := range tf.Rows {
			r, err := buildRow(rf)
			if err != nil {
				return nil, diag.At(err, diag.Location{Table: tf.Name, Row: i + 1})
			}
			t.Rows = append(t.Rows, r)
		}
		if tf.Default != nil {
			r, err := buildRow(*tf.Default)
			if err != nil {
				return nil, diag.At(err, diag.Location{Table: tf.Name, Row: diag.DefaultRow})
			}
			t.Default = &r
		}
		d.Tables = append(d.Tables, t)
	}
	primary := f.Primary
	if primary == "" {
		primary = d.Tables[0].Name
	}
	p, ok := d.Table(primary)
	if !ok {
		return nil, diag.Errorf(diag.CfgNoPrimary, "primary table %q is not declared", primary)
	}
	d.Primary = p
	return d, nil
}

func buildRow(rf RowFile) (decoder.Row, error) {
	var r decoder.Row
	for _, spec := range rf.Patterns {
		p, err := decoder.ParsePattern(spec)
		if err != nil {
			return decoder.Row{}, err
		}
		r.Patterns = append(r.Patterns, p)
	}
	switch {
	case rf.Call != "" && rf.Action != nil:
		return decoder.Row{}, diag.Errorf(diag.CfgBadTableFile, "row has both call and action")
	case rf.Call != "":
		r.Action = &decoder.DecoderMethod{Table: rf.Call}
	case rf.Action != nil:
		a, err := buildAction(rf.Action)
		if err != nil {
			return decoder.Row{}, err
		}
		r.Action = a
	default:
		return decoder.Row{}, diag.Errorf(diag.CfgBadTableFile, "row has neither call nor action")
	}
	return r, nil
}

func buildAction(af *ActionFile) (*decoder.DecoderAction, error) {
	a := &decoder.DecoderAction{
		Class:             af.Class,
		Baseline:          af.Baseline,
		Actual:            af.Actual,
		Rule:              af.Rule,
		Pattern:           af.Pattern,
		GeneratedBaseline: af.GeneratedBaseline,
		Defs:              af.Defs,
	}
	for _, s := range af.Safety {
		a.Safety = append(a.Safety, decoder.Safety{Qualifier: s.Qualifier, Cond: s.Cond, Violation: s.Violation})
	}
	if af.Other != "" || len(af.Restrictions) > 0 {
		c := &decoder.Constraints{Other: af.Other}
		for _, spec := range af.Restrictions {
			p, err := decoder.ParsePattern(spec)
			if err != nil {
				return nil, err
			}
			c.Restrictions = append(c.Restrictions, p)
		}
		a.Constraints = c
	}
	return a, nil
}
