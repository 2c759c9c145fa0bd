// Package tables reads decoder descriptions from disk and turns them into
// a decoder.Decoder. YAML and TOML are the authoring formats; msgpack
// snapshots (.dgs) are a compact frozen form of either.
package tables

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// File is the on-disk decoder description.
type File struct {
	Decoder string      `yaml:"decoder" toml:"decoder" msgpack:"decoder"`
	Primary string      `yaml:"primary,omitempty" toml:"primary" msgpack:"primary,omitempty"`
	Tables  []TableFile `yaml:"tables" toml:"tables" msgpack:"tables"`
}

type TableFile struct {
	Name     string    `yaml:"name" toml:"name" msgpack:"name"`
	Citation string    `yaml:"citation,omitempty" toml:"citation" msgpack:"citation,omitempty"`
	Rows     []RowFile `yaml:"rows" toml:"rows" msgpack:"rows"`
	Default  *RowFile  `yaml:"default,omitempty" toml:"default" msgpack:"default,omitempty"`
}

// RowFile holds a row. Exactly one of Call and Action is set.
type RowFile struct {
	Patterns []string    `yaml:"patterns,omitempty" toml:"patterns" msgpack:"patterns,omitempty"`
	Call     string      `yaml:"call,omitempty" toml:"call" msgpack:"call,omitempty"`
	Action   *ActionFile `yaml:"action,omitempty" toml:"action" msgpack:"action,omitempty"`
}

type ActionFile struct {
	Class             string       `yaml:"class,omitempty" toml:"class" msgpack:"class,omitempty"`
	Baseline          string       `yaml:"baseline,omitempty" toml:"baseline" msgpack:"baseline,omitempty"`
	Actual            string       `yaml:"actual,omitempty" toml:"actual" msgpack:"actual,omitempty"`
	Rule              string       `yaml:"rule,omitempty" toml:"rule" msgpack:"rule,omitempty"`
	Pattern           string       `yaml:"pattern,omitempty" toml:"pattern" msgpack:"pattern,omitempty"`
	GeneratedBaseline string       `yaml:"generated-baseline,omitempty" toml:"generated-baseline" msgpack:"generated_baseline,omitempty"`
	Safety            []SafetyFile `yaml:"safety,omitempty" toml:"safety" msgpack:"safety,omitempty"`
	Other             string       `yaml:"other,omitempty" toml:"other" msgpack:"other,omitempty"`
	Restrictions      []string     `yaml:"restrictions,omitempty" toml:"restrictions" msgpack:"restrictions,omitempty"`
	Defs              string       `yaml:"defs,omitempty" toml:"defs" msgpack:"defs,omitempty"`
}

// SafetyFile is either a bare qualifier string or a {cond, violation} map.
type SafetyFile struct {
	Qualifier string `yaml:"qualifier,omitempty" toml:"qualifier" msgpack:"qualifier,omitempty"`
	Cond      string `yaml:"cond,omitempty" toml:"cond" msgpack:"cond,omitempty"`
	Violation string `yaml:"violation,omitempty" toml:"violation" msgpack:"violation,omitempty"`
}

type safetyCheck struct {
	Cond      string `yaml:"cond"`
	Violation string `yaml:"violation"`
}

func (s *SafetyFile) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		*s = SafetyFile{Qualifier: node.Value}
		return nil
	case yaml.MappingNode:
		var c safetyCheck
		if err := node.Decode(&c); err != nil {
			return err
		}
		if c.Cond == "" {
			return fmt.Errorf("line %d: safety check has no cond", node.Line)
		}
		*s = SafetyFile{Cond: c.Cond, Violation: c.Violation}
		return nil
	}
	return fmt.Errorf("line %d: safety entry must be a string or a {cond, violation} map", node.Line)
}

// MarshalYAML writes qualifiers back as bare strings.
func (s SafetyFile) MarshalYAML() (any, error) {
	if s.Cond == "" {
		return s.Qualifier, nil
	}
	return safetyCheck{Cond: s.Cond, Violation: s.Violation}, nil
}

func (s *SafetyFile) UnmarshalTOML(v any) error {
	switch x := v.(type) {
	case string:
		*s = SafetyFile{Qualifier: x}
		return nil
	case map[string]any:
		cond, _ := x["cond"].(string)
		violation, _ := x["violation"].(string)
		if cond == "" {
			return fmt.Errorf("safety check has no cond")
		}
		for k := range x {
			if k != "cond" && k != "violation" {
				return fmt.Errorf("safety check has unknown key %q", k)
			}
		}
		*s = SafetyFile{Cond: cond, Violation: violation}
		return nil
	}
	return fmt.Errorf("safety entry must be a string or a {cond, violation} table, got %T", v)
}
