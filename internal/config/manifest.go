package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"

	"dgen/internal/diag"
)

// ManifestName is the file FindManifest looks for.
const ManifestName = "dgen.toml"

// Manifest is a parsed dgen.toml.
type Manifest struct {
	Path     string
	Root     string
	Generate Generate
	Options  *Config
}

// Generate describes what a bare `dgen gen` produces.
type Generate struct {
	// Tables is the table file, relative to the manifest.
	Tables string `toml:"tables"`
	// Base is the artifact base name; defaults to the table file stem.
	Base string `toml:"base"`
	// OutDir receives the artifacts; defaults to the manifest directory.
	OutDir string `toml:"out-dir"`
	// Outputs lists artifact suffixes to produce; empty means all of them.
	Outputs []string `toml:"outputs"`
}

type manifestFile struct {
	Generate Generate `toml:"generate"`
	Options  Config   `toml:"options"`
}

// FindManifest walks up from startDir to locate dgen.toml.
func FindManifest(startDir string) (string, bool, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, ManifestName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// LoadManifest parses the manifest at path. Options start from Default and
// only keys present in [options] override them.
func LoadManifest(path string) (*Manifest, error) {
	mf := manifestFile{Options: *Default()}
	meta, err := toml.DecodeFile(path, &mf)
	if err != nil {
		return nil, diag.Wrap(diag.CfgBadValue, err, "%s: failed to parse TOML", path)
	}
	if err := rejectUndecoded(path, meta); err != nil {
		return nil, err
	}
	if !meta.IsDefined("generate") {
		return nil, diag.Errorf(diag.CfgBadValue, "%s: missing [generate]", path)
	}
	if !meta.IsDefined("generate", "tables") || strings.TrimSpace(mf.Generate.Tables) == "" {
		return nil, diag.Errorf(diag.CfgBadValue, "%s: missing [generate].tables", path)
	}
	opts := mf.Options
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	root := filepath.Dir(path)
	gen := mf.Generate
	gen.Tables = filepath.Join(root, filepath.FromSlash(gen.Tables))
	if gen.OutDir == "" {
		gen.OutDir = root
	} else if !filepath.IsAbs(gen.OutDir) {
		gen.OutDir = filepath.Join(root, filepath.FromSlash(gen.OutDir))
	}
	return &Manifest{Path: path, Root: root, Generate: gen, Options: &opts}, nil
}

// Load parses a standalone options file whose keys sit at the top level.
func Load(path string) (*Config, error) {
	cfg := Default()
	meta, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return nil, diag.Wrap(diag.CfgBadValue, err, "%s: failed to parse TOML", path)
	}
	if err := rejectUndecoded(path, meta); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// rejectUndecoded fails on keys no field picked up. auto-actual is a free
// form table, so its entries are always decoded.
func rejectUndecoded(path string, meta toml.MetaData) error {
	undecoded := meta.Undecoded()
	if len(undecoded) == 0 {
		return nil
	}
	keys := make([]string, len(undecoded))
	for i, k := range undecoded {
		keys[i] = k.String()
	}
	sort.Strings(keys)
	return diag.Errorf(diag.CfgBadValue, "%s: unknown keys: %s", path, strings.Join(keys, ", "))
}
