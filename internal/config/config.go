// Package config holds the generator options and the dgen.toml manifest.
//
// A Config is an explicit value threaded through every generator entry
// point; nothing in dgen reads options from package state.
package config

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"dgen/internal/decoder"
	"dgen/internal/diag"
)

// DefaultFileHeader opens every generated file.
const DefaultFileHeader = `/*
 * Copyright (c) The dgen Authors. All rights reserved.
 * Use of this source code is governed by a BSD-style license that can be
 * found in the LICENSE file.
 */

// DO NOT EDIT: GENERATED CODE
`

// DefaultNotTCBMessage marks files that only name or test decoders.
const DefaultNotTCBMessage = `//
// !!! WARNING !!!
//
// This code is generated for testing and naming only. It is not used to
// validate instructions and is not part of the trusted code base.
//
`

// Flag is a boolean option that also accepts the strings "True" and
// "False", the spelling older option files use.
type Flag bool

func (f *Flag) UnmarshalTOML(v any) error {
	switch x := v.(type) {
	case bool:
		*f = Flag(x)
		return nil
	case string:
		b, err := parseFlag(x)
		if err != nil {
			return err
		}
		*f = Flag(b)
		return nil
	}
	return fmt.Errorf("expected a boolean, got %T", v)
}

func parseFlag(s string) (bool, error) {
	b, err := strconv.ParseBool(strings.TrimSpace(s))
	if err != nil {
		return false, fmt.Errorf("invalid boolean %q", s)
	}
	return b, nil
}

// Config is the set of generator options.
type Config struct {
	// AutoActual maps row identities to actual decoder classes. Keys are
	// tried most specific first: "table#row" (1-based, or "table#default"),
	// "table:rule", then "table".
	AutoActual map[string]string `toml:"auto-actual"`
	// Trace emits trace statements into dispatch bodies.
	Trace Flag `toml:"trace"`
	// TestBase lists tables whose generated baselines are regression tested
	// against the hand-written ones.
	TestBase []string `toml:"test-base"`
	// Dispatch picks which instance family the dispatch source returns.
	Dispatch string `toml:"dispatch"`

	FileHeader    string `toml:"file-header"`
	NotTCBMessage string `toml:"not-tcb-message"`
}

// Default returns a Config with every option at its default.
func Default() *Config {
	return &Config{
		AutoActual:    map[string]string{},
		Dispatch:      decoder.Baseline.String(),
		FileHeader:    DefaultFileHeader,
		NotTCBMessage: DefaultNotTCBMessage,
	}
}

// Clone returns a deep copy so per-request overrides do not leak.
func (c *Config) Clone() *Config {
	out := *c
	out.AutoActual = make(map[string]string, len(c.AutoActual))
	for k, v := range c.AutoActual {
		out.AutoActual[k] = v
	}
	out.TestBase = slices.Clone(c.TestBase)
	return &out
}

// ActualFor implements decoder.ActualResolver.
func (c *Config) ActualFor(table string, row int, rule string) (string, bool) {
	if c == nil || len(c.AutoActual) == 0 {
		return "", false
	}
	rowKey := table + "#" + strconv.Itoa(row)
	if row == diag.DefaultRow {
		rowKey = table + "#default"
	}
	keys := []string{rowKey}
	if rule != "" {
		keys = append(keys, table+":"+rule)
	}
	keys = append(keys, table)
	for _, k := range keys {
		if v, ok := c.AutoActual[k]; ok && v != "" {
			return v, true
		}
	}
	return "", false
}

// InTestBase reports whether table's generated baselines are regression tested.
func (c *Config) InTestBase(table string) bool {
	return c != nil && slices.Contains(c.TestBase, table)
}

// DispatchKind parses the dispatch option.
func (c *Config) DispatchKind() (decoder.Kind, error) {
	return decoder.ParseKind(c.Dispatch)
}

// Validate checks option values that decoding alone cannot.
func (c *Config) Validate() error {
	if _, err := c.DispatchKind(); err != nil {
		return err
	}
	for k, v := range c.AutoActual {
		if strings.TrimSpace(k) == "" || strings.TrimSpace(v) == "" {
			return diag.Errorf(diag.CfgBadValue, "auto-actual entry %q = %q must name a row and a class", k, v)
		}
	}
	return nil
}

// Set applies one "key=value" override as given on the command line.
// auto-actual entries are spelled "auto-actual.<key>=<class>".
func (c *Config) Set(key, value string) error {
	switch {
	case key == "trace":
		b, err := parseFlag(value)
		if err != nil {
			return diag.Wrap(diag.CfgBadValue, err, "option %s", key)
		}
		c.Trace = Flag(b)
	case key == "test-base":
		c.TestBase = nil
		for _, t := range strings.Split(value, ",") {
			if t = strings.TrimSpace(t); t != "" {
				c.TestBase = append(c.TestBase, t)
			}
		}
	case key == "dispatch":
		if _, err := decoder.ParseKind(value); err != nil {
			return err
		}
		c.Dispatch = value
	case key == "file-header":
		c.FileHeader = value
	case key == "not-tcb-message":
		c.NotTCBMessage = value
	case strings.HasPrefix(key, "auto-actual."):
		if c.AutoActual == nil {
			c.AutoActual = map[string]string{}
		}
		c.AutoActual[strings.TrimPrefix(key, "auto-actual.")] = value
	default:
		return diag.Errorf(diag.CfgBadValue, "unknown option %q", key)
	}
	return nil
}

// SetAll applies "key=value" overrides in order.
func (c *Config) SetAll(pairs []string) error {
	for _, p := range pairs {
		k, v, ok := strings.Cut(p, "=")
		if !ok {
			return diag.Errorf(diag.CfgBadValue, "option %q is not key=value", p)
		}
		if err := c.Set(strings.TrimSpace(k), v); err != nil {
			return err
		}
	}
	return nil
}
