package main

import (
	"fmt"
	"strings"
)

// uiMode is the --ui setting of `dgen gen`.
type uiMode uint8

const (
	uiAuto uiMode = iota
	uiOn
	uiOff
)

var uiModes = map[string]uiMode{"": uiAuto, "auto": uiAuto, "on": uiOn, "off": uiOff}

func parseUIMode(value string) (uiMode, error) {
	mode, ok := uiModes[strings.ToLower(strings.TrimSpace(value))]
	if !ok {
		return uiAuto, fmt.Errorf("invalid --ui value %q (expected auto|on|off)", value)
	}
	return mode, nil
}

// genOutput holds the gen flags that decide how progress is reported.
type genOutput struct {
	mode  uiMode
	quiet bool
	json  bool
	// tty is whether stdout is a terminal.
	tty bool
}

// showProgress reports whether the progress view replaces the per-file
// summary lines. --quiet and --json keep stdout free of it even with --ui=on.
func (o genOutput) showProgress() bool {
	if o.quiet || o.json {
		return false
	}
	switch o.mode {
	case uiOn:
		return true
	case uiOff:
		return false
	}
	return o.tty
}
