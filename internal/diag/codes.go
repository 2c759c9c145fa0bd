package diag

import (
	"fmt"
)

type Code uint16

const (
	UnknownCode Code = 0

	// configuration
	CfgInfo           Code = 1000
	CfgNoPrimary      Code = 1001
	CfgBadFilename    Code = 1002
	CfgDuplicateTable Code = 1003
	CfgBadValue       Code = 1004
	CfgBadTableFile   Code = 1005
	CfgBadPattern     Code = 1006

	// action integrity
	ActInfo           Code = 2000
	ActUnknownKind    Code = 2001
	ActMissingBase    Code = 2002
	ActUnknownTable   Code = 2003
	ActAmbiguousRow   Code = 2004
	ActDispatchLoop   Code = 2005
	ActMissingPattern Code = 2006

	// optimizer
	OptInfo        Code = 3000
	OptShadowedRow Code = 3001
	OptEmptyRow    Code = 3002
)

var codeDescription = map[Code]string{
	UnknownCode:       "Unknown error",
	CfgInfo:           "Configuration information",
	CfgNoPrimary:      "Decoder has no primary table",
	CfgBadFilename:    "Output filename has no recognised suffix",
	CfgDuplicateTable: "Duplicate table name",
	CfgBadValue:       "Invalid configuration value",
	CfgBadTableFile:   "Malformed table file",
	CfgBadPattern:     "Malformed bit pattern",
	ActInfo:           "Action information",
	ActUnknownKind:    "Row action is neither a decoder action nor a table method",
	ActMissingBase:    "Decoder action has no baseline class",
	ActUnknownTable:   "Table method names an unknown table",
	ActAmbiguousRow:   "Row declares both an action and a table method",
	ActDispatchLoop:   "Instruction dispatch loops between tables",
	ActMissingPattern: "Decoder action has no test pattern",
	OptInfo:           "Optimizer information",
	OptShadowedRow:    "Row can never be selected",
	OptEmptyRow:       "Row patterns contradict each other",
}

// ID returns the stable identifier, e.g. ACT2003.
func (c Code) ID() string {
	switch {
	case c >= 1000 && c < 2000:
		return fmt.Sprintf("CFG%04d", uint16(c))
	case c >= 2000 && c < 3000:
		return fmt.Sprintf("ACT%04d", uint16(c))
	case c >= 3000 && c < 4000:
		return fmt.Sprintf("OPT%04d", uint16(c))
	}
	return "E0000"
}

func (c Code) Title() string {
	if d, ok := codeDescription[c]; ok {
		return d
	}
	return codeDescription[UnknownCode]
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}
