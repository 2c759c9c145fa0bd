package decoder

import (
	"fmt"
	"strconv"
	"strings"

	"fortio.org/safecast"

	"dgen/internal/diag"
)

// WordBits is the width of an instruction word.
const WordBits = 32

// Column names a bit range of the instruction word. Names starting with '$'
// refer to non-bit fields (for example $pattern) and carry no bit range.
type Column struct {
	Name string
	Hi   int
	Lo   int
}

// IsBits reports whether the column selects instruction bits.
func (c Column) IsBits() bool {
	return !strings.HasPrefix(c.Name, "$")
}

func (c Column) Width() int {
	if !c.IsBits() {
		return 0
	}
	return c.Hi - c.Lo + 1
}

// Mask returns the word mask covering the column.
func (c Column) Mask() uint32 {
	if !c.IsBits() {
		return 0
	}
	return rangeMask(c.Hi, c.Lo)
}

func (c Column) String() string {
	if !c.IsBits() {
		return c.Name
	}
	if c.Hi == c.Lo {
		return fmt.Sprintf("%s(%d)", c.Name, c.Hi)
	}
	return fmt.Sprintf("%s(%d:%d)", c.Name, c.Hi, c.Lo)
}

func rangeMask(hi, lo int) uint32 {
	top, err := safecast.Conv[uint](hi + 1)
	if err != nil {
		return 0
	}
	bottom, err := safecast.Conv[uint](lo)
	if err != nil {
		return 0
	}
	return uint32((uint64(1) << top) - (uint64(1) << bottom))
}

// Pattern is a bit-level predicate: (inst & Mask) == Value, or != when
// Negated. Mask and Value are word-aligned, not column-relative.
type Pattern struct {
	Column  Column
	Mask    uint32
	Value   uint32
	Negated bool
	// Text keeps the literal of non-bit columns.
	Text string
}

// NewPattern builds a pattern for col from a bit string such as "1x0",
// "~1111" or "-" (whole column don't-care).
func NewPattern(col Column, bits string) (Pattern, error) {
	p := Pattern{Column: col}
	if !col.IsBits() {
		p.Text = bits
		return p, nil
	}
	if col.Lo < 0 || col.Hi < col.Lo || col.Hi >= WordBits {
		return Pattern{}, diag.Errorf(diag.CfgBadPattern, "column %s has an invalid bit range", col)
	}
	if strings.HasPrefix(bits, "~") {
		p.Negated = true
		bits = bits[1:]
	}
	if bits == "-" {
		return p, nil
	}
	if len(bits) != col.Width() {
		return Pattern{}, diag.Errorf(diag.CfgBadPattern, "pattern %q does not fit column %s (%d bits)", bits, col, col.Width())
	}
	for i, r := range bits {
		bit := uint32(1) << uint(col.Hi-i)
		switch r {
		case '0':
			p.Mask |= bit
		case '1':
			p.Mask |= bit
			p.Value |= bit
		case 'x', 'X':
		default:
			return Pattern{}, diag.Errorf(diag.CfgBadPattern, "pattern %q has invalid bit %q", bits, r)
		}
	}
	return p, nil
}

// ParsePattern parses the textual form produced by Pattern.String:
//
//	op1(27:25)=1x0
//	cond(31:28)=~1111
//	S(20)=1
//	$pattern=cccc0010100snnnn
func ParsePattern(spec string) (Pattern, error) {
	lhs, rhs, ok := strings.Cut(strings.TrimSpace(spec), "=")
	if !ok {
		return Pattern{}, diag.Errorf(diag.CfgBadPattern, "pattern %q has no '='", spec)
	}
	lhs = strings.TrimSpace(lhs)
	rhs = strings.TrimSpace(rhs)
	if strings.HasPrefix(lhs, "$") {
		return NewPattern(Column{Name: lhs}, rhs)
	}
	name, rng, ok := strings.Cut(lhs, "(")
	if !ok || !strings.HasSuffix(rng, ")") {
		return Pattern{}, diag.Errorf(diag.CfgBadPattern, "pattern %q has no bit range", spec)
	}
	rng = strings.TrimSuffix(rng, ")")
	rawHi, rawLo, ranged := strings.Cut(rng, ":")
	if !ranged {
		rawLo = rawHi
	}
	hi, err := strconv.Atoi(rawHi)
	if err != nil {
		return Pattern{}, diag.Wrap(diag.CfgBadPattern, err, "pattern %q has a bad high bit", spec)
	}
	lo, err := strconv.Atoi(rawLo)
	if err != nil {
		return Pattern{}, diag.Wrap(diag.CfgBadPattern, err, "pattern %q has a bad low bit", spec)
	}
	return NewPattern(Column{Name: name, Hi: hi, Lo: lo}, rhs)
}

// Bits renders the column-relative bit string, 'x' for unconstrained bits.
func (p Pattern) Bits() string {
	if !p.Column.IsBits() {
		return p.Text
	}
	var b strings.Builder
	for i := p.Column.Hi; i >= p.Column.Lo; i-- {
		bit := uint32(1) << uint(i)
		switch {
		case p.Mask&bit == 0:
			b.WriteByte('x')
		case p.Value&bit != 0:
			b.WriteByte('1')
		default:
			b.WriteByte('0')
		}
	}
	return b.String()
}

func (p Pattern) String() string {
	neg := ""
	if p.Negated {
		neg = "~"
	}
	return p.Column.String() + "=" + neg + p.Bits()
}

// Matches evaluates the pattern against inst. Non-bit patterns always match.
func (p Pattern) Matches(inst uint32) bool {
	if !p.Column.IsBits() {
		return true
	}
	return (inst&p.Mask == p.Value) != p.Negated
}

// MatchesAny reports whether the pattern holds for every word. Such patterns
// carry no discriminating information.
func (p Pattern) MatchesAny() bool {
	if !p.Column.IsBits() {
		return true
	}
	return p.Mask == 0 && !p.Negated
}

// IsInteresting reports whether the pattern belongs in emitted conditions.
func (p Pattern) IsInteresting() bool {
	return !p.MatchesAny()
}

// Negate returns the complementary predicate.
func (p Pattern) Negate() Pattern {
	p.Negated = !p.Negated
	return p
}

// ToBool renders the C++ condition testing the pattern.
func (p Pattern) ToBool() string {
	if !p.Column.IsBits() {
		return "true"
	}
	if p.Mask == 0 {
		if p.Negated {
			return "false"
		}
		return "true"
	}
	op := "=="
	if p.Negated {
		op = "!="
	}
	return fmt.Sprintf("(inst.Bits() & 0x%08X) %s 0x%08X", p.Mask, op, p.Value)
}

// ToCommentedBool is ToBool followed by the pattern's source form.
func (p Pattern) ToCommentedBool() string {
	return p.ToBool() + " /* " + p.String() + " */"
}

// InterestingPatterns filters out patterns that match anything.
func InterestingPatterns(ps []Pattern) []Pattern {
	out := make([]Pattern, 0, len(ps))
	for _, p := range ps {
		if p.IsInteresting() {
			out = append(out, p)
		}
	}
	return out
}
