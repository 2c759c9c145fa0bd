// Package diag defines the diagnostic model shared by every generator stage.
//
// # Purpose
//
//   - Give the loader, augmentation, optimizer and emitters one deterministic
//     record type for findings about a decoder description.
//   - Separate fatal conditions (returned as *Error) from warnings that are
//     collected in a Bag and rendered after generation.
//
// # Data model
//
// Diagnostic is the central record:
//
//   - Severity – Info, Warning or Error.
//   - Code – numeric identifier with a stable string form (CFG1001, ACT2003...).
//   - Message – short human text.
//   - Location – table name and row number the finding belongs to.
//   - Action – lexical description of the offending action, when there is one.
//
// Error wraps a Diagnostic so it can travel through ordinary Go error returns.
// Callers attach location information while the error bubbles up with At, and
// recover it with errors.As.
//
// # Emitting diagnostics
//
// Stages report warnings through a Reporter. BagReporter stores them in a Bag,
// DedupReporter drops repeats (the same shadowed row is found once per
// dispatch kind, for example).
//
// Package diag does not render anything; see internal/diagfmt.
package diag
