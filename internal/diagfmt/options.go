package diagfmt

// PrettyOpts configures pretty-printing of diagnostics.
type PrettyOpts struct {
	Color bool
	// Path prefixes each line, usually the table file; empty omits it.
	Path string
	// ShowAction adds the offending action on a second line.
	ShowAction bool
}

// JSONOpts configures JSON output of diagnostics.
type JSONOpts struct {
	Path string
	Max  int // output cut-off, the Bag is not touched
}
