package markdown

// Mode is the block mode of a parse context.
type Mode int8

const (
	// FlowMode is the default mode for document content.
	FlowMode Mode = iota
	// CellMode is active while scanning a table cell. Cells hold inline
	// content only.
	CellMode
)

// Context is the nesting state threaded through the lexer. It is passed by
// value, so entering a nested construct never affects the caller's context.
type Context struct {
	Mode       Mode
	ListDepth  int // number of enclosing lists
	QuoteDepth int // number of enclosing block quotes
}

// Cell returns a copy of ctx in table-cell mode.
func (ctx Context) Cell() Context {
	ctx.Mode = CellMode
	return ctx
}

// InList returns a copy of ctx for the content of a list one level deeper.
func (ctx Context) InList() Context {
	ctx.ListDepth++
	return ctx
}

// InQuote returns a copy of ctx for the content of a block quote.
func (ctx Context) InQuote() Context {
	ctx.QuoteDepth++
	return ctx
}

// InCell is a predicate: are we scanning a table cell?
func (ctx Context) InCell() bool {
	return ctx.Mode == CellMode
}

// BlockMarkers reports whether block-level markers (block quote '>', list
// bullets, heading '#'-runs, fences, rules) are interpreted. They are not
// inside table cells, where such characters are literal text.
func (ctx Context) BlockMarkers() bool {
	return ctx.Mode != CellMode
}
