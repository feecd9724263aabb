package plan

import (
	"math"
	"strings"

	"github.com/emirpasic/gods/stacks/arraystack"
	"github.com/npillmayer/mdpdf/core"
	"github.com/npillmayer/mdpdf/core/dimen"
	"github.com/npillmayer/mdpdf/core/font"
	"github.com/npillmayer/mdpdf/core/font/subset"
	"github.com/npillmayer/mdpdf/engine/style"
	"github.com/npillmayer/mdpdf/input/markdown"
)

// FontConfig configures the fonts of a conversion.
type FontConfig struct {
	DefaultFont  string   // font name or font file for body text
	CodeFont     string   // font name or font file for code
	DefaultBytes []byte   // font data for body text, overrides DefaultFont
	CodeBytes    []byte   // font data for code, overrides CodeFont
	Fallbacks    []string // fonts consulted for characters missing from the primary font
	Subsetting   bool     // embed subsets instead of complete fonts
}

// DefaultFontConfig returns a font configuration using the built-in fonts,
// with subsetting enabled.
func DefaultFontConfig() FontConfig {
	return FontConfig{Subsetting: true}
}

// Family returns the family name for text in a role. A family set by the
// style sheet takes precedence over the configuration. The empty string
// selects the configured font data or, without such, the built-in font for
// the role.
func (fc FontConfig) Family(role font.Role, styled string) string {
	if styled != "" {
		return styled
	}
	if role == font.RoleCode {
		if fc.CodeBytes != nil {
			return ""
		}
		return fc.CodeFont
	}
	if fc.DefaultBytes != nil {
		return ""
	}
	return fc.DefaultFont
}

// Options control plan building.
type Options struct {
	// ContinueNumbering makes ordered lists interrupted by other blocks
	// continue the numbering of the preceding list of the same depth.
	// By default numbering restarts with every list.
	ContinueNumbering bool
	// IndentUnit is the indentation per list level. If it is zero, twice
	// the text size is used.
	IndentUnit dimen.Dimen
}

// Plan is a render plan.
type Plan struct {
	Instructions []Instruction
	Margins      style.Margins
	Paper        dimen.Point                 // page size
	Content      dimen.Rect                  // page area inside the margins
	Used         subset.UsedCharacters       // characters per font role
	Chars        map[FontKey]*subset.RuneSet // characters per font
}

// CharsFor returns the characters set in a font, creating the set if
// necessary.
func (p *Plan) CharsFor(key FontKey) *subset.RuneSet {
	s, ok := p.Chars[key]
	if !ok {
		s = subset.NewRuneSet()
		p.Chars[key] = s
	}
	return s
}

// Fonts returns the keys of all fonts used, in order of first use.
func (p *Plan) Fonts() []FontKey {
	var keys []FontKey
	seen := make(map[FontKey]bool)
	for _, ins := range p.Instructions {
		if ins.Op != OpText && ins.Op != OpMarker {
			continue
		}
		if !seen[ins.Font] {
			seen[ins.Font] = true
			keys = append(keys, ins.Font)
		}
	}
	return keys
}

// Build creates a render plan from a token tree. The style table is
// mandatory; a nil table is an error with code core.EINVALID.
func Build(tokens []*markdown.Token, table *style.Table, fonts FontConfig, opts Options) (*Plan, error) {
	if table == nil {
		return nil, core.Error(core.EINVALID, "render plan needs a style table")
	}
	b := &builder{
		table:  table,
		fonts:  fonts,
		opts:   opts,
		frames: arraystack.New(),
		plan: &Plan{
			Margins: table.Margins(),
			Paper:   table.Paper(),
			Content: table.Content(),
			Used:    subset.UsedCharacters{},
			Chars:   make(map[FontKey]*subset.RuneSet),
		},
		numbers: make(map[int]int),
	}
	if b.opts.IndentUnit == 0 {
		b.opts.IndentUnit = 2 * table.Text().Size
	}
	b.frames.Push(frame{d: table.Text()})
	for _, t := range tokens {
		b.node(t)
	}
	tracer().Debugf("render plan with %d instructions, %d fonts", len(b.plan.Instructions),
		len(b.plan.Chars))
	return b.plan, nil
}

// frame is the style state of an enclosing token.
type frame struct {
	d    style.Descriptor
	code bool   // inside code
	link string // destination of an enclosing link
}

type builder struct {
	table   *style.Table
	fonts   FontConfig
	opts    Options
	plan    *Plan
	frames  *arraystack.Stack // of frame
	pending float64           // space after the last block, not yet emitted
	numbers map[int]int       // next list number per depth, for continued numbering
}

func (b *builder) top() frame {
	f, _ := b.frames.Peek()
	return f.(frame)
}

func (b *builder) emit(ins Instruction) {
	b.plan.Instructions = append(b.plan.Instructions, ins)
}

// node dispatches on the kind of a token.
func (b *builder) node(t *markdown.Token) {
	switch t.Kind {
	case markdown.Paragraph:
		b.block(t, markdown.Paragraph, style.Key{Kind: markdown.Paragraph}, nil)
	case markdown.Heading:
		b.block(t, markdown.Heading, style.HeadingKey(t.Level), func(ins *Instruction) {
			ins.Level = t.Level
		})
	case markdown.CodeBlock:
		b.codeBlock(t)
	case markdown.BlockQuote:
		b.block(t, markdown.BlockQuote, style.QuoteKey, nil)
	case markdown.List:
		b.list(t)
	case markdown.ListItem:
		// list items outside of lists do not occur in lexer output
		b.item(t, false, 0)
	case markdown.Table:
		b.tableBlock(t)
	case markdown.TableRow, markdown.TableCell:
		b.children(t)
	case markdown.HorizontalRule:
		b.rule()
	default:
		b.inline(t)
	}
}

func (b *builder) children(t *markdown.Token) {
	for _, ch := range t.Children {
		b.node(ch)
	}
}

// --- Blocks ----------------------------------------------------------------

// blockBase is the style a nested block inherits from. Spacing and
// background are not inherited.
func (b *builder) blockBase() style.Descriptor {
	d := b.top().d
	text := b.table.Text()
	d.SpaceBefore, d.SpaceAfter, d.Background = text.SpaceBefore, text.SpaceAfter, text.Background
	return d
}

// beginBlock emits the collapsed space before a block and the block start.
func (b *builder) beginBlock(kind markdown.Kind, key style.Key, code bool, decorate func(*Instruction)) style.Descriptor {
	d := b.table.Props(key).Apply(b.blockBase())
	if gap := math.Max(b.pending, d.SpaceBefore); gap > 0 {
		b.emit(Instruction{Op: OpSpace, Lines: gap})
	}
	b.pending = 0
	ins := Instruction{Op: OpBeginBlock, Kind: kind, Style: d}
	if decorate != nil {
		decorate(&ins)
	}
	b.emit(ins)
	parent := b.top()
	b.frames.Push(frame{d: d, code: parent.code || code, link: parent.link})
	return d
}

func (b *builder) endBlock(kind markdown.Kind) {
	f, _ := b.frames.Pop()
	d := f.(frame).d
	b.emit(Instruction{Op: OpEndBlock, Kind: kind, Style: d})
	b.pending = math.Max(b.pending, d.SpaceAfter)
}

func (b *builder) block(t *markdown.Token, kind markdown.Kind, key style.Key, decorate func(*Instruction)) {
	b.beginBlock(kind, key, false, decorate)
	b.children(t)
	b.endBlock(kind)
}

func (b *builder) codeBlock(t *markdown.Token) {
	b.beginBlock(markdown.CodeBlock, style.CodeBlockKey, true, func(ins *Instruction) {
		ins.Lang = t.Lang
	})
	if t.Text != "" {
		b.run(strings.ReplaceAll(t.Text, "\t", "    "))
	}
	b.endBlock(markdown.CodeBlock)
}

func (b *builder) rule() {
	d := b.table.Props(style.RuleKey).Apply(b.blockBase())
	if gap := math.Max(b.pending, d.SpaceBefore); gap > 0 {
		b.emit(Instruction{Op: OpSpace, Lines: gap})
	}
	b.emit(Instruction{Op: OpRule, Kind: markdown.HorizontalRule, Style: d})
	b.pending = d.SpaceAfter
}

// --- Lists -----------------------------------------------------------------

func (b *builder) list(t *markdown.Token) {
	b.beginBlock(markdown.List, style.Key{Kind: markdown.List}, false, func(ins *Instruction) {
		ins.Ordered = t.Ordered
		ins.Depth = t.Depth
	})
	n := t.Start
	if t.Ordered && b.opts.ContinueNumbering {
		if next, ok := b.numbers[t.Depth]; ok {
			n = next
		}
	}
	for _, item := range t.Children {
		if item.Kind != markdown.ListItem {
			b.node(item)
			continue
		}
		b.item(item, t.Ordered, n)
		n++
	}
	if t.Ordered {
		b.numbers[t.Depth] = n
	}
	b.endBlock(markdown.List)
}

func (b *builder) item(t *markdown.Token, ordered bool, n int) {
	// deeper lists restart below a new item
	for depth := range b.numbers {
		if depth > t.Depth {
			delete(b.numbers, depth)
		}
	}
	indent := dimen.Dimen(t.Depth) * b.opts.IndentUnit
	b.beginBlock(markdown.ListItem, style.ListItemKey, false, func(ins *Instruction) {
		ins.Depth = t.Depth
		ins.Indent = indent
	})
	f := b.top()
	marker := subset.ListMarker(ordered, n)
	key := b.fontKey(f)
	b.emit(Instruction{Op: OpMarker, Style: f.d, Font: key, Text: marker, Depth: t.Depth,
		Indent: indent, Ordered: ordered})
	b.record(key, marker)
	b.children(t)
	b.endBlock(markdown.ListItem)
}

// --- Tables ----------------------------------------------------------------

func (b *builder) tableBlock(t *markdown.Token) {
	b.beginBlock(markdown.Table, style.Key{Kind: markdown.Table}, false, func(ins *Instruction) {
		ins.Widths = ColumnWidths(t)
		ins.Header = t.Header
	})
	for _, row := range t.Children {
		if row.Kind != markdown.TableRow {
			b.node(row)
			continue
		}
		b.row(row)
	}
	b.endBlock(markdown.Table)
}

func (b *builder) row(t *markdown.Token) {
	rowStyle := b.table.Props(style.Key{Kind: markdown.TableRow, Header: t.Header}).Apply(b.blockBase())
	b.emit(Instruction{Op: OpBeginRow, Style: rowStyle, Header: t.Header})
	for col, cell := range t.Children {
		d := b.table.Props(style.Key{Kind: markdown.TableCell, Header: cell.Header}).Apply(rowStyle)
		b.emit(Instruction{Op: OpBeginCell, Style: d, Header: cell.Header, Column: col})
		parent := b.top()
		b.frames.Push(frame{d: d, code: parent.code, link: parent.link})
		b.children(cell)
		b.frames.Pop()
		b.emit(Instruction{Op: OpEndCell, Style: d, Header: cell.Header, Column: col})
	}
	b.emit(Instruction{Op: OpEndRow, Style: rowStyle, Header: t.Header})
}

// --- Inline content --------------------------------------------------------

func (b *builder) inline(t *markdown.Token) {
	switch t.Kind {
	case markdown.Text:
		b.run(t.Text)
	case markdown.InlineCode:
		b.span(b.table.Props(style.CodeKey), true, "", func() {
			b.run(t.Text)
		})
	case markdown.Emphasis:
		p := b.table.Props(style.EmphasisKey)
		switch {
		case t.Level == 2:
			p = b.table.Props(style.StrongKey)
		case t.Level >= 3:
			p = p.Merge(b.table.Props(style.StrongKey))
		}
		b.span(p, false, "", func() { b.children(t) })
	case markdown.Link:
		b.span(b.table.Props(style.LinkKey), false, t.Dest, func() { b.children(t) })
	case markdown.Image:
		d := b.table.Props(style.ImageKey).Apply(b.top().d)
		b.emit(Instruction{Op: OpImage, Style: d, Dest: t.Dest, Text: t.Text})
	default:
		b.children(t)
	}
}

// span composes an inline style onto the enclosing one for the duration of
// f.
func (b *builder) span(p style.Props, code bool, link string, f func()) {
	parent := b.top()
	fr := frame{d: p.Apply(parent.d), code: parent.code || code, link: parent.link}
	if link != "" {
		fr.link = link
	}
	b.frames.Push(fr)
	f()
	b.frames.Pop()
}

func (b *builder) fontKey(f frame) FontKey {
	role := font.RoleFor(f.code, f.d.Bold, f.d.Italic)
	return FontKey{Family: b.fonts.Family(role, f.d.Family), Role: role}
}

func (b *builder) run(text string) {
	if text == "" {
		return
	}
	f := b.top()
	key := b.fontKey(f)
	b.emit(Instruction{Op: OpText, Style: f.d, Font: key, Text: text, Dest: f.link})
	b.record(key, text)
}

func (b *builder) record(key FontKey, text string) {
	b.plan.Used.Add(key.Role, text)
	b.plan.CharsFor(key).AddString(text)
}
