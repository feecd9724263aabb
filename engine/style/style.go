package style

import (
	"fmt"
	"image/color"
	"sort"
	"strconv"
	"strings"

	"github.com/npillmayer/mdpdf/core"
	"github.com/npillmayer/mdpdf/core/dimen"
	"github.com/npillmayer/mdpdf/input/markdown"
)

// Alignment is the horizontal alignment of a block.
type Alignment uint8

const (
	AlignLeft Alignment = iota
	AlignCenter
	AlignRight
	AlignJustify
)

var alignmentNames = [...]string{"left", "center", "right", "justify"}

func (a Alignment) String() string {
	if int(a) < len(alignmentNames) {
		return alignmentNames[a]
	}
	return fmt.Sprintf("Alignment(%d)", int(a))
}

// ParseAlignment returns the alignment for one of "left", "center", "right"
// or "justify".
func ParseAlignment(s string) (Alignment, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, name := range alignmentNames {
		if s == name {
			return Alignment(i), true
		}
	}
	return AlignLeft, false
}

// NoColor is a fully transparent color. As a background it means "no
// background".
var NoColor = color.RGBA{}

// RGB creates an opaque color.
func RGB(r, g, b uint8) color.RGBA {
	return color.RGBA{R: r, G: g, B: b, A: 0xff}
}

// Descriptor is a complete set of style properties.
type Descriptor struct {
	Family        string      // font family name, empty for the role's default font
	Size          dimen.Dimen // font size
	Color         color.RGBA
	Background    color.RGBA // NoColor for none
	SpaceBefore   float64    // in lines
	SpaceAfter    float64    // in lines
	Align         Alignment
	Bold          bool
	Italic        bool
	Underline     bool
	Strikethrough bool
}

// HasBackground is a predicate: does d paint a background?
func (d Descriptor) HasBackground() bool {
	return d.Background.A != 0
}

func (d Descriptor) String() string {
	var b strings.Builder
	family := d.Family
	if family == "" {
		family = "*"
	}
	fmt.Fprintf(&b, "%s %.1fpt", family, d.Size.Points())
	for _, flag := range []struct {
		set  bool
		name string
	}{{d.Bold, "bold"}, {d.Italic, "italic"}, {d.Underline, "underline"},
		{d.Strikethrough, "strike"}} {
		if flag.set {
			b.WriteString(" " + flag.name)
		}
	}
	fmt.Fprintf(&b, " %s ↑%.2g ↓%.2g", d.Align, d.SpaceBefore, d.SpaceAfter)
	return b.String()
}

// --- Partial property sets -------------------------------------------------

// Property is a flag for a single style property.
type Property uint16

const (
	PFamily Property = 1 << iota
	PSize
	PColor
	PBackground
	PSpaceBefore
	PSpaceAfter
	PAlign
	PBold
	PItalic
	PUnderline
	PStrikethrough

	PNone Property = 0
)

// Props is a partial set of style properties. Properties not set inherit
// their values from a base descriptor, see Apply. The zero value is an
// empty property set. Props values are immutable, setters return a copy.
type Props struct {
	d   Descriptor
	set Property
}

// Has is a predicate: is property p set?
func (p Props) Has(prop Property) bool {
	return p.set&prop != 0
}

// IsEmpty is a predicate: is no property set?
func (p Props) IsEmpty() bool {
	return p.set == PNone
}

func (p Props) with(prop Property, f func(*Descriptor)) Props {
	f(&p.d)
	p.set |= prop
	return p
}

func (p Props) Family(f string) Props {
	return p.with(PFamily, func(d *Descriptor) { d.Family = f })
}

func (p Props) Size(s dimen.Dimen) Props {
	return p.with(PSize, func(d *Descriptor) { d.Size = s })
}

func (p Props) Color(c color.RGBA) Props {
	return p.with(PColor, func(d *Descriptor) { d.Color = c })
}

func (p Props) Background(c color.RGBA) Props {
	return p.with(PBackground, func(d *Descriptor) { d.Background = c })
}

func (p Props) SpaceBefore(lines float64) Props {
	return p.with(PSpaceBefore, func(d *Descriptor) { d.SpaceBefore = lines })
}

func (p Props) SpaceAfter(lines float64) Props {
	return p.with(PSpaceAfter, func(d *Descriptor) { d.SpaceAfter = lines })
}

func (p Props) Align(a Alignment) Props {
	return p.with(PAlign, func(d *Descriptor) { d.Align = a })
}

func (p Props) Bold(b bool) Props {
	return p.with(PBold, func(d *Descriptor) { d.Bold = b })
}

func (p Props) Italic(i bool) Props {
	return p.with(PItalic, func(d *Descriptor) { d.Italic = i })
}

func (p Props) Underline(u bool) Props {
	return p.with(PUnderline, func(d *Descriptor) { d.Underline = u })
}

func (p Props) Strikethrough(s bool) Props {
	return p.with(PStrikethrough, func(d *Descriptor) { d.Strikethrough = s })
}

// Apply returns base with all properties set in p overridden.
func (p Props) Apply(base Descriptor) Descriptor {
	if p.Has(PFamily) {
		base.Family = p.d.Family
	}
	if p.Has(PSize) {
		base.Size = p.d.Size
	}
	if p.Has(PColor) {
		base.Color = p.d.Color
	}
	if p.Has(PBackground) {
		base.Background = p.d.Background
	}
	if p.Has(PSpaceBefore) {
		base.SpaceBefore = p.d.SpaceBefore
	}
	if p.Has(PSpaceAfter) {
		base.SpaceAfter = p.d.SpaceAfter
	}
	if p.Has(PAlign) {
		base.Align = p.d.Align
	}
	if p.Has(PBold) {
		base.Bold = p.d.Bold
	}
	if p.Has(PItalic) {
		base.Italic = p.d.Italic
	}
	if p.Has(PUnderline) {
		base.Underline = p.d.Underline
	}
	if p.Has(PStrikethrough) {
		base.Strikethrough = p.d.Strikethrough
	}
	return base
}

// Merge returns p with all properties set in over overridden.
func (p Props) Merge(over Props) Props {
	return Props{d: over.Apply(p.d), set: p.set | over.set}
}

// --- Keys ------------------------------------------------------------------

// Key selects a style table entry. Level qualifies headings (1…6) and
// emphasis (1 = emphasis, 2 = strong emphasis), Header qualifies table
// cells. Other kinds use only the Kind field.
type Key struct {
	Kind   markdown.Kind
	Level  int
	Header bool
}

// Frequently used keys.
var (
	TextKey        = Key{Kind: markdown.Text}
	EmphasisKey    = Key{Kind: markdown.Emphasis, Level: 1}
	StrongKey      = Key{Kind: markdown.Emphasis, Level: 2}
	CodeKey        = Key{Kind: markdown.InlineCode}
	CodeBlockKey   = Key{Kind: markdown.CodeBlock}
	QuoteKey       = Key{Kind: markdown.BlockQuote}
	ListItemKey    = Key{Kind: markdown.ListItem}
	LinkKey        = Key{Kind: markdown.Link}
	ImageKey       = Key{Kind: markdown.Image}
	RuleKey        = Key{Kind: markdown.HorizontalRule}
	TableCellKey   = Key{Kind: markdown.TableCell}
	TableHeaderKey = Key{Kind: markdown.TableCell, Header: true}
)

// HeadingKey returns the key for headings of a level.
func HeadingKey(level int) Key {
	return Key{Kind: markdown.Heading, Level: level}
}

var sectionNames = map[Key]string{
	TextKey:        "text",
	EmphasisKey:    "emphasis",
	StrongKey:      "strong_emphasis",
	CodeKey:        "code",
	CodeBlockKey:   "code_block",
	QuoteKey:       "block_quote",
	ListItemKey:    "list_item",
	LinkKey:        "link",
	ImageKey:       "image",
	RuleKey:        "horizontal_rule",
	TableCellKey:   "table_cell",
	TableHeaderKey: "table_header",
}

// String returns the name of the style sheet section of k, e.g.
// "heading.2" or "block_quote".
func (k Key) String() string {
	if k.Kind == markdown.Heading {
		return "heading." + strconv.Itoa(k.Level)
	}
	if name, ok := sectionNames[k]; ok {
		return name
	}
	return fmt.Sprintf("%s[%d,%v]", k.Kind, k.Level, k.Header)
}

// KeyForSection returns the key for a style sheet section name.
func KeyForSection(name string) (Key, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	if strings.HasPrefix(name, "heading.") {
		level, err := strconv.Atoi(name[len("heading."):])
		if err != nil || level < 1 || level > 6 {
			return Key{}, false
		}
		return HeadingKey(level), true
	}
	for k, n := range sectionNames {
		if n == name {
			return k, true
		}
	}
	return Key{}, false
}

// fallback returns the key to consult if there is no entry for k.
func (k Key) fallback() (Key, bool) {
	switch {
	case k == TextKey:
		return k, false
	case k.Kind == markdown.Heading && k.Level > 1:
		return HeadingKey(k.Level - 1), true
	case k.Kind == markdown.Emphasis && k.Level > 2:
		return StrongKey, true
	case k == CodeBlockKey:
		return CodeKey, true
	case k.Header:
		return Key{Kind: k.Kind, Level: k.Level}, true
	}
	return TextKey, true
}

// --- Sheets and tables -----------------------------------------------------

// Margins are the page margins.
type Margins struct {
	Top, Right, Bottom, Left dimen.Dimen
}

// UniformMargins returns margins of m on every side.
func UniformMargins(m dimen.Dimen) Margins {
	return Margins{m, m, m, m}
}

// Sheet is the raw material for a style table: partial property sets per
// key, and optional page layout.
type Sheet struct {
	Styles  map[Key]Props
	Margins *Margins     // nil for default margins
	Paper   *dimen.Point // nil for A4
}

// Merge overlays the entries of over onto a copy of s, property by
// property.
func (s Sheet) Merge(over Sheet) Sheet {
	merged := Sheet{Styles: make(map[Key]Props, len(s.Styles)), Margins: s.Margins, Paper: s.Paper}
	for k, p := range s.Styles {
		merged.Styles[k] = p
	}
	for k, p := range over.Styles {
		merged.Styles[k] = merged.Styles[k].Merge(p)
	}
	if over.Margins != nil {
		merged.Margins = over.Margins
	}
	if over.Paper != nil {
		merged.Paper = over.Paper
	}
	return merged
}

// base is applied underneath the text entry of every sheet.
var base = Descriptor{
	Size:  12 * dimen.BP,
	Color: RGB(0, 0, 0),
}

// Table is an immutable style table. Entries are fully resolved: every
// property omitted from a sheet entry has the value of the text entry.
type Table struct {
	entries map[Key]Descriptor
	props   map[Key]Props
	margins Margins
	paper   dimen.Point
}

// NewTable creates a style table from a sheet. The sheet must contain an
// entry for TextKey, otherwise an error with code core.EINVALID is returned.
func NewTable(sheet Sheet) (*Table, error) {
	textProps, ok := sheet.Styles[TextKey]
	if !ok {
		return nil, core.Error(core.EINVALID, "style sheet has no entry for %q", TextKey)
	}
	text := textProps.Apply(base)
	t := &Table{
		entries: make(map[Key]Descriptor, len(sheet.Styles)),
		props:   make(map[Key]Props, len(sheet.Styles)),
		margins: UniformMargins(8 * dimen.MM),
		paper:   dimen.DINA4,
	}
	if sheet.Margins != nil {
		t.margins = *sheet.Margins
	}
	if sheet.Paper != nil {
		t.paper = *sheet.Paper
	}
	for k, p := range sheet.Styles {
		t.props[k] = p
		if k == TextKey {
			t.entries[k] = text
			continue
		}
		t.entries[k] = p.Apply(text)
	}
	tracer().Debugf("style table with %d entries", len(t.entries))
	return t, nil
}

// Style returns the descriptor for a key. If the table has no entry for k,
// it falls back to a related entry (a lower heading level, the non-header
// cell style, the inline code style for code blocks) and finally to the
// text entry.
func (t *Table) Style(k Key) Descriptor {
	for {
		if d, ok := t.entries[k]; ok {
			return d
		}
		next, ok := k.fallback()
		if !ok {
			return t.entries[TextKey]
		}
		k = next
	}
}

// Props returns the properties explicitly set for a key, following the
// same fallback rules as Style. It is used for composing inline styles,
// where only explicitly set properties override the enclosing style.
func (t *Table) Props(k Key) Props {
	for {
		if p, ok := t.props[k]; ok {
			return p
		}
		next, ok := k.fallback()
		if !ok || next == TextKey {
			return Props{}
		}
		k = next
	}
}

// Text returns the document-wide default style.
func (t *Table) Text() Descriptor {
	return t.entries[TextKey]
}

// Margins returns the page margins.
func (t *Table) Margins() Margins {
	return t.margins
}

// Paper returns the paper size.
func (t *Table) Paper() dimen.Point {
	return t.paper
}

// Content returns the area of a page inside the margins.
func (t *Table) Content() dimen.Rect {
	m := t.margins
	return dimen.Inset(t.paper, m.Top, m.Right, m.Bottom, m.Left)
}

// Keys returns the keys with explicit entries, in a stable order.
func (t *Table) Keys() []Key {
	keys := make([]Key, 0, len(t.entries))
	for k := range t.entries {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Kind != keys[j].Kind {
			return keys[i].Kind < keys[j].Kind
		}
		if keys[i].Level != keys[j].Level {
			return keys[i].Level < keys[j].Level
		}
		return !keys[i].Header && keys[j].Header
	})
	return keys
}
