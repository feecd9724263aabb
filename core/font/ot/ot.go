package ot

import (
	"sort"
)

// Font represents the internal structure of an OpenType font.
// It is used to navigate properties of a font for subsetting and for
// coverage queries.
type Font struct {
	Header *FontHeader
	binary []byte
	tables map[Tag]Table
	// frequently used tables, set by Parse
	head *HeadTable
	maxp *MaxPTable
	hhea *HHeaTable
	cmap *CMapTable
}

// FontHeader is the offset table at the start of a font file.
type FontHeader struct {
	FontType      uint32
	TableCount    uint16
	SearchRange   uint16
	EntrySelector uint16
	RangeShift    uint16
}

// Font types as found in the font header.
const (
	TypeTrueType uint32 = 0x00010000
	TypeApple    uint32 = 0x74727565 // 'true'
	TypeCFF      uint32 = 0x4f54544f // 'OTTO'
)

// GlyphIndex is a glyph index in a font.
type GlyphIndex uint16

// Binary returns the font's binary data. Clients must not modify it.
func (otf *Font) Binary() []byte {
	return otf.binary
}

// Table returns the font table for a tag, or nil.
func (otf *Font) Table(tag Tag) Table {
	return otf.tables[tag]
}

// TableTags returns the tags of all tables of the font, in ascending order.
func (otf *Font) TableTags() []Tag {
	tags := make([]Tag, 0, len(otf.tables))
	for tag := range otf.tables {
		tags = append(tags, tag)
	}
	sort.Slice(tags, func(i, j int) bool { return tags[i] < tags[j] })
	return tags
}

// HasGlyf is a predicate: does the font contain TrueType outlines?
func (otf *Font) HasGlyf() bool {
	return otf.tables[T("glyf")] != nil && otf.tables[T("loca")] != nil
}

// NumGlyphs returns the number of glyphs, as stated in table maxp.
func (otf *Font) NumGlyphs() int {
	if otf.maxp == nil {
		return 0
	}
	return otf.maxp.NumGlyphs
}

// UnitsPerEm returns the design units per em, or 1000 if unknown.
func (otf *Font) UnitsPerEm() uint16 {
	if otf.head == nil || otf.head.UnitsPerEm == 0 {
		return 1000
	}
	return otf.head.UnitsPerEm
}

// GlyphIndex returns the glyph index for the given rune.
//
// It returns 0 if there is no glyph for r.
// https://www.microsoft.com/typography/OTSPEC/cmap.htm says that "Character
// codes that do not correspond to any glyph in the font should be mapped to
// glyph index 0. The glyph at this location must be a special glyph
// representing a missing character, commonly known as .notdef."
func (otf *Font) GlyphIndex(r rune) GlyphIndex {
	if otf.cmap == nil || otf.cmap.GlyphIndexMap == nil {
		return 0
	}
	return otf.cmap.GlyphIndexMap.Lookup(r)
}

// EachMapping calls f for every character mapped by the font's cmap, in
// ascending order of code-points.
func (otf *Font) EachMapping(f func(r rune, g GlyphIndex)) {
	if otf.cmap == nil || otf.cmap.GlyphIndexMap == nil {
		return
	}
	otf.cmap.GlyphIndexMap.Each(f)
}

// HMetrics returns the advance width and left side bearing for a glyph.
func (otf *Font) HMetrics(g GlyphIndex) (advance uint16, lsb int16) {
	hmtx, ok := otf.tables[T("hmtx")].(*HMtxTable)
	if !ok || otf.hhea == nil {
		return 0, 0
	}
	return hmtx.metrics(int(g), otf.hhea.NumberOfHMetrics)
}

// GlyphData returns the glyf-entry for a glyph. Glyphs without an outline
// (e.g., space) yield an empty slice.
func (otf *Font) GlyphData(g GlyphIndex) ([]byte, error) {
	if !otf.HasGlyf() {
		return nil, errFontFormat("font has no TrueType outlines")
	}
	if int(g) >= otf.NumGlyphs() {
		return nil, errFontFormat("glyph index out of range")
	}
	loca := otf.tables[T("loca")].(*LocaTable)
	start, end, err := loca.location(int(g), otf.head.IndexToLocFormat)
	if err != nil {
		return nil, err
	}
	glyf := otf.tables[T("glyf")].Base().data
	if start > end || int(end) > len(glyf) {
		return nil, errFontFormat("loca entry out of glyf bounds")
	}
	return glyf[start:end], nil
}

// Name returns the first decodable entry of the name table for an ID, or an
// empty string.
func (otf *Font) Name(id NameID) string {
	names, ok := otf.tables[T("name")].(*NameTable)
	if !ok {
		return ""
	}
	return names.lookup(id)
}

// --- Tag -------------------------------------------------------------------

// Tag is defined by the OpenType spec as:
// Array of four uint8s (length = 32 bits) used to identify a table, design-variation axis,
// script, language system, feature, or baseline
type Tag uint32

// MakeTag creates a tag from 4 bytes.
func MakeTag(b []byte) Tag {
	if len(b) < 4 {
		return 0
	}
	return Tag(u32(b))
}

// T returns a Tag from a (4-letter) string.
// If t is shorter than 4 letters, it is padded with spaces.
func T(t string) Tag {
	t = (t + "    ")[:4]
	return MakeTag([]byte(t))
}

func (t Tag) String() string {
	return string([]byte{
		byte(t >> 24 & 0xff),
		byte(t >> 16 & 0xff),
		byte(t >> 8 & 0xff),
		byte(t & 0xff),
	})
}

// --- Table -----------------------------------------------------------------

// Table represents one of the various OpenType font tables
type Table interface {
	Offset() uint32   // offset within the font's binary data
	Len() uint32      // byte size of table
	String() string   // 4-letter table name, e.g., "cmap"
	Base() *TableBase // every table we use will be derived from TableBase
}

// TableBase is a common parent for all kinds of OpenType tables.
type TableBase struct {
	data   fontBinSegm // a table is a slice of font data
	name   Tag         // 4-byte name as an integer
	offset uint32      // from offset
	length uint32      // to offset + length
}

func base(tag Tag, b fontBinSegm, offset, size uint32) TableBase {
	return TableBase{data: b, name: tag, offset: offset, length: size}
}

// Offset returns the offset of this table within the OpenType font.
func (tb *TableBase) Offset() uint32 {
	return tb.offset
}

// Len returns the size of this table in bytes.
func (tb *TableBase) Len() uint32 {
	return tb.length
}

// String returns the 4-letter name of a table.
func (tb *TableBase) String() string {
	return tb.name.String()
}

// Binary returns the table's bytes. Clients must not modify them.
func (tb *TableBase) Binary() []byte {
	return tb.data
}

// Base returns the table base of a table.
func (tb *TableBase) Base() *TableBase {
	return tb
}

type genericTable struct {
	TableBase
}

// HeadTable gives global information about the font.
type HeadTable struct {
	TableBase
	Flags            uint16
	UnitsPerEm       uint16
	IndexToLocFormat uint16 // 0 for short offsets, 1 for long
}

// MaxPTable establishes the memory requirements for a font.
type MaxPTable struct {
	TableBase
	NumGlyphs int
}

// HHeaTable contains information for horizontal layout.
type HHeaTable struct {
	TableBase
	NumberOfHMetrics int
}

// HMtxTable contains glyph metrics for horizontal layout.
type HMtxTable struct {
	TableBase
}

func (t *HMtxTable) metrics(g, numberOfHMetrics int) (uint16, int16) {
	if numberOfHMetrics <= 0 {
		return 0, 0
	}
	if g < numberOfHMetrics {
		rec, err := t.data.view(4*g, 4)
		if err != nil {
			return 0, 0
		}
		return u16(rec), int16(u16(rec[2:]))
	}
	// glyphs beyond numberOfHMetrics share the last advance width
	last, err := t.data.view(4*(numberOfHMetrics-1), 2)
	if err != nil {
		return 0, 0
	}
	lsb, _ := t.data.u16(4*numberOfHMetrics + 2*(g-numberOfHMetrics))
	return u16(last), int16(lsb)
}

// LocaTable stores the offsets to the locations of the glyphs in the font,
// relative to the beginning of the glyph data table.
type LocaTable struct {
	TableBase
}

func (t *LocaTable) location(g int, format uint16) (start, end uint32, err error) {
	if format == 0 {
		b, err := t.data.view(2*g, 4)
		if err != nil {
			return 0, 0, errFontFormat("loca table too short")
		}
		return 2 * uint32(u16(b)), 2 * uint32(u16(b[2:])), nil
	}
	b, err := t.data.view(4*g, 8)
	if err != nil {
		return 0, 0, errFontFormat("loca table too short")
	}
	return u32(b), u32(b[4:]), nil
}
