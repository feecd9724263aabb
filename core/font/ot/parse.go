package ot

import (
	"fmt"
)

// Code comment often will cite passage from the
// OpenType specification version 1.8.4;
// see https://docs.microsoft.com/en-us/typography/opentype/spec/.

// ---------------------------------------------------------------------------

// Parse parses an OpenType font from a byte slice.
// An ot.Font needs ongoing access to the fonts byte-data after the Parse function returns.
// Its elements are assumed immutable while the ot.Font remains in use.
func Parse(font []byte) (*Font, error) {
	// https://www.microsoft.com/typography/otspec/otff.htm: Offset Table is 12 bytes.
	if len(font) < 12 {
		return nil, errFontFormat("font header")
	}
	src := fontBinSegm(font)
	h := FontHeader{
		FontType:      u32(font),
		TableCount:    u16(font[4:]),
		SearchRange:   u16(font[6:]),
		EntrySelector: u16(font[8:]),
		RangeShift:    u16(font[10:]),
	}
	tracer().Debugf("header = %v, tag = %x|%s", h, h.FontType, Tag(h.FontType).String())
	if !(h.FontType == TypeCFF || h.FontType == TypeTrueType || h.FontType == TypeApple) {
		return nil, errFontFormat(fmt.Sprintf("font type not supported: %x", h.FontType))
	}
	otf := &Font{Header: &h, binary: font, tables: make(map[Tag]Table)}
	// "The Offset Table is followed immediately by the Table Record entries …
	// sorted in ascending order by tag", 16 bytes each.
	buf, err := src.view(12, 16*int(h.TableCount))
	if err != nil {
		return nil, errFontFormat("table record entries")
	}
	for b, prevTag := buf, Tag(0); len(b) > 0; b = b[16:] {
		tag := MakeTag(b)
		if tag < prevTag {
			return nil, errFontFormat("table order")
		}
		prevTag = tag
		off, size := u32(b[8:12]), u32(b[12:16])
		if off&3 != 0 { // ignore checksums, but "all tables must begin on four byte boundries".
			return nil, errFontFormat("invalid table offset")
		}
		tb, err := src.view(int(off), int(size))
		if err != nil {
			return nil, errFontFormat(fmt.Sprintf("table %s exceeds font data", tag))
		}
		otf.tables[tag], err = parseTable(tag, tb, off, size)
		if err != nil {
			return nil, err
		}
	}
	if err = otf.consistency(); err != nil {
		return nil, err
	}
	return otf, nil
}

func parseTable(t Tag, b fontBinSegm, offset, size uint32) (Table, error) {
	switch t {
	case T("cmap"):
		return parseCMap(t, b, offset, size)
	case T("head"):
		return parseHead(t, b, offset, size)
	case T("hhea"):
		return parseHHea(t, b, offset, size)
	case T("hmtx"):
		return &HMtxTable{base(t, b, offset, size)}, nil
	case T("loca"):
		return &LocaTable{base(t, b, offset, size)}, nil
	case T("maxp"):
		return parseMaxP(t, b, offset, size)
	case T("name"):
		return parseNames(t, b, offset, size)
	}
	tracer().Debugf("font contains table (%s), will not be interpreted", t)
	return &genericTable{base(t, b, offset, size)}, nil
}

// consistency checks the dependencies between tables we rely on, and
// stores references to frequently used tables.
func (otf *Font) consistency() error {
	var ok bool
	if otf.head, ok = otf.tables[T("head")].(*HeadTable); !ok {
		return errFontFormat("missing head table")
	}
	if otf.maxp, ok = otf.tables[T("maxp")].(*MaxPTable); !ok {
		return errFontFormat("missing maxp table")
	}
	otf.hhea, _ = otf.tables[T("hhea")].(*HHeaTable)
	otf.cmap, _ = otf.tables[T("cmap")].(*CMapTable)
	// "Note that a font must have at least two glyphs"; we settle for .notdef
	if otf.maxp.NumGlyphs < 1 {
		return errFontFormat("font has no glyphs")
	}
	if otf.hhea != nil && (otf.hhea.NumberOfHMetrics < 1 ||
		otf.hhea.NumberOfHMetrics > otf.maxp.NumGlyphs) {
		return errFontFormat("hhea number of metrics")
	}
	if otf.HasGlyf() {
		loca := otf.tables[T("loca")]
		entry := uint32(2)
		if otf.head.IndexToLocFormat != 0 {
			entry = 4
		}
		if loca.Len() < entry*uint32(otf.maxp.NumGlyphs+1) {
			return errFontFormat("loca table too short")
		}
	}
	return nil
}

// --- Head table ------------------------------------------------------------

func parseHead(tag Tag, b fontBinSegm, offset, size uint32) (Table, error) {
	if size < 54 {
		return nil, errFontFormat("size of head table")
	}
	t := &HeadTable{TableBase: base(tag, b, offset, size)}
	t.Flags, _ = b.u16(16)      // flags
	t.UnitsPerEm, _ = b.u16(18) // units per em
	// IndexToLocFormat is needed to interpret the loca table:
	// 0 for short offsets, 1 for long
	t.IndexToLocFormat, _ = b.u16(50)
	return t, nil
}

// --- MaxP table ------------------------------------------------------------

// This table establishes the memory requirements for this font. Fonts with CFF data
// must use Version 0.5 of this table, specifying only the numGlyphs field. Fonts
// with TrueType outlines must use Version 1.0 of this table, where all data is required.
func parseMaxP(tag Tag, b fontBinSegm, offset, size uint32) (Table, error) {
	if size < 6 {
		return nil, errFontFormat("size of maxp table")
	}
	t := &MaxPTable{TableBase: base(tag, b, offset, size)}
	n, _ := b.u16(4)
	t.NumGlyphs = int(n)
	return t, nil
}

// --- HHea table ------------------------------------------------------------

func parseHHea(tag Tag, b fontBinSegm, offset, size uint32) (Table, error) {
	if size < 36 {
		return nil, errFontFormat("hhea table incomplete")
	}
	t := &HHeaTable{TableBase: base(tag, b, offset, size)}
	n, _ := b.u16(34)
	t.NumberOfHMetrics = int(n)
	return t, nil
}

// --- CMap table ------------------------------------------------------------

// This table defines mapping of character codes to a default glyph index. Different
// subtables may be defined that each contain mappings for different character encoding
// schemes.
//
// From the OpenType spec.: “If a font includes Unicode subtables for both 16-bit
// encoding (typically, format 4) and also 32-bit encoding (formats 10 or 12), then
// the characters supported by the subtable for 32-bit encoding should be a superset
// of the characters supported by the subtable for 16-bit encoding, and the 32-bit
// encoding should be used by applications.”
//
// We only support the following plaform/encoding/format combinations:
//   0 (Unicode)  3    4   Unicode BMP
//   0 (Unicode)  4    12  Unicode full
//   3 (Win)      1    4   Unicode BMP
//   3 (Win)      10   12  Unicode full
//
func parseCMap(tag Tag, b fontBinSegm, offset, size uint32) (Table, error) {
	n, err := b.u16(2) // number of sub-tables
	if err != nil {
		return nil, errFontFormat("size of cmap table")
	}
	tracer().Debugf("font cmap has %d sub-tables in %d bytes", n, size)
	const headerSize, entrySize = 4, 8
	if size < headerSize+entrySize*uint32(n) {
		return nil, errFontFormat("size of cmap table")
	}
	t := &CMapTable{TableBase: base(tag, b, offset, size)}
	var best struct {
		width  int
		format uint16
		sub    fontBinSegm
	}
	for i := 0; i < int(n); i++ {
		rec, _ := b.view(headerSize+entrySize*i, entrySize)
		pid, psid := u16(rec), u16(rec[2:])
		width := platformEncodingWidth(pid, psid)
		if width <= best.width {
			continue
		}
		off := int(u32(rec[4:]))
		if off >= len(b) {
			tracer().Infof("cmap sub-table cannot be parsed")
			continue
		}
		sub := b[off:]
		format, err := sub.u16(0)
		if err != nil {
			continue
		}
		tracer().Debugf("cmap table contains subtable with format %d", format)
		if supportedCmapFormat(format, pid, psid) {
			best.width, best.format, best.sub = width, format, sub
		}
	}
	if best.width == 0 {
		return nil, errFontFormat("no supported cmap format found")
	}
	if t.GlyphIndexMap, err = makeGlyphIndex(best.sub, best.format); err != nil {
		return nil, err
	}
	return t, nil
}
