package subset

import (
	"sort"

	"github.com/npillmayer/mdpdf/core"
	"github.com/npillmayer/mdpdf/core/font/ot"
)

// Table sizes as required by golang.org/x/image/font/sfnt.
const (
	headSize = 54
	hheaSize = 36
	maxpSize = 32
	postSize = 32
)

// copiedTables are taken over unchanged from the source font.
var copiedTables = []string{"OS/2", "cvt", "fpgm", "gasp", "name", "prep"}

type builder struct {
	otf      *ot.Font
	glyphs   []ot.GlyphIndex                 // retained glyphs, ascending
	glyphMap map[ot.GlyphIndex]ot.GlyphIndex // old → new
}

func (b *builder) build(mapping []charGlyph) ([]byte, error) {
	tables := make(map[ot.Tag][]byte)
	var err error
	if tables[ot.T("glyf")], tables[ot.T("loca")], err = b.glyfAndLoca(); err != nil {
		return nil, err
	}
	tables[ot.T("hmtx")] = b.hmtx()
	n := uint16(len(b.glyphs))
	if tables[ot.T("head")], err = b.patched("head", headSize, func(t []byte) {
		ot.PutU32(t[8:], 0)  // checkSumAdjustment, set after assembly
		ot.PutU16(t[50:], 1) // indexToLocFormat: long offsets
	}); err != nil {
		return nil, err
	}
	if tables[ot.T("hhea")], err = b.patched("hhea", hheaSize, func(t []byte) {
		ot.PutU16(t[34:], n) // numberOfHMetrics
	}); err != nil {
		return nil, err
	}
	if tables[ot.T("maxp")], err = b.patched("maxp", maxpSize, func(t []byte) {
		ot.PutU16(t[4:], n) // numGlyphs
	}); err != nil {
		return nil, err
	}
	tables[ot.T("post")] = b.post()
	tables[ot.T("cmap")] = buildCmap(b.remap(mapping))
	for _, tag := range copiedTables {
		if t := b.otf.Table(ot.T(tag)); t != nil {
			tables[ot.T(tag)] = append([]byte{}, t.Base().Binary()...)
		}
	}
	return assemble(tables), nil
}

func (b *builder) remap(mapping []charGlyph) []charGlyph {
	m := make([]charGlyph, len(mapping))
	for i, cg := range mapping {
		m[i] = charGlyph{r: cg.r, g: b.glyphMap[cg.g]}
	}
	return m
}

// patched copies the first size bytes of a table and applies patch to the copy.
func (b *builder) patched(tag string, size int, patch func([]byte)) ([]byte, error) {
	t := b.otf.Table(ot.T(tag))
	if t == nil || len(t.Base().Binary()) < size {
		return nil, core.Error(core.EINVALID, "font table %s missing or too short", tag)
	}
	c := append([]byte{}, t.Base().Binary()[:size]...)
	patch(c)
	return c, nil
}

// glyfAndLoca copies the outlines of the retained glyphs, rewriting the
// component references of composite glyphs. Entries are padded to 4 bytes
// and located with long offsets.
func (b *builder) glyfAndLoca() (glyf, loca []byte, err error) {
	loca = make([]byte, 4*(len(b.glyphs)+1))
	for i, g := range b.glyphs {
		ot.PutU32(loca[4*i:], uint32(len(glyf)))
		data, err := b.otf.GlyphData(g)
		if err != nil {
			return nil, nil, err
		}
		start := len(glyf)
		glyf = append(glyf, data...)
		comps, err := ot.Components(data)
		if err != nil {
			return nil, nil, err
		}
		for _, c := range comps {
			ot.PutU16(glyf[start+c.Offset:], uint16(b.glyphMap[c.Glyph]))
		}
		for len(glyf)%4 != 0 {
			glyf = append(glyf, 0)
		}
	}
	ot.PutU32(loca[4*len(b.glyphs):], uint32(len(glyf)))
	return glyf, loca, nil
}

// hmtx writes full metrics for every retained glyph.
func (b *builder) hmtx() []byte {
	t := make([]byte, 4*len(b.glyphs))
	for i, g := range b.glyphs {
		adv, lsb := b.otf.HMetrics(g)
		ot.PutU16(t[4*i:], adv)
		ot.PutU16(t[4*i+2:], uint16(lsb))
	}
	return t
}

// post writes a version 3.0 table, which carries no glyph names.
func (b *builder) post() []byte {
	t := make([]byte, postSize)
	if src := b.otf.Table(ot.T("post")); src != nil && len(src.Base().Binary()) >= postSize {
		copy(t, src.Base().Binary()[:postSize])
	}
	ot.PutU32(t, 0x00030000)
	return t
}

// --- cmap ------------------------------------------------------------------

type segment struct {
	start, end rune
	delta      uint16
}

// buildCmap creates a cmap with a format 4 sub-table for the BMP, and a
// format 12 sub-table if there are characters beyond the BMP. If the
// format 4 sub-table would exceed its 16-bit length, the format 12
// sub-table is written alone. mapping must be sorted by character.
func buildCmap(mapping []charGlyph) []byte {
	var bmp []charGlyph
	for _, m := range mapping {
		if m.r < 0xffff {
			bmp = append(bmp, m)
		}
	}
	type subtable struct {
		encoding uint16
		data     []byte
	}
	var subs []subtable
	f4 := cmapFormat4(bmp)
	if f4 != nil {
		subs = append(subs, subtable{encoding: 1, data: f4}) // UCS-2
	}
	if f4 == nil || len(bmp) < len(mapping) {
		subs = append(subs, subtable{encoding: 10, data: cmapFormat12(mapping)}) // UCS-4
	}
	header := make([]byte, 4+8*len(subs))
	ot.PutU16(header[2:], uint16(len(subs)))
	offset := len(header)
	for i, sub := range subs {
		ot.PutU16(header[4+8*i:], 3) // Windows
		ot.PutU16(header[6+8*i:], sub.encoding)
		ot.PutU32(header[8+8*i:], uint32(offset))
		offset += len(sub.data)
	}
	t := header
	for _, sub := range subs {
		t = append(t, sub.data...)
	}
	return t
}

// cmapFormat4 creates segments of consecutive characters mapped to
// consecutive glyphs, each expressed by an idDelta. It returns nil if the
// sub-table would be longer than 0xFFFF bytes.
func cmapFormat4(mapping []charGlyph) []byte {
	var segs []segment
	for _, m := range mapping {
		delta := uint16(m.g) - uint16(m.r)
		if l := len(segs) - 1; l >= 0 && segs[l].end+1 == m.r && segs[l].delta == delta {
			segs[l].end = m.r
			continue
		}
		segs = append(segs, segment{start: m.r, end: m.r, delta: delta})
	}
	segs = append(segs, segment{start: 0xffff, end: 0xffff, delta: 1})
	n := len(segs)
	if 16+8*n > 0xffff {
		return nil
	}
	t := make([]byte, 16+8*n)
	ot.PutU16(t, 4)
	ot.PutU16(t[2:], uint16(len(t)))
	ot.PutU16(t[6:], uint16(2*n))
	searchRange, entrySelector := binarySearchParams(n)
	ot.PutU16(t[8:], 2*searchRange)
	ot.PutU16(t[10:], entrySelector)
	ot.PutU16(t[12:], uint16(2*n)-2*searchRange)
	for i, s := range segs {
		ot.PutU16(t[14+2*i:], uint16(s.end))
		ot.PutU16(t[16+2*n+2*i:], uint16(s.start))
		ot.PutU16(t[16+4*n+2*i:], s.delta)
		// idRangeOffset stays 0
	}
	return t
}

func cmapFormat12(mapping []charGlyph) []byte {
	type group struct {
		start, end rune
		glyph      ot.GlyphIndex
	}
	var groups []group
	for _, m := range mapping {
		if l := len(groups) - 1; l >= 0 && groups[l].end+1 == m.r &&
			groups[l].glyph+ot.GlyphIndex(m.r-groups[l].start) == m.g {
			groups[l].end = m.r
			continue
		}
		groups = append(groups, group{start: m.r, end: m.r, glyph: m.g})
	}
	t := make([]byte, 16+12*len(groups))
	ot.PutU16(t, 12)
	ot.PutU32(t[4:], uint32(len(t)))
	ot.PutU32(t[12:], uint32(len(groups)))
	for i, g := range groups {
		ot.PutU32(t[16+12*i:], uint32(g.start))
		ot.PutU32(t[20+12*i:], uint32(g.end))
		ot.PutU32(t[24+12*i:], uint32(g.glyph))
	}
	return t
}

// binarySearchParams returns the largest power of 2 ≤ n and its log2.
func binarySearchParams(n int) (uint16, uint16) {
	p, log := 1, 0
	for p*2 <= n {
		p *= 2
		log++
	}
	return uint16(p), uint16(log)
}

// --- Assembly --------------------------------------------------------------

// assemble writes the font file: offset table, table records sorted by tag,
// then the tables, each padded to a 4-byte boundary. The head table's
// checkSumAdjustment is set last.
func assemble(tables map[ot.Tag][]byte) []byte {
	tags := make([]ot.Tag, 0, len(tables))
	for tag := range tables {
		tags = append(tags, tag)
	}
	sort.Slice(tags, func(i, j int) bool { return tags[i] < tags[j] })
	n := len(tags)
	headerSize := 12 + 16*n
	size := headerSize
	for _, tag := range tags {
		size += pad4(len(tables[tag]))
	}
	out := make([]byte, size)
	ot.PutU32(out, ot.TypeTrueType)
	ot.PutU16(out[4:], uint16(n))
	searchRange, entrySelector := binarySearchParams(n)
	ot.PutU16(out[6:], 16*searchRange)
	ot.PutU16(out[8:], entrySelector)
	ot.PutU16(out[10:], uint16(16*n)-16*searchRange)
	offset := headerSize
	headOffset := -1
	for i, tag := range tags {
		t := tables[tag]
		rec := out[12+16*i:]
		ot.PutU32(rec, uint32(tag))
		ot.PutU32(rec[4:], ot.Checksum(t))
		ot.PutU32(rec[8:], uint32(offset))
		ot.PutU32(rec[12:], uint32(len(t)))
		copy(out[offset:], t)
		if tag == ot.T("head") {
			headOffset = offset
		}
		offset += pad4(len(t))
	}
	if headOffset >= 0 {
		ot.PutU32(out[headOffset+8:], 0xB1B0AFBA-ot.Checksum(out))
	}
	return out
}

func pad4(n int) int {
	return (n + 3) &^ 3
}
