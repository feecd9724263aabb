package subset

import (
	"bytes"
	"testing"

	"github.com/npillmayer/mdpdf/core"
	"github.com/npillmayer/mdpdf/core/font"
	"github.com/npillmayer/mdpdf/core/font/ot"
	"github.com/npillmayer/mdpdf/input/markdown"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRuneSet(t *testing.T) {
	s := NewRuneSet('c', 'a', '\n')
	s.AddString("bab")
	assert.Equal(t, 3, s.Len())
	assert.Equal(t, "abc", s.String())
	assert.False(t, s.Contains('\n'))
	other := NewRuneSet('z')
	s.Union(other)
	s.Union(nil)
	assert.Equal(t, []rune{'a', 'b', 'c', 'z'}, s.Runes())
	var empty *RuneSet
	assert.Equal(t, 0, empty.Len())
	assert.Equal(t, "", empty.String())
}

func TestFormatBytes(t *testing.T) {
	assert.Equal(t, "999B", FormatBytes(999))
	assert.Equal(t, "1.5KB", FormatBytes(1500))
	assert.Equal(t, "2.3MB", FormatBytes(2300000))
}

func TestListMarker(t *testing.T) {
	assert.Equal(t, "3.", ListMarker(true, 3))
	assert.Equal(t, Bullet, ListMarker(false, 3))
}

func TestExtractUsedCharacters(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "mdpdf.subset")
	defer teardown()
	//
	doc := "# Hq\n\nplain *it* **bo** ***bi*** `cd`\n\n> qu\n\n- li\n\n1. on\n\n![gag](img.png)\n"
	used := ExtractUsedCharacters(markdown.Tokenize(doc))
	assert.True(t, used.For(font.RoleBold).Contains('H'))
	assert.True(t, used.For(font.RoleBold).Contains('o'))
	assert.True(t, used.For(font.RoleItalic).Contains('t'))
	assert.True(t, used.For(font.RoleItalic).Contains('u'))
	assert.True(t, used.For(font.RoleBoldItalic).Contains('b'))
	assert.True(t, used.For(font.RoleCode).Contains('d'))
	def := used.For(font.RoleDefault)
	assert.True(t, def.Contains('p'))
	assert.True(t, def.Contains('•'))
	assert.True(t, def.Contains('7'))
	assert.False(t, def.Contains('H'))
	for _, s := range used {
		assert.False(t, s.Contains('g'), "image alt text is not rendered")
	}
}

func TestSubsetGoFont(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "mdpdf.subset")
	defer teardown()
	//
	f := font.FallbackFont()
	blob, err := Subset(f, NewRuneSet([]rune("Hello, wörld!")...))
	require.NoError(t, err)
	assert.Less(t, len(blob.Data), len(f.Binary))
	sub, err := font.ParseOpenTypeFont(blob.Data)
	require.NoError(t, err)
	for _, r := range "Hello, wörld!" {
		assert.True(t, sub.Covers(r), "subset covers %q", r)
	}
	assert.False(t, sub.Covers('z'))
	assert.Equal(t, blob.NumGlyphs(), sub.OT.NumGlyphs())
	assert.Equal(t, f.OT.UnitsPerEm(), sub.OT.UnitsPerEm())
	// metrics travel with the glyph
	g := f.OT.GlyphIndex('w')
	adv, _ := f.OT.HMetrics(g)
	subAdv, _ := sub.OT.HMetrics(sub.OT.GlyphIndex('w'))
	assert.Equal(t, adv, subAdv)
	assert.Equal(t, blob.GlyphMap[g], sub.OT.GlyphIndex('w'))
	// glyph-indexed layout tables are not carried over
	for _, tag := range []string{"kern", "GPOS", "GSUB"} {
		assert.Nil(t, sub.OT.Table(ot.T(tag)), tag)
	}
}

func TestSubsetIsDeterministic(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "mdpdf.subset")
	defer teardown()
	//
	f := font.EmbeddedFont(font.RoleCode)
	b1, err := Subset(f, NewRuneSet([]rune("func main() {}")...))
	require.NoError(t, err)
	b2, err := Subset(f, NewRuneSet([]rune("{}() niamcnuf")...))
	require.NoError(t, err)
	assert.True(t, bytes.Equal(b1.Data, b2.Data))
}

func TestSubsetIsMonotonic(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "mdpdf.subset")
	defer teardown()
	//
	f := font.FallbackFont()
	small, err := Subset(f, NewRuneSet('a', 'b'))
	require.NoError(t, err)
	large, err := Subset(f, NewRuneSet('a', 'b', 'c', 'd'))
	require.NoError(t, err)
	assert.Greater(t, large.NumGlyphs(), small.NumGlyphs())
	for g := range small.GlyphMap {
		_, ok := large.GlyphMap[g]
		assert.True(t, ok, "glyph %d retained in superset", g)
	}
}

func TestEmptySubset(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "mdpdf.subset")
	defer teardown()
	//
	blob, err := Subset(font.FallbackFont(), NewRuneSet())
	require.NoError(t, err)
	assert.Equal(t, 1, blob.NumGlyphs())
	assert.Empty(t, blob.Chars)
	_, err = font.ParseOpenTypeFont(blob.Data)
	assert.NoError(t, err)
}

func TestUncoveredCharsAreOmitted(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "mdpdf.subset")
	defer teardown()
	//
	blob, err := Subset(font.FallbackFont(), NewRuneSet('a', '漢'))
	require.NoError(t, err)
	assert.Equal(t, []rune{'a'}, blob.Chars)
	assert.Equal(t, 2, blob.NumGlyphs())
}

func TestCompositeClosure(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "mdpdf.subset")
	defer teardown()
	//
	f, err := font.ParseOpenTypeFont(synthFont(3))
	require.NoError(t, err)
	require.True(t, f.Covers('á'))
	blob, err := Subset(f, NewRuneSet('á', mathBoldA))
	require.NoError(t, err)
	// .notdef, b, a, acute, á
	assert.Equal(t, map[ot.GlyphIndex]ot.GlyphIndex{0: 0, 1: 1, 2: 2, 3: 3, 4: 4}, blob.GlyphMap)
	blob, err = Subset(f, NewRuneSet('á'))
	require.NoError(t, err)
	// .notdef, a, acute, á
	assert.Equal(t, map[ot.GlyphIndex]ot.GlyphIndex{0: 0, 2: 1, 3: 2, 4: 3}, blob.GlyphMap)
	sub, err := font.ParseOpenTypeFont(blob.Data)
	require.NoError(t, err)
	assert.Equal(t, ot.GlyphIndex(3), sub.OT.GlyphIndex('á'))
	assert.Equal(t, ot.GlyphIndex(0), sub.OT.GlyphIndex('b'))
	data, err := sub.OT.GlyphData(3)
	require.NoError(t, err)
	comps, err := ot.Components(data)
	require.NoError(t, err)
	require.Len(t, comps, 2)
	assert.Equal(t, ot.GlyphIndex(1), comps[0].Glyph)
	assert.Equal(t, ot.GlyphIndex(2), comps[1].Glyph)
	// a composite referencing itself
	self, err := font.ParseOpenTypeFont(synthFont(4))
	require.NoError(t, err)
	blob, err = Subset(self, NewRuneSet('á'))
	require.NoError(t, err)
	assert.Equal(t, map[ot.GlyphIndex]ot.GlyphIndex{0: 0, 2: 1, 4: 2}, blob.GlyphMap)
}

func TestLargeCmapOmitsFormat4(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "mdpdf.subset")
	defer teardown()
	//
	// every other character, so that no segment covers more than one
	var mapping []charGlyph
	for r := rune(0x4e00); len(mapping) < 9000; r += 2 {
		mapping = append(mapping, charGlyph{r: r, g: 1})
	}
	cmap := buildCmap(mapping)
	assert.Equal(t, uint16(1), ot.U16(cmap[2:]), "one sub-table")
	assert.Equal(t, uint16(10), ot.U16(cmap[6:]), "UCS-4 encoding")
	assert.Equal(t, uint16(12), ot.U16(cmap[12:]), "format 12")
	otf, err := ot.Parse(assemble(map[ot.Tag][]byte{
		ot.T("cmap"): cmap,
		ot.T("head"): synthHead(),
		ot.T("maxp"): synthMaxp(2),
	}))
	require.NoError(t, err)
	assert.Equal(t, ot.GlyphIndex(1), otf.GlyphIndex(mapping[8999].r))
	assert.Equal(t, ot.GlyphIndex(0), otf.GlyphIndex(mapping[8999].r+1))
	//
	small := buildCmap(mapping[:100])
	assert.Equal(t, uint16(1), ot.U16(small[2:]))
	assert.Equal(t, uint16(4), ot.U16(small[12:]), "format 4 for a small BMP mapping")
}

func TestSupplementaryPlane(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "mdpdf.subset")
	defer teardown()
	//
	f, err := font.ParseOpenTypeFont(synthFont(3))
	require.NoError(t, err)
	blob, err := Subset(f, NewRuneSet(mathBoldA))
	require.NoError(t, err)
	sub, err := font.ParseOpenTypeFont(blob.Data)
	require.NoError(t, err)
	assert.True(t, sub.Covers(mathBoldA))
	assert.Equal(t, ot.GlyphIndex(1), sub.OT.GlyphIndex(mathBoldA))
}

func TestSubsetErrors(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "mdpdf.subset")
	defer teardown()
	//
	_, err := Subset(nil, NewRuneSet('a'))
	assert.True(t, core.IsCode(err, core.EINVALID))
	// no outlines
	otf, err := ot.Parse(assemble(map[ot.Tag][]byte{
		ot.T("head"): synthHead(),
		ot.T("maxp"): synthMaxp(1),
	}))
	require.NoError(t, err)
	_, err = Subset(&font.ScalableFont{Fontname: "outline-less", OT: otf}, NewRuneSet('a'))
	assert.True(t, core.IsCode(err, core.EUNSUPPORTED))
	// composite referencing a glyph beyond the glyph count
	otf, err = ot.Parse(synthFont(9))
	require.NoError(t, err)
	_, err = Subset(&font.ScalableFont{Fontname: "broken", OT: otf}, NewRuneSet('á'))
	assert.True(t, core.IsCode(err, core.EINVALID))
}

func TestCache(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "mdpdf.subset")
	defer teardown()
	//
	c := NewCache()
	f := font.FallbackFont()
	b1, err := c.Subset(f, NewRuneSet('x', 'y'))
	require.NoError(t, err)
	b2, err := c.Subset(f, NewRuneSet('y', 'x'))
	require.NoError(t, err)
	assert.Same(t, b1, b2)
	_, err = c.Subset(f, NewRuneSet('x'))
	require.NoError(t, err)
	assert.Equal(t, 2, c.Len())
	_, err = c.Subset(nil, NewRuneSet('x'))
	assert.Error(t, err)
	assert.Equal(t, 2, c.Len())
}

// --- Synthetic font --------------------------------------------------------

// U+1D400 MATHEMATICAL BOLD CAPITAL A, mapped to glyph 'b' of the synthetic font.
const mathBoldA = rune(0x1D400)

// synthFont creates a TrueType font with glyphs .notdef, b, a, acute and
// the composite á = a + acute. The second component of á references
// glyph acute.
func synthFont(acute uint16) []byte {
	glyphs := [][]byte{
		simpleGlyph(0, 0),
		simpleGlyph(10, 20),
		simpleGlyph(30, 40),
		simpleGlyph(50, 60),
		compositeGlyph(2, acute),
	}
	var glyf []byte
	loca := make([]byte, 4*(len(glyphs)+1))
	for i, g := range glyphs {
		ot.PutU32(loca[4*i:], uint32(len(glyf)))
		glyf = append(glyf, g...)
		for len(glyf)%4 != 0 {
			glyf = append(glyf, 0)
		}
	}
	ot.PutU32(loca[4*len(glyphs):], uint32(len(glyf)))
	hmtx := make([]byte, 4*len(glyphs))
	for i := range glyphs {
		ot.PutU16(hmtx[4*i:], uint16(500+i))
	}
	hhea := make([]byte, hheaSize)
	ot.PutU32(hhea, 0x00010000)
	ot.PutU16(hhea[4:], 800)
	ot.PutU16(hhea[34:], uint16(len(glyphs)))
	post := make([]byte, postSize)
	ot.PutU32(post, 0x00030000)
	return assemble(map[ot.Tag][]byte{
		ot.T("cmap"): buildCmap([]charGlyph{{'a', 2}, {'b', 1}, {'á', 4}, {mathBoldA, 1}}),
		ot.T("glyf"): glyf,
		ot.T("head"): synthHead(),
		ot.T("hhea"): hhea,
		ot.T("hmtx"): hmtx,
		ot.T("loca"): loca,
		ot.T("maxp"): synthMaxp(len(glyphs)),
		ot.T("post"): post,
	})
}

func synthHead() []byte {
	head := make([]byte, headSize)
	ot.PutU32(head, 0x00010000)
	ot.PutU32(head[12:], 0x5F0F3CF5) // magic
	ot.PutU16(head[18:], 1000)       // units per em
	ot.PutU16(head[50:], 1)          // long loca offsets
	return head
}

func synthMaxp(n int) []byte {
	maxp := make([]byte, maxpSize)
	ot.PutU32(maxp, 0x00010000)
	ot.PutU16(maxp[4:], uint16(n))
	return maxp
}

// simpleGlyph creates a glyph with a single contour of a single point.
func simpleGlyph(x, y int16) []byte {
	g := make([]byte, 19)
	ot.PutU16(g, 1) // number of contours
	ot.PutU16(g[2:], uint16(x))
	ot.PutU16(g[4:], uint16(y))
	ot.PutU16(g[6:], uint16(x))
	ot.PutU16(g[8:], uint16(y))
	// end point 0, no instructions
	g[14] = 0x01 // on curve, long coordinates
	ot.PutU16(g[15:], uint16(x))
	ot.PutU16(g[17:], uint16(y))
	return g
}

func compositeGlyph(base, mark uint16) []byte {
	const argsAreXY = 0x0002
	g := make([]byte, 26)
	ot.PutU16(g, 0xffff) // -1 contours
	ot.PutU16(g[6:], 100)
	ot.PutU16(g[8:], 100)
	ot.PutU16(g[10:], ot.ARG_1_AND_2_ARE_WORDS|argsAreXY|ot.MORE_COMPONENTS)
	ot.PutU16(g[12:], base)
	ot.PutU16(g[18:], ot.ARG_1_AND_2_ARE_WORDS|argsAreXY)
	ot.PutU16(g[20:], mark)
	ot.PutU16(g[24:], 20) // dy
	return g
}
