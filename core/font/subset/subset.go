package subset

import (
	"fmt"

	"github.com/npillmayer/mdpdf/core"
	"github.com/npillmayer/mdpdf/core/font"
	"github.com/npillmayer/mdpdf/core/font/ot"
	"golang.org/x/image/font/sfnt"
)

// Blob is the result of subsetting a font.
type Blob struct {
	Source   *font.ScalableFont              // the font the subset was created from
	Data     []byte                          // binary data of the subsetted font
	GlyphMap map[ot.GlyphIndex]ot.GlyphIndex // old glyph ID → new glyph ID
	Chars    []rune                          // characters mapped by the subset's cmap
}

// NumGlyphs returns the number of glyphs retained.
func (b *Blob) NumGlyphs() int {
	return len(b.GlyphMap)
}

// Subset creates a subset of a TrueType font, containing the glyphs for chars.
// Characters the font does not cover are silently omitted.
//
// Fonts without TrueType outlines result in an error with code
// core.EUNSUPPORTED, corrupt font data in an error with code core.EINVALID.
func Subset(f *font.ScalableFont, chars *RuneSet) (*Blob, error) {
	if f == nil || f.OT == nil {
		return nil, core.Error(core.EINVALID, "cannot subset a nil font")
	}
	if !f.IsTrueType() {
		return nil, core.Error(core.EUNSUPPORTED, "font %s has no TrueType outlines, cannot subset", f.Fontname)
	}
	otf := f.OT
	mapping := charMapping(otf, chars)
	glyphs, err := closure(otf, mapping)
	if err != nil {
		return nil, err
	}
	glyphMap := make(map[ot.GlyphIndex]ot.GlyphIndex, len(glyphs))
	for i, g := range glyphs {
		glyphMap[g] = ot.GlyphIndex(i)
	}
	b := &builder{otf: otf, glyphs: glyphs, glyphMap: glyphMap}
	data, err := b.build(mapping)
	if err != nil {
		return nil, err
	}
	if _, err := sfnt.Parse(data); err != nil {
		return nil, core.WrapError(err, core.EINTERNAL, "subset of font %s does not load: %v", f.Fontname, err)
	}
	blob := &Blob{Source: f, Data: data, GlyphMap: glyphMap}
	for _, m := range mapping {
		blob.Chars = append(blob.Chars, m.r)
	}
	tracer().Infof("font subset %s: %s -> %s (%.1f%% reduction), %d of %d glyphs", f.Fontname,
		FormatBytes(len(f.Binary)), FormatBytes(len(data)),
		(1.0-float64(len(data))/float64(len(f.Binary)))*100.0, len(glyphs), otf.NumGlyphs())
	return blob, nil
}

type charGlyph struct {
	r rune
	g ot.GlyphIndex
}

// charMapping looks up the glyphs for chars, in ascending order of
// characters. Characters without a glyph are dropped.
func charMapping(otf *ot.Font, chars *RuneSet) []charGlyph {
	var mapping []charGlyph
	for _, r := range chars.Runes() {
		if g := otf.GlyphIndex(r); g != 0 {
			mapping = append(mapping, charGlyph{r: r, g: g})
		}
	}
	return mapping
}

// closure returns the sorted glyph IDs to retain: .notdef, the glyphs of
// the mapping and all glyphs reachable through composite references.
func closure(otf *ot.Font, mapping []charGlyph) ([]ot.GlyphIndex, error) {
	n := otf.NumGlyphs()
	keep := make([]bool, n)
	keep[0] = true
	queue := []ot.GlyphIndex{0}
	for _, m := range mapping {
		if int(m.g) >= n {
			return nil, core.Error(core.EINVALID, "cmap maps %U to glyph %d beyond glyph count", m.r, m.g)
		}
		if !keep[m.g] {
			keep[m.g] = true
			queue = append(queue, m.g)
		}
	}
	for len(queue) > 0 {
		g := queue[0]
		queue = queue[1:]
		data, err := otf.GlyphData(g)
		if err != nil {
			return nil, err
		}
		comps, err := ot.Components(data)
		if err != nil {
			return nil, err
		}
		for _, c := range comps {
			if int(c.Glyph) >= n {
				return nil, core.Error(core.EINVALID, "composite glyph %d references glyph %d beyond glyph count", g, c.Glyph)
			}
			if !keep[c.Glyph] {
				keep[c.Glyph] = true
				queue = append(queue, c.Glyph)
			}
		}
	}
	var glyphs []ot.GlyphIndex
	for g, k := range keep {
		if k {
			glyphs = append(glyphs, ot.GlyphIndex(g))
		}
	}
	return glyphs, nil
}

// FormatBytes formats a byte count for humans, in decimal units.
func FormatBytes(n int) string {
	switch {
	case n >= 1000000:
		return fmt.Sprintf("%.1fMB", float64(n)/1000000.0)
	case n >= 1000:
		return fmt.Sprintf("%.1fKB", float64(n)/1000.0)
	}
	return fmt.Sprintf("%dB", n)
}
