/*
Package subset creates reduced copies of TrueType fonts, containing only the
glyphs needed for a given set of characters.

A subset keeps glyph 0 (.notdef), the glyphs the font's cmap assigns to the
requested characters, and every glyph referenced from a composite glyph
among them, transitively. Retained glyphs are renumbered compactly in
ascending order of their original glyph IDs. The tables head, hhea, maxp,
hmtx, loca, glyf, cmap and post are rewritten; name, OS/2, cvt, fpgm, prep
and gasp are copied. Glyph-indexed tables (kern, GPOS, GSUB, hdmx, …) are
dropped, so a subset carries no kerning even if its source font does.

Subsetting is a pure function: identical (font, character set) input
always produces byte-identical output. Fonts with CFF outlines are not
subsetted; clients are expected to embed the full font instead.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2021 Norbert Pillmayer <norbert@pillmayer.com>

*/
package subset

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'mdpdf.subset'.
func tracer() tracing.Trace {
	return tracing.Select("mdpdf.subset")
}
