/*
Package ot provides read access to the tables of TrueType and OpenType fonts.

The intended audience for this package is any part of mdpdf which needs
the internal structure of a font file: the font subsetter, which rewrites a
reduced set of tables, and the font catalog, which checks character coverage
and reads font names.

Like golang.org/x/image/font/sfnt, a parsed Font keeps the font's binary in
memory and navigates it in place, without copying tables out into separate
data structures. Tables are interpreted lazily, and only as far as the
clients in this module need them:

▪︎ head, maxp, hhea, hmtx: global metrics and glyph counts

▪︎ loca, glyf: glyph outlines as byte segments, including the component
references of composite glyphs

▪︎ cmap: character to glyph mapping, formats 4 and 12

▪︎ name: font names, decoded from UTF-16 or Mac Roman

Fonts with CFF outlines ('OTTO') are recognized, but their outlines are not
interpreted.

License

The cmap lookup routines follow golang.org/x/image/font/sfnt/cmap.go.

    Copyright 2017 The Go Authors. All rights reserved.
    Use of this source code is governed by a BSD-style
    license that can be found in the LICENSE file.

Code in this package beyond the x/image/font/sfnt parts is governed by a
3-Clause BSD license. License file may be found in the root folder of this
module.

Copyright © 2020–21 Norbert Pillmayer <norbert@pillmayer.com>

*/
package ot

import (
	"github.com/npillmayer/mdpdf/core"
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'mdpdf.font'.
func tracer() tracing.Trace {
	return tracing.Select("mdpdf.font")
}

// errFontFormat produces user level errors for font parsing.
func errFontFormat(x string) error {
	return core.Error(core.EINVALID, "OpenType font format: %s", x)
}
