package ot

/*
We replicate some of the code of the Go core team here, available from
https://github.com/golang/image/tree/master/font/sfnt.
I understand it's legal to do so, as long as the license information stays intact.

   Copyright 2017 The Go Authors. All rights reserved.
   Use of this source code is governed by a BSD-style
   license that can be found in the LICENSE file.
*/

import (
	"fmt"
)

// CMapTable represents an OpenType cmap table, i.e. the table to receive glyphs
// from code-points.
//
// See https://docs.microsoft.com/de-de/typography/opentype/spec/cmap
//
type CMapTable struct {
	TableBase
	GlyphIndexMap CMapGlyphIndex
}

// CMapGlyphIndex represents a CMap table index to receive a glyph index from
// a code-point.
type CMapGlyphIndex interface {
	Lookup(rune) GlyphIndex      // glyph for a code-point, or 0
	Each(func(rune, GlyphIndex)) // all mappings, ascending by code-point
	Format() uint16              // cmap sub-table format
}

// Platform IDs and Platform Specific IDs as per
// https://www.microsoft.com/typography/otspec/name.htm
const (
	pidUnicode   = 0
	pidMacintosh = 1
	pidWindows   = 3

	psidUnicode2BMPOnly        = 3
	psidUnicode2FullRepertoire = 4
	psidMacintoshRoman         = 0
	psidWindowsSymbol          = 0
	psidWindowsUCS2            = 1
	psidWindowsUCS4            = 10
)

// This value is arbitrary, but defends against parsing malicious font
// files causing excessive memory allocations. For reference, Adobe's
// SourceHanSansSC-Regular.otf has 65535 glyphs and:
//	- its format-4  cmap table has  1581 segments.
//	- its format-12 cmap table has 16498 segments.
const maxCMapSegments = 20000

// platformEncodingWidth returns the number of bytes per character assumed by
// the given Platform ID and Platform Specific ID.
//
// Very old fonts, from before Unicode was widely adopted, assume only 1 byte
// per character: a character map.
//
// Old fonts, from when Unicode meant the Basic Multilingual Plane (BMP),
// assume that 2 bytes per character is sufficient.
//
// Recent fonts naturally support the full range of Unicode code points, which
// can take up to 4 bytes per character.
func platformEncodingWidth(pid, psid uint16) int {
	switch pid {
	case pidUnicode:
		switch psid {
		case psidUnicode2BMPOnly:
			return 2
		case psidUnicode2FullRepertoire:
			return 4
		}
	case pidMacintosh:
		switch psid {
		case psidMacintoshRoman:
			return 1
		}
	case pidWindows:
		switch psid {
		case psidWindowsSymbol:
			return 2
		case psidWindowsUCS2:
			return 2
		case psidWindowsUCS4:
			return 4
		}
	}
	return 0
}

func supportedCmapFormat(format, pid, psid uint16) bool {
	return (pid == 0 && psid == 3 && format == 4) ||
		(pid == 0 && psid == 4 && format == 12) ||
		(pid == 3 && psid == 1 && format == 4) ||
		(pid == 3 && psid == 10 && format == 12)
}

func makeGlyphIndex(b fontBinSegm, format uint16) (CMapGlyphIndex, error) {
	switch format {
	case 4:
		return makeGlyphIndexFormat4(b)
	case 12:
		return makeGlyphIndexFormat12(b)
	}
	return nil, errFontFormat(fmt.Sprintf("cmap format %d", format))
}

// --- Format 4 --------------------------------------------------------------

// Format 4: Segment mapping to delta values
// This is the standard character-to-glyph-index mapping subtable for fonts that support
// only Unicode Basic Multilingual Plane characters (U+0000 to U+FFFF).
//
// The format-dependent data is divided into three parts, which must occur in the following
// order:
// - A four-word header gives parameters for an optimized search of the segment list;
// - Four parallel arrays describe the segments (one segment for each contiguous range of codes);
// - A variable-length array of glyph IDs (unsigned words).
//
type cmapEntry16 struct {
	end, start, delta, offset uint16
}

type format4 struct {
	sub     fontBinSegm
	entries []cmapEntry16
	rangeAt int // position of the idRangeOffset array within sub
}

func makeGlyphIndexFormat4(b fontBinSegm) (CMapGlyphIndex, error) {
	const headerSize = 14
	if headerSize > b.Size() {
		return nil, errFontFormat("cmap subtable bounds overflow")
	}
	segCount, _ := b.u16(6)
	if segCount&1 != 0 {
		return nil, errFontFormat("cmap table format, illegal segment count")
	}
	segCount /= 2
	if int(segCount) > maxCMapSegments {
		return nil, errFontFormat(fmt.Sprintf("more than %d cmap segments not supported", maxCMapSegments))
	}
	n := int(segCount)
	segmentsData, err := b.view(headerSize, 8*n+2)
	if err != nil {
		return nil, errFontFormat("cmap internal structure")
	}
	f := &format4{sub: b, entries: make([]cmapEntry16, n), rangeAt: headerSize + 6*n + 2}
	for i := range f.entries {
		f.entries[i] = cmapEntry16{
			end:    u16(segmentsData[0*n+0+2*i:]),
			start:  u16(segmentsData[2*n+2+2*i:]),
			delta:  u16(segmentsData[4*n+2+2*i:]),
			offset: u16(segmentsData[6*n+2+2*i:]),
		}
	}
	return f, nil
}

func (f *format4) Format() uint16 { return 4 }

func (f *format4) glyph(h int, c uint16) GlyphIndex {
	entry := &f.entries[h]
	if entry.offset == 0 {
		return GlyphIndex(c + entry.delta)
	}
	// idRangeOffset is relative to its own position in the idRangeOffset array
	pos := f.rangeAt + 2*h + int(entry.offset) + 2*int(c-entry.start)
	g, err := f.sub.u16(pos)
	if err != nil || g == 0 {
		return 0
	}
	return GlyphIndex(g + entry.delta)
}

func (f *format4) Lookup(r rune) GlyphIndex {
	if r < 0 || r > 0xffff {
		return 0
	}
	c := uint16(r)
	for i, j := 0, len(f.entries); i < j; {
		h := i + (j-i)/2
		entry := &f.entries[h]
		if c < entry.start {
			j = h
		} else if entry.end < c {
			i = h + 1
		} else {
			return f.glyph(h, c)
		}
	}
	return 0
}

func (f *format4) Each(fn func(rune, GlyphIndex)) {
	for h, entry := range f.entries {
		if entry.start > entry.end {
			continue
		}
		for c := uint32(entry.start); c <= uint32(entry.end); c++ {
			if c == 0xffff {
				break
			}
			if g := f.glyph(h, uint16(c)); g != 0 {
				fn(rune(c), g)
			}
		}
	}
}

// --- Format 12 -------------------------------------------------------------

type cmapEntry32 struct {
	start, end, delta uint32
}

type format12 struct {
	entries []cmapEntry32
}

func makeGlyphIndexFormat12(b fontBinSegm) (CMapGlyphIndex, error) {
	const headerSize = 16
	buf, err := b.view(0, headerSize)
	if err != nil {
		return nil, errFontFormat("cmap bounds overflow")
	}
	numGroups := u32(buf[12:])
	if numGroups > maxCMapSegments {
		return nil, errFontFormat(fmt.Sprintf("more than %d cmap segments not supported", maxCMapSegments))
	}
	buf, err = b.view(headerSize, int(12*numGroups))
	if err != nil {
		return nil, errFontFormat("cmap table format")
	}
	f := &format12{entries: make([]cmapEntry32, numGroups)}
	for i := range f.entries {
		f.entries[i] = cmapEntry32{
			start: u32(buf[0+12*i:]),
			end:   u32(buf[4+12*i:]),
			delta: u32(buf[8+12*i:]),
		}
	}
	return f, nil
}

func (f *format12) Format() uint16 { return 12 }

func (f *format12) Lookup(r rune) GlyphIndex {
	c := uint32(r)
	for i, j := 0, len(f.entries); i < j; {
		h := i + (j-i)/2
		entry := &f.entries[h]
		if c < entry.start {
			j = h
		} else if entry.end < c {
			i = h + 1
		} else {
			return GlyphIndex(c - entry.start + entry.delta)
		}
	}
	return 0
}

func (f *format12) Each(fn func(rune, GlyphIndex)) {
	for _, entry := range f.entries {
		if entry.end > 0x10ffff || entry.start > entry.end {
			continue
		}
		for c := entry.start; c <= entry.end; c++ {
			g := c - entry.start + entry.delta
			if g > 0xffff {
				break
			}
			if g != 0 {
				fn(rune(c), GlyphIndex(g))
			}
		}
	}
}
