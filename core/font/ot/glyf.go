package ot

// Composite glyphs
// https://docs.microsoft.com/en-us/typography/opentype/spec/glyf#composite-glyph-description

// Flags of composite glyph components.
const (
	ARG_1_AND_2_ARE_WORDS    uint16 = 0x0001
	WE_HAVE_A_SCALE          uint16 = 0x0008
	MORE_COMPONENTS          uint16 = 0x0020
	WE_HAVE_AN_X_AND_Y_SCALE uint16 = 0x0040
	WE_HAVE_A_TWO_BY_TWO     uint16 = 0x0080
)

// Component is a reference from a composite glyph to one of its parts.
type Component struct {
	Glyph  GlyphIndex
	Offset int // byte position of the glyph index within the composite's glyf data
}

// IsComposite is a predicate: is glyf-entry data a composite glyph?
// "If the number of contours is greater than or equal to zero, this is a
// simple glyph. If negative, this is a composite glyph."
func IsComposite(data []byte) bool {
	return len(data) >= 10 && int16(u16(data)) < 0
}

// Components returns the components of a composite glyph. For simple glyphs
// and empty glyphs it returns nil.
func Components(data []byte) ([]Component, error) {
	if !IsComposite(data) {
		return nil, nil
	}
	b := fontBinSegm(data)
	var comps []Component
	for pos := 10; ; {
		flags, err := b.u16(pos)
		if err != nil {
			return nil, errFontFormat("composite glyph truncated")
		}
		gid, err := b.u16(pos + 2)
		if err != nil {
			return nil, errFontFormat("composite glyph truncated")
		}
		comps = append(comps, Component{Glyph: GlyphIndex(gid), Offset: pos + 2})
		pos += 4
		if flags&ARG_1_AND_2_ARE_WORDS != 0 {
			pos += 4
		} else {
			pos += 2
		}
		switch {
		case flags&WE_HAVE_A_SCALE != 0:
			pos += 2
		case flags&WE_HAVE_AN_X_AND_Y_SCALE != 0:
			pos += 4
		case flags&WE_HAVE_A_TWO_BY_TWO != 0:
			pos += 8
		}
		if flags&MORE_COMPONENTS == 0 {
			break
		}
		if pos > len(data) {
			return nil, errFontFormat("composite glyph truncated")
		}
	}
	return comps, nil
}
