/*
Package font is for typeface and font handling.

There is a certain confusion in the nomenclature of typesetting. We will
stick to the following definitions:

* A "typeface" is a family of fonts. An example is "Helvetica".
This corresponds to a TrueType "collection" (*.ttc).

* A "scalable font" is a font, i.e. a variant of a typeface with a
certain weight, slant, etc.  An example is "Helvetica regular".

Please note that Go (Golang) does use the terms "font" and "face"
differently–actually more or less in an opposite manner.

Markdown rendering knows five font roles: the default text font, a code
font, and bold, italic and bold-italic variants of the text font. Every
role has an embedded fallback from the Go font family, which is always
available. Font collections (*.ttc) are not supported.

OpenType explained:
https://docs.microsoft.com/en-us/typography/opentype/

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2021 Norbert Pillmayer <norbert@pillmayer.com>

*/
package font

import (
	"os"
	"sync"

	"github.com/npillmayer/mdpdf/core"
	"github.com/npillmayer/mdpdf/core/font/ot"
	"github.com/npillmayer/schuko/tracing"
	xfont "golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gobolditalic"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/sfnt"
)

// tracer traces with key 'mdpdf.font'.
func tracer() tracing.Trace {
	return tracing.Select("mdpdf.font")
}

// ScalableFont is a font resource: a font's binary data, together with
// its parsed glyph tables and character coverage. A ScalableFont is
// immutable after loading and may be shared between conversions.
type ScalableFont struct {
	Fontname string   // canonical name
	Filepath string   // file path, or "internal" for embedded fonts
	Binary   []byte   // raw data
	OT       *ot.Font // parsed font tables
	Style    xfont.Style
	Weight   xfont.Weight
	coverage *CoverageMap
}

// LoadOpenTypeFont reads and parses a font file.
func LoadOpenTypeFont(fontfile string) (*ScalableFont, error) {
	bytez, err := os.ReadFile(fontfile)
	if err != nil {
		return nil, core.WrapError(err, core.EMISSING, "cannot read font file %s", fontfile)
	}
	f, err := ParseOpenTypeFont(bytez)
	if err != nil {
		return nil, err
	}
	f.Filepath = fontfile
	f.Style, f.Weight = GuessStyleAndWeight(fontfile)
	return f, nil
}

// ParseOpenTypeFont parses font data. Fonts which x/image/font/sfnt is not
// able to load are rejected, as are fonts without a Unicode cmap.
func ParseOpenTypeFont(fbytes []byte) (*ScalableFont, error) {
	sf, err := sfnt.Parse(fbytes)
	if err != nil {
		return nil, core.WrapError(err, core.EINVALID, "cannot parse font: %v", err)
	}
	f := &ScalableFont{Binary: fbytes}
	if f.OT, err = ot.Parse(fbytes); err != nil {
		return nil, err
	}
	f.Fontname, err = sf.Name(nil, sfnt.NameIDFull)
	if err != nil || f.Fontname == "" {
		f.Fontname = f.OT.Name(ot.NameFull)
	}
	f.coverage = NewCoverageMap(f.OT)
	tracer().Debugf("parsed font %q: %d glyphs, %d characters mapped", f.Fontname,
		f.OT.NumGlyphs(), f.coverage.Count())
	return f, nil
}

// Covers is a predicate: does the font have a glyph for r?
func (sf *ScalableFont) Covers(r rune) bool {
	if sf == nil || sf.coverage == nil {
		return false
	}
	return sf.coverage.Contains(r)
}

// Coverage returns the font's coverage bitmap.
func (sf *ScalableFont) Coverage() *CoverageMap {
	return sf.coverage
}

// IsTrueType is a predicate: does the font carry TrueType outlines, which
// may be subsetted?
func (sf *ScalableFont) IsTrueType() bool {
	return sf.OT != nil && sf.OT.HasGlyf()
}

func (sf *ScalableFont) String() string {
	return sf.Fontname
}

// --- Roles -----------------------------------------------------------------

// Role is the function of a font within a document.
type Role int8

// Font roles for Markdown rendering.
const (
	RoleDefault Role = iota
	RoleCode
	RoleBold
	RoleItalic
	RoleBoldItalic
	roleCount
)

var roleNames = [...]string{"default", "code", "bold", "italic", "bold-italic"}

func (r Role) String() string {
	if r < 0 || r >= roleCount {
		return "unknown"
	}
	return roleNames[r]
}

// Roles returns all font roles in canonical order.
func Roles() []Role {
	return []Role{RoleDefault, RoleCode, RoleBold, RoleItalic, RoleBoldItalic}
}

// RoleFor selects a role from inline style flags.
func RoleFor(code, bold, italic bool) Role {
	switch {
	case code:
		return RoleCode
	case bold && italic:
		return RoleBoldItalic
	case bold:
		return RoleBold
	case italic:
		return RoleItalic
	}
	return RoleDefault
}

// StyleAndWeight returns the style and weight a role asks for.
func (r Role) StyleAndWeight() (xfont.Style, xfont.Weight) {
	switch r {
	case RoleBold:
		return xfont.StyleNormal, xfont.WeightBold
	case RoleItalic:
		return xfont.StyleItalic, xfont.WeightNormal
	case RoleBoldItalic:
		return xfont.StyleItalic, xfont.WeightBold
	}
	return xfont.StyleNormal, xfont.WeightNormal
}

// --- Fallback fonts --------------------------------------------------------

// FallbackFont returns a font to be used if everything else failes. It is
// always present. Currently we use Go Sans.
func FallbackFont() *ScalableFont {
	return EmbeddedFont(RoleDefault)
}

// EmbeddedFont returns the embedded Go font for a role. Embedded fonts
// are loaded once and shared.
func EmbeddedFont(role Role) *ScalableFont {
	if role < 0 || role >= roleCount {
		role = RoleDefault
	}
	embeddedLoading[role].Do(func() {
		embedded[role] = loadEmbeddedFont(role)
	})
	return embedded[role]
}

var embeddedLoading [roleCount]sync.Once

var embedded [roleCount]*ScalableFont

// embeddedNames are the canonical names of the embedded Go fonts.
var embeddedNames = [roleCount]string{"Go Regular", "Go Mono", "Go Bold", "Go Italic", "Go Bold Italic"}

func loadEmbeddedFont(role Role) *ScalableFont {
	var data []byte
	switch role {
	case RoleCode:
		data = gomono.TTF
	case RoleBold:
		data = gobold.TTF
	case RoleItalic:
		data = goitalic.TTF
	case RoleBoldItalic:
		data = gobolditalic.TTF
	default:
		data = goregular.TTF
	}
	f, err := ParseOpenTypeFont(data)
	if err != nil {
		panic("cannot load embedded font") // this cannot happen
	}
	f.Fontname = embeddedNames[role]
	f.Filepath = "internal"
	f.Style, f.Weight = role.StyleAndWeight()
	return f
}

// IsEmbedded is a predicate: is f one of the embedded fallback fonts?
func IsEmbedded(f *ScalableFont) bool {
	return f != nil && f.Filepath == "internal"
}
