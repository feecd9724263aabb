package style

import (
	"image/color"

	"github.com/BurntSushi/toml"
	"github.com/npillmayer/mdpdf/core"
	"github.com/npillmayer/mdpdf/core/dimen"
)

type tomlColor struct {
	R *int `toml:"r"`
	G *int `toml:"g"`
	B *int `toml:"b"`
}

type tomlStyle struct {
	Size            *float64   `toml:"size"`
	BeforeSpacing   *float64   `toml:"beforespacing"`
	AfterSpacing    *float64   `toml:"afterspacing"`
	TextColor       *tomlColor `toml:"textcolor"`
	BackgroundColor *tomlColor `toml:"backgroundcolor"`
	Alignment       *string    `toml:"alignment"`
	FontFamily      *string    `toml:"fontfamily"`
	Bold            *bool      `toml:"bold"`
	Italic          *bool      `toml:"italic"`
	Underline       *bool      `toml:"underline"`
	Strikethrough   *bool      `toml:"strikethrough"`
}

type tomlPage struct {
	Size      *string `toml:"size"`
	Landscape bool    `toml:"landscape"`
}

type tomlMargins struct {
	Top    *float64 `toml:"top"`
	Right  *float64 `toml:"right"`
	Bottom *float64 `toml:"bottom"`
	Left   *float64 `toml:"left"`
}

// ParseTOML reads a style sheet in TOML format. Sections not present in
// the input are not present in the resulting sheet; merge it onto
// DefaultSheet to get a complete sheet. Syntax errors are reported with
// code core.EINVALID. Unknown sections and keys are ignored.
func ParseTOML(data string) (Sheet, error) {
	var raw map[string]toml.Primitive
	md, err := toml.Decode(data, &raw)
	if err != nil {
		return Sheet{}, core.WrapError(err, core.EINVALID, "cannot parse TOML style sheet")
	}
	sheet := Sheet{Styles: make(map[Key]Props)}
	for name, prim := range raw {
		switch name {
		case "margin":
			var m tomlMargins
			if err := md.PrimitiveDecode(prim, &m); err != nil {
				return Sheet{}, core.WrapError(err, core.EINVALID, "style sheet section [margin]")
			}
			sheet.Margins = m.margins()
		case "page":
			var page tomlPage
			if err := md.PrimitiveDecode(prim, &page); err != nil {
				return Sheet{}, core.WrapError(err, core.EINVALID, "style sheet section [page]")
			}
			paper, err := page.paper()
			if err != nil {
				return Sheet{}, err
			}
			sheet.Paper = paper
		case "heading":
			var levels map[string]tomlStyle
			if err := md.PrimitiveDecode(prim, &levels); err != nil {
				return Sheet{}, core.WrapError(err, core.EINVALID, "style sheet section [heading]")
			}
			for level, s := range levels {
				if k, ok := KeyForSection("heading." + level); ok {
					sheet.Styles[k] = s.props()
				} else {
					tracer().Infof("style sheet: ignoring section [heading.%s]", level)
				}
			}
		default:
			k, ok := KeyForSection(name)
			if !ok {
				tracer().Infof("style sheet: ignoring section [%s]", name)
				continue
			}
			var s tomlStyle
			if err := md.PrimitiveDecode(prim, &s); err != nil {
				return Sheet{}, core.WrapError(err, core.EINVALID, "style sheet section [%s]", name)
			}
			sheet.Styles[k] = s.props()
		}
	}
	for _, key := range md.Undecoded() {
		tracer().Infof("style sheet: ignoring key %s", key.String())
	}
	return sheet, nil
}

// LoadTOML reads a TOML style sheet and creates a style table from it,
// with the default sheet underneath.
func LoadTOML(data string) (*Table, error) {
	sheet, err := ParseTOML(data)
	if err != nil {
		return nil, err
	}
	return NewTable(DefaultSheet().Merge(sheet))
}

func (s tomlStyle) props() Props {
	p := Props{}
	if s.Size != nil {
		p = p.Size(dimen.FromPoints(*s.Size))
	}
	if s.BeforeSpacing != nil {
		p = p.SpaceBefore(*s.BeforeSpacing)
	}
	if s.AfterSpacing != nil {
		p = p.SpaceAfter(*s.AfterSpacing)
	}
	if c, ok := s.TextColor.rgba(); ok {
		p = p.Color(c)
	}
	if c, ok := s.BackgroundColor.rgba(); ok {
		p = p.Background(c)
	}
	if s.Alignment != nil {
		// unknown alignments are taken as left
		a, _ := ParseAlignment(*s.Alignment)
		p = p.Align(a)
	}
	if s.FontFamily != nil {
		p = p.Family(*s.FontFamily)
	}
	if s.Bold != nil {
		p = p.Bold(*s.Bold)
	}
	if s.Italic != nil {
		p = p.Italic(*s.Italic)
	}
	if s.Underline != nil {
		p = p.Underline(*s.Underline)
	}
	if s.Strikethrough != nil {
		p = p.Strikethrough(*s.Strikethrough)
	}
	return p
}

// rgba converts a color with all three components present.
func (c *tomlColor) rgba() (color.RGBA, bool) {
	if c == nil || c.R == nil || c.G == nil || c.B == nil {
		return NoColor, false
	}
	return RGB(clampByte(*c.R), clampByte(*c.G), clampByte(*c.B)), true
}

func clampByte(n int) uint8 {
	if n < 0 {
		return 0
	}
	if n > 255 {
		return 255
	}
	return uint8(n)
}

func (p tomlPage) paper() (*dimen.Point, error) {
	size := dimen.DINA4
	if p.Size != nil {
		var ok bool
		if size, ok = dimen.PaperSize(*p.Size); !ok {
			return nil, core.Error(core.EINVALID, "style sheet: unknown paper size %q", *p.Size)
		}
	}
	if p.Landscape {
		size = size.Landscape()
	}
	return &size, nil
}

// margins converts margins given in millimeters. Missing sides are 8mm.
func (m tomlMargins) margins() *Margins {
	side := func(v *float64) dimen.Dimen {
		if v == nil {
			return 8 * dimen.MM
		}
		return dimen.MM.Scale(*v)
	}
	return &Margins{
		Top:    side(m.Top),
		Right:  side(m.Right),
		Bottom: side(m.Bottom),
		Left:   side(m.Left),
	}
}
