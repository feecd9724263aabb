package style

import (
	"image/color"
	"strconv"
	"strings"

	"github.com/aymerick/douceur/css"
	"github.com/aymerick/douceur/parser"
	"github.com/npillmayer/mdpdf/core"
	"github.com/npillmayer/mdpdf/core/dimen"
	"golang.org/x/image/colornames"
)

var elementKeys = map[string]Key{
	"body":       TextKey,
	"p":          TextKey,
	"h1":         HeadingKey(1),
	"h2":         HeadingKey(2),
	"h3":         HeadingKey(3),
	"h4":         HeadingKey(4),
	"h5":         HeadingKey(5),
	"h6":         HeadingKey(6),
	"em":         EmphasisKey,
	"i":          EmphasisKey,
	"strong":     StrongKey,
	"b":          StrongKey,
	"code":       CodeKey,
	"pre":        CodeBlockKey,
	"blockquote": QuoteKey,
	"li":         ListItemKey,
	"a":          LinkKey,
	"img":        ImageKey,
	"hr":         RuleKey,
	"td":         TableCellKey,
	"th":         TableHeaderKey,
}

// ParseCSS reads a style sheet from CSS. Only element selectors (h1, p, em,
// code, th, …) are understood; section names of the TOML format are
// accepted as selectors as well. Page margins are taken from a @page rule.
// Rules for unknown selectors and unknown or malformed declarations are
// ignored. A CSS syntax error is reported with code core.EINVALID.
func ParseCSS(text string) (Sheet, error) {
	stylesheet, err := parser.Parse(text)
	if err != nil {
		return Sheet{}, core.WrapError(err, core.EINVALID, "cannot parse CSS style sheet")
	}
	sheet := Sheet{Styles: make(map[Key]Props)}
	for _, rule := range stylesheet.Rules {
		if rule.Kind == css.AtRule {
			if rule.Name == "@page" {
				sheet.Margins = pageMargins(rule.Declarations, sheet.Margins)
				if paper, ok := pageSize(rule.Declarations); ok {
					sheet.Paper = &paper
				}
			}
			continue
		}
		p := declarations(rule.Declarations)
		for _, sel := range rule.Selectors {
			k, ok := selectorKey(sel)
			if !ok {
				tracer().Infof("style sheet: ignoring selector %q", sel)
				continue
			}
			sheet.Styles[k] = sheet.Styles[k].Merge(p)
		}
	}
	return sheet, nil
}

// LoadCSS reads a CSS style sheet and creates a style table from it,
// with the default sheet underneath.
func LoadCSS(text string) (*Table, error) {
	sheet, err := ParseCSS(text)
	if err != nil {
		return nil, err
	}
	return NewTable(DefaultSheet().Merge(sheet))
}

func selectorKey(sel string) (Key, bool) {
	sel = strings.ToLower(strings.TrimSpace(sel))
	if k, ok := elementKeys[sel]; ok {
		return k, true
	}
	return KeyForSection(sel)
}

func declarations(decls []*css.Declaration) Props {
	p := Props{}
	for _, decl := range decls {
		value := strings.TrimSpace(decl.Value)
		var ok bool
		switch strings.ToLower(decl.Property) {
		case "font-family":
			family := strings.TrimSpace(strings.Split(value, ",")[0])
			family = strings.Trim(family, `"'`)
			if ok = family != ""; ok {
				p = p.Family(family)
			}
		case "font-size":
			var d dimen.Dimen
			if d, ok = absoluteLength(value); ok {
				p = p.Size(d)
			}
		case "color":
			var c color.RGBA
			if c, ok = parseColor(value); ok {
				p = p.Color(c)
			}
		case "background-color", "background":
			var c color.RGBA
			if c, ok = parseColor(value); ok {
				p = p.Background(c)
			}
		case "margin-top":
			var lines float64
			if lines, ok = parseLines(value); ok {
				p = p.SpaceBefore(lines)
			}
		case "margin-bottom":
			var lines float64
			if lines, ok = parseLines(value); ok {
				p = p.SpaceAfter(lines)
			}
		case "text-align":
			var a Alignment
			if a, ok = ParseAlignment(value); ok {
				p = p.Align(a)
			}
		case "font-weight":
			var bold bool
			if bold, ok = parseWeight(value); ok {
				p = p.Bold(bold)
			}
		case "font-style":
			switch strings.ToLower(value) {
			case "italic", "oblique":
				p, ok = p.Italic(true), true
			case "normal":
				p, ok = p.Italic(false), true
			}
		case "text-decoration", "text-decoration-line":
			p, ok = decoration(p, value)
		}
		if !ok {
			tracer().Infof("style sheet: ignoring declaration %s", decl.String())
		}
	}
	return p
}

// absoluteLength parses a length with an absolute unit (pt, mm, …).
func absoluteLength(value string) (dimen.Dimen, bool) {
	d, isPercent, err := dimen.ParseDimen(value)
	if err != nil || isPercent {
		return 0, false
	}
	return d, true
}

// parseLines parses a vertical spacing in lines. "em" and "lh" are taken
// as one line, a number without a unit is taken as lines as well.
func parseLines(value string) (float64, bool) {
	value = strings.ToLower(value)
	for _, unit := range []string{"em", "lh"} {
		value = strings.TrimSuffix(value, unit)
	}
	n, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	return n, err == nil && n >= 0
}

func parseWeight(value string) (bool, bool) {
	switch strings.ToLower(value) {
	case "bold", "bolder":
		return true, true
	case "normal", "lighter":
		return false, true
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return false, false
	}
	return n >= 600, true
}

func decoration(p Props, value string) (Props, bool) {
	ok := false
	for _, v := range strings.Fields(strings.ToLower(value)) {
		switch v {
		case "none":
			p, ok = p.Underline(false).Strikethrough(false), true
		case "underline":
			p, ok = p.Underline(true), true
		case "line-through":
			p, ok = p.Strikethrough(true), true
		}
	}
	return p, ok
}

// parseColor understands color names, #rgb, #rrggbb and rgb(r, g, b).
// "transparent" and "none" yield NoColor.
func parseColor(value string) (color.RGBA, bool) {
	value = strings.ToLower(strings.TrimSpace(value))
	switch {
	case value == "transparent" || value == "none":
		return NoColor, true
	case strings.HasPrefix(value, "#"):
		hex := value[1:]
		if len(hex) == 3 {
			hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
		}
		if len(hex) != 6 {
			return NoColor, false
		}
		n, err := strconv.ParseUint(hex, 16, 32)
		if err != nil {
			return NoColor, false
		}
		return RGB(uint8(n>>16), uint8(n>>8), uint8(n)), true
	case strings.HasPrefix(value, "rgb(") && strings.HasSuffix(value, ")"):
		parts := strings.Split(value[4:len(value)-1], ",")
		if len(parts) != 3 {
			return NoColor, false
		}
		var rgb [3]uint8
		for i, part := range parts {
			n, err := strconv.Atoi(strings.TrimSpace(part))
			if err != nil {
				return NoColor, false
			}
			rgb[i] = clampByte(n)
		}
		return RGB(rgb[0], rgb[1], rgb[2]), true
	}
	c, ok := colornames.Map[value]
	return c, ok
}

// pageSize reads the size declaration of a @page rule: a paper name, a
// width and height, or either of them with "landscape" or "portrait".
func pageSize(decls []*css.Declaration) (dimen.Point, bool) {
	var paper dimen.Point
	found := false
	for _, decl := range decls {
		if !strings.EqualFold(decl.Property, "size") {
			continue
		}
		size, landscape, ok := dimen.DINA4, false, true
		var lengths []dimen.Dimen
		for _, v := range strings.Fields(strings.ToLower(decl.Value)) {
			p, isPaper := dimen.PaperSize(v)
			switch {
			case isPaper:
				size = p
			case v == "landscape":
				landscape = true
			case v == "portrait":
			default:
				if d, isLength := absoluteLength(v); isLength {
					lengths = append(lengths, d)
				} else {
					ok = false
				}
			}
		}
		switch len(lengths) {
		case 0:
		case 1:
			size = dimen.Point{X: lengths[0], Y: lengths[0]}
		case 2:
			size = dimen.Point{X: lengths[0], Y: lengths[1]}
		default:
			ok = false
		}
		if !ok {
			tracer().Infof("style sheet: ignoring declaration %s", decl.String())
			continue
		}
		if landscape {
			size = size.Landscape()
		}
		paper, found = size, true
	}
	return paper, found
}

// pageMargins reads margin declarations of a @page rule. "margin" takes
// one to four lengths in CSS order (top, right, bottom, left).
func pageMargins(decls []*css.Declaration, m *Margins) *Margins {
	margins := UniformMargins(8 * dimen.MM)
	if m != nil {
		margins = *m
	}
	for _, decl := range decls {
		value := strings.TrimSpace(decl.Value)
		switch strings.ToLower(decl.Property) {
		case "margin":
			var sides []dimen.Dimen
			for _, v := range strings.Fields(value) {
				d, ok := absoluteLength(v)
				if !ok {
					sides = nil
					break
				}
				sides = append(sides, d)
			}
			switch len(sides) {
			case 1:
				margins = UniformMargins(sides[0])
			case 2:
				margins = Margins{sides[0], sides[1], sides[0], sides[1]}
			case 3:
				margins = Margins{sides[0], sides[1], sides[2], sides[1]}
			case 4:
				margins = Margins{sides[0], sides[1], sides[2], sides[3]}
			default:
				tracer().Infof("style sheet: ignoring declaration %s", decl.String())
			}
		case "margin-top", "margin-right", "margin-bottom", "margin-left":
			d, ok := absoluteLength(value)
			if !ok {
				tracer().Infof("style sheet: ignoring declaration %s", decl.String())
				continue
			}
			switch strings.ToLower(decl.Property)[len("margin-"):] {
			case "top":
				margins.Top = d
			case "right":
				margins.Right = d
			case "bottom":
				margins.Bottom = d
			case "left":
				margins.Left = d
			}
		}
	}
	return &margins
}
